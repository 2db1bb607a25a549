package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inference-sim/detkernel/kernel/driver"
)

// validateCmd parses and validates a scenario without running it
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a scenario file for errors",
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := loadScenario(cmd)
		if err != nil {
			return err
		}
		// Building the driver resolves loader references and compiles scripts.
		d, err := driver.NewDriver(sc, nil)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "scenario OK: %d nodes, %d sensors, %d faults, horizon %d, run %s\n",
			len(sc.Nodes), len(sc.Sensors), len(sc.Faults), sc.Ticks, d.RunID())
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Scenario YAML file")
}
