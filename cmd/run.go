package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/detkernel/kernel/archive"
	"github.com/inference-sim/detkernel/kernel/driver"
	"github.com/inference-sim/detkernel/kernel/trace"
)

var traceOut string // Per-tick trace JSON output file

// runCmd executes one scenario and prints its result as JSON
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario to its horizon",
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := loadScenario(cmd)
		if err != nil {
			return err
		}

		var opts []driver.Option
		if traceOut != "" && sc.Trace == "" {
			opts = append(opts, driver.WithTraceLevel(trace.TraceLevelTicks))
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if archivePath != "" {
			a, err := archive.Open(ctx, archivePath)
			if err != nil {
				return err
			}
			defer a.Close()
			opts = append(opts, driver.WithSnapshotSink(a))
		}

		d, err := driver.NewDriver(sc, nil, opts...)
		if err != nil {
			return err
		}
		res, err := d.Run(ctx)
		if err != nil {
			return err
		}

		if traceOut != "" {
			if err := writeJSON(traceOut, res.Trace); err != nil {
				return err
			}
			logrus.Infof("trace written to %s (%d ticks)", traceOut, len(res.Trace.Ticks))
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

// loadScenario reads --scenario and applies --seed/--ticks overrides.
func loadScenario(cmd *cobra.Command) (*driver.Scenario, error) {
	if scenarioPath == "" {
		return nil, fmt.Errorf("--scenario is required")
	}
	sc, err := driver.LoadScenario(scenarioPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("seed") {
		sc.Seed = seed
	}
	if cmd.Flags().Changed("ticks") {
		sc.Ticks = ticks
		if err := sc.Validate(); err != nil {
			return nil, err
		}
	}
	return sc, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func init() {
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Scenario YAML file")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "Override the scenario seed")
	runCmd.Flags().Int64Var(&ticks, "ticks", 0, "Override the scenario horizon (in ticks)")
	runCmd.Flags().StringVar(&archivePath, "archive", "", "SQLite file to archive snapshots into")
	runCmd.Flags().StringVar(&traceOut, "trace-out", "", "Write the per-tick trace as JSON to this file")
}
