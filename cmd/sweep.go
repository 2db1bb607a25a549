package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inference-sim/detkernel/kernel/archive"
	"github.com/inference-sim/detkernel/kernel/driver"
)

var (
	sweepSeeds []int64 // Seeds to run
	parallel   int     // Max concurrent runs
)

// sweepCmd runs one scenario per seed, concurrently
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a scenario once per seed in parallel",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(sweepSeeds) == 0 {
			return fmt.Errorf("--seeds is required")
		}
		sc, err := loadScenario(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		var opts []driver.Option
		if archivePath != "" {
			a, err := archive.Open(ctx, archivePath)
			if err != nil {
				return err
			}
			defer a.Close()
			opts = append(opts, driver.WithSnapshotSink(a))
		}

		results, err := driver.Sweep(ctx, sc, sweepSeeds, parallel, nil, opts...)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, res := range results {
			fmt.Fprintf(out, "seed=%d tick=%d digest=%s checksum=%d run=%s\n",
				res.Seed, res.FinalTick, res.Digest, res.Checksum, res.RunID)
		}
		return nil
	},
}

func init() {
	sweepCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Scenario YAML file")
	sweepCmd.Flags().Int64SliceVar(&sweepSeeds, "seeds", nil, "Comma-separated seeds")
	sweepCmd.Flags().IntVar(&parallel, "parallel", 4, "Max concurrent runs (0 = unlimited)")
	sweepCmd.Flags().Int64Var(&ticks, "ticks", 0, "Override the scenario horizon (in ticks)")
	sweepCmd.Flags().StringVar(&archivePath, "archive", "", "SQLite file to archive snapshots into")
}
