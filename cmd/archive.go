package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inference-sim/detkernel/kernel/archive"
	"github.com/inference-sim/detkernel/kernel/snapshot"
)

var (
	runID    string // Archived run to inspect
	showTick int64  // Snapshot tick to print
)

// archiveCmd lists archived runs, a run's snapshots, or one snapshot
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Inspect a snapshot archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		if archivePath == "" {
			return fmt.Errorf("--archive is required")
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := archive.Open(ctx, archivePath)
		if err != nil {
			return err
		}
		defer a.Close()
		out := cmd.OutOrStdout()

		if runID == "" {
			runs, err := a.Runs(ctx)
			if err != nil {
				return err
			}
			for _, id := range runs {
				fmt.Fprintln(out, id)
			}
			return nil
		}

		if cmd.Flags().Changed("tick") {
			rec, err := a.Load(ctx, runID, showTick)
			if err != nil {
				return err
			}
			s, err := snapshot.Decode(rec.Data)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\n", rec.Data)
			fmt.Fprintf(out, "tick=%d nodes=%d sensors=%d digest=%s\n", s.Tick, len(s.Nodes), len(s.Sensors), rec.Digest)
			return nil
		}

		recs, err := a.List(ctx, runID)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			fmt.Fprintf(out, "tick=%d digest=%s bytes=%d\n", rec.Tick, rec.Digest, len(rec.Data))
		}
		return nil
	},
}

func init() {
	archiveCmd.Flags().StringVar(&archivePath, "archive", "", "SQLite snapshot archive")
	archiveCmd.Flags().StringVar(&runID, "run", "", "Run id to list snapshots for")
	archiveCmd.Flags().Int64Var(&showTick, "tick", 0, "Print the snapshot of --run at this tick")
}
