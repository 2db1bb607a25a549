package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	logLevel     string // Log verbosity level
	scenarioPath string // Scenario YAML file
	seed         int64  // Overrides the scenario seed when set
	ticks        int64  // Overrides the scenario horizon when set
	archivePath  string // SQLite snapshot archive
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "detkernel",
	Short: "Deterministic systems kernel: replayable cluster simulations",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logrus.SetLevel(level)
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(archiveCmd)
}
