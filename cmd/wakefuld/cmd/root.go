package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/SeanZoR/cwac-wakeful/internal/config"
	"github.com/SeanZoR/cwac-wakeful/internal/service/daemon"
	"github.com/SeanZoR/cwac-wakeful/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// stateFile path where schedule state is persisted.
	stateFile string
	// forceSchedule re-arms every task regardless of staleness.
	forceSchedule bool

	// rootCmd represents the base command for running the wakeful daemon.
	rootCmd = &cobra.Command{
		Use:   "wakefuld",
		Short: "Run periodic background tasks while holding the system awake.",
		Long: `Starts the wakeful daemon that schedules the configured periodic tasks and
executes them under a process-wide wake lock.

Each task arms a named timer; the persisted last-fire time makes scheduling
idempotent across restarts, so a restart within a task's max_age does not
re-arm it. While any task's work is in flight the machine is kept from
suspending.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &daemon.Options{
				ConfigPath:    configPath,
				StateFile:     stateFile,
				ForceSchedule: forceSchedule,
			}

			return options.Run(ctx)
		},
	}
)

// Execute runs the wakefuld CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&stateFile, "state-file", "s", "", "path to persist schedule state (overrides config)")
	rootCmd.Flags().
		BoolVarP(&forceSchedule, "force", "f", false, "re-arm every task regardless of staleness")
}
