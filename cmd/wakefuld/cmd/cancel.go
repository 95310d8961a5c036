package cmd

import (
	"github.com/spf13/cobra"

	"github.com/SeanZoR/cwac-wakeful/alarms"
	"github.com/SeanZoR/cwac-wakeful/internal/config"
)

// cancelCmd clears the persisted schedule state for one task, or for every
// configured task when none is named. The next daemon start treats cleared
// tasks as never fired and arms them unconditionally.
var cancelCmd = &cobra.Command{
	Use:   "cancel [task-name]",
	Short: "Cancel a task's pending alarm and clear its persisted state.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		path := cfg.StateFile
		if stateFile != "" {
			path = stateFile
		}

		scheduler := alarms.NewScheduler(alarms.NewFileStore(path), alarms.NewCronFacility())

		if len(args) == 1 {
			return scheduler.Cancel(cmd.Context(), args[0])
		}

		for _, task := range cfg.Tasks {
			if err := scheduler.Cancel(cmd.Context(), task.Name); err != nil {
				return err
			}
		}

		return nil
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(cancelCmd)
}
