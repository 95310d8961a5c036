package daemon

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/SeanZoR/cwac-wakeful/dispatch"
	"github.com/SeanZoR/cwac-wakeful/internal/config"
	"github.com/SeanZoR/cwac-wakeful/internal/logger"
	"github.com/SeanZoR/cwac-wakeful/work"
)

// commandWorkFunc builds the work function for a task: run the configured
// argv to completion. The command runs fully under the wake lock; a non-zero
// exit fails the delivery and triggers redelivery.
func commandWorkFunc(argv []string) dispatch.WorkFunc {
	return func(ctx context.Context, _ []byte) error {
		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

		output, err := cmd.CombinedOutput()
		if err != nil {
			return fmt.Errorf("run %q: %w", argv[0], err)
		}

		logger.DebugKV(ctx, "Task command finished",
			"command", argv[0], "output_bytes", len(output))

		return nil
	}
}

// destinationFor builds the symbolic destination a task submits on fire.
func destinationFor(task config.Task) work.Destination {
	return work.Destination{
		Action: task.Action,
		Extras: map[string]string{"task": task.Name},
	}
}
