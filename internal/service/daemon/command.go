package daemon

import (
	"context"
	"fmt"

	"github.com/SeanZoR/cwac-wakeful/alarms"
	"github.com/SeanZoR/cwac-wakeful/dispatch"
	"github.com/SeanZoR/cwac-wakeful/internal/config"
	"github.com/SeanZoR/cwac-wakeful/internal/logger"
	"github.com/SeanZoR/cwac-wakeful/resolver"
	"github.com/SeanZoR/cwac-wakeful/wakelock"
)

// Options controls the wakeful daemon process and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// StateFile provides an optional override for the schedule state path.
	StateFile string
	// ForceSchedule re-arms every task regardless of staleness.
	ForceSchedule bool
}

// Run starts the daemon and blocks until the context is canceled.
// Pending alarms keep their persisted state across restarts; they are only
// cleared by an explicit cancel.
func (o *Options) Run(ctx context.Context) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "wakefuld")

	// Load configuration first to get tuning and task definitions.
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	// Use StateFile from config unless overridden by command line option.
	stateFile := cfg.StateFile
	if o.StateFile != "" {
		stateFile = o.StateFile
	}

	// One wake lock per process, shared by dispatcher and executor.
	lock := wakelock.New(inhibitorFactory(cfg.Inhibitor))

	registry := resolver.NewRegistry()
	queue := dispatch.NewQueue(cfg.QueueCapacity, cfg.MaxRedeliveries)
	executor := dispatch.NewExecutor(lock, registry)
	dispatcher := dispatch.NewDispatcher(lock, registry, queue)

	store := alarms.NewFileStore(stateFile)
	facility := alarms.NewCronFacility()
	scheduler := alarms.NewScheduler(store, facility)

	// Register a work function per task and schedule its alarm.
	for _, task := range cfg.Tasks {
		executor.Register(task.Name, commandWorkFunc(task.Command))
		registry.Register(task.Name, task.Action)

		policy := &alarms.TaskPolicy{
			TaskName:    task.Name,
			Spec:        task.Schedule,
			Age:         task.MaxAge,
			Destination: destinationFor(task),
			Dispatcher:  dispatcher,
		}

		armed, err := scheduler.Schedule(ctx, policy, o.ForceSchedule)
		if err != nil {
			return fmt.Errorf("schedule task %q: %w", task.Name, err)
		}

		logger.InfoKV(ctx, "Task registered",
			"task", task.Name, "schedule", task.Schedule, "armed", armed)
	}

	facility.Start()
	defer facility.Stop()

	logger.InfoKV(ctx, "Wakeful daemon started",
		"tasks", len(cfg.Tasks), "state_file", stateFile, "inhibitor", cfg.Inhibitor)

	// Consume the queue until the process is signaled.
	if err := queue.Run(ctx, executor); err != nil {
		return fmt.Errorf("run delivery queue: %w", err)
	}

	logger.Info(ctx, "Wakeful daemon stopped")

	return nil
}

// inhibitorFactory maps the configured backend name to a wakelock factory.
func inhibitorFactory(kind string) wakelock.Factory {
	if kind == config.InhibitorNone {
		return wakelock.NopInhibitor
	}

	return wakelock.SystemInhibitor
}
