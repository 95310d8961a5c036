package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Task defines one periodic wakeful task run by the daemon.
type Task struct {
	// Name identifies the task; it keys the timer registration and the
	// persisted last-fire time.
	Name string `yaml:"name"`
	// Schedule is the trigger spec, e.g. "@every 15m" or "0 3 * * *".
	Schedule string `yaml:"schedule"`
	// MaxAge is the staleness window after which a re-arm is forced.
	MaxAge time.Duration `yaml:"max_age"`
	// Action is the symbolic destination submitted when the alarm fires.
	// Defaults to the task name.
	Action string `yaml:"action"`
	// Command is the argv the task's work function executes.
	Command []string `yaml:"command"`
}

// Config holds the daemon settings.
type Config struct {
	// StateFile is the path to the JSON file storing last-fire times.
	StateFile string `yaml:"state_file"`
	// LogLevel is the minimum log level (debug, info, warn, error, fatal).
	LogLevel string `yaml:"log_level"`
	// QueueCapacity bounds the delivery queue.
	QueueCapacity int `yaml:"queue_capacity"`
	// MaxRedeliveries caps redeliveries of a failed work item.
	MaxRedeliveries int `yaml:"max_redeliveries"`
	// Inhibitor selects the wake-lock backend: "system" or "none".
	Inhibitor string `yaml:"inhibitor"`
	// Tasks are the periodic tasks to schedule at startup.
	Tasks []Task `yaml:"tasks"`
}

const (
	// DefaultConfigFilename is the default filename for daemon settings.
	DefaultConfigFilename = "wakeful-settings.yaml"

	// DefaultStateFilename is the default filename for schedule state JSON.
	DefaultStateFilename = "wakeful-state.json"

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	// InhibitorSystem selects the platform inhibition tool.
	InhibitorSystem = "system"

	// InhibitorNone selects the side-effect-free inhibitor.
	InhibitorNone = "none"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNoTasks is returned when the daemon has nothing to schedule.
	errNoTasks = errors.New("at least one task must be configured")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and fills in
// defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.StateFile == "" {
		cfg.StateFile = DefaultStateFilename
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	if cfg.Inhibitor == "" {
		cfg.Inhibitor = InhibitorSystem
	}

	if cfg.Inhibitor != InhibitorSystem && cfg.Inhibitor != InhibitorNone {
		return fmt.Errorf("unknown inhibitor %q: want %q or %q",
			cfg.Inhibitor, InhibitorSystem, InhibitorNone)
	}

	if len(cfg.Tasks) == 0 {
		return errNoTasks
	}

	for i := range cfg.Tasks {
		if err := validateTask(&cfg.Tasks[i]); err != nil {
			return fmt.Errorf("task %d: %w", i, err)
		}
	}

	return nil
}

// validateTask checks one task definition and fills in its defaults.
func validateTask(task *Task) error {
	if task.Name == "" {
		return errors.New("name must be provided")
	}

	if task.Schedule == "" {
		return errors.New("schedule must be provided")
	}

	if task.MaxAge <= 0 {
		return errors.New("max_age must be positive")
	}

	if task.Action == "" {
		task.Action = task.Name
	}

	if len(task.Command) == 0 {
		return errors.New("command must be provided")
	}

	return nil
}
