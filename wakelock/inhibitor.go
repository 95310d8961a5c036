package wakelock

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
)

// ErrUnsupportedOS indicates the current OS has no known inhibition tool.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// SystemInhibitor builds the platform inhibitor using common, built-in tools:
// - Linux:  `systemd-inhibit --what=sleep:idle --mode=block`
// - macOS:  `caffeinate -is`
// The tool is started on the first acquire and terminated on the last
// release; the OS enforces the inhibition while the child process lives.
func SystemInhibitor() (Inhibitor, error) {
	osName := strings.ToLower(runtime.GOOS)

	switch {
	case strings.Contains(osName, "linux"):
		return newCommandInhibitor("systemd-inhibit",
			"--what=sleep:idle", "--mode=block",
			"--why=wakeful work in progress",
			"sleep", "infinity"), nil
	case strings.Contains(osName, "darwin"):
		return newCommandInhibitor("caffeinate", "-is"), nil
	default:
		return nil, fmt.Errorf("no inhibition tool for %s: %w", runtime.GOOS, ErrUnsupportedOS)
	}
}

// NopInhibitor returns an inhibitor that only tracks the reference count.
// Useful on hosts without an inhibition tool and in tests.
func NopInhibitor() (Inhibitor, error) {
	return &countingInhibitor{}, nil
}

// countingInhibitor is a process-local, reference-counted inhibitor with no
// side effects.
type countingInhibitor struct {
	// mu guards count.
	mu sync.Mutex
	// count is the number of outstanding acquires.
	count int
}

// Acquire increments the reference count.
func (c *countingInhibitor) Acquire() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.count++

	return nil
}

// Release decrements the reference count. Extra releases are no-ops.
func (c *countingInhibitor) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.count > 0 {
		c.count--
	}

	return nil
}

// IsHeld reports whether any acquire is outstanding.
func (c *countingInhibitor) IsHeld() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.count > 0
}

// commandInhibitor keeps a child process alive while the reference count is
// above zero. The child is what actually blocks suspend.
type commandInhibitor struct {
	// name is the inhibition tool executable.
	name string
	// args are the tool's arguments.
	args []string

	// mu guards count and cmd.
	mu sync.Mutex
	// count is the number of outstanding acquires.
	count int
	// cmd is the running inhibition process, nil when count is zero.
	cmd *exec.Cmd
}

// newCommandInhibitor creates an inhibitor backed by the given command.
func newCommandInhibitor(name string, args ...string) *commandInhibitor {
	return &commandInhibitor{
		name: name,
		args: args,
	}
}

// Acquire increments the reference count, starting the inhibition process on
// the transition from zero to one. A start failure leaves the count at zero
// and is returned to the caller.
func (c *commandInhibitor) Acquire() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.count == 0 {
		cmd := exec.Command(c.name, c.args...)
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("start %s: %w", c.name, err)
		}

		c.cmd = cmd
	}

	c.count++

	return nil
}

// Release decrements the reference count, terminating the inhibition process
// on the transition from one to zero. Extra releases are no-ops.
func (c *commandInhibitor) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.count == 0 {
		return nil
	}

	c.count--
	if c.count > 0 {
		return nil
	}

	cmd := c.cmd
	c.cmd = nil

	if cmd == nil || cmd.Process == nil {
		return nil
	}

	if err := cmd.Process.Kill(); err != nil {
		return fmt.Errorf("stop %s: %w", c.name, err)
	}

	// Reap the child so it does not linger as a zombie.
	go func() {
		_ = cmd.Wait()
	}()

	return nil
}

// IsHeld reports whether any acquire is outstanding.
func (c *commandInhibitor) IsHeld() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.count > 0
}
