package wakelock

import (
	"context"
	"fmt"
	"sync"

	"github.com/SeanZoR/cwac-wakeful/internal/logger"
)

// Inhibitor is the platform primitive that keeps the machine awake.
// Implementations must be reference-counted and safe for concurrent use;
// an extra Release when nothing is held must be a harmless no-op.
type Inhibitor interface {
	Acquire() error
	Release() error
	IsHeld() bool
}

// Factory creates the underlying inhibitor on first use.
// Creation may fail, e.g. when no inhibition tool exists on the host.
type Factory func() (Inhibitor, error)

// Lock is the process-wide wake lock. Construct exactly one per process and
// hand it to both the dispatcher and the executor.
type Lock struct {
	// factory creates the inhibitor on first acquire.
	factory Factory
	// mu guards the one-time creation of inh.
	mu sync.Mutex
	// inh is the lazily created platform inhibitor.
	inh Inhibitor
}

// New creates a lock that builds its inhibitor with the given factory.
// A nil factory selects the platform default.
func New(factory Factory) *Lock {
	if factory == nil {
		factory = SystemInhibitor
	}

	return &Lock{factory: factory}
}

// Acquire increments the hold's reference count, creating the underlying
// inhibitor on first use. Creation failure is fatal to this call and is
// returned to the caller.
func (l *Lock) Acquire() error {
	inh, err := l.inhibitor()
	if err != nil {
		return fmt.Errorf("create inhibitor: %w", err)
	}

	if err := inh.Acquire(); err != nil {
		return fmt.Errorf("acquire wake lock: %w", err)
	}

	return nil
}

// Release decrements the hold's reference count. Releasing when not held is
// logged and suppressed; the caller never sees an error.
func (l *Lock) Release() {
	ctx := context.Background()

	l.mu.Lock()
	inh := l.inh
	l.mu.Unlock()

	if inh == nil || !inh.IsHeld() {
		logger.Warn(ctx, "Wake lock released while not held")

		return
	}

	if err := inh.Release(); err != nil {
		logger.Errorf(ctx, "Failed to release wake lock: %v", err)
	}
}

// IsHeld reports whether the hold is currently asserted.
func (l *Lock) IsHeld() bool {
	l.mu.Lock()
	inh := l.inh
	l.mu.Unlock()

	return inh != nil && inh.IsHeld()
}

// inhibitor returns the underlying inhibitor, creating it at most once.
func (l *Lock) inhibitor() (Inhibitor, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.inh != nil {
		return l.inh, nil
	}

	inh, err := l.factory()
	if err != nil {
		return nil, err
	}

	l.inh = inh

	return inh, nil
}
