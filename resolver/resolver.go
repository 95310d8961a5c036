package resolver

import (
	"context"
	"fmt"
	"sync"

	"github.com/SeanZoR/cwac-wakeful/internal/logger"
	"github.com/SeanZoR/cwac-wakeful/work"
)

// ResolutionError reports that a symbolic destination matched zero or more
// than one handler. It carries the original destination so misconfiguration
// can be diagnosed from the error alone.
type ResolutionError struct {
	// Destination is the symbolic destination that failed to resolve.
	Destination work.Destination
	// Candidates is how many handlers matched.
	Candidates int
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("action %q resolves to %d handlers, want exactly 1",
		e.Destination.Action, e.Candidates)
}

// Registry records which handler services which actions.
type Registry struct {
	// mu guards handlers.
	mu sync.RWMutex
	// handlers maps an action to the handler names that advertised it.
	handlers map[string][]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string][]string),
	}
}

// Register advertises that the named handler services the given actions.
// Registering the same pair twice is a no-op.
func (r *Registry) Register(handler string, actions ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, action := range actions {
		if r.contains(action, handler) {
			continue
		}

		r.handlers[action] = append(r.handlers[action], handler)
	}
}

// Resolve turns a symbolic destination into a concrete one. A destination
// that is already concrete is returned unchanged. When zero or several
// handlers match, the failure is logged and a ResolutionError is returned;
// the input destination is returned untouched so advisory callers can still
// dispatch it.
func (r *Registry) Resolve(ctx context.Context, dest work.Destination) (work.Destination, error) {
	if !dest.Symbolic() {
		return dest, nil
	}

	r.mu.RLock()
	candidates := r.handlers[dest.Action]
	r.mu.RUnlock()

	if len(candidates) != 1 {
		logger.ErrorKV(ctx, "Couldn't find a single handler for destination",
			"action", dest.Action, "candidates", len(candidates))

		return dest, &ResolutionError{
			Destination: dest.Clone(),
			Candidates:  len(candidates),
		}
	}

	resolved := dest.Clone()
	resolved.Handler = candidates[0]

	return resolved, nil
}

// contains reports whether handler is already registered for action.
// Callers must hold mu.
func (r *Registry) contains(action, handler string) bool {
	for _, existing := range r.handlers[action] {
		if existing == handler {
			return true
		}
	}

	return false
}
