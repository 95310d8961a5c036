package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/SeanZoR/cwac-wakeful/internal/logger"
	"github.com/SeanZoR/cwac-wakeful/work"
)

// WorkFunc is the caller-supplied work for one handler. It may run
// arbitrarily long; it runs fully under the wake lock. A returned error
// triggers redelivery of the item.
type WorkFunc func(ctx context.Context, payload []byte) error

// ErrNoWorkFunc is returned when an item's handler has no registered work
// function.
var ErrNoWorkFunc = errors.New("no work function registered")

// Executor is the single point of execution for delivered items. The queue
// guarantees at most one concurrent invocation of Handle per process.
type Executor struct {
	// lock is the process-wide wake lock released after every item.
	lock Holder
	// resolver resolves destinations that were dispatched symbolically.
	resolver Resolver

	// mu guards funcs.
	mu sync.RWMutex
	// funcs maps a handler name to its work function.
	funcs map[string]WorkFunc
}

// NewExecutor creates an executor bound to the given lock and resolver.
func NewExecutor(lock Holder, res Resolver) *Executor {
	return &Executor{
		lock:     lock,
		resolver: res,
		funcs:    make(map[string]WorkFunc),
	}
}

// Register binds a work function to a handler name. Advertising the actions
// the handler services is done separately on the resolver registry.
func (e *Executor) Register(handler string, fn WorkFunc) {
	e.mu.Lock()
	e.funcs[handler] = fn
	e.mu.Unlock()
}

// Handle executes one delivered item. It re-asserts the wake lock when the
// item is flagged redelivered or the lock is not held, runs the work
// function, and releases the lock on every exit path. The work function's
// error is returned so the queue can redeliver.
func (e *Executor) Handle(ctx context.Context, item work.Item) error {
	if item.Redelivered || !e.lock.IsHeld() {
		if acquireErr := e.lock.Acquire(); acquireErr != nil {
			return fmt.Errorf("reacquire wake lock: %w", acquireErr)
		}
	}

	// Release on every exit path, including a panicking work function.
	// Lock.Release logs and suppresses its own failures.
	defer func() {
		if e.lock.IsHeld() {
			e.lock.Release()
		}
	}()

	fn, err := e.workFunc(ctx, item)
	if err != nil {
		return err
	}

	if err := fn(ctx, item.Payload); err != nil {
		return fmt.Errorf("work function for item %s: %w", item.ID, err)
	}

	return nil
}

// workFunc finds the work function for the item, resolving the destination
// first when it is still symbolic. Resolution failure at execution time is
// fatal for this delivery.
func (e *Executor) workFunc(ctx context.Context, item work.Item) (WorkFunc, error) {
	dest := item.Destination

	if dest.Symbolic() {
		resolved, err := e.resolver.Resolve(ctx, dest)
		if err != nil {
			return nil, fmt.Errorf("resolve destination for item %s: %w", item.ID, err)
		}

		dest = resolved
	}

	e.mu.RLock()
	fn, ok := e.funcs[dest.Handler]
	e.mu.RUnlock()

	if !ok {
		logger.ErrorKV(ctx, "Work item has no registered work function",
			"item_id", item.ID, "handler", dest.Handler)

		return nil, fmt.Errorf("handler %q: %w", dest.Handler, ErrNoWorkFunc)
	}

	return fn, nil
}
