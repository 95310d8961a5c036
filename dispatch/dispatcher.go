package dispatch

import (
	"context"
	"fmt"

	"github.com/SeanZoR/cwac-wakeful/internal/logger"
	"github.com/SeanZoR/cwac-wakeful/work"
)

// Holder is the wake-lock surface the pipeline depends on.
// wakelock.Lock satisfies it.
type Holder interface {
	Acquire() error
	Release()
	IsHeld() bool
}

// Resolver resolves symbolic destinations. resolver.Registry satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, dest work.Destination) (work.Destination, error)
}

// Deliverer accepts items for delivery to the executor. Queue satisfies it.
type Deliverer interface {
	Deliver(ctx context.Context, item work.Item) error
}

// Dispatcher is the entry point producers call to submit work. It is safe
// for concurrent use.
type Dispatcher struct {
	// lock is the process-wide wake lock, acquired before every dispatch.
	lock Holder
	// resolver resolves symbolic destinations before handoff.
	resolver Resolver
	// queue receives items for delivery.
	queue Deliverer
}

// NewDispatcher wires the lock, resolver and queue into a dispatcher.
func NewDispatcher(lock Holder, res Resolver, queue Deliverer) *Dispatcher {
	return &Dispatcher{
		lock:     lock,
		resolver: res,
		queue:    queue,
	}
}

// Submit acquires the wake lock and hands the work to the delivery queue.
// The lock is asserted before Submit returns; the executor releases it once
// the item's handling completes. Resolution failure is advisory here: the
// item is dispatched with its original symbolic destination. A failed
// handoff releases the acquire performed by this call and is returned.
func (d *Dispatcher) Submit(ctx context.Context, dest work.Destination, payload []byte) error {
	if err := d.lock.Acquire(); err != nil {
		return fmt.Errorf("acquire wake lock: %w", err)
	}

	if dest.Symbolic() {
		resolved, err := d.resolver.Resolve(ctx, dest)
		if err != nil {
			logger.WarnKV(ctx, "Dispatching with unresolved destination",
				"action", dest.Action, "error", err)
		} else {
			dest = resolved
		}
	}

	item := work.NewItem(dest, payload)

	if err := d.queue.Deliver(ctx, item); err != nil {
		d.lock.Release()

		return fmt.Errorf("deliver work item: %w", err)
	}

	logger.DebugKV(ctx, "Work item dispatched",
		"item_id", item.ID, "action", dest.Action, "handler", dest.Handler)

	return nil
}
