package dispatch

import (
	"context"
	"errors"

	"github.com/SeanZoR/cwac-wakeful/internal/logger"
	"github.com/SeanZoR/cwac-wakeful/work"
)

// Handler consumes delivered items. Executor satisfies it.
type Handler interface {
	Handle(ctx context.Context, item work.Item) error
}

// ErrQueueFull is returned by Deliver when the queue is at capacity.
var ErrQueueFull = errors.New("delivery queue is full")

const (
	// DefaultCapacity is the queue capacity when none is configured.
	DefaultCapacity = 64
	// DefaultMaxRedeliveries caps how many times a failed item is retried.
	DefaultMaxRedeliveries = 3
)

// Queue is a bounded in-memory delivery mechanism. Items are handed to the
// handler one at a time, in order; an item whose handling returned an error
// is redelivered with its redelivery flag set, up to the configured cap.
type Queue struct {
	// items buffers accepted work.
	items chan work.Item
	// maxRedeliveries caps redeliveries per item before it is dropped.
	maxRedeliveries int
}

// NewQueue creates a queue. Non-positive arguments select the defaults.
func NewQueue(capacity, maxRedeliveries int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	if maxRedeliveries <= 0 {
		maxRedeliveries = DefaultMaxRedeliveries
	}

	return &Queue{
		items:           make(chan work.Item, capacity),
		maxRedeliveries: maxRedeliveries,
	}
}

// Deliver accepts an item for delivery. It fails fast with ErrQueueFull
// instead of blocking the producer.
func (q *Queue) Deliver(ctx context.Context, item work.Item) error {
	select {
	case q.items <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// Run consumes the queue until the context is canceled, handing each item to
// the handler sequentially. A failed item is redelivered immediately with
// Redelivered set; after maxRedeliveries failures it is dropped with an
// error log. Run always returns nil on cancellation so callers can treat
// shutdown as clean.
func (q *Queue) Run(ctx context.Context, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case item := <-q.items:
			q.process(ctx, handler, item)
		}
	}
}

// process drives one logical item through its delivery and redeliveries.
func (q *Queue) process(ctx context.Context, handler Handler, item work.Item) {
	for attempt := 0; ; attempt++ {
		err := handler.Handle(ctx, item)
		if err == nil {
			return
		}

		if attempt >= q.maxRedeliveries {
			logger.ErrorKV(ctx, "Dropping work item after exhausting redeliveries",
				"item_id", item.ID, "attempts", attempt+1, "error", err)

			return
		}

		if ctx.Err() != nil {
			logger.WarnKV(ctx, "Abandoning work item redelivery on shutdown",
				"item_id", item.ID, "error", err)

			return
		}

		logger.WarnKV(ctx, "Redelivering work item",
			"item_id", item.ID, "attempt", attempt+1, "error", err)

		item.Redelivered = true
	}
}
