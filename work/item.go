package work

import (
	"time"

	"github.com/google/uuid"
)

// Destination names who should handle a unit of work.
// A destination is symbolic when only Action is set and concrete once
// Handler identifies a single registered handler.
type Destination struct {
	// Action is the abstract request, e.g. "poll-feeds". Handlers advertise
	// the actions they service and resolution picks the unique match.
	Action string
	// Handler is the identity of the concrete handler. Empty until resolved.
	Handler string
	// Extras carries optional caller-supplied metadata preserved across
	// resolution.
	Extras map[string]string
}

// Symbolic reports whether the destination still needs resolution.
func (d Destination) Symbolic() bool {
	return d.Handler == ""
}

// Clone returns a copy of the destination with its own extras map.
func (d Destination) Clone() Destination {
	cloned := d
	if d.Extras != nil {
		cloned.Extras = make(map[string]string, len(d.Extras))
		for k, v := range d.Extras {
			cloned.Extras[k] = v
		}
	}

	return cloned
}

// Item is one unit of work in transit through the delivery queue.
type Item struct {
	// ID uniquely identifies the item for logging and tracing.
	ID uuid.UUID
	// Destination is the (possibly resolved) target of the item.
	Destination Destination
	// Payload is the opaque caller-supplied body handed to the work function.
	Payload []byte
	// Redelivered is set by the queue when a prior delivery of this item did
	// not complete normally. Consumers must not set it themselves.
	Redelivered bool
	// EnqueuedAt is when the item entered the queue.
	EnqueuedAt time.Time
}

// NewItem builds an item ready for delivery to the given destination.
func NewItem(dest Destination, payload []byte) Item {
	return Item{
		ID:          uuid.New(),
		Destination: dest,
		Payload:     payload,
		EnqueuedAt:  time.Now(),
	}
}
