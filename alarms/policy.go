package alarms

import (
	"context"
	"time"

	"github.com/SeanZoR/cwac-wakeful/work"
)

// Submitter submits work for execution. dispatch.Dispatcher satisfies it.
type Submitter interface {
	Submit(ctx context.Context, dest work.Destination, payload []byte) error
}

// TaskPolicy is a ready-made Policy for the common case: arm a cron-style
// trigger and submit a fixed destination when it fires.
type TaskPolicy struct {
	// TaskName identifies the task in the facility and the store.
	TaskName string
	// Spec is the trigger spec, e.g. "@every 15m" or "0 3 * * *".
	Spec string
	// Age is the staleness window after which a re-arm is forced.
	Age time.Duration
	// Destination is submitted when the alarm fires.
	Destination work.Destination
	// Payload accompanies the destination.
	Payload []byte
	// Dispatcher performs the submission.
	Dispatcher Submitter
}

// Name implements Policy.
func (p *TaskPolicy) Name() string {
	return p.TaskName
}

// MaxAge implements Policy.
func (p *TaskPolicy) MaxAge() time.Duration {
	return p.Age
}

// ScheduleAlarms implements Policy by arming the facility with the task's
// trigger spec.
func (p *TaskPolicy) ScheduleAlarms(fac Facility, fire func()) error {
	return fac.Arm(p.TaskName, p.Spec, fire)
}

// SendWakefulWork implements Policy by submitting the task's destination.
func (p *TaskPolicy) SendWakefulWork(ctx context.Context) error {
	return p.Dispatcher.Submit(ctx, p.Destination.Clone(), p.Payload)
}
