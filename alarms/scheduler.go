package alarms

import (
	"context"
	"fmt"
	"time"

	"github.com/SeanZoR/cwac-wakeful/internal/logger"
)

// Policy describes one named periodic task: how stale its last fire may get,
// how to arm the timer facility, and how to submit its work once the alarm
// fires. Implementations typically submit through dispatch.Dispatcher.
type Policy interface {
	// Name identifies the task. One policy maps to one timer registration
	// and one persisted timestamp.
	Name() string
	// MaxAge is the duration after which a re-arm is forced.
	MaxAge() time.Duration
	// ScheduleAlarms performs the actual arm call against the facility.
	// The fire callback must be the function the facility invokes when the
	// alarm goes off.
	ScheduleAlarms(fac Facility, fire func()) error
	// SendWakefulWork submits the task's work for execution.
	SendWakefulWork(ctx context.Context) error
}

// Store persists the last fire time per task. A zero time means the task
// never fired.
type Store interface {
	LastAlarm(ctx context.Context, name string) (time.Time, error)
	SetLastAlarm(ctx context.Context, name string, t time.Time) error
	ClearLastAlarm(ctx context.Context, name string) error
}

// Scheduler applies the staleness gate and wires the fire callback that
// records the timestamp and submits the work.
type Scheduler struct {
	// store persists last fire times.
	store Store
	// facility is the external timer.
	facility Facility
	// now is the clock, replaceable in tests.
	now func() time.Time
}

// NewScheduler creates a scheduler over the given store and timer facility.
func NewScheduler(store Store, facility Facility) *Scheduler {
	return &Scheduler{
		store:    store,
		facility: facility,
		now:      time.Now,
	}
}

// Schedule arms the policy's timer when the task never fired, when force is
// set, or when the last fire is older than the policy's maximum age. A last
// fire in the future (clock went backward) is treated as not stale unless
// forced. It reports whether an arm request was issued.
//
// The persisted timestamp is updated by the fire callback, not by this call,
// so repeated non-forced calls before the first fire keep re-evaluating a
// stale timestamp and may re-arm. That matches the persisted-on-fire
// contract.
func (s *Scheduler) Schedule(ctx context.Context, policy Policy, force bool) (bool, error) {
	lastAlarm, err := s.store.LastAlarm(ctx, policy.Name())
	if err != nil {
		return false, fmt.Errorf("load last alarm for %q: %w", policy.Name(), err)
	}

	now := s.now()

	shouldArm := lastAlarm.IsZero() ||
		force ||
		(now.After(lastAlarm) && now.Sub(lastAlarm) > policy.MaxAge())

	if !shouldArm {
		logger.DebugKV(ctx, "Alarm is fresh, not re-arming",
			"task", policy.Name(), "last_alarm", lastAlarm, "max_age", policy.MaxAge())

		return false, nil
	}

	if err := policy.ScheduleAlarms(s.facility, s.fireFunc(policy)); err != nil {
		return false, fmt.Errorf("arm alarm for %q: %w", policy.Name(), err)
	}

	logger.InfoKV(ctx, "Alarm armed",
		"task", policy.Name(), "forced", force, "last_alarm", lastAlarm)

	return true, nil
}

// Cancel unconditionally asks the facility to cancel any pending arm for the
// task and clears its persisted timestamp. Canceling an unscheduled task is
// a no-op.
func (s *Scheduler) Cancel(ctx context.Context, name string) error {
	if err := s.facility.Cancel(name); err != nil {
		logger.Errorf(ctx, "Failed to cancel pending alarm for %q: %v", name, err)
	}

	if err := s.store.ClearLastAlarm(ctx, name); err != nil {
		return fmt.Errorf("clear last alarm for %q: %w", name, err)
	}

	logger.InfoKV(ctx, "Alarm canceled", "task", name)

	return nil
}

// fireFunc builds the callback the facility invokes when the alarm goes off:
// record the fire time, then submit the task's work.
func (s *Scheduler) fireFunc(policy Policy) func() {
	return func() {
		ctx := logger.WithName(context.Background(), "alarms")

		if err := s.store.SetLastAlarm(ctx, policy.Name(), s.now()); err != nil {
			logger.Errorf(ctx, "Failed to persist last alarm for %q: %v", policy.Name(), err)
		}

		if err := policy.SendWakefulWork(ctx); err != nil {
			logger.Errorf(ctx, "Failed to submit work for %q: %v", policy.Name(), err)
		}
	}
}
