package alarms

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SeanZoR/cwac-wakeful/work"
)

var (
	errTestStore  = errors.New("test store error")
	errTestSubmit = errors.New("test submit error")
)

// memoryStore is an in-memory Store for tests.
type memoryStore struct {
	// times maps task name to last fire time.
	times map[string]time.Time
	// loadErr is returned from LastAlarm when set.
	loadErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{times: make(map[string]time.Time)}
}

func (m *memoryStore) LastAlarm(_ context.Context, name string) (time.Time, error) {
	return m.times[name], m.loadErr
}

func (m *memoryStore) SetLastAlarm(_ context.Context, name string, t time.Time) error {
	m.times[name] = t

	return nil
}

func (m *memoryStore) ClearLastAlarm(_ context.Context, name string) error {
	delete(m.times, name)

	return nil
}

// fakeFacility records arm and cancel requests.
type fakeFacility struct {
	// arms counts Arm calls.
	arms int
	// cancels counts Cancel calls.
	cancels int
	// fire holds the most recent fire callback.
	fire func()
}

func (f *fakeFacility) Arm(_, _ string, fire func()) error {
	f.arms++
	f.fire = fire

	return nil
}

func (f *fakeFacility) Cancel(string) error {
	f.cancels++

	return nil
}

// fakeSubmitter records submissions.
type fakeSubmitter struct {
	// dests stores submitted destinations.
	dests []work.Destination
	// err is returned from Submit when set.
	err error
}

func (f *fakeSubmitter) Submit(_ context.Context, dest work.Destination, _ []byte) error {
	if f.err != nil {
		return f.err
	}

	f.dests = append(f.dests, dest)

	return nil
}

// testPolicy builds a TaskPolicy for the scheduler tests.
func testPolicy(sub Submitter) *TaskPolicy {
	return &TaskPolicy{
		TaskName:    "poll-feeds",
		Spec:        "@every 1h",
		Age:         time.Hour,
		Destination: work.Destination{Action: "poll-feeds"},
		Dispatcher:  sub,
	}
}

// schedulerAt returns a scheduler whose clock is pinned to now.
func schedulerAt(store Store, fac Facility, now time.Time) *Scheduler {
	s := NewScheduler(store, fac)
	s.now = func() time.Time { return now }

	return s
}

// TestScheduler_ArmsWhenNeverFired verifies a task with no persisted fire
// time is armed regardless of force.
func TestScheduler_ArmsWhenNeverFired(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	fac := new(fakeFacility)
	s := NewScheduler(store, fac)

	armed, err := s.Schedule(context.Background(), testPolicy(nil), false)

	require.NoError(t, err)
	require.True(t, armed)
	require.Equal(t, 1, fac.arms)
}

// TestScheduler_FreshTimestampIsNoOp verifies a recent fire suppresses the
// arm unless forced.
func TestScheduler_FreshTimestampIsNoOp(t *testing.T) {
	t.Parallel()

	now := time.Now()

	store := newMemoryStore()
	store.times["poll-feeds"] = now.Add(-30 * time.Minute)

	fac := new(fakeFacility)
	s := schedulerAt(store, fac, now)

	armed, err := s.Schedule(context.Background(), testPolicy(nil), false)

	require.NoError(t, err)
	require.False(t, armed)
	require.Equal(t, 0, fac.arms)

	// Force overrides freshness.
	armed, err = s.Schedule(context.Background(), testPolicy(nil), true)

	require.NoError(t, err)
	require.True(t, armed)
	require.Equal(t, 1, fac.arms)
}

// TestScheduler_StaleTimestampArms verifies a fire older than the maximum
// age triggers a re-arm.
func TestScheduler_StaleTimestampArms(t *testing.T) {
	t.Parallel()

	now := time.Now()

	store := newMemoryStore()
	store.times["poll-feeds"] = now.Add(-2 * time.Hour)

	fac := new(fakeFacility)
	s := schedulerAt(store, fac, now)

	armed, err := s.Schedule(context.Background(), testPolicy(nil), false)

	require.NoError(t, err)
	require.True(t, armed)
	require.Equal(t, 1, fac.arms)
}

// TestScheduler_ClockBackwardIsNotStale verifies a last fire in the future
// does not re-arm unless forced.
func TestScheduler_ClockBackwardIsNotStale(t *testing.T) {
	t.Parallel()

	now := time.Now()

	store := newMemoryStore()
	store.times["poll-feeds"] = now.Add(3 * time.Hour)

	fac := new(fakeFacility)
	s := schedulerAt(store, fac, now)

	armed, err := s.Schedule(context.Background(), testPolicy(nil), false)

	require.NoError(t, err)
	require.False(t, armed)

	armed, err = s.Schedule(context.Background(), testPolicy(nil), true)

	require.NoError(t, err)
	require.True(t, armed)
}

// TestScheduler_StoreErrorSurfaces verifies a store failure aborts the
// scheduling call.
func TestScheduler_StoreErrorSurfaces(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.loadErr = errTestStore

	s := NewScheduler(store, new(fakeFacility))

	_, err := s.Schedule(context.Background(), testPolicy(nil), false)

	require.ErrorIs(t, err, errTestStore)
}

// TestScheduler_FireRecordsTimestampThenSubmits verifies the fire callback
// persists the fire time before submitting the work.
func TestScheduler_FireRecordsTimestampThenSubmits(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)

	store := newMemoryStore()
	fac := new(fakeFacility)
	sub := new(fakeSubmitter)
	s := schedulerAt(store, fac, now)

	armed, err := s.Schedule(context.Background(), testPolicy(sub), false)

	require.NoError(t, err)
	require.True(t, armed)
	require.NotNil(t, fac.fire)

	fac.fire()

	require.Equal(t, now, store.times["poll-feeds"])
	require.Len(t, sub.dests, 1)
	require.Equal(t, "poll-feeds", sub.dests[0].Action)

	// Armed but not yet fired tasks keep re-arming: the timestamp only moves
	// on fire, so a second non-forced call right after firing is a no-op.
	armed, err = s.Schedule(context.Background(), testPolicy(sub), false)

	require.NoError(t, err)
	require.False(t, armed)
}

// TestScheduler_RearmsBeforeFirstFire documents the persisted-on-fire quirk:
// non-forced scheduling keeps arming until the alarm actually fires.
func TestScheduler_RearmsBeforeFirstFire(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	fac := new(fakeFacility)
	s := NewScheduler(store, fac)

	for i := 0; i < 3; i++ {
		armed, err := s.Schedule(context.Background(), testPolicy(nil), false)
		require.NoError(t, err)
		require.True(t, armed)
	}

	require.Equal(t, 3, fac.arms)
}

// TestScheduler_FireSubmitFailureIsLoggedOnly verifies a submit failure in
// the callback still records the fire time.
func TestScheduler_FireSubmitFailureIsLoggedOnly(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)

	store := newMemoryStore()
	fac := new(fakeFacility)
	sub := &fakeSubmitter{err: errTestSubmit}
	s := schedulerAt(store, fac, now)

	_, err := s.Schedule(context.Background(), testPolicy(sub), true)
	require.NoError(t, err)

	require.NotPanics(t, fac.fire)
	require.Equal(t, now, store.times["poll-feeds"])
}

// TestScheduler_CancelClearsStateAndIsIdempotent verifies cancel always
// requests facility cancellation and resets the task to never fired.
func TestScheduler_CancelClearsStateAndIsIdempotent(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.times["poll-feeds"] = time.Now()

	fac := new(fakeFacility)
	s := NewScheduler(store, fac)

	require.NoError(t, s.Cancel(context.Background(), "poll-feeds"))
	require.Equal(t, 1, fac.cancels)

	last, err := store.LastAlarm(context.Background(), "poll-feeds")
	require.NoError(t, err)
	require.True(t, last.IsZero())

	// Second cancel: same end state.
	require.NoError(t, s.Cancel(context.Background(), "poll-feeds"))
	require.Equal(t, 2, fac.cancels)

	last, err = store.LastAlarm(context.Background(), "poll-feeds")
	require.NoError(t, err)
	require.True(t, last.IsZero())
}
