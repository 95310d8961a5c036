package alarms

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
)

// Facility is the external timer: arm a named trigger, cancel a named
// trigger. Canceling a trigger that was never armed must be a no-op.
type Facility interface {
	Arm(name, spec string, fire func()) error
	Cancel(name string) error
}

// CronFacility implements Facility on top of an in-process cron runner.
// Specs accept five-field cron expressions and descriptors like
// "@every 15m". Re-arming a name replaces its previous trigger.
type CronFacility struct {
	// runner executes the registered triggers.
	runner *cron.Cron
	// mu guards entries.
	mu sync.Mutex
	// entries maps a task name to its cron entry.
	entries map[string]cron.EntryID
}

// NewCronFacility creates a stopped facility; call Start to begin firing.
func NewCronFacility() *CronFacility {
	parser := cron.NewParser(
		cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)

	return &CronFacility{
		runner:  cron.New(cron.WithParser(parser)),
		entries: make(map[string]cron.EntryID),
	}
}

// Start begins firing armed triggers.
func (f *CronFacility) Start() {
	f.runner.Start()
}

// Stop stops firing and waits for a running trigger callback to return.
func (f *CronFacility) Stop() {
	<-f.runner.Stop().Done()
}

// Arm registers the trigger under the given name, replacing any previous
// registration for that name.
func (f *CronFacility) Arm(name, spec string, fire func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if existing, ok := f.entries[name]; ok {
		f.runner.Remove(existing)
		delete(f.entries, name)
	}

	id, err := f.runner.AddFunc(spec, fire)
	if err != nil {
		return fmt.Errorf("arm %q with spec %q: %w", name, spec, err)
	}

	f.entries[name] = id

	return nil
}

// Cancel removes the named trigger. Unknown names are a no-op.
func (f *CronFacility) Cancel(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if id, ok := f.entries[name]; ok {
		f.runner.Remove(id)
		delete(f.entries, name)
	}

	return nil
}
