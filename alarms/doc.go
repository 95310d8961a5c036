// Package alarms decides when a named periodic task needs its timer
// (re)armed, based on a persisted last-fire timestamp and a per-task
// maximum age.
//
// Scheduling is idempotent: re-arming is a no-op unless the task never
// fired, the caller forces it, or the last fire is older than the task's
// maximum age. The timestamp is recorded when the alarm fires, not when it
// is armed.
package alarms
