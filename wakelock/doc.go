// Package wakelock implements a process-wide, reference-counted hold over
// the machine's sleep-inhibition facility.
//
// The Lock lazily creates its underlying Inhibitor exactly once, even under
// concurrent first use, and tolerates a release without a matching acquire
// (logged, never propagated). While at least one acquire is outstanding the
// machine is kept from suspending.
package wakelock
