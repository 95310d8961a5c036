// Package daemon wires the wakeful pipeline into a long-running process:
// it loads the YAML settings, builds the wake lock, resolver registry,
// delivery queue, dispatcher, executor and alarm scheduler, registers one
// command-running work function per configured task, schedules the tasks and
// consumes the queue until the process is signaled to stop.
package daemon
