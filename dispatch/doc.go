// Package dispatch moves work items from producers to a single executing
// consumer while the process-wide wake lock stays asserted.
//
// The Dispatcher acquires the lock before handing an item to the delivery
// queue; the Executor re-asserts the lock when an item is redelivered and
// releases it on every exit path of the work function. The Queue is a
// bounded in-memory delivery mechanism that hands items to the executor one
// at a time and redelivers items whose execution failed.
package dispatch
