// Package work defines the data model shared by the dispatch pipeline:
// the Destination that names who should handle a unit of work, and the
// Item that travels through the delivery queue.
package work
