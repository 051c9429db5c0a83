// Package store holds the host's in-memory key/value store: a string map with
// a fixed capacity and insertion-order FIFO eviction. Updating an existing
// key refreshes its value but not its age. Nothing is persisted.
package store
