// Package dispatch is the bridge's single entry point. Dispatch validates a
// request envelope, routes it over the closed command enumeration to one
// handler, and always returns a response envelope: failures are data, never
// panics or Go errors crossing the boundary.
//
// Routing order:
//
//  1. id, cmd and meta.source must be non-blank, else INVALID_REQUEST.
//  2. cmd is parsed into a types.Command; anything unknown is UNSUPPORTED.
//  3. The handler decodes its payload fields (INVALID_REQUEST when missing or
//     not a string) and calls the filesystem accessor or the store.
package dispatch
