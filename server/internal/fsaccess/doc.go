// Package fsaccess performs the read-only filesystem queries the bridge
// exposes: exists, readTextFile and listDir.
//
// Accessor is the port the dispatcher depends on. OS implements it against
// the real filesystem; Timeout wraps any Accessor with a per-call deadline
// that can be changed at runtime.
//
// "Not found" is an ordinary false result for Exists. Every other failure,
// including a timeout or a file that is not valid UTF-8, is returned as an
// error.
package fsaccess
