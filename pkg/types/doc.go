// Package types defines the wire vocabulary shared by the host and its
// clients: the request and response envelopes, the closed set of bridge
// commands, and the error codes a response may carry.
//
// Envelopes follow the IPC shape used by the UI layer:
//
//	request:  {"id", "cmd", "payload", "meta": {"source"}}
//	response: {"id", "ok", "data"} or {"id", "ok", "error": {"code", "message"}}
package types
