// Package api implements the HTTP surface of the host bridge.
//
// New(state, clients) returns an http.Handler that serves:
//
//	POST /api/v1/invoke  - one request envelope in, one response envelope out
//	GET  /api/v1/health  - status, store size/capacity/evictions, ws clients
//	GET  /metrics        - Prometheus text exposition
//
// Every envelope, failed or not, is returned with 200; bridge errors live in
// the envelope. A body that is not a JSON envelope gets 400 with an
// INVALID_REQUEST envelope. Other methods get 405.
//
// JSON types are defined in types.go. No external HTTP framework is used.
package api
