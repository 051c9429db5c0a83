// Package receiver implements the gRPC hostbridge.v1.Bridge service.
//
// Receiver.Invoke hands every envelope to dispatch.Dispatch against the shared
// application state. Bridge failures are returned inside the response
// envelope with a nil gRPC error; authentication is enforced by the server
// interceptor before Invoke runs.
package receiver
