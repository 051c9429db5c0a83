// Package ws implements the WebSocket IPC channel between the UI and the
// host bridge.
//
// New(state) creates a Hub. Hub.ServeHTTP upgrades a connection; from then on
// each text frame the client sends is decoded as one request envelope,
// dispatched, and answered with one response envelope on the same
// connection. Frames of one connection are handled in order.
//
//	-> {"id":"7","cmd":"host.fs.exists","payload":{"path":"/tmp"},"meta":{"source":"ui"}}
//	<- {"id":"7","ok":true,"data":{"exists":true}}
//
// A frame that is not a JSON envelope gets an INVALID_REQUEST
// "malformed request" reply with an empty id. Hub.Run(ctx) blocks until ctx
// is cancelled, then closes all active connections. The endpoint is mounted
// at /ws/ipc by the host binary.
package ws
