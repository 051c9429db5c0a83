// Package bridgerpc carries bridge envelopes over gRPC without generated
// protobuf code.
//
// The service hostbridge.v1.Bridge has a single unary method, Invoke, whose
// request and response messages are types.Request and types.Response encoded
// by a JSON codec registered under the content-subtype "json". Importing this
// package registers the codec, so both the host and its clients must import
// it.
//
// Server side: RegisterBridgeServer(grpcServer, impl).
// Client side: NewClient(conn).Invoke(ctx, req).
package bridgerpc
