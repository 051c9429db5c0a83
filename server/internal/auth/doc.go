// Package auth enforces the API key shared between the host and its UI on
// every transport.
//
// APIKeyInterceptor(mode, header, key) returns a gRPC UnaryServerInterceptor
// that validates the key from the named gRPC metadata header.
// Middleware(mode, header, key, next) does the same for HTTP and WebSocket
// upgrade requests, reading the header or, for browser WebSocket clients that
// cannot set headers, the api_key query parameter.
//
// When mode != "apikey" or key == "", all calls pass through (useful for local
// development with auth disabled).
package auth
