package bridgerpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/obsidianstack/hostbridge/pkg/types"
)

// Client calls a remote BridgeServer.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient wraps an established connection.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Invoke sends req and returns the host's response envelope.
func (c *Client) Invoke(ctx context.Context, req *types.Request, opts ...grpc.CallOption) (*types.Response, error) {
	resp := new(types.Response)
	opts = append(opts, grpc.CallContentSubtype(CodecName))
	if err := c.conn.Invoke(ctx, InvokeMethod, req, resp, opts...); err != nil {
		return nil, err
	}
	return resp, nil
}

// Dial opens a plaintext connection to a host on addr. The bridge listens on
// loopback, so transport security is left to the host boundary.
func Dial(ctx context.Context, addr string) (*grpc.ClientConn, error) {
	return grpc.DialContext(ctx, addr, //nolint:staticcheck // DialContext is kept for grpc 1.62 compat
		grpc.WithTransportCredentials(insecure.NewCredentials()))
}

// WithAPIKey attaches the API key to outgoing calls made with ctx.
// An empty key leaves ctx unchanged.
func WithAPIKey(ctx context.Context, header, key string) context.Context {
	if key == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, header, key)
}
