package receiver

import (
	"context"

	"github.com/obsidianstack/hostbridge/pkg/bridgerpc"
	"github.com/obsidianstack/hostbridge/pkg/types"
	"github.com/obsidianstack/hostbridge/server/internal/app"
	"github.com/obsidianstack/hostbridge/server/internal/dispatch"
)

// Receiver implements bridgerpc.BridgeServer.
type Receiver struct {
	state *app.State
}

// New creates a Receiver dispatching against st.
func New(st *app.State) *Receiver {
	return &Receiver{state: st}
}

// Invoke is the unary RPC handler called by bridge clients.
func (r *Receiver) Invoke(ctx context.Context, req *types.Request) (*types.Response, error) {
	return dispatch.Dispatch(ctx, r.state, req), nil
}

var _ bridgerpc.BridgeServer = (*Receiver)(nil)
