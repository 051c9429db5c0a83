package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/obsidianstack/hostbridge/pkg/types"
	"github.com/obsidianstack/hostbridge/server/internal/app"
)

// Dispatch serves one request against the shared state st. It blocks until
// the handler returns and never panics.
func Dispatch(ctx context.Context, st *app.State, req *types.Request) (resp *types.Response) {
	if req == nil {
		req = &types.Request{}
	}
	start := time.Now()
	cmd := types.ParseCommand(req.Command)

	defer func() {
		if r := recover(); r != nil {
			slog.Error("dispatch: handler panicked",
				"id", req.ID, "cmd", req.Command, "panic", r)
			resp = types.Fail(req.ID, types.CodeInvalidRequest, types.MsgInternal)
		}
		observe(st, req, cmd, resp, time.Since(start))
	}()

	if !req.Valid() {
		return types.Fail(req.ID, types.CodeInvalidRequest, types.MsgMissingFields)
	}

	switch cmd {
	case types.CommandFsExists:
		return fsExists(ctx, st, req)
	case types.CommandFsReadTextFile:
		return fsReadTextFile(ctx, st, req)
	case types.CommandFsListDir:
		return fsListDir(ctx, st, req)
	case types.CommandStoreGet:
		return storeGet(st, req)
	case types.CommandStoreSet:
		return storeSet(st, req)
	default:
		return types.Fail(req.ID, types.CodeUnsupported, types.MsgUnsupported)
	}
}

func observe(st *app.State, req *types.Request, cmd types.Command, resp *types.Response, d time.Duration) {
	if st != nil && st.Metrics != nil {
		st.Metrics.Observe(cmd.String(), resp.Outcome(), d)
	}
	attrs := []any{
		"id", req.ID,
		"cmd", req.Command,
		"source", req.Meta.Source,
		"ok", resp.OK,
		"duration", d,
	}
	if resp.Error != nil {
		attrs = append(attrs, "code", resp.Error.Code)
	}
	slog.Debug("dispatch: request served", attrs...)
}
