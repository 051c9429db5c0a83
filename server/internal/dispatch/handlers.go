package dispatch

import (
	"context"
	"errors"
	"log/slog"

	"github.com/obsidianstack/hostbridge/pkg/types"
	"github.com/obsidianstack/hostbridge/server/internal/app"
	"github.com/obsidianstack/hostbridge/server/internal/store"
)

// --- filesystem --------------------------------------------------------------

func fsExists(ctx context.Context, st *app.State, req *types.Request) *types.Response {
	path, ok := decodePayload(req.Payload).str("path")
	if !ok {
		return types.InvalidField(req.ID, "path")
	}
	exists, err := st.FS.Exists(ctx, path)
	if err != nil {
		return fsError(req, path, err)
	}
	return types.OK(req.ID, types.ExistsData{Exists: exists})
}

func fsReadTextFile(ctx context.Context, st *app.State, req *types.Request) *types.Response {
	path, ok := decodePayload(req.Payload).str("path")
	if !ok {
		return types.InvalidField(req.ID, "path")
	}
	text, err := st.FS.ReadTextFile(ctx, path)
	if err != nil {
		return fsError(req, path, err)
	}
	return types.OK(req.ID, types.TextData{Text: text})
}

func fsListDir(ctx context.Context, st *app.State, req *types.Request) *types.Response {
	path, ok := decodePayload(req.Payload).str("path")
	if !ok {
		return types.InvalidField(req.ID, "path")
	}
	entries, err := st.FS.ListDir(ctx, path)
	if err != nil {
		return fsError(req, path, err)
	}
	if entries == nil {
		entries = []string{}
	}
	return types.OK(req.ID, types.EntriesData{Entries: entries})
}

// fsError logs the underlying cause and returns the generic FS_ERROR.
func fsError(req *types.Request, path string, err error) *types.Response {
	slog.Warn("dispatch: filesystem call failed",
		"id", req.ID, "cmd", req.Command, "path", path, "err", err)
	return types.Fail(req.ID, types.CodeFSError, types.MsgFSError)
}

// --- store -------------------------------------------------------------------

func storeGet(st *app.State, req *types.Request) *types.Response {
	key, ok := decodePayload(req.Payload).str("key")
	if !ok {
		return types.InvalidField(req.ID, "key")
	}
	v, found, err := st.Store.Get(key)
	if err != nil {
		return storeError(req, err)
	}
	data := types.ValueData{}
	if found {
		data.Value = &v
	}
	return types.OK(req.ID, data)
}

func storeSet(st *app.State, req *types.Request) *types.Response {
	p := decodePayload(req.Payload)
	key, ok := p.str("key")
	if !ok {
		return types.InvalidField(req.ID, "key")
	}
	value, ok := p.str("value")
	if !ok {
		return types.InvalidField(req.ID, "value")
	}
	if err := st.Store.Set(key, value); err != nil {
		return storeError(req, err)
	}
	return types.OK(req.ID, types.SetData{OK: true})
}

func storeError(req *types.Request, err error) *types.Response {
	if !errors.Is(err, store.ErrUnavailable) {
		slog.Error("dispatch: unexpected store error", "id", req.ID, "err", err)
	}
	return types.Fail(req.ID, types.CodeInvalidRequest, types.MsgStoreUnavailable)
}
