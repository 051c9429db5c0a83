package dispatch_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/obsidianstack/hostbridge/pkg/types"
	"github.com/obsidianstack/hostbridge/server/internal/app"
	"github.com/obsidianstack/hostbridge/server/internal/dispatch"
	"github.com/obsidianstack/hostbridge/server/internal/fsaccess"
	"github.com/obsidianstack/hostbridge/server/internal/metrics"
	"github.com/obsidianstack/hostbridge/server/internal/store"
)

// --- test helpers -----------------------------------------------------------

func newState(capacity int) *app.State {
	return app.New(capacity, fsaccess.WithTimeout(fsaccess.NewOS(), 0))
}

func request(id, cmd, source string, payload any) *types.Request {
	req := &types.Request{ID: id, Command: cmd, Meta: types.Meta{Source: source}}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			panic(err)
		}
		req.Payload = b
	}
	return req
}

func call(t *testing.T, st *app.State, cmd string, payload any) *types.Response {
	t.Helper()
	resp := dispatch.Dispatch(context.Background(), st, request("req-1", cmd, "test", payload))
	if resp == nil {
		t.Fatal("Dispatch returned nil response")
	}
	if resp.ID != "req-1" {
		t.Errorf("id: got %q, want req-1", resp.ID)
	}
	return resp
}

// decodeData round-trips resp.Data through JSON into v, the way a client sees it.
func decodeData(t *testing.T, resp *types.Response, v any) {
	t.Helper()
	if !resp.OK {
		t.Fatalf("expected ok response, got error %+v", resp.Error)
	}
	if resp.Error != nil {
		t.Fatalf("ok response carries error %+v", resp.Error)
	}
	b, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		t.Fatalf("unmarshal data: %v (data: %s)", err, b)
	}
}

func wantError(t *testing.T, resp *types.Response, code types.Code, msg string) {
	t.Helper()
	if resp.OK {
		t.Fatalf("expected error %s, got ok with data %+v", code, resp.Data)
	}
	if resp.Data != nil {
		t.Errorf("error response carries data %+v", resp.Data)
	}
	if resp.Error == nil {
		t.Fatal("error response without error body")
	}
	if resp.Error.Code != code {
		t.Errorf("code: got %s, want %s", resp.Error.Code, code)
	}
	if msg != "" && resp.Error.Message != msg {
		t.Errorf("message: got %q, want %q", resp.Error.Message, msg)
	}
}

// --- envelope validation ----------------------------------------------------

func TestDispatch_MissingFields(t *testing.T) {
	st := newState(10)
	cases := []struct {
		name            string
		id, cmd, source string
	}{
		{"empty id", "", types.NameStoreGet, "ui"},
		{"empty cmd", "1", "", "ui"},
		{"empty source", "1", types.NameStoreGet, ""},
		{"blank id", "  ", types.NameStoreGet, "ui"},
		{"blank source", "1", types.NameStoreGet, "\t"},
		{"id and cmd", "", "", "ui"},
		{"cmd and source", "1", "", ""},
		{"all empty", "", "", ""},
		{"unknown cmd still invalid", "", "host.nope", "ui"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := request(tc.id, tc.cmd, tc.source, map[string]string{"key": "k"})
			resp := dispatch.Dispatch(context.Background(), st, req)
			wantError(t, resp, types.CodeInvalidRequest, types.MsgMissingFields)
			if resp.ID != tc.id {
				t.Errorf("id echo: got %q, want %q", resp.ID, tc.id)
			}
		})
	}
}

func TestDispatch_NilRequest(t *testing.T) {
	resp := dispatch.Dispatch(context.Background(), newState(10), nil)
	wantError(t, resp, types.CodeInvalidRequest, types.MsgMissingFields)
}

func TestDispatch_UnknownCommand(t *testing.T) {
	st := newState(10)
	for _, cmd := range []string{"host.fs.writeTextFile", "host.store.delete", "HOST.STORE.GET", "x"} {
		resp := call(t, st, cmd, map[string]string{"key": "k"})
		wantError(t, resp, types.CodeUnsupported, types.MsgUnsupported)
	}
}

// --- store commands ---------------------------------------------------------

func TestStore_RoundTrip(t *testing.T) {
	st := newState(10)

	var set types.SetData
	decodeData(t, call(t, st, types.NameStoreSet, map[string]string{"key": "k", "value": "v"}), &set)
	if !set.OK {
		t.Errorf("set data: got %+v, want ok true", set)
	}

	var got types.ValueData
	decodeData(t, call(t, st, types.NameStoreGet, map[string]string{"key": "k"}), &got)
	if got.Value == nil || *got.Value != "v" {
		t.Errorf("value: got %v, want v", got.Value)
	}
}

func TestStore_GetMissingIsNull(t *testing.T) {
	resp := call(t, newState(10), types.NameStoreGet, map[string]string{"key": "absent"})
	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":"req-1","ok":true,"data":{"value":null}}`
	if string(b) != want {
		t.Errorf("got %s, want %s", b, want)
	}
}

func TestStore_EvictionThroughDispatch(t *testing.T) {
	st := newState(2)
	for _, kv := range [][2]string{{"a", "1"}, {"b", "2"}, {"c", "3"}} {
		call(t, st, types.NameStoreSet, map[string]string{"key": kv[0], "value": kv[1]})
	}

	want := map[string]*string{"a": nil, "b": strPtr("2"), "c": strPtr("3")}
	for k, w := range want {
		var got types.ValueData
		decodeData(t, call(t, st, types.NameStoreGet, map[string]string{"key": k}), &got)
		if diff := cmp.Diff(w, got.Value); diff != "" {
			t.Errorf("get %q mismatch (-want +got):\n%s", k, diff)
		}
	}
}

func TestStore_InvalidPayload(t *testing.T) {
	st := newState(10)
	cases := []struct {
		name    string
		cmd     string
		payload any
		field   string
	}{
		{"get no payload", types.NameStoreGet, nil, "key"},
		{"get missing key", types.NameStoreGet, map[string]string{"k": "x"}, "key"},
		{"get numeric key", types.NameStoreGet, map[string]any{"key": 1}, "key"},
		{"get null key", types.NameStoreGet, map[string]any{"key": nil}, "key"},
		{"get array payload", types.NameStoreGet, []string{"key"}, "key"},
		{"set missing key", types.NameStoreSet, map[string]string{"value": "v"}, "key"},
		{"set missing value", types.NameStoreSet, map[string]string{"key": "k"}, "value"},
		{"set object value", types.NameStoreSet, map[string]any{"key": "k", "value": map[string]int{"n": 1}}, "value"},
		{"set bool value", types.NameStoreSet, map[string]any{"key": "k", "value": true}, "value"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := call(t, st, tc.cmd, tc.payload)
			wantError(t, resp, types.CodeInvalidRequest, "missing or invalid field: "+tc.field)
		})
	}
}

func TestStore_EmptyStringsAreValid(t *testing.T) {
	st := newState(10)
	decodeData(t, call(t, st, types.NameStoreSet, map[string]string{"key": "", "value": ""}), &types.SetData{})

	var got types.ValueData
	decodeData(t, call(t, st, types.NameStoreGet, map[string]string{"key": ""}), &got)
	if got.Value == nil || *got.Value != "" {
		t.Errorf("value: got %v, want empty string", got.Value)
	}
}

// unavailableKV behaves like a poisoned store.
type unavailableKV struct{}

func (unavailableKV) Get(string) (string, bool, error) { return "", false, store.ErrUnavailable }
func (unavailableKV) Set(string, string) error         { return store.ErrUnavailable }

func TestStore_Unavailable(t *testing.T) {
	st := &app.State{Store: unavailableKV{}, FS: fsaccess.NewOS()}

	wantError(t, call(t, st, types.NameStoreGet, map[string]string{"key": "k"}),
		types.CodeInvalidRequest, types.MsgStoreUnavailable)
	wantError(t, call(t, st, types.NameStoreSet, map[string]string{"key": "k", "value": "v"}),
		types.CodeInvalidRequest, types.MsgStoreUnavailable)
}

// panickingKV panics on every call.
type panickingKV struct{}

func (panickingKV) Get(string) (string, bool, error) { panic("get exploded") }
func (panickingKV) Set(string, string) error         { panic("set exploded") }

func TestDispatch_RecoversPanics(t *testing.T) {
	st := &app.State{Store: panickingKV{}, FS: fsaccess.NewOS(), Metrics: metrics.New()}

	resp := call(t, st, types.NameStoreGet, map[string]string{"key": "k"})
	wantError(t, resp, types.CodeInvalidRequest, types.MsgInternal)

	if got := st.Metrics.Count(types.NameStoreGet, string(types.CodeInvalidRequest)); got != 1 {
		t.Errorf("metrics count: got %d, want 1", got)
	}
}

// --- filesystem commands ----------------------------------------------------

func TestFs_Exists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	st := newState(10)

	var got types.ExistsData
	decodeData(t, call(t, st, types.NameFsExists, map[string]string{"path": file}), &got)
	if !got.Exists {
		t.Error("exists: got false, want true")
	}
}

func TestFs_ExistsNotFoundIsOK(t *testing.T) {
	st := newState(10)
	resp := call(t, st, types.NameFsExists, map[string]string{"path": filepath.Join(t.TempDir(), "missing")})

	var got types.ExistsData
	decodeData(t, resp, &got)
	if got.Exists {
		t.Error("exists: got true, want false")
	}
}

func TestFs_ReadTextFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f.txt")
	if err := os.WriteFile(file, []byte("contents"), 0644); err != nil {
		t.Fatal(err)
	}

	var got types.TextData
	decodeData(t, call(t, newState(10), types.NameFsReadTextFile, map[string]string{"path": file}), &got)
	if got.Text != "contents" {
		t.Errorf("text: got %q, want contents", got.Text)
	}
}

func TestFs_ReadTextFileMissing(t *testing.T) {
	resp := call(t, newState(10), types.NameFsReadTextFile, map[string]string{"path": filepath.Join(t.TempDir(), "nope")})
	wantError(t, resp, types.CodeFSError, types.MsgFSError)
}

func TestFs_ListDirSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"beta", "alpha"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	var got types.EntriesData
	decodeData(t, call(t, newState(10), types.NameFsListDir, map[string]string{"path": dir}), &got)
	if diff := cmp.Diff([]string{"alpha", "beta"}, got.Entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestFs_ListDirEmptyEncodesArray(t *testing.T) {
	resp := call(t, newState(10), types.NameFsListDir, map[string]string{"path": t.TempDir()})
	b, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"entries":[]}` {
		t.Errorf("data: got %s", b)
	}
}

func TestFs_ListDirMissing(t *testing.T) {
	resp := call(t, newState(10), types.NameFsListDir, map[string]string{"path": filepath.Join(t.TempDir(), "missing")})
	wantError(t, resp, types.CodeFSError, types.MsgFSError)
}

func TestFs_MissingPath(t *testing.T) {
	st := newState(10)
	for _, cmd := range []string{types.NameFsExists, types.NameFsReadTextFile, types.NameFsListDir} {
		resp := call(t, st, cmd, map[string]int{"path": 3})
		wantError(t, resp, types.CodeInvalidRequest, "missing or invalid field: path")
	}
}

// failingFS returns err for every call.
type failingFS struct{ err error }

func (f failingFS) Exists(context.Context, string) (bool, error)         { return false, f.err }
func (f failingFS) ReadTextFile(context.Context, string) (string, error) { return "", f.err }
func (f failingFS) ListDir(context.Context, string) ([]string, error)    { return nil, f.err }

func TestFs_AccessorErrorsMapToFSError(t *testing.T) {
	for _, err := range []error{errors.New("permission denied"), fsaccess.ErrTimeout} {
		st := &app.State{Store: store.New(1), FS: failingFS{err: err}}
		for _, cmd := range []string{types.NameFsExists, types.NameFsReadTextFile, types.NameFsListDir} {
			resp := call(t, st, cmd, map[string]string{"path": "/x"})
			wantError(t, resp, types.CodeFSError, types.MsgFSError)
		}
	}
}

// --- metrics ----------------------------------------------------------------

func TestDispatch_RecordsMetrics(t *testing.T) {
	st := newState(10)
	call(t, st, types.NameStoreGet, map[string]string{"key": "k"})
	call(t, st, "host.nope", nil)

	if got := st.Metrics.Count(types.NameStoreGet, "ok"); got != 1 {
		t.Errorf("store.get ok: got %d, want 1", got)
	}
	if got := st.Metrics.Count("unknown", string(types.CodeUnsupported)); got != 1 {
		t.Errorf("unknown UNSUPPORTED: got %d, want 1", got)
	}
}

func strPtr(s string) *string { return &s }
