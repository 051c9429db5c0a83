package main

import (
	"bytes"
	"encoding/json"
	"net"
	"testing"

	"google.golang.org/grpc"

	"github.com/obsidianstack/hostbridge/pkg/bridgerpc"
	"github.com/obsidianstack/hostbridge/server/internal/app"
	"github.com/obsidianstack/hostbridge/server/internal/auth"
	"github.com/obsidianstack/hostbridge/server/internal/fsaccess"
	"github.com/obsidianstack/hostbridge/server/internal/receiver"
)

// startHost serves the bridge on a random loopback port and returns its address.
func startHost(t *testing.T, apiKey string) string {
	t.Helper()
	st := app.New(10, fsaccess.WithTimeout(fsaccess.NewOS(), 0))
	mode := "none"
	if apiKey != "" {
		mode = "apikey"
	}
	srv := grpc.NewServer(grpc.UnaryInterceptor(auth.APIKeyInterceptor(mode, "x-api-key", apiKey)))
	bridgerpc.RegisterBridgeServer(srv, receiver.New(st))

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go srv.Serve(lis) //nolint:errcheck
	t.Cleanup(srv.Stop)
	return lis.Addr().String()
}

func call(t *testing.T, args ...string) (code int, stdout map[string]interface{}, stderr string) {
	t.Helper()
	var out, errb bytes.Buffer
	code = run(args, &out, &errb)
	if out.Len() > 0 {
		if err := json.Unmarshal(out.Bytes(), &stdout); err != nil {
			t.Fatalf("stdout is not JSON: %v (%s)", err, out.String())
		}
	}
	return code, stdout, errb.String()
}

func TestRun_StoreRoundTrip(t *testing.T) {
	addr := startHost(t, "")

	code, out, errs := call(t, "-addr", addr, "-cmd", "host.store.set", "-payload", `{"key":"k","value":"v"}`)
	if code != 0 {
		t.Fatalf("set: exit %d, stderr %s", code, errs)
	}
	if out["ok"] != true {
		t.Errorf("set: got %v", out)
	}

	code, out, _ = call(t, "-addr", addr, "-cmd", "host.store.get", "-payload", `{"key":"k"}`, "-id", "g1")
	if code != 0 {
		t.Fatalf("get: exit %d", code)
	}
	if out["id"] != "g1" {
		t.Errorf("id: got %v, want g1", out["id"])
	}
	data, _ := out["data"].(map[string]interface{})
	if data["value"] != "v" {
		t.Errorf("value: got %v, want v", data["value"])
	}
}

func TestRun_ErrorEnvelopeExitsOne(t *testing.T) {
	addr := startHost(t, "")
	code, out, _ := call(t, "-addr", addr, "-cmd", "host.shell.exec")
	if code != 1 {
		t.Errorf("exit: got %d, want 1", code)
	}
	errBody, _ := out["error"].(map[string]interface{})
	if errBody["code"] != "UNSUPPORTED" {
		t.Errorf("code: got %v, want UNSUPPORTED", errBody["code"])
	}
}

func TestRun_APIKeyFromEnv(t *testing.T) {
	addr := startHost(t, "secret")

	if code, _, _ := call(t, "-addr", addr, "-cmd", "host.store.get", "-payload", `{"key":"k"}`, "-key-env", "HBCALL_TEST_KEY"); code != 2 {
		t.Errorf("without key: exit %d, want 2", code)
	}

	t.Setenv("HBCALL_TEST_KEY", "secret")
	if code, _, errs := call(t, "-addr", addr, "-cmd", "host.store.get", "-payload", `{"key":"k"}`, "-key-env", "HBCALL_TEST_KEY"); code != 0 {
		t.Errorf("with key: exit %d, stderr %s", code, errs)
	}
}

func TestRun_UsageErrors(t *testing.T) {
	cases := map[string][]string{
		"missing cmd":  {},
		"bad payload":  {"-cmd", "host.store.get", "-payload", "{nope"},
		"unknown flag": {"-bogus"},
		"unreachable":  {"-addr", "127.0.0.1:1", "-cmd", "host.store.get", "-timeout", "500ms"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			if code, _, _ := call(t, args...); code != 2 {
				t.Errorf("exit: got %d, want 2", code)
			}
		})
	}
}
