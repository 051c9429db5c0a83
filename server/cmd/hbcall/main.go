// Command hbcall sends one request envelope to a running hostbridge over gRPC
// and prints the response envelope as JSON.
//
//	hbcall -cmd host.store.set -payload '{"key":"k","value":"v"}'
//	hbcall -addr 127.0.0.1:50061 -cmd host.fs.listDir -payload '{"path":"/tmp"}'
//
// The exit status is 0 when the response is ok, 1 when it carries an error
// envelope, and 2 on usage or transport failures.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/obsidianstack/hostbridge/pkg/bridgerpc"
	"github.com/obsidianstack/hostbridge/pkg/types"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one call and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	fset := flag.NewFlagSet("hbcall", flag.ContinueOnError)
	fset.SetOutput(stderr)
	addr := fset.String("addr", "127.0.0.1:50061", "hostbridge gRPC address")
	cmd := fset.String("cmd", "", "command name, e.g. host.store.get")
	payload := fset.String("payload", "{}", "JSON payload")
	source := fset.String("source", "cli", "caller identity sent as meta.source")
	id := fset.String("id", "", "correlation id; a timestamp when empty")
	header := fset.String("header", "x-api-key", "API key metadata key")
	keyEnv := fset.String("key-env", "HOSTBRIDGE_API_KEY", "environment variable holding the API key")
	timeout := fset.Duration("timeout", 5*time.Second, "call timeout")
	if err := fset.Parse(args); err != nil {
		return 2
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if *cmd == "" {
		fmt.Fprintln(stderr, "hbcall: -cmd is required")
		fset.Usage()
		return 2
	}
	if !json.Valid([]byte(*payload)) {
		fmt.Fprintln(stderr, "hbcall: -payload is not valid JSON")
		return 2
	}
	if *id == "" {
		*id = strconv.FormatInt(time.Now().UnixNano(), 10)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, err := bridgerpc.Dial(ctx, *addr)
	if err != nil {
		slog.Error("dial failed", "addr", *addr, "err", err)
		return 2
	}
	defer conn.Close()

	ctx = bridgerpc.WithAPIKey(ctx, *header, os.Getenv(*keyEnv))
	resp, err := bridgerpc.NewClient(conn).Invoke(ctx, &types.Request{
		ID:      *id,
		Command: *cmd,
		Payload: json.RawMessage(*payload),
		Meta:    types.Meta{Source: *source},
	})
	if err != nil {
		slog.Error("invoke failed", "addr", *addr, "cmd", *cmd, "err", err)
		return 2
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		slog.Error("write response failed", "err", err)
		return 2
	}

	if !resp.OK {
		return 1
	}
	return 0
}
