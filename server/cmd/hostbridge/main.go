package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/obsidianstack/hostbridge/pkg/bridgerpc"
	"github.com/obsidianstack/hostbridge/server/internal/api"
	"github.com/obsidianstack/hostbridge/server/internal/app"
	"github.com/obsidianstack/hostbridge/server/internal/auth"
	"github.com/obsidianstack/hostbridge/server/internal/config"
	"github.com/obsidianstack/hostbridge/server/internal/fsaccess"
	"github.com/obsidianstack/hostbridge/server/internal/receiver"
	"github.com/obsidianstack/hostbridge/server/internal/ws"
)

func main() {
	configPath := flag.String("config", "", "path to config file; built-in defaults when empty")
	flag.Parse()

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("hostbridge starting", "config", *configPath)

	cfg := config.Defaults()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			slog.Error("failed to load config", "err", err)
			os.Exit(1)
		}
	}
	bc := cfg.Bridge
	level.Set(bc.Log.SlogLevel())

	slog.Info("config loaded",
		"host", bc.Host,
		"grpc_port", bc.GRPCPort,
		"http_port", bc.HTTPPort,
		"auth_mode", bc.Auth.Mode,
		"store_capacity", bc.Store.Capacity,
		"fs_timeout", bc.FS.Timeout,
		"log_level", bc.Log.Level,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Application state: the bounded store and the fs accessor live here for
	// the lifetime of the process.
	fs := fsaccess.WithTimeout(fsaccess.NewOS(), bc.FS.Timeout)
	st := app.New(bc.Store.Capacity, fs)

	if *configPath != "" {
		go watchConfig(ctx, *configPath, bc, level, fs)
	}

	// gRPC bridge with optional API key authentication interceptor.
	interceptor := auth.APIKeyInterceptor(bc.Auth.Mode, bc.Auth.EffectiveHeader(), bc.Auth.Key())
	grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(interceptor))
	bridgerpc.RegisterBridgeServer(grpcSrv, receiver.New(st))

	grpcAddr := net.JoinHostPort(bc.Host, fmt.Sprint(bc.GRPCPort))
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		slog.Error("failed to listen on gRPC port", "addr", grpcAddr, "err", err)
		os.Exit(1)
	}

	go func() {
		slog.Info("gRPC bridge listening", "addr", grpcAddr)
		if err := grpcSrv.Serve(lis); err != nil {
			slog.Error("gRPC server stopped", "err", err)
		}
	}()

	// WebSocket IPC hub for the UI.
	hub := ws.New(st)
	go hub.Run(ctx)

	// Combined HTTP server: REST API, metrics and WebSocket IPC on HTTPPort.
	apiHandler := api.New(st, hub)
	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", apiHandler)
	httpMux.Handle("/metrics", apiHandler)
	httpMux.Handle("/ws/ipc", hub)

	httpSrv := &http.Server{
		Addr:              net.JoinHostPort(bc.Host, fmt.Sprint(bc.HTTPPort)),
		Handler:           auth.Middleware(bc.Auth.Mode, bc.Auth.EffectiveHeader(), bc.Auth.Key(), httpMux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("hostbridge shutting down")
	grpcSrv.GracefulStop()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck
}

// watchConfig hot-reloads the config file. Log level and fs timeout apply
// immediately; listener, auth and capacity changes need a restart.
func watchConfig(ctx context.Context, path string, running config.BridgeConfig, level *slog.LevelVar, fs *fsaccess.Timeout) {
	err := config.Watch(ctx, path, func(cfg *config.Config) {
		next := cfg.Bridge

		level.Set(next.Log.SlogLevel())
		fs.SetTimeout(next.FS.Timeout)
		slog.Info("config reloaded", "log_level", next.Log.Level, "fs_timeout", next.FS.Timeout)

		if next.Host != running.Host || next.HTTPPort != running.HTTPPort || next.GRPCPort != running.GRPCPort {
			slog.Warn("listener change requires restart",
				"host", next.Host, "http_port", next.HTTPPort, "grpc_port", next.GRPCPort)
		}
		if next.Store.Capacity != running.Store.Capacity {
			slog.Warn("store capacity change requires restart",
				"running", running.Store.Capacity, "configured", next.Store.Capacity)
		}
		if next.Auth != running.Auth {
			slog.Warn("auth change requires restart")
		}
	})
	if err != nil {
		slog.Error("config watch stopped", "path", path, "err", err)
	}
}
