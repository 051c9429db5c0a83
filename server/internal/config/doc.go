// Package config loads and watches the host configuration file
// (hostbridge.yaml).
//
// Top-level types:
//   - Config{Bridge} - full config tree parsed from YAML
//   - BridgeConfig - host, http_port, grpc_port, auth, store, fs, log
//   - AuthConfig - mode (apikey|none), key_env, header; Key() resolves the
//     expected key from the environment
//   - StoreConfig - capacity of the in-memory store
//   - FSConfig - per-call filesystem timeout (0 disables it)
//   - LogConfig - level (debug|info|warn|error)
//
// Load(path) reads the YAML file, applies defaults (127.0.0.1, ports
// 8790/50061, capacity 1000, no fs timeout, info logging), then validates.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. A reload that fails to parse or
// validate is logged and skipped.
package config
