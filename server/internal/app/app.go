// Package app holds the host's shared application state: the single value
// created at process start that owns the store and the filesystem accessor
// and is passed by reference to every dispatch.
package app

import (
	"github.com/obsidianstack/hostbridge/server/internal/fsaccess"
	"github.com/obsidianstack/hostbridge/server/internal/metrics"
	"github.com/obsidianstack/hostbridge/server/internal/store"
)

// KV is the store surface the dispatcher needs.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// State is the shared application context.
type State struct {
	Store   KV
	FS      fsaccess.Accessor
	Metrics *metrics.Recorder
}

// New builds the production state: a bounded store of the given capacity and
// the OS accessor behind a timeout layer.
func New(capacity int, fs *fsaccess.Timeout) *State {
	return &State{
		Store:   store.New(capacity),
		FS:      fs,
		Metrics: metrics.New(),
	}
}

// StoreStats reports store gauges when Store is the concrete bounded store.
func (s *State) StoreStats() metrics.StoreStats {
	st, ok := s.Store.(*store.Store)
	if !ok {
		return metrics.StoreStats{}
	}
	return metrics.StoreStats{
		Keys:      st.Len(),
		Capacity:  st.Cap(),
		Evictions: st.Evictions(),
	}
}
