package store

import (
	"errors"
	"log/slog"
	"sync"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 1000

// ErrUnavailable is returned by every call once a critical section has
// panicked and the store can no longer be trusted.
var ErrUnavailable = errors.New("store unavailable")

// Store is a thread-safe bounded map. All access, reads included, takes the
// same exclusive lock.
//
// order records keys in first-insertion order. It may hold keys that are no
// longer in data; eviction skips and drops them as it scans from the front.
type Store struct {
	mu        sync.Mutex
	data      map[string]string
	order     []string
	cap       int
	evictions uint64
	poisoned  bool
}

// New creates an empty Store holding at most capacity keys.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		data: make(map[string]string),
		cap:  capacity,
	}
}

// Get returns the value for key and whether it was present.
// It does not affect eviction order.
func (s *Store) Get(key string) (string, bool, error) {
	var (
		v  string
		ok bool
	)
	err := s.locked(func() {
		v, ok = s.data[key]
	})
	return v, ok, err
}

// Set inserts or overwrites key. Inserting a new key into a full store
// first evicts the oldest-inserted key still present.
func (s *Store) Set(key, value string) error {
	return s.locked(func() {
		_, exists := s.data[key]
		if !exists && len(s.data) >= s.cap {
			s.evictOldest()
		}
		if !exists {
			s.order = append(s.order, key)
		}
		s.data[key] = value
	})
}

// Len returns the number of keys held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Cap returns the configured capacity.
func (s *Store) Cap() int {
	return s.cap
}

// Evictions returns how many keys have been evicted since the store was created.
func (s *Store) Evictions() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictions
}

// evictOldest pops keys off the front of order until it removes one that is
// still present. Stale keys are dropped permanently, so the total skip work
// is bounded by the number of insertions. Must be called with mu held.
func (s *Store) evictOldest() {
	for len(s.order) > 0 {
		oldest := s.order[0]
		s.order[0] = ""
		s.order = s.order[1:]
		if _, ok := s.data[oldest]; ok {
			delete(s.data, oldest)
			s.evictions++
			return
		}
	}
	// Sequence exhausted without a live key; tolerated as a no-op.
	slog.Warn("store: eviction found no live key", "size", len(s.data), "cap", s.cap)
}

// locked runs fn under the store lock. A panic in fn poisons the store and
// is re-raised after the lock is released.
func (s *Store) locked(fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.poisoned {
		return ErrUnavailable
	}
	defer func() {
		if r := recover(); r != nil {
			s.poisoned = true
			slog.Error("store: critical section panicked, store poisoned", "panic", r)
			panic(r)
		}
	}()
	fn()
	return nil
}
