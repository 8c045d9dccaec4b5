package dataset

import (
	"sync"
	"time"
)

// Store holds the current harmonized snapshot. Many concurrent readers
// are safe; Swap replaces the whole snapshot at once so in-flight
// requests see either the old or the new contents, never a mix.
type Store struct {
	mu       sync.RWMutex
	snapshot *Snapshot
	swapped  time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{}
}

// Current returns the active snapshot, or nil when none has been loaded
func (s *Store) Current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Swap installs a new snapshot
func (s *Store) Swap(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
	s.swapped = time.Now().UTC()
}

// Loaded reports whether a snapshot is currently available
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot != nil
}

// SwappedAt returns when the current snapshot was installed
func (s *Store) SwappedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.swapped
}
