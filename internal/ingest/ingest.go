package ingest

import (
	"context"
	"sync"
)

// FileResult is the per-file outcome of a directory run.
type FileResult struct {
	Path         string
	HashHex      string
	Deduplicated bool
	Err          string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Sink receives every accepted, not yet seen file.
type Sink func(ctx context.Context, path string) error

// HashSet remembers content hashes so the same bytes are ingested once,
// across directory runs and watcher events alike.
type HashSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewHashSet() *HashSet {
	return &HashSet{seen: make(map[string]struct{})}
}

// Add reports whether h was new.
func (s *HashSet) Add(h string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[h]; ok {
		return false
	}
	s.seen[h] = struct{}{}
	return true
}

// Forget lets h be ingested again, e.g. after its sink failed.
func (s *HashSet) Forget(h string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, h)
}

func (s *HashSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
