// Package dedup tracks catalog titles already handled in the current run so
// repeated listing entries are ingested once.
package dedup

import (
	"strings"
	"sync"
)

// Set is a concurrency-safe collection of titles seen so far. Titles are
// compared case-sensitively after trimming surrounding whitespace.
type Set struct {
	mu    sync.Mutex
	known map[string]struct{}
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{known: make(map[string]struct{})}
}

// Seed marks titles as already handled, typically from a previous run's
// journal when resuming.
func (s *Set) Seed(titles []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, title := range titles {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		s.known[title] = struct{}{}
	}
}

// MarkIfNew records the title and reports whether it was unseen. A false
// return means the title was already handled and should be skipped.
func (s *Set) MarkIfNew(title string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.known[title]; ok {
		return false
	}
	s.known[title] = struct{}{}
	return true
}

// Seen reports whether the title was already recorded.
func (s *Set) Seen(title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.known[strings.TrimSpace(title)]
	return ok
}

// Len returns the number of recorded titles.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.known)
}
