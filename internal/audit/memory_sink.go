package audit

import (
	"context"
	"sync"

	"go-pos-ledger/internal/model"
)

// MemorySink keeps the most recent entries. They are exported in the
// snapshot's logs array and served to the audit log screen.
type MemorySink struct {
	mu      sync.RWMutex
	limit   int
	entries []model.LogEntry // oldest first
}

func NewMemorySink(limit int) *MemorySink {
	if limit <= 0 {
		limit = 1000
	}
	return &MemorySink{limit: limit}
}

func (s *MemorySink) Name() string { return "memory" }

func (s *MemorySink) Write(_ context.Context, entry model.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entry)
	if over := len(s.entries) - s.limit; over > 0 {
		s.entries = append(s.entries[:0:0], s.entries[over:]...)
	}
	return nil
}

// Seed loads entries from a snapshot, given newest first.
func (s *MemorySink) Seed(newestFirst []model.LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = s.entries[:0]
	for i := len(newestFirst) - 1; i >= 0; i-- {
		s.entries = append(s.entries, newestFirst[i])
	}
	if over := len(s.entries) - s.limit; over > 0 {
		s.entries = s.entries[over:]
	}
}

// Entries returns the retained entries, newest first.
func (s *MemorySink) Entries() []model.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.LogEntry, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		out = append(out, s.entries[i])
	}
	return out
}
