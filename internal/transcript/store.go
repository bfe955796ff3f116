package transcript

import (
	"sync"
	"time"
)

// Store is an append-only transcript. Turns are assigned gapless
// monotonically increasing ids starting at 1 and are never updated or
// removed. Safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	turns []Turn
	next  TurnID
}

// NewStore creates an empty transcript store.
func NewStore() *Store {
	return &Store{next: 1}
}

// Append assigns the turn its id and timestamp and records it.
func (s *Store) Append(t Turn) TurnID {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = s.next
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	s.next++
	s.turns = append(s.turns, t)
	return t.ID
}

// All returns a copy of every turn in append order.
func (s *Store) All() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Tail returns a copy of the last n turns, or all turns if fewer exist.
func (s *Store) Tail(n int) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n >= len(s.turns) {
		n = len(s.turns)
	}
	if n <= 0 {
		return nil
	}
	out := make([]Turn, n)
	copy(out, s.turns[len(s.turns)-n:])
	return out
}

// Len returns the number of recorded turns.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}
