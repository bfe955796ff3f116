package transcript

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAppendAssignsMonotonicIDs(t *testing.T) {
	s := NewStore()

	id1 := s.Append(NewUserTurn("hello"))
	id2 := s.Append(NewAssistantTurn("hi"))
	id3 := s.Append(NewUserTurn("more"))

	assert.Equal(t, TurnID(1), id1)
	assert.Equal(t, TurnID(2), id2)
	assert.Equal(t, TurnID(3), id3)

	turns := s.All()
	require.Len(t, turns, 3)
	for i, turn := range turns {
		assert.Equal(t, TurnID(i+1), turn.ID)
		assert.False(t, turn.CreatedAt.IsZero())
	}
}

func TestStoreAllReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Append(NewUserTurn("original"))

	turns := s.All()
	turns[0].Content = "mutated"

	assert.Equal(t, "original", s.All()[0].Content)
}

func TestStoreTail(t *testing.T) {
	s := NewStore()
	for i := 0; i < 5; i++ {
		s.Append(NewUserTurn(fmt.Sprintf("turn %d", i)))
	}

	tests := []struct {
		name  string
		n     int
		want  int
		first string
	}{
		{name: "subset", n: 2, want: 2, first: "turn 3"},
		{name: "exact", n: 5, want: 5, first: "turn 0"},
		{name: "more than stored", n: 10, want: 5, first: "turn 0"},
		{name: "zero", n: 0, want: 0},
		{name: "negative", n: -1, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Tail(tt.n)
			assert.Len(t, got, tt.want)
			if tt.want > 0 {
				assert.Equal(t, tt.first, got[0].Content)
			}
		})
	}
}

func TestStoreConcurrentAppend(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Append(NewUserTurn("concurrent"))
		}()
	}
	wg.Wait()

	turns := s.All()
	require.Len(t, turns, 50)
	seen := make(map[TurnID]bool)
	for _, turn := range turns {
		assert.False(t, seen[turn.ID], "duplicate id %d", turn.ID)
		seen[turn.ID] = true
	}
	// Gapless: every id in 1..50 present.
	for i := 1; i <= 50; i++ {
		assert.True(t, seen[TurnID(i)], "missing id %d", i)
	}
}
