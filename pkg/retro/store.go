package retro

import (
	"sync"

	"github.com/dyluth/retro/pkg/channel"
)

// Store owns the ideas collection and funnels every mutation through a
// single dispatch point. Dispatch applies the reducer atomically, so no
// locking is needed anywhere else: concurrent dispatches serialize on
// the store's mutex and each one sees the previous action's result.
type Store struct {
	mu    sync.Mutex
	ideas []Idea
}

// NewStore creates a store with an empty ideas collection.
func NewStore() *Store {
	return &Store{}
}

// Dispatch applies an action through the reducer.
// Safe for concurrent use.
func (s *Store) Dispatch(action Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ideas = Reduce(s.ideas, action)
}

// Ideas returns a snapshot copy of the current collection.
// The caller may retain or modify the returned slice freely.
func (s *Store) Ideas() []Idea {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Idea, len(s.ideas))
	copy(out, s.ideas)
	return out
}

// Thunk is a deferred side-effecting operation: it pushes on the channel
// and dispatches optimistic or corrective actions based on the push
// outcome. Thunks never block on the channel round-trip and never return
// errors; every failure is represented as dispatched state. The push
// handle is returned so callers that want to observe the outcome (the
// CLI does) can register their own callbacks.
type Thunk func(dispatch func(Action), getState func() []Idea, ch channel.Channel) *channel.Push

// Run executes a thunk against this store and the given channel.
func (s *Store) Run(t Thunk, ch channel.Channel) *channel.Push {
	return t(s.Dispatch, s.Ideas, ch)
}
