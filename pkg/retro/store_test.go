package retro

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	t.Run("starts with an empty collection", func(t *testing.T) {
		store := NewStore()
		assert.Empty(t, store.Ideas())
	})

	t.Run("dispatch applies the reducer", func(t *testing.T) {
		store := NewStore()
		store.Dispatch(AddIdea(Idea{ID: 1, Body: "first", UserID: 2}))
		store.Dispatch(AddIdea(Idea{ID: 2, Body: "second", UserID: 2}))

		ideas := store.Ideas()
		require.Len(t, ideas, 2)
		assert.Equal(t, "first", ideas[0].Body)
		assert.Equal(t, "second", ideas[1].Body)
	})

	t.Run("snapshots are independent of later dispatches", func(t *testing.T) {
		store := NewStore()
		store.Dispatch(AddIdea(Idea{ID: 1, Body: "first", UserID: 2}))

		before := store.Ideas()
		store.Dispatch(DeleteIdea(1))

		require.Len(t, before, 1)
		assert.Empty(t, store.Ideas())
	})

	t.Run("mutating a snapshot does not affect the store", func(t *testing.T) {
		store := NewStore()
		store.Dispatch(AddIdea(Idea{ID: 1, Body: "original", UserID: 2}))

		snapshot := store.Ideas()
		snapshot[0].Body = "tampered"

		assert.Equal(t, "original", store.Ideas()[0].Body)
	})

	t.Run("concurrent dispatches serialize on the dispatch point", func(t *testing.T) {
		store := NewStore()
		var wg sync.WaitGroup
		for i := 1; i <= 50; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				store.Dispatch(AddIdea(Idea{ID: id, Body: "idea", UserID: 1}))
			}(i)
		}
		wg.Wait()

		assert.Len(t, store.Ideas(), 50)
	})

	t.Run("run returns the thunk's push handle", func(t *testing.T) {
		store := NewStore()
		ch := newFakeChannel()

		push := store.Run(SubmitIdea(Idea{Body: "x", UserID: 1}), ch)

		require.NotNil(t, push)
		resolved, _ := push.Resolved()
		assert.False(t, resolved)
	})
}
