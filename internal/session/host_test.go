package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/retro/pkg/channel"
	"github.com/dyluth/retro/pkg/retro"
)

// setupHost starts a host against miniredis and returns it with a
// connected channel client and a raw events subscription.
func setupHost(t *testing.T) (*Host, *channel.Client, <-chan *redis.Message) {
	mr := miniredis.NewMiniRedis()
	err := mr.Start()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	host, err := NewHost(&redis.Options{Addr: mr.Addr()}, "test-session")
	require.NoError(t, err)
	t.Cleanup(func() { host.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go host.Run(ctx)

	select {
	case <-host.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("host never became ready")
	}

	// Raw subscription to the events channel, established before any
	// pushes so no broadcast can be missed.
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	sub := rdb.Subscribe(ctx, channel.EventsChannel("test-session"))
	t.Cleanup(func() { sub.Close() })
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	client, err := channel.NewClient(&redis.Options{Addr: mr.Addr()}, "test-session", 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return host, client, sub.Channel()
}

// awaitStatus blocks until the push resolves and returns its outcome.
func awaitStatus(t *testing.T, push *channel.Push) (string, json.RawMessage) {
	t.Helper()
	type result struct {
		status  string
		payload json.RawMessage
	}
	done := make(chan result, 3)
	for _, status := range []string{channel.StatusOK, channel.StatusError, channel.StatusTimeout} {
		s := status
		push.Receive(s, func(payload json.RawMessage) {
			done <- result{status: s, payload: payload}
		})
	}
	select {
	case r := <-done:
		return r.status, r.payload
	case <-time.After(3 * time.Second):
		t.Fatal("push never resolved")
		return "", nil
	}
}

// awaitBroadcast reads the next broadcast from the raw events stream.
func awaitBroadcast(t *testing.T, events <-chan *redis.Message) channel.Broadcast {
	t.Helper()
	select {
	case msg := <-events:
		var b channel.Broadcast
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &b))
		return b
	case <-time.After(3 * time.Second):
		t.Fatal("no broadcast arrived")
		return channel.Broadcast{}
	}
}

func TestHostSubmission(t *testing.T) {
	t.Run("assigns ids, trims the body, persists and broadcasts", func(t *testing.T) {
		host, client, events := setupHost(t)
		ctx := context.Background()

		push := client.Push(retro.EventIdeaSubmitted, retro.Idea{Body: "  pair more often  ", Category: "happy", UserID: 3})
		status, _ := awaitStatus(t, push)
		assert.Equal(t, channel.StatusOK, status)

		b := awaitBroadcast(t, events)
		assert.Equal(t, retro.EventIdeaCommitted, b.Event)
		var committed retro.Idea
		require.NoError(t, json.Unmarshal(b.Payload, &committed))
		assert.Equal(t, 1, committed.ID)
		assert.Equal(t, "pair more often", committed.Body)
		assert.Equal(t, "happy", committed.Category)
		assert.Equal(t, 3, committed.UserID)

		ideas, err := host.Snapshot(ctx)
		require.NoError(t, err)
		require.Len(t, ideas, 1)
		assert.Equal(t, committed, ideas[0])
	})

	t.Run("assigns increasing ids in insertion order", func(t *testing.T) {
		host, client, _ := setupHost(t)
		ctx := context.Background()

		for _, body := range []string{"first", "second", "third"} {
			push := client.Push(retro.EventIdeaSubmitted, retro.Idea{Body: body, UserID: 1})
			status, _ := awaitStatus(t, push)
			require.Equal(t, channel.StatusOK, status)
		}

		ideas, err := host.Snapshot(ctx)
		require.NoError(t, err)
		require.Len(t, ideas, 3)
		assert.Equal(t, []int{1, 2, 3}, []int{ideas[0].ID, ideas[1].ID, ideas[2].ID})
		assert.Equal(t, "first", ideas[0].Body)
		assert.Equal(t, "third", ideas[2].Body)
	})

	t.Run("rejects an empty body", func(t *testing.T) {
		host, client, _ := setupHost(t)
		ctx := context.Background()

		push := client.Push(retro.EventIdeaSubmitted, retro.Idea{Body: "   ", UserID: 1})
		status, payload := awaitStatus(t, push)

		assert.Equal(t, channel.StatusError, status)
		assert.Contains(t, string(payload), "empty")

		ideas, err := host.Snapshot(ctx)
		require.NoError(t, err)
		assert.Empty(t, ideas)
	})

	t.Run("rejects an over-length body", func(t *testing.T) {
		_, client, _ := setupHost(t)

		long := make([]byte, 256)
		for i := range long {
			long[i] = 'a'
		}
		push := client.Push(retro.EventIdeaSubmitted, retro.Idea{Body: string(long), UserID: 1})
		status, payload := awaitStatus(t, push)

		assert.Equal(t, channel.StatusError, status)
		assert.Contains(t, string(payload), "255")
	})
}

func TestHostEdit(t *testing.T) {
	t.Run("merges the edit and broadcasts it", func(t *testing.T) {
		host, client, events := setupHost(t)
		ctx := context.Background()

		push := client.Push(retro.EventIdeaSubmitted, retro.Idea{Body: "old body", Category: "sad", UserID: 1})
		status, _ := awaitStatus(t, push)
		require.Equal(t, channel.StatusOK, status)
		awaitBroadcast(t, events) // idea_committed

		assignee := 4
		push = client.Push(retro.EventIdeaEdited, retro.EditPayload{ID: 1, Body: "  new body ", AssigneeID: &assignee})
		status, _ = awaitStatus(t, push)
		assert.Equal(t, channel.StatusOK, status)

		b := awaitBroadcast(t, events)
		assert.Equal(t, retro.EventIdeaEdited, b.Event)

		ideas, err := host.Snapshot(ctx)
		require.NoError(t, err)
		require.Len(t, ideas, 1)
		assert.Equal(t, "new body", ideas[0].Body)
		assert.Equal(t, "sad", ideas[0].Category, "omitted category survives the merge")
		require.NotNil(t, ideas[0].AssigneeID)
		assert.Equal(t, 4, *ideas[0].AssigneeID)
	})

	t.Run("rejects edits to unknown ideas", func(t *testing.T) {
		_, client, _ := setupHost(t)

		push := client.Push(retro.EventIdeaEdited, retro.EditPayload{ID: 404, Body: "ghost"})
		status, payload := awaitStatus(t, push)

		assert.Equal(t, channel.StatusError, status)
		assert.Contains(t, string(payload), "does not exist")
	})
}

func TestHostDeletion(t *testing.T) {
	t.Run("removes the idea and preserves the order of the rest", func(t *testing.T) {
		host, client, events := setupHost(t)
		ctx := context.Background()

		for _, body := range []string{"keep one", "drop me", "keep two"} {
			push := client.Push(retro.EventIdeaSubmitted, retro.Idea{Body: body, UserID: 1})
			status, _ := awaitStatus(t, push)
			require.Equal(t, channel.StatusOK, status)
			awaitBroadcast(t, events)
		}

		push := client.Push(retro.EventIdeaDeleted, 2)
		status, _ := awaitStatus(t, push)
		assert.Equal(t, channel.StatusOK, status)

		b := awaitBroadcast(t, events)
		assert.Equal(t, retro.EventIdeaDeletionCommitted, b.Event)
		assert.JSONEq(t, `{"id":2}`, string(b.Payload))

		ideas, err := host.Snapshot(ctx)
		require.NoError(t, err)
		require.Len(t, ideas, 2)
		assert.Equal(t, "keep one", ideas[0].Body)
		assert.Equal(t, "keep two", ideas[1].Body)
	})

	t.Run("rejects deleting an unknown idea", func(t *testing.T) {
		_, client, _ := setupHost(t)

		push := client.Push(retro.EventIdeaDeleted, 999)
		status, payload := awaitStatus(t, push)

		assert.Equal(t, channel.StatusError, status)
		assert.Contains(t, string(payload), "999 does not exist")
	})
}

func TestHostPassThrough(t *testing.T) {
	t.Run("re-broadcasts live edits without persisting", func(t *testing.T) {
		host, client, events := setupHost(t)
		ctx := context.Background()

		push := client.Push(retro.EventIdeaLiveEdit, retro.LiveEditPayload{ID: 5, LiveEditText: "typing aw"})
		status, _ := awaitStatus(t, push)
		assert.Equal(t, channel.StatusOK, status)

		b := awaitBroadcast(t, events)
		assert.Equal(t, retro.EventIdeaLiveEdit, b.Event)
		assert.JSONEq(t, `{"id":5,"liveEditText":"typing aw"}`, string(b.Payload))

		ideas, err := host.Snapshot(ctx)
		require.NoError(t, err)
		assert.Empty(t, ideas)
	})

	t.Run("re-broadcasts edit cancellations", func(t *testing.T) {
		_, client, events := setupHost(t)

		push := client.Push(retro.EventIdeaEditStateDisabled, retro.EditStateDisabledPayload{ID: 5})
		status, _ := awaitStatus(t, push)
		assert.Equal(t, channel.StatusOK, status)

		b := awaitBroadcast(t, events)
		assert.Equal(t, retro.EventIdeaEditStateDisabled, b.Event)
		assert.JSONEq(t, `{"id":5}`, string(b.Payload))
	})

	t.Run("rejects unknown events", func(t *testing.T) {
		_, client, _ := setupHost(t)

		push := client.Push("idea_teleported", nil)
		status, payload := awaitStatus(t, push)

		assert.Equal(t, channel.StatusError, status)
		assert.Contains(t, string(payload), "unknown event")
	})
}

func TestHostStateRequest(t *testing.T) {
	t.Run("replies with the full snapshot", func(t *testing.T) {
		_, client, events := setupHost(t)

		push := client.Push(retro.EventIdeaSubmitted, retro.Idea{Body: "remember this", UserID: 2})
		status, _ := awaitStatus(t, push)
		require.Equal(t, channel.StatusOK, status)
		awaitBroadcast(t, events)

		push = client.Push(retro.EventRetroState, nil)
		status, payload := awaitStatus(t, push)

		require.Equal(t, channel.StatusOK, status)
		var snapshot retro.RetroStatePayload
		require.NoError(t, json.Unmarshal(payload, &snapshot))
		require.Len(t, snapshot.Ideas, 1)
		assert.Equal(t, "remember this", snapshot.Ideas[0].Body)
	})

	t.Run("feeds a late joiner's store via RequestState", func(t *testing.T) {
		_, client, events := setupHost(t)

		for _, body := range []string{"one", "two"} {
			push := client.Push(retro.EventIdeaSubmitted, retro.Idea{Body: body, UserID: 1})
			status, _ := awaitStatus(t, push)
			require.Equal(t, channel.StatusOK, status)
			awaitBroadcast(t, events)
		}

		store := retro.NewStore()
		push := retro.RequestState(store, client)
		status, _ := awaitStatus(t, push)
		require.Equal(t, channel.StatusOK, status)

		ideas := store.Ideas()
		require.Len(t, ideas, 2)
		assert.Equal(t, "one", ideas[0].Body)
		assert.Equal(t, "two", ideas[1].Body)
	})
}
