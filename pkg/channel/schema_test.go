package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaKeys(t *testing.T) {
	t.Run("requests channel", func(t *testing.T) {
		assert.Equal(t, "retro:team-a:requests", RequestsChannel("team-a"))
	})

	t.Run("reply channel includes the ref", func(t *testing.T) {
		assert.Equal(t, "retro:team-a:reply:abc-123", ReplyChannel("team-a", "abc-123"))
	})

	t.Run("events channel", func(t *testing.T) {
		assert.Equal(t, "retro:team-a:events", EventsChannel("team-a"))
	})

	t.Run("idea key includes the id", func(t *testing.T) {
		assert.Equal(t, "retro:team-a:idea:42", IdeaKey("team-a", 42))
	})

	t.Run("sequence key", func(t *testing.T) {
		assert.Equal(t, "retro:team-a:idea_seq", IdeaSeqKey("team-a"))
	})

	t.Run("index key", func(t *testing.T) {
		assert.Equal(t, "retro:team-a:idea_index", IdeaIndexKey("team-a"))
	})

	t.Run("sessions are isolated by name", func(t *testing.T) {
		assert.NotEqual(t, RequestsChannel("team-a"), RequestsChannel("team-b"))
	})
}
