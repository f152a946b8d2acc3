package retro

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidIdeaBody(t *testing.T) {
	t.Run("rejects the empty body", func(t *testing.T) {
		assert.False(t, ValidIdeaBody(""))
	})

	t.Run("rejects whitespace-only bodies", func(t *testing.T) {
		assert.False(t, ValidIdeaBody("   \t\n  "))
	})

	t.Run("accepts a body of exactly 255 characters", func(t *testing.T) {
		assert.True(t, ValidIdeaBody(strings.Repeat("a", 255)))
	})

	t.Run("rejects a body of 256 characters", func(t *testing.T) {
		assert.False(t, ValidIdeaBody(strings.Repeat("a", 256)))
	})

	t.Run("counts characters, not bytes", func(t *testing.T) {
		// 255 multi-byte characters stay within the limit.
		assert.True(t, ValidIdeaBody(strings.Repeat("é", 255)))
	})

	t.Run("accepts a body with surrounding whitespace", func(t *testing.T) {
		assert.True(t, ValidIdeaBody("  redundant tests   "))
	})
}

func TestValidateIdeaBody(t *testing.T) {
	t.Run("describes the empty case", func(t *testing.T) {
		err := ValidateIdeaBody(" ")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "empty")
	})

	t.Run("describes the over-length case", func(t *testing.T) {
		err := ValidateIdeaBody(strings.Repeat("a", 300))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "300")
		assert.Contains(t, err.Error(), "255")
	})

	t.Run("passes a valid body", func(t *testing.T) {
		assert.NoError(t, ValidateIdeaBody("keep the demos"))
	})
}

func TestStageValidate(t *testing.T) {
	t.Run("accepts known stages", func(t *testing.T) {
		for _, s := range []Stage{StageIdeaGeneration, StageActionItems, StageVoting, StageClosed} {
			assert.NoError(t, s.Validate())
		}
	})

	t.Run("rejects unknown stages", func(t *testing.T) {
		err := Stage("lunch_break").Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "lunch_break")
	})
}

func TestIdeaPatchApply(t *testing.T) {
	t.Run("merges only non-nil fields", func(t *testing.T) {
		idea := Idea{ID: 1, Body: "old", Category: "happy", UserID: 2}
		body := "new"

		out := IdeaPatch{Body: &body}.Apply(idea)

		assert.Equal(t, "new", out.Body)
		assert.Equal(t, "happy", out.Category)
		assert.Equal(t, 2, out.UserID)
	})

	t.Run("empty patch is the identity", func(t *testing.T) {
		idea := Idea{ID: 1, Body: "unchanged", UserID: 2}
		assert.Equal(t, idea, IdeaPatch{}.Apply(idea))
	})

	t.Run("sets the assignee", func(t *testing.T) {
		assignee := 7
		out := IdeaPatch{AssigneeID: &assignee}.Apply(Idea{ID: 1, Body: "x"})
		assert.NotNil(t, out.AssigneeID)
		assert.Equal(t, 7, *out.AssigneeID)
	})
}
