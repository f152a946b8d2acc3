// Package form owns the transient edit state for a single idea: the live
// body buffer, category and assignee selections, and the validity derived
// from them. State is seeded from the target idea on construction and
// discarded on submit or cancel; it is never shared between editors.
package form

import (
	"strings"

	"github.com/dyluth/retro/pkg/channel"
	"github.com/dyluth/retro/pkg/retro"
)

// Editor is the edit form for one idea. Validation is recomputed
// synchronously on every change; there is no debounce. Every qualifying
// event push is fire-and-forget: the editor never blocks on a reply.
type Editor struct {
	idea        retro.Idea
	stage       retro.Stage
	currentUser retro.User
	users       []retro.User
	ch          channel.Channel

	body       string
	category   string
	assigneeID *int
}

// NewEditor seeds the edit state from the idea's current fields.
// An idea without a body is treated as an empty buffer.
func NewEditor(idea retro.Idea, stage retro.Stage, currentUser retro.User, users []retro.User, ch channel.Channel) *Editor {
	return &Editor{
		idea:        idea,
		stage:       stage,
		currentUser: currentUser,
		users:       users,
		ch:          ch,
		body:        idea.Body,
		category:    idea.Category,
		assigneeID:  idea.AssigneeID,
	}
}

// Body returns the live edit buffer.
func (e *Editor) Body() string {
	return e.body
}

// Category returns the currently selected category.
func (e *Editor) Category() string {
	return e.category
}

// AssigneeID returns the currently selected assignee, nil if none.
func (e *Editor) AssigneeID() *int {
	return e.assigneeID
}

// IsValid reports whether the buffer is submittable: non-empty after
// trimming and at most retro.MaxIdeaBodyLength characters.
func (e *Editor) IsValid() bool {
	return retro.ValidIdeaBody(e.body)
}

// ShowsError reports whether the inline validation indicator is visible.
// It tracks validity exactly: invalid buffer, visible error.
func (e *Editor) ShowsError() bool {
	return !e.IsValid()
}

// ShowsCategorySelect reports whether the category selector is exposed.
// It is hidden entirely during the action-items stage.
func (e *Editor) ShowsCategorySelect() bool {
	return e.stage != retro.StageActionItems
}

// ShowsAssigneeSelect reports whether the assignee selector is exposed.
// Only the action-items stage assigns owners.
func (e *Editor) ShowsAssigneeSelect() bool {
	return e.stage == retro.StageActionItems
}

// AssigneeOptions returns the selectable assignees: all collaborators,
// in the order given at construction.
func (e *Editor) AssigneeOptions() []retro.User {
	out := make([]retro.User, len(e.users))
	copy(out, e.users)
	return out
}

// OnBodyChange updates the buffer and recomputes validity. If the
// current user is the facilitator, the exact new buffer is broadcast as
// a live-edit preview on every change, regardless of validity.
func (e *Editor) OnBodyChange(newText string) {
	e.body = newText
	if e.currentUser.IsFacilitator {
		e.ch.Push(retro.EventIdeaLiveEdit, retro.LiveEditPayload{
			ID:           e.idea.ID,
			LiveEditText: newText,
		})
	}
}

// OnCategoryChange updates the category selection. Ignored during the
// action-items stage, where the selector is not exposed.
func (e *Editor) OnCategoryChange(newCategory string) {
	if !e.ShowsCategorySelect() {
		return
	}
	e.category = newCategory
}

// OnAssigneeChange updates the assignee selection. Ignored outside the
// action-items stage, where the selector is not exposed.
func (e *Editor) OnAssigneeChange(newAssigneeID int) {
	if !e.ShowsAssigneeSelect() {
		return
	}
	e.assigneeID = &newAssigneeID
}

// Submit commits the edit: it pushes idea_edited with the trimmed body
// and current selections. A guarded no-op returning nil whenever the
// buffer is invalid; otherwise returns the push handle.
func (e *Editor) Submit() *channel.Push {
	if !e.IsValid() {
		return nil
	}
	return e.ch.Push(retro.EventIdeaEdited, retro.EditPayload{
		ID:         e.idea.ID,
		Body:       strings.TrimSpace(e.body),
		Category:   e.category,
		AssigneeID: e.assigneeID,
	})
}

// Cancel abandons the edit, notifying other participants. Always pushes,
// regardless of buffer validity.
func (e *Editor) Cancel() *channel.Push {
	return e.ch.Push(retro.EventIdeaEditStateDisabled, retro.EditStateDisabledPayload{
		ID: e.idea.ID,
	})
}
