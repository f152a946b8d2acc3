package retro

import (
	"encoding/json"

	"github.com/dyluth/retro/pkg/channel"
)

// SubmitIdea pushes a creation request for the idea (full payload minus
// id, which the host assigns). If the host rejects the submission, the
// rejection is dispatched so a higher-level collaborator can surface it.
// The committed idea itself arrives later via the idea_committed
// broadcast, not via the reply.
func SubmitIdea(idea Idea) Thunk {
	return func(dispatch func(Action), getState func() []Idea, ch channel.Channel) *channel.Push {
		idea.ID = 0
		push := ch.Push(EventIdeaSubmitted, idea)
		push.Receive(channel.StatusError, func(json.RawMessage) {
			dispatch(Action{Type: ActionIdeaSubmissionRejected})
		})
		return push
	}
}

// SubmitIdeaDeletion pushes a deletion request for the idea and
// optimistically flags it as deletion-in-flight before the round-trip
// resolves. If the host rejects the deletion, or the push times out, the
// flag is rolled back with a corrective dispatch. The rollback fires at
// most once per push.
func SubmitIdeaDeletion(ideaID int) Thunk {
	return func(dispatch func(Action), getState func() []Idea, ch channel.Channel) *channel.Push {
		submitted := true
		dispatch(UpdateIdea(ideaID, IdeaPatch{DeletionSubmitted: &submitted}))

		push := ch.Push(EventIdeaDeleted, ideaID)
		rollback := func(json.RawMessage) {
			dispatch(RejectIdeaDeletion(ideaID))
		}
		push.Receive(channel.StatusError, rollback)
		push.Receive(channel.StatusTimeout, rollback)
		return push
	}
}
