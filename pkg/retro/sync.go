package retro

import (
	"encoding/json"

	"github.com/dyluth/retro/pkg/channel"
)

// BindChannel wires host broadcasts into store dispatches so the local
// collection tracks the shared session state:
//
//	idea_committed          -> IDEA_SUBMISSION_COMMITTED
//	idea_edited             -> UPDATE_IDEA (shallow merge)
//	idea_deletion_committed -> IDEA_DELETION_COMMITTED
//
// Malformed payloads are skipped; the store is never left in a partial
// state because each broadcast maps to exactly one dispatched action.
// The initial snapshot (SET_INITIAL_STATE) comes from RequestState.
func BindChannel(store *Store, ch channel.Channel) {
	ch.On(EventIdeaCommitted, func(payload json.RawMessage) {
		var idea Idea
		if err := json.Unmarshal(payload, &idea); err != nil {
			return
		}
		store.Dispatch(AddIdea(idea))
	})

	ch.On(EventIdeaEdited, func(payload json.RawMessage) {
		var edit EditPayload
		if err := json.Unmarshal(payload, &edit); err != nil {
			return
		}
		patch := IdeaPatch{Body: &edit.Body}
		if edit.Category != "" {
			patch.Category = &edit.Category
		}
		if edit.AssigneeID != nil {
			patch.AssigneeID = edit.AssigneeID
		}
		store.Dispatch(UpdateIdea(edit.ID, patch))
	})

	ch.On(EventIdeaDeletionCommitted, func(payload json.RawMessage) {
		var deleted EditStateDisabledPayload
		if err := json.Unmarshal(payload, &deleted); err != nil {
			return
		}
		store.Dispatch(DeleteIdea(deleted.ID))
	})
}

// RequestState asks the host for the full session snapshot and replaces
// the store's collection when the reply arrives. Used on join and after
// reconnects. The returned push is exposed for failure handling.
func RequestState(store *Store, ch channel.Channel) *channel.Push {
	push := ch.Push(EventRetroState, nil)
	push.Receive(channel.StatusOK, func(payload json.RawMessage) {
		var snapshot RetroStatePayload
		if err := json.Unmarshal(payload, &snapshot); err != nil {
			return
		}
		store.Dispatch(SetInitialState(snapshot.Ideas))
	})
	return push
}
