package retro

// Channel event names. Names and payload shapes are the wire contract
// between clients and the session host; changing either breaks running
// sessions mid-retro.
const (
	// Client to host.
	EventIdeaLiveEdit          = "idea_live_edit"
	EventIdeaEdited            = "idea_edited"
	EventIdeaEditStateDisabled = "idea_edit_state_disabled"
	EventIdeaSubmitted         = "idea_submitted"
	EventIdeaDeleted           = "idea_deleted"
	EventRetroState            = "retro_state"

	// Host to clients. idea_live_edit, idea_edited and
	// idea_edit_state_disabled are also re-broadcast under their own names.
	EventIdeaCommitted         = "idea_committed"
	EventIdeaDeletionCommitted = "idea_deletion_committed"
)

// LiveEditPayload is the facilitator-only preview broadcast, pushed on
// every keystroke with the exact current buffer, valid or not.
type LiveEditPayload struct {
	ID           int    `json:"id"`
	LiveEditText string `json:"liveEditText"`
}

// EditPayload commits an edit to an existing idea. Body is trimmed
// before pushing.
type EditPayload struct {
	ID         int    `json:"id"`
	Body       string `json:"body"`
	Category   string `json:"category,omitempty"`
	AssigneeID *int   `json:"assigneeId,omitempty"`
}

// EditStateDisabledPayload signals that an edit was cancelled.
type EditStateDisabledPayload struct {
	ID int `json:"id"`
}

// RetroStatePayload is the full session snapshot delivered to late
// joiners, replacing any prior client-side state.
type RetroStatePayload struct {
	Ideas []Idea `json:"ideas"`
}
