package retro

// Reduce is the pure state transition over the ideas collection.
// It never mutates the input slice or its entries: every handled action
// returns a fresh slice, so callers may hold prior states for comparison.
// Unknown action types return the state unchanged. A nil state is
// treated as the empty collection.
func Reduce(state []Idea, action Action) []Idea {
	switch action.Type {
	case ActionIdeaSubmissionCommitted:
		out := make([]Idea, 0, len(state)+1)
		out = append(out, state...)
		return append(out, action.Idea)

	case ActionSetInitialState:
		out := make([]Idea, len(action.InitialState))
		copy(out, action.InitialState)
		return out

	case ActionUpdateIdea:
		out := make([]Idea, len(state))
		copy(out, state)
		for i := range out {
			if out[i].ID == action.IdeaID {
				out[i] = action.NewAttributes.Apply(out[i])
			}
		}
		return out

	case ActionIdeaDeletionCommitted:
		out := make([]Idea, 0, len(state))
		for _, idea := range state {
			if idea.ID != action.IdeaID {
				out = append(out, idea)
			}
		}
		return out

	case ActionIdeaDeletionRejected:
		out := make([]Idea, len(state))
		copy(out, state)
		for i := range out {
			if out[i].ID == action.IdeaID {
				out[i].DeletionSubmitted = false
			}
		}
		return out

	default:
		return state
	}
}
