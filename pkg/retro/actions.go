package retro

// ActionType discriminates store actions. These are the internal store
// protocol, distinct from channel event names.
type ActionType string

const (
	ActionIdeaSubmissionCommitted ActionType = "IDEA_SUBMISSION_COMMITTED"
	ActionIdeaSubmissionRejected  ActionType = "IDEA_SUBMISSION_REJECTED"
	ActionSetInitialState         ActionType = "SET_INITIAL_STATE"
	ActionUpdateIdea              ActionType = "UPDATE_IDEA"
	ActionIdeaDeletionCommitted   ActionType = "IDEA_DELETION_COMMITTED"
	ActionIdeaDeletionRejected    ActionType = "IDEA_DELETION_REJECTED"
)

// Action is a dispatched state transition. Only the fields relevant to
// the Type are populated.
type Action struct {
	Type          ActionType
	Idea          Idea
	IdeaID        int
	NewAttributes IdeaPatch
	InitialState  []Idea
}

// IdeaPatch is a shallow merge onto an existing idea: nil fields are
// left untouched, non-nil fields replace the current value.
type IdeaPatch struct {
	Body              *string
	Category          *string
	AssigneeID        *int
	DeletionSubmitted *bool
}

// Apply merges the patch into a copy of the idea.
func (p IdeaPatch) Apply(idea Idea) Idea {
	if p.Body != nil {
		idea.Body = *p.Body
	}
	if p.Category != nil {
		idea.Category = *p.Category
	}
	if p.AssigneeID != nil {
		idea.AssigneeID = p.AssigneeID
	}
	if p.DeletionSubmitted != nil {
		idea.DeletionSubmitted = *p.DeletionSubmitted
	}
	return idea
}

// AddIdea creates the action appending a committed idea to the collection.
func AddIdea(idea Idea) Action {
	return Action{Type: ActionIdeaSubmissionCommitted, Idea: idea}
}

// UpdateIdea creates the action shallow-merging newAttributes into the
// idea with the given id.
func UpdateIdea(ideaID int, newAttributes IdeaPatch) Action {
	return Action{Type: ActionUpdateIdea, IdeaID: ideaID, NewAttributes: newAttributes}
}

// DeleteIdea creates the action removing the idea with the given id.
func DeleteIdea(ideaID int) Action {
	return Action{Type: ActionIdeaDeletionCommitted, IdeaID: ideaID}
}

// SetInitialState creates the action replacing the whole collection,
// used for the initial host snapshot or late-join sync.
func SetInitialState(ideas []Idea) Action {
	return Action{Type: ActionSetInitialState, InitialState: ideas}
}

// RejectIdeaDeletion creates the rollback action clearing the optimistic
// deletionSubmitted flag after the host rejected a deletion.
func RejectIdeaDeletion(ideaID int) Action {
	return Action{Type: ActionIdeaDeletionRejected, IdeaID: ideaID}
}
