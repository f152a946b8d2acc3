package retro

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxIdeaBodyLength is the longest idea body accepted for submission,
// measured in characters. A body of exactly this length is valid.
const MaxIdeaBodyLength = 255

// Idea represents a single retrospective contribution item.
// The id is assigned by the session host; an unsubmitted idea has ID 0.
// A committed body is always stored trimmed of surrounding whitespace.
type Idea struct {
	ID                int    `json:"id,omitempty"`                 // Server-assigned, absent pre-commit
	Body              string `json:"body"`                         // Trimmed once committed, never empty
	Category          string `json:"category,omitempty"`           // Grouping label outside the action-items stage
	UserID            int    `json:"user_id"`                      // Creator
	AssigneeID        *int   `json:"assignee_id,omitempty"`        // Action-item owner, optional
	DeletionSubmitted bool   `json:"deletion_submitted,omitempty"` // Optimistic flag while a deletion is in flight
}

// User represents a session participant. The facilitator is the
// privileged participant whose live edits broadcast previews to others.
type User struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	IsFacilitator bool   `json:"is_facilitator"`
}

// Stage is the current phase of the retrospective workflow. The stage
// controls which idea fields are editable: category everywhere except
// action items, assignee only during action items.
type Stage string

const (
	StageIdeaGeneration Stage = "idea_generation"
	StageActionItems    Stage = "action_items"
	StageVoting         Stage = "voting"
	StageClosed         Stage = "closed"
)

// Validate checks that the stage is one of the known phases.
func (s Stage) Validate() error {
	switch s {
	case StageIdeaGeneration, StageActionItems, StageVoting, StageClosed:
		return nil
	default:
		return fmt.Errorf("unknown stage: %q", s)
	}
}

// ValidIdeaBody reports whether a body is acceptable for submission:
// non-empty after trimming, and no longer than MaxIdeaBodyLength before
// trimming. Exactly MaxIdeaBodyLength characters is valid.
func ValidIdeaBody(body string) bool {
	if strings.TrimSpace(body) == "" {
		return false
	}
	return utf8.RuneCountInString(body) <= MaxIdeaBodyLength
}

// ValidateIdeaBody returns a descriptive error for an unacceptable body,
// or nil if the body is valid for submission.
func ValidateIdeaBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("idea body cannot be empty")
	}
	if n := utf8.RuneCountInString(body); n > MaxIdeaBodyLength {
		return fmt.Errorf("idea body is %d characters, maximum is %d", n, MaxIdeaBodyLength)
	}
	return nil
}
