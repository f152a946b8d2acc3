package session

import (
	"fmt"
	"strconv"

	"github.com/dyluth/retro/pkg/retro"
)

// Serialization helpers for converting between ideas and Redis hashes
//
// Redis stores data as string-to-string maps (hashes). Optional fields
// (category, assignee) are stored as empty/absent fields and restored to
// their Go zero values on read.

// IdeaToHash converts an idea to Redis hash format.
func IdeaToHash(idea retro.Idea) map[string]interface{} {
	hash := map[string]interface{}{
		"id":      idea.ID,
		"body":    idea.Body,
		"user_id": idea.UserID,
	}
	if idea.Category != "" {
		hash["category"] = idea.Category
	}
	if idea.AssigneeID != nil {
		hash["assignee_id"] = *idea.AssigneeID
	}
	return hash
}

// HashToIdea converts a Redis hash back to an idea.
func HashToIdea(hash map[string]string) (retro.Idea, error) {
	id, err := strconv.Atoi(hash["id"])
	if err != nil {
		return retro.Idea{}, fmt.Errorf("invalid id field: %w", err)
	}

	userID := 0
	if raw := hash["user_id"]; raw != "" {
		userID, err = strconv.Atoi(raw)
		if err != nil {
			return retro.Idea{}, fmt.Errorf("invalid user_id field: %w", err)
		}
	}

	idea := retro.Idea{
		ID:       id,
		Body:     hash["body"],
		Category: hash["category"],
		UserID:   userID,
	}

	if raw := hash["assignee_id"]; raw != "" {
		assigneeID, err := strconv.Atoi(raw)
		if err != nil {
			return retro.Idea{}, fmt.Errorf("invalid assignee_id field: %w", err)
		}
		idea.AssigneeID = &assigneeID
	}

	return idea, nil
}
