package channel

import "fmt"

// Redis key pattern helpers
//
// All Redis keys and Pub/Sub channels are namespaced by session name to
// enable multiple retro sessions to safely coexist on a single Redis server.
//
// Key pattern: retro:{session}:{entity}
// Channel pattern: retro:{session}:{direction}

// RequestsChannel returns the Pub/Sub channel clients push requests to.
// Pattern: retro:{session}:requests
func RequestsChannel(session string) string {
	return fmt.Sprintf("retro:%s:requests", session)
}

// ReplyChannel returns the per-push reply channel for a request ref.
// Pattern: retro:{session}:reply:{ref}
func ReplyChannel(session, ref string) string {
	return fmt.Sprintf("retro:%s:reply:%s", session, ref)
}

// EventsChannel returns the Pub/Sub channel the host broadcasts
// committed state transitions on.
// Pattern: retro:{session}:events
func EventsChannel(session string) string {
	return fmt.Sprintf("retro:%s:events", session)
}

// IdeaKey returns the Redis key for a persisted idea hash.
// Pattern: retro:{session}:idea:{id}
func IdeaKey(session string, ideaID int) string {
	return fmt.Sprintf("retro:%s:idea:%d", session, ideaID)
}

// IdeaSeqKey returns the Redis key for the idea id sequence counter.
// Pattern: retro:{session}:idea_seq
func IdeaSeqKey(session string) string {
	return fmt.Sprintf("retro:%s:idea_seq", session)
}

// IdeaIndexKey returns the Redis key for the ordered idea id list.
// Insertion order is rendering order, so ids live in a Redis list.
// Pattern: retro:{session}:idea_index
func IdeaIndexKey(session string) string {
	return fmt.Sprintf("retro:%s:idea_index", session)
}
