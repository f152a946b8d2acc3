// Package channel provides the real-time transport connecting retro
// clients to the shared session host.
//
// # Overview
//
// The channel is the single path for all shared-state mutation. Clients
// push requests (idea submission, edits, deletions, live-edit previews)
// and the host replies per push and re-broadcasts committed transitions
// to every connected client.
//
// # Push semantics
//
// Push is fire-and-forget for the caller: it returns a *Push handle
// immediately and the round-trip completes on a background goroutine.
// Each push resolves exactly once with one of three statuses:
//
//   - "ok": the host accepted and applied the request
//   - "error": the host rejected the request (payload carries the reason)
//   - "timeout": no reply arrived within the push timeout
//
// Callbacks registered with Receive after resolution still fire if the
// status matches, so registration order relative to the reply does not
// matter.
//
// # Redis schema
//
// All Pub/Sub channels and keys are namespaced by session name so that
// multiple sessions coexist on one Redis server:
//
//	Requests:  retro:{session}:requests
//	Replies:   retro:{session}:reply:{ref}
//	Events:    retro:{session}:events
//	Ideas:     retro:{session}:idea:{id}
//	Sequence:  retro:{session}:idea_seq
//	Ordering:  retro:{session}:idea_index
package channel
