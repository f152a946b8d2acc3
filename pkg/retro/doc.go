// Package retro provides the client-side shared state for a real-time
// collaborative retrospective session.
//
// # Overview
//
// The ideas collection is exclusively owned by a Store and mutated only
// through dispatched actions: Reduce is a pure copy-on-write transition
// function, so every prior state remains valid for comparison. Thunks
// wrap the side-effecting operations (submission, deletion) that push
// requests on the session channel and reconcile optimistic local updates
// with the host's acknowledgement or rejection.
//
// # Optimistic updates
//
// A deletion is a two-phase transition: the deletionSubmitted flag is set
// immediately, before the channel round-trip resolves, and a compensating
// IDEA_DELETION_REJECTED dispatch clears it if the host signals failure
// or the push times out. The rollback fires at most once per push and is
// never retried silently.
//
// # Synchronization
//
// BindChannel maps host broadcasts onto store dispatches, and
// RequestState pulls the full snapshot on join. All transitions run on
// the single dispatch point, so no state can be observed mid-mutation.
package retro
