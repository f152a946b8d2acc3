package channel

import (
	"encoding/json"
	"sync"
)

// Reply statuses delivered to Push callbacks.
const (
	// StatusOK indicates the server accepted and applied the request.
	StatusOK = "ok"

	// StatusError indicates the server rejected the request. The payload
	// carries the rejection reason as JSON.
	StatusError = "error"

	// StatusTimeout indicates no reply arrived within the push timeout.
	// Once fired, any later reply for the same push is ignored.
	StatusTimeout = "timeout"
)

// Channel is the transport surface used by the form controller and the
// store thunks. Push sends a request and returns a handle for its reply;
// On registers a handler for server broadcast events.
//
// Pushes are fire-and-forget from the caller's perspective: Push never
// blocks on the round-trip, and reply callbacks fire later on a
// background goroutine.
type Channel interface {
	Push(event string, payload any) *Push
	On(event string, handler func(payload json.RawMessage))
}

// Push is the handle for one in-flight request. Callbacks are registered
// per status with Receive and fire at most once in total: a push resolves
// exactly once (ok, error, or timeout) and later resolutions are no-ops.
//
// Registering a callback after the push has already resolved invokes it
// immediately if the status matches, so callers never miss a reply by
// registering "too late".
type Push struct {
	mu        sync.Mutex
	resolved  bool
	status    string
	payload   json.RawMessage
	callbacks map[string][]func(json.RawMessage)
}

// NewPush creates an unresolved push handle. Transport implementations
// (and test fakes) resolve it with Resolve when the reply arrives.
func NewPush() *Push {
	return &Push{
		callbacks: make(map[string][]func(json.RawMessage)),
	}
}

// Receive registers a callback for the given reply status.
// Returns the push to allow chained registration.
func (p *Push) Receive(status string, cb func(payload json.RawMessage)) *Push {
	p.mu.Lock()
	if p.resolved {
		matched := p.status == status
		payload := p.payload
		p.mu.Unlock()
		if matched {
			cb(payload)
		}
		return p
	}
	p.callbacks[status] = append(p.callbacks[status], cb)
	p.mu.Unlock()
	return p
}

// Resolve completes the push with the given status and payload, invoking
// the callbacks registered for that status. Only the first resolution
// takes effect; subsequent calls are no-ops.
func (p *Push) Resolve(status string, payload json.RawMessage) {
	p.mu.Lock()
	if p.resolved {
		p.mu.Unlock()
		return
	}
	p.resolved = true
	p.status = status
	p.payload = payload
	cbs := p.callbacks[status]
	p.callbacks = nil
	p.mu.Unlock()

	for _, cb := range cbs {
		cb(payload)
	}
}

// Resolved reports whether the push has completed, and with which status.
func (p *Push) Resolved() (bool, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resolved, p.status
}
