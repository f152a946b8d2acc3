package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultPushTimeout bounds how long a push waits for a server reply
// before firing its "timeout" callbacks. Without a bound, optimistic
// client state (e.g. a pending deletion flag) could stay stale forever.
const DefaultPushTimeout = 10 * time.Second

// Request is the wire envelope for a client push.
// Ref is a UUID correlating the request with its reply channel.
type Request struct {
	Ref     string          `json:"ref"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Reply is the wire envelope the host publishes on the per-push
// reply channel.
type Reply struct {
	Status  string          `json:"status"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Broadcast is the wire envelope for host-to-clients event fanout.
type Broadcast struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client is a session-scoped channel over Redis Pub/Sub.
// All Pub/Sub channels are automatically namespaced with the session name.
// The client is safe for concurrent use from multiple goroutines.
//
// Pushes publish a Request to the session's requests channel and listen
// for a Reply on a per-push reply channel. Broadcast events from the host
// are delivered to handlers registered with On.
type Client struct {
	rdb         *redis.Client
	session     string
	pushTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	handlers  map[string][]func(json.RawMessage)
	listening bool
}

// NewClient creates a channel client for the given session.
// A pushTimeout of 0 selects DefaultPushTimeout.
// Returns an error if session is empty.
func NewClient(redisOpts *redis.Options, session string, pushTimeout time.Duration) (*Client, error) {
	if session == "" {
		return nil, fmt.Errorf("session name cannot be empty")
	}
	if pushTimeout <= 0 {
		pushTimeout = DefaultPushTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		rdb:         redis.NewClient(redisOpts),
		session:     session,
		pushTimeout: pushTimeout,
		ctx:         ctx,
		cancel:      cancel,
		handlers:    make(map[string][]func(json.RawMessage)),
	}, nil
}

// Session returns the session name this client is scoped to.
func (c *Client) Session() string {
	return c.session
}

// Ping verifies Redis connectivity. Useful for health checks.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close stops all subscriptions and closes the Redis connection.
// Implements io.Closer. In-flight pushes resolve with "timeout".
func (c *Client) Close() error {
	c.cancel()
	return c.rdb.Close()
}

// Push sends a request to the session host and returns a handle for its
// reply. The round-trip runs on a background goroutine; the returned
// handle resolves exactly once with "ok", "error" or "timeout".
func (c *Client) Push(event string, payload any) *Push {
	push := NewPush()

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		push.Resolve(StatusError, errorPayload(fmt.Sprintf("failed to marshal payload: %v", err)))
		return push
	}

	ref := uuid.New().String()
	req := Request{Ref: ref, Event: event, Payload: payloadJSON}
	reqJSON, err := json.Marshal(req)
	if err != nil {
		push.Resolve(StatusError, errorPayload(fmt.Sprintf("failed to marshal request: %v", err)))
		return push
	}

	// Timeout covers the whole round-trip, measured from the push.
	deadline := time.After(c.pushTimeout)

	go func() {
		pubsub := c.rdb.Subscribe(c.ctx, ReplyChannel(c.session, ref))
		defer pubsub.Close()

		// Wait for the subscription to be established before publishing,
		// otherwise the reply could be dropped.
		if _, err := pubsub.Receive(c.ctx); err != nil {
			push.Resolve(StatusTimeout, nil)
			return
		}

		if err := c.rdb.Publish(c.ctx, RequestsChannel(c.session), reqJSON).Err(); err != nil {
			push.Resolve(StatusError, errorPayload(fmt.Sprintf("failed to publish request: %v", err)))
			return
		}

		select {
		case <-c.ctx.Done():
			push.Resolve(StatusTimeout, nil)

		case <-deadline:
			push.Resolve(StatusTimeout, nil)

		case msg, ok := <-pubsub.Channel():
			if !ok {
				push.Resolve(StatusTimeout, nil)
				return
			}
			var reply Reply
			if err := json.Unmarshal([]byte(msg.Payload), &reply); err != nil {
				push.Resolve(StatusError, errorPayload(fmt.Sprintf("malformed reply: %v", err)))
				return
			}
			push.Resolve(reply.Status, reply.Payload)
		}
	}()

	return push
}

// On registers a handler for a broadcast event. Handlers run sequentially
// on the subscription goroutine, in arrival order. The first registration
// starts the events subscription.
func (c *Client) On(event string, handler func(payload json.RawMessage)) {
	c.mu.Lock()
	c.handlers[event] = append(c.handlers[event], handler)
	start := !c.listening
	c.listening = true
	c.mu.Unlock()

	if start {
		go c.listen()
	}
}

// listen consumes the session events channel and fans broadcasts out to
// registered handlers. Malformed broadcasts are skipped.
func (c *Client) listen() {
	pubsub := c.rdb.Subscribe(c.ctx, EventsChannel(c.session))
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-c.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var b Broadcast
			if err := json.Unmarshal([]byte(msg.Payload), &b); err != nil {
				continue
			}

			c.mu.Lock()
			handlers := make([]func(json.RawMessage), len(c.handlers[b.Event]))
			copy(handlers, c.handlers[b.Event])
			c.mu.Unlock()

			for _, h := range handlers {
				h(b.Payload)
			}
		}
	}
}

func errorPayload(reason string) json.RawMessage {
	raw, err := json.Marshal(map[string]string{"reason": reason})
	if err != nil {
		return json.RawMessage(`{"reason":"internal error"}`)
	}
	return raw
}
