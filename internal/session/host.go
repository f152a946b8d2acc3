// Package session runs the server side of a retro session: it consumes
// client requests from the session's requests channel, validates and
// persists ideas in Redis, replies per push, and re-broadcasts committed
// state transitions to every connected client.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/dyluth/retro/pkg/channel"
	"github.com/dyluth/retro/pkg/retro"
)

// Host processes requests for one session. Requests are handled
// sequentially in arrival order, so the persisted collection never sees
// interleaved mutations. Ideas are stored as hashes with an ordered id
// list preserving insertion order and an INCR sequence assigning ids.
type Host struct {
	rdb     *redis.Client
	session string

	ready     chan struct{}
	readyOnce sync.Once
}

// NewHost creates a session host. Returns an error if session is empty.
func NewHost(redisOpts *redis.Options, session string) (*Host, error) {
	if session == "" {
		return nil, fmt.Errorf("session name cannot be empty")
	}
	return &Host{
		rdb:     redis.NewClient(redisOpts),
		session: session,
		ready:   make(chan struct{}),
	}, nil
}

// Ready is closed once the host's requests subscription is established,
// so callers know pushes will no longer be dropped.
func (h *Host) Ready() <-chan struct{} {
	return h.ready
}

// Close closes the Redis connection. Implements io.Closer.
func (h *Host) Close() error {
	return h.rdb.Close()
}

// Ping verifies Redis connectivity.
func (h *Host) Ping(ctx context.Context) error {
	return h.rdb.Ping(ctx).Err()
}

// Run subscribes to the session's requests channel and processes
// requests until the context is cancelled. Malformed requests are
// skipped; per-request failures are replied as errors and never stop
// the loop.
func (h *Host) Run(ctx context.Context) error {
	pubsub := h.rdb.Subscribe(ctx, channel.RequestsChannel(h.session))
	defer pubsub.Close()

	// Confirm the subscription before reporting readiness.
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to requests channel: %w", err)
	}
	h.readyOnce.Do(func() { close(h.ready) })

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var req channel.Request
			if err := json.Unmarshal([]byte(msg.Payload), &req); err != nil {
				continue
			}
			h.handleRequest(ctx, req)
		}
	}
}

func (h *Host) handleRequest(ctx context.Context, req channel.Request) {
	var err error
	switch req.Event {
	case retro.EventIdeaSubmitted:
		err = h.handleSubmission(ctx, req)
	case retro.EventIdeaEdited:
		err = h.handleEdit(ctx, req)
	case retro.EventIdeaDeleted:
		err = h.handleDeletion(ctx, req)
	case retro.EventIdeaLiveEdit, retro.EventIdeaEditStateDisabled:
		// Transient UI notifications: no persistence, pass-through fanout.
		err = h.broadcast(ctx, req.Event, req.Payload)
	case retro.EventRetroState:
		err = h.handleStateRequest(ctx, req)
	default:
		err = fmt.Errorf("unknown event: %q", req.Event)
	}

	if errors.Is(err, errAlreadyReplied) {
		return
	}
	if err != nil {
		h.reply(ctx, req.Ref, channel.StatusError, errorReason(err))
		return
	}
	h.reply(ctx, req.Ref, channel.StatusOK, nil)
}

// errAlreadyReplied marks handlers that publish their own reply, so the
// dispatch loop must not send the generic ok/error on top of it.
var errAlreadyReplied = errors.New("reply already sent")

// handleSubmission validates the body, assigns the next id, persists the
// idea and broadcasts the committed result. The body is stored trimmed.
func (h *Host) handleSubmission(ctx context.Context, req channel.Request) error {
	var idea retro.Idea
	if err := json.Unmarshal(req.Payload, &idea); err != nil {
		return fmt.Errorf("malformed idea payload: %w", err)
	}

	if err := retro.ValidateIdeaBody(idea.Body); err != nil {
		return err
	}
	idea.Body = strings.TrimSpace(idea.Body)

	id, err := h.rdb.Incr(ctx, channel.IdeaSeqKey(h.session)).Result()
	if err != nil {
		return fmt.Errorf("failed to assign idea id: %w", err)
	}
	idea.ID = int(id)

	if err := h.rdb.HSet(ctx, channel.IdeaKey(h.session, idea.ID), IdeaToHash(idea)).Err(); err != nil {
		return fmt.Errorf("failed to write idea: %w", err)
	}
	if err := h.rdb.RPush(ctx, channel.IdeaIndexKey(h.session), idea.ID).Err(); err != nil {
		return fmt.Errorf("failed to index idea: %w", err)
	}

	return h.broadcastJSON(ctx, retro.EventIdeaCommitted, idea)
}

// handleEdit shallow-merges the edit onto the stored idea and broadcasts
// the edit to all clients. Editing an unknown idea is a rejection.
func (h *Host) handleEdit(ctx context.Context, req channel.Request) error {
	var edit retro.EditPayload
	if err := json.Unmarshal(req.Payload, &edit); err != nil {
		return fmt.Errorf("malformed edit payload: %w", err)
	}

	if err := retro.ValidateIdeaBody(edit.Body); err != nil {
		return err
	}

	key := channel.IdeaKey(h.session, edit.ID)
	exists, err := h.rdb.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to check idea existence: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("idea %d does not exist", edit.ID)
	}

	fields := map[string]interface{}{"body": strings.TrimSpace(edit.Body)}
	if edit.Category != "" {
		fields["category"] = edit.Category
	}
	if edit.AssigneeID != nil {
		fields["assignee_id"] = *edit.AssigneeID
	}
	if err := h.rdb.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("failed to update idea: %w", err)
	}

	return h.broadcast(ctx, retro.EventIdeaEdited, req.Payload)
}

// handleDeletion removes the idea and its index entry, then broadcasts
// the committed deletion. Deleting an unknown idea is a rejection, which
// rolls back the client's optimistic deletionSubmitted flag.
func (h *Host) handleDeletion(ctx context.Context, req channel.Request) error {
	var ideaID int
	if err := json.Unmarshal(req.Payload, &ideaID); err != nil {
		return fmt.Errorf("malformed deletion payload: %w", err)
	}

	deleted, err := h.rdb.Del(ctx, channel.IdeaKey(h.session, ideaID)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete idea: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("idea %d does not exist", ideaID)
	}

	if err := h.rdb.LRem(ctx, channel.IdeaIndexKey(h.session), 1, ideaID).Err(); err != nil {
		return fmt.Errorf("failed to unindex idea: %w", err)
	}

	return h.broadcastJSON(ctx, retro.EventIdeaDeletionCommitted, retro.EditStateDisabledPayload{ID: ideaID})
}

// handleStateRequest replies with the full snapshot on the push's own
// reply channel rather than broadcasting, so only the joiner pays for it.
func (h *Host) handleStateRequest(ctx context.Context, req channel.Request) error {
	ideas, err := h.Snapshot(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(retro.RetroStatePayload{Ideas: ideas})
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	h.reply(ctx, req.Ref, channel.StatusOK, payload)

	// Reply already sent; suppress the generic ok.
	return errAlreadyReplied
}

// Snapshot returns all ideas in insertion order.
func (h *Host) Snapshot(ctx context.Context) ([]retro.Idea, error) {
	ids, err := h.rdb.LRange(ctx, channel.IdeaIndexKey(h.session), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read idea index: %w", err)
	}

	ideas := make([]retro.Idea, 0, len(ids))
	for _, raw := range ids {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid idea index entry %q: %w", raw, err)
		}

		hash, err := h.rdb.HGetAll(ctx, channel.IdeaKey(h.session, id)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read idea %d: %w", id, err)
		}
		if len(hash) == 0 {
			// Index entry without a hash: deletion raced the snapshot.
			continue
		}

		idea, err := HashToIdea(hash)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize idea %d: %w", id, err)
		}
		ideas = append(ideas, idea)
	}

	return ideas, nil
}

func (h *Host) reply(ctx context.Context, ref, status string, payload json.RawMessage) {
	if ref == "" {
		return
	}
	raw, err := json.Marshal(channel.Reply{Status: status, Payload: payload})
	if err != nil {
		return
	}
	h.rdb.Publish(ctx, channel.ReplyChannel(h.session, ref), raw)
}

func (h *Host) broadcast(ctx context.Context, event string, payload json.RawMessage) error {
	raw, err := json.Marshal(channel.Broadcast{Event: event, Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast: %w", err)
	}
	if err := h.rdb.Publish(ctx, channel.EventsChannel(h.session), raw).Err(); err != nil {
		return fmt.Errorf("failed to publish broadcast: %w", err)
	}
	return nil
}

func (h *Host) broadcastJSON(ctx context.Context, event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}
	return h.broadcast(ctx, event, raw)
}

func errorReason(err error) json.RawMessage {
	raw, marshalErr := json.Marshal(map[string]string{"reason": err.Error()})
	if marshalErr != nil {
		return json.RawMessage(`{"reason":"internal error"}`)
	}
	return raw
}
