package signaling

import (
	"log/slog"
	"time"
)

// Relay is the room-scoped signaling message bus. It forwards WebRTC
// negotiation payloads and call control events between the members of a room
// and knows nothing about call records: durable call state is the lifecycle
// service's problem, driven by separate gateway requests. Keeping persistence
// off this path is deliberate; see the package tests for the resulting
// ordering tolerances.
//
// Delivery semantics are at-most-delivered-if-present: a message sent to an
// empty room is dropped with a log line, never queued for later joiners.
type Relay struct {
	registry *Registry
	log      *slog.Logger

	// clock is injectable for deterministic timestamps in tests.
	clock func() time.Time
}

func NewRelay(registry *Registry, log *slog.Logger) *Relay {
	return &Relay{
		registry: registry,
		log:      log,
		clock:    time.Now,
	}
}

// HandleMessage validates and dispatches one inbound frame from c.
func (r *Relay) HandleMessage(c *Client, raw []byte) {
	env, err := ParseClientEnvelope(raw)
	if err != nil {
		r.log.Warn("rejected signaling frame", "user_id", c.userID, "err", err)
		c.deliver(errorEnvelope(err.Error()))
		return
	}

	switch env.Type {
	case EventJoin:
		r.handleJoin(c, env)
	case EventEndCall, EventReject:
		// Forward first so the sender is excluded but still counted as the
		// origin, then drop its membership.
		r.forward(c, env)
		r.registry.Leave(env.RoomID, c)
	default:
		r.forward(c, env)
	}
}

func (r *Relay) handleJoin(c *Client, env Envelope) {
	members, rejoined := r.registry.Join(env.RoomID, c)

	// Ack the joiner with the current member count.
	c.deliver(Envelope{
		Type:      EventJoined,
		RoomID:    env.RoomID,
		Members:   members,
		Timestamp: r.clock().UTC(),
	})

	// Announce to the rest of the room. A re-join still announces; only the
	// membership set is idempotent.
	r.broadcast(env.RoomID, c, Envelope{
		Type:   EventUserJoined,
		RoomID: env.RoomID,
		From:   c.userID,
	})

	if rejoined {
		r.log.Debug("client re-joined room", "user_id", c.userID, "room_id", env.RoomID)
	}
}

// forward re-broadcasts env to the other members of its room, stamped with
// the sender identity and a server timestamp.
func (r *Relay) forward(c *Client, env Envelope) {
	env.From = c.userID
	r.broadcast(env.RoomID, c, env)
}

func (r *Relay) broadcast(roomID string, sender *Client, env Envelope) {
	recipients := r.registry.Others(roomID, sender)
	if len(recipients) == 0 {
		// Not an error: join/offer ordering across peers is not guaranteed,
		// so an offer may legitimately arrive before anyone else has joined.
		r.log.Warn("no recipients in room, dropping event",
			"event", env.Type, "room_id", roomID, "from", env.From)
		return
	}

	env.Timestamp = r.clock().UTC()
	for _, rc := range recipients {
		rc.deliver(env)
	}
}

// HandleDisconnect runs when a connection is lost without an explicit
// end-call: for every room the client was in, the remaining members get a
// user-disconnected event followed by a call-ended event, and the client is
// dropped from all memberships. This is the relay's only automatic cleanup.
func (r *Relay) HandleDisconnect(c *Client) {
	rooms := r.registry.DropAll(c)
	if len(rooms) == 0 {
		return
	}

	now := r.clock().UTC()
	for _, roomID := range rooms {
		remaining := r.registry.Others(roomID, c)
		for _, rc := range remaining {
			rc.deliver(Envelope{
				Type:      EventUserDisconnected,
				RoomID:    roomID,
				From:      c.userID,
				Timestamp: now,
			})
			rc.deliver(Envelope{
				Type:      EventCallEnded,
				RoomID:    roomID,
				From:      c.userID,
				Reason:    "user-disconnected",
				Timestamp: now,
			})
		}
	}
	r.log.Info("connection dropped from rooms", "user_id", c.userID, "rooms", len(rooms))
}
