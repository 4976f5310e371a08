package signaling

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType enumerates every message the relay accepts or emits. The set is
// closed: unknown types are rejected at the boundary instead of being passed
// through as free-form payloads.
type EventType string

// Client-sent events.
const (
	EventJoin    EventType = "join"
	EventOffer   EventType = "offer"
	EventAnswer  EventType = "answer"
	EventICE     EventType = "ice-candidate"
	EventAccept  EventType = "accept-call"
	EventReject  EventType = "reject-call"
	EventEndCall EventType = "end-call"

	// Secondary negotiation channel for a screen media stream, reusing the
	// same room as the primary stream.
	EventStartScreenShare EventType = "start-screen-share"
	EventStopScreenShare  EventType = "stop-screen-share"
	EventScreenOffer      EventType = "screen-offer"
	EventScreenAnswer     EventType = "screen-answer"

	EventRecordingStarted EventType = "recording-started"
	EventRecordingStopped EventType = "recording-stopped"

	EventAudioToggled      EventType = "audio-toggled"
	EventVideoToggled      EventType = "video-toggled"
	EventFullscreenRequest EventType = "fullscreen-request"
	EventNetworkQuality    EventType = "network-quality"
)

// Server-emitted events.
const (
	EventJoined           EventType = "joined" // join ack, carries member count
	EventUserJoined       EventType = "user-joined"
	EventUserDisconnected EventType = "user-disconnected"
	EventCallEnded        EventType = "call-ended"
	EventError            EventType = "error"
)

// sdpEvents require a non-empty payload (the SDP blob is opaque to the relay
// but its absence is a client bug worth rejecting early).
var sdpEvents = map[EventType]bool{
	EventOffer:        true,
	EventAnswer:       true,
	EventScreenOffer:  true,
	EventScreenAnswer: true,
	EventICE:          true,
}

var clientEvents = map[EventType]bool{
	EventJoin:              true,
	EventOffer:             true,
	EventAnswer:            true,
	EventICE:               true,
	EventAccept:            true,
	EventReject:            true,
	EventEndCall:           true,
	EventStartScreenShare:  true,
	EventStopScreenShare:   true,
	EventScreenOffer:       true,
	EventScreenAnswer:      true,
	EventRecordingStarted:  true,
	EventRecordingStopped:  true,
	EventAudioToggled:      true,
	EventVideoToggled:      true,
	EventFullscreenRequest: true,
	EventNetworkQuality:    true,
}

// Envelope is the wire format in both directions. Payload contents are opaque
// to the relay (SDP blobs, ICE candidates, UI state); only Type and RoomID are
// interpreted here.
type Envelope struct {
	Type   EventType       `json:"type"`
	RoomID string          `json:"roomId"`
	From   string          `json:"from,omitempty"`
	// MediaType distinguishes the stream an offer/answer negotiates
	// (e.g. "camera" vs "screen"); forwarded verbatim.
	MediaType string          `json:"mediaType,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	// Timestamp is stamped by the server on forwarded events.
	Timestamp time.Time `json:"timestamp,omitempty"`
	// Members is set on join acks.
	Members int `json:"members,omitempty"`
	// Reason is set on server-emitted call-ended events.
	Reason string `json:"reason,omitempty"`
}

// ParseClientEnvelope decodes and validates an inbound frame. It returns a
// descriptive error for frames the relay must not dispatch.
func ParseClientEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("malformed frame: %w", err)
	}
	if !clientEvents[env.Type] {
		return Envelope{}, fmt.Errorf("unknown event type %q", env.Type)
	}
	if env.RoomID == "" {
		return Envelope{}, fmt.Errorf("%s: roomId is required", env.Type)
	}
	if sdpEvents[env.Type] && len(env.Payload) == 0 {
		return Envelope{}, fmt.Errorf("%s: payload is required", env.Type)
	}
	return env, nil
}

func errorEnvelope(msg string) Envelope {
	return Envelope{Type: EventError, Reason: msg}
}
