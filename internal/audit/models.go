package audit

import "time"

// Event is an immutable, append-only record of a call lifecycle action.
//
// Invariants:
// - Events are never updated or deleted.
// - Recording is best-effort; audit failures must not block call flows.
//
// Storage recommendation (Postgres):
// - Table call_events with an INSERT-only policy.
// - Optional: partition by time for retention.

type Event struct {
	ID string `json:"id" db:"id"`

	// Type indicates the business category of the audit record.
	Type EventType `json:"type" db:"type"`

	// CallID and RoomID identify the call the event belongs to.
	CallID string `json:"call_id" db:"call_id"`
	RoomID string `json:"room_id,omitempty" db:"room_id"`

	// ActorUserID is the authenticated user causing the event, empty for
	// system-driven events such as the ring-timeout sweep.
	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`

	// FromStatus/ToStatus capture a state transition when applicable.
	FromStatus string `json:"from_status,omitempty" db:"from_status"`
	ToStatus   string `json:"to_status,omitempty" db:"to_status"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeCallInitiated     EventType = "call_initiated"
	EventTypeStatusChanged     EventType = "call_status_changed"
	EventTypeRecordingAttached EventType = "recording_attached"
)
