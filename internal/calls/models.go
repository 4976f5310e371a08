package calls

import "time"

// CallRecord is one call attempt between two users.
//
// Lifecycle invariants:
// - InitiatorID != ReceiverID
// - RoomID is generated once at creation and never reused
// - StartTime is set on the transition into ongoing
// - EndTime, Duration and DisconnectReason are set on the transition into a
//   terminal status; terminal records are immutable afterwards
//
// Records are never deleted; they back call-history and stats queries.
type CallRecord struct {
	ID          string `json:"_id" db:"id"`
	InitiatorID string `json:"initiator" db:"initiator_id"`
	ReceiverID  string `json:"receiver" db:"receiver_id"`

	// RoomID scopes signaling-relay traffic for this call. Unique per record,
	// enforced by a unique index at the storage layer.
	RoomID string `json:"roomId" db:"room_id"`

	Status   Status   `json:"status" db:"status"`
	CallType CallType `json:"callType" db:"call_type"`

	StartTime *time.Time `json:"startTime,omitempty" db:"start_time"`
	EndTime   *time.Time `json:"endTime,omitempty" db:"end_time"`

	// DurationSeconds is derived as EndTime - StartTime when both are set, else 0.
	DurationSeconds int `json:"duration" db:"duration"`

	RecordingURL  string `json:"recordingUrl,omitempty" db:"recording_url"`
	HasRecording  bool   `json:"hasRecording" db:"has_recording"`
	HasScreenShare bool  `json:"hasScreenShare" db:"has_screen_share"`

	DisconnectReason DisconnectReason `json:"disconnectReason,omitempty" db:"disconnect_reason"`
	Quality          Quality          `json:"quality" db:"quality"`

	// Metadata is free-form client environment info (device, browser).
	// Write-once at creation.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// IsParticipant reports whether userID is either side of the call.
func (r CallRecord) IsParticipant(userID string) bool {
	return userID != "" && (userID == r.InitiatorID || userID == r.ReceiverID)
}

type Status string

const (
	StatusInitiated Status = "initiated"
	StatusRinging   Status = "ringing"
	StatusOngoing   Status = "ongoing"
	StatusEnded     Status = "ended"
	StatusRejected  Status = "rejected"
	StatusMissed    Status = "missed"
	StatusCancelled Status = "cancelled"
)

// IsValid reports whether s is a known status value.
func (s Status) IsValid() bool {
	switch s {
	case StatusInitiated, StatusRinging, StatusOngoing, StatusEnded,
		StatusRejected, StatusMissed, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is permitted from s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusEnded, StatusRejected, StatusMissed, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the status change s -> next is legal.
//
// ringing is a client-local sub-state of initiated: a record may move from
// initiated directly to ongoing/rejected/missed/cancelled, or pass through
// ringing first with the same outgoing edges.
func (s Status) CanTransitionTo(next Status) bool {
	if s.IsTerminal() {
		return false
	}
	switch s {
	case StatusInitiated:
		switch next {
		case StatusRinging, StatusOngoing, StatusRejected, StatusMissed, StatusCancelled:
			return true
		}
	case StatusRinging:
		switch next {
		case StatusOngoing, StatusRejected, StatusMissed, StatusCancelled:
			return true
		}
	case StatusOngoing:
		return next == StatusEnded
	}
	return false
}

type CallType string

const (
	CallTypeVideo  CallType = "video"
	CallTypeAudio  CallType = "audio"
	CallTypeScreen CallType = "screen"
)

func (t CallType) IsValid() bool {
	switch t {
	case CallTypeVideo, CallTypeAudio, CallTypeScreen:
		return true
	default:
		return false
	}
}

type DisconnectReason string

const (
	DisconnectUserEnded      DisconnectReason = "user_ended"
	DisconnectTimeout        DisconnectReason = "timeout"
	DisconnectConnectionLost DisconnectReason = "connection_lost"
	DisconnectRejected       DisconnectReason = "rejected"
	DisconnectOther          DisconnectReason = "other"
)

func (d DisconnectReason) IsValid() bool {
	switch d {
	case DisconnectUserEnded, DisconnectTimeout, DisconnectConnectionLost,
		DisconnectRejected, DisconnectOther:
		return true
	default:
		return false
	}
}

type Quality string

const (
	QualityExcellent Quality = "excellent"
	QualityGood      Quality = "good"
	QualityPoor      Quality = "poor"
	QualityUnknown   Quality = "unknown"
)

func (q Quality) IsValid() bool {
	switch q {
	case QualityExcellent, QualityGood, QualityPoor, QualityUnknown:
		return true
	default:
		return false
	}
}

// Stats aggregates a user's call history.
type Stats struct {
	UserID               string         `json:"userId"`
	TotalCalls           int            `json:"totalCalls"`
	TotalDurationSeconds int            `json:"totalDurationSeconds"`
	ByStatus             map[Status]int `json:"byStatus"`
}
