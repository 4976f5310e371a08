package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.

type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information about call activity.
//
// IMPORTANT:
// - Audit is internal-only. Do not expose these records to end users by default.
// - Callers should treat audit logging as best-effort.

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}
	if e.CallID == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogCallInitiated records the creation of a call record.
func (s *Service) LogCallInitiated(ctx context.Context, callID, roomID, actorUserID, metadata string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeCallInitiated,
		CallID:      callID,
		RoomID:      roomID,
		ActorUserID: actorUserID,
		ToStatus:    "initiated",
		Metadata:    metadata,
	})
}

// LogStatusChange records a lifecycle transition. actorUserID is empty when
// the transition was applied by the sweeper.
func (s *Service) LogStatusChange(ctx context.Context, callID, roomID, actorUserID, from, to, message string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeStatusChanged,
		CallID:      callID,
		RoomID:      roomID,
		ActorUserID: actorUserID,
		FromStatus:  from,
		ToStatus:    to,
		Message:     message,
	})
}

// LogRecordingAttached records that a stored recording was linked to a call.
func (s *Service) LogRecordingAttached(ctx context.Context, callID, roomID, actorUserID, url string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeRecordingAttached,
		CallID:      callID,
		RoomID:      roomID,
		ActorUserID: actorUserID,
		Message:     "recording attached",
		Metadata:    url,
	})
}
