package calls

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound            = errors.New("call not found")
	ErrInvalidParticipants = errors.New("invalid participants")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrForbidden           = errors.New("not a call participant")
	ErrCallInProgress      = errors.New("active call already exists for this pair")
	ErrInvalidArgument     = errors.New("invalid argument")
)

// PendingIndex tracks calls that are awaiting an answer, so the sweeper can
// mark them missed after the ring timeout. Implementations must be
// best-effort: failures are logged internally and never returned, because a
// broken index must not block call setup.
type PendingIndex interface {
	Add(ctx context.Context, callID string, deadline time.Time)
	Remove(ctx context.Context, callID string)
}

// Trail receives lifecycle notifications for the audit log. Implementations
// must be best-effort and never fail the call flow.
type Trail interface {
	CallInitiated(ctx context.Context, rec CallRecord)
	StatusChanged(ctx context.Context, rec CallRecord, from Status, actorID string)
	RecordingAttached(ctx context.Context, rec CallRecord, actorID string)
}

// Service enforces the call state machine and derived invariants.
//
// The signaling relay is intentionally NOT consulted here: status transitions
// are driven only by explicit gateway requests, never inferred from relay
// traffic.
type Service struct {
	repo    Repository
	pending PendingIndex
	trail   Trail

	ringTimeout time.Duration

	// clock and newID are injectable for deterministic tests.
	clock func() time.Time
	newID func() string
}

func NewService(repo Repository, pending PendingIndex, ringTimeout time.Duration) *Service {
	return &Service{
		repo:        repo,
		pending:     pending,
		ringTimeout: ringTimeout,
		clock:       time.Now,
		newID:       uuid.NewString,
	}
}

// SetTrail attaches an optional audit trail. Must be called before the
// service handles traffic.
func (s *Service) SetTrail(t Trail) { s.trail = t }

// Initiate creates a call record in status initiated with a fresh room id.
//
// Policy decision: a new call between a pair that already has a non-terminal
// record is rejected with ErrCallInProgress rather than creating a second
// room for the same two people.
func (s *Service) Initiate(ctx context.Context, initiatorID, receiverID string, callType CallType, metadata string) (CallRecord, error) {
	if initiatorID == "" || receiverID == "" {
		return CallRecord{}, ErrInvalidParticipants
	}
	if initiatorID == receiverID {
		return CallRecord{}, ErrInvalidParticipants
	}
	if callType == "" {
		callType = CallTypeVideo
	}
	if !callType.IsValid() {
		return CallRecord{}, ErrInvalidArgument
	}

	if _, exists, err := s.repo.FindActiveByPair(ctx, initiatorID, receiverID); err != nil {
		return CallRecord{}, err
	} else if exists {
		return CallRecord{}, ErrCallInProgress
	}

	now := s.clock().UTC()
	rec := CallRecord{
		ID:          s.newID(),
		InitiatorID: initiatorID,
		ReceiverID:  receiverID,
		RoomID:      s.newID(),
		Status:      StatusInitiated,
		CallType:    callType,
		Quality:     QualityUnknown,
		Metadata:    metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		return CallRecord{}, err
	}

	if s.pending != nil {
		s.pending.Add(ctx, rec.ID, now.Add(s.ringTimeout))
	}
	if s.trail != nil {
		s.trail.CallInitiated(ctx, rec)
	}
	return rec, nil
}

// StatusUpdateRequest carries a requested transition plus optional
// call-progress facts reported by the client alongside it.
type StatusUpdateRequest struct {
	Status           Status
	DisconnectReason DisconnectReason
	Quality          Quality
	ScreenShare      bool
}

// UpdateStatus validates and applies a state transition.
//
// Terminal records are frozen: any attempt to mutate one fails with
// ErrInvalidTransition, never silently succeeds.
func (s *Service) UpdateStatus(ctx context.Context, callID, actorID string, req StatusUpdateRequest) (CallRecord, error) {
	if callID == "" || actorID == "" {
		return CallRecord{}, ErrInvalidArgument
	}
	if !req.Status.IsValid() {
		return CallRecord{}, ErrInvalidArgument
	}
	if req.DisconnectReason != "" && !req.DisconnectReason.IsValid() {
		return CallRecord{}, ErrInvalidArgument
	}
	if req.Quality != "" && !req.Quality.IsValid() {
		return CallRecord{}, ErrInvalidArgument
	}

	rec, err := s.repo.GetByID(ctx, callID)
	if err != nil {
		return CallRecord{}, err
	}
	if !rec.IsParticipant(actorID) {
		return CallRecord{}, ErrForbidden
	}
	if !rec.Status.CanTransitionTo(req.Status) {
		return CallRecord{}, ErrInvalidTransition
	}

	prev := rec.Status
	now := s.clock().UTC()

	rec.Status = req.Status
	rec.UpdatedAt = now
	if req.Quality != "" {
		rec.Quality = req.Quality
	}
	if req.ScreenShare {
		rec.HasScreenShare = true
	}

	switch {
	case req.Status == StatusOngoing:
		t := now
		rec.StartTime = &t
	case req.Status.IsTerminal():
		t := now
		rec.EndTime = &t
		if rec.StartTime != nil {
			rec.DurationSeconds = int(rec.EndTime.Sub(*rec.StartTime) / time.Second)
			if rec.DurationSeconds < 0 {
				rec.DurationSeconds = 0
			}
		}
		rec.DisconnectReason = req.DisconnectReason
		if rec.DisconnectReason == "" {
			rec.DisconnectReason = defaultDisconnectReason(req.Status)
		}
	}

	ok, err := s.repo.UpdateGuarded(ctx, rec, prev)
	if err != nil {
		return CallRecord{}, err
	}
	if !ok {
		// Another request transitioned the record first.
		return CallRecord{}, ErrInvalidTransition
	}

	if s.pending != nil && req.Status != StatusRinging {
		// The call left the awaiting-answer phase one way or another.
		s.pending.Remove(ctx, rec.ID)
	}
	if s.trail != nil {
		s.trail.StatusChanged(ctx, rec, prev, actorID)
	}
	return rec, nil
}

func defaultDisconnectReason(terminal Status) DisconnectReason {
	switch terminal {
	case StatusRejected:
		return DisconnectRejected
	case StatusMissed:
		return DisconnectTimeout
	default:
		return DisconnectUserEnded
	}
}

// MarkMissed is the sweeper entry point: it drives a still-unanswered call to
// missed. Calls that were answered or already terminated are left untouched.
func (s *Service) MarkMissed(ctx context.Context, callID string) error {
	rec, err := s.repo.GetByID(ctx, callID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if rec.Status != StatusInitiated && rec.Status != StatusRinging {
		return nil
	}

	prev := rec.Status
	now := s.clock().UTC()
	rec.Status = StatusMissed
	t := now
	rec.EndTime = &t
	rec.DisconnectReason = DisconnectTimeout
	rec.UpdatedAt = now

	// A lost guard race means the call was answered or cancelled in the
	// meantime; that is not an error for the sweep.
	ok, err := s.repo.UpdateGuarded(ctx, rec, prev)
	if err != nil {
		return err
	}
	if ok && s.trail != nil {
		// Empty actor: the transition was applied by the sweeper.
		s.trail.StatusChanged(ctx, rec, prev, "")
	}
	return nil
}

// History returns the user's calls, newest first.
func (s *Service) History(ctx context.Context, userID string, page, pageSize int) ([]CallRecord, int, error) {
	if userID == "" {
		return nil, 0, ErrInvalidArgument
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return s.repo.ListByParticipant(ctx, userID, pageSize, (page-1)*pageSize)
}

// Details returns a call by room id, restricted to participants.
func (s *Service) Details(ctx context.Context, roomID, actorID string) (CallRecord, error) {
	if roomID == "" || actorID == "" {
		return CallRecord{}, ErrInvalidArgument
	}
	rec, err := s.repo.GetByRoomID(ctx, roomID)
	if err != nil {
		return CallRecord{}, err
	}
	if !rec.IsParticipant(actorID) {
		return CallRecord{}, ErrForbidden
	}
	return rec, nil
}

// Stats aggregates a user's call history.
func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	if userID == "" {
		return Stats{}, ErrInvalidArgument
	}
	return s.repo.UserStats(ctx, userID)
}

// AttachRecording stores the uploaded recording URL on a call. Participants only.
func (s *Service) AttachRecording(ctx context.Context, callID, actorID, url string) (CallRecord, error) {
	if callID == "" || actorID == "" || url == "" {
		return CallRecord{}, ErrInvalidArgument
	}
	rec, err := s.repo.GetByID(ctx, callID)
	if err != nil {
		return CallRecord{}, err
	}
	if !rec.IsParticipant(actorID) {
		return CallRecord{}, ErrForbidden
	}
	now := s.clock().UTC()
	if err := s.repo.SetRecording(ctx, callID, url, now); err != nil {
		return CallRecord{}, err
	}
	rec.RecordingURL = url
	rec.HasRecording = true
	rec.UpdatedAt = now
	if s.trail != nil {
		s.trail.RecordingAttached(ctx, rec, actorID)
	}
	return rec, nil
}

// ReportProgress records mid-call facts (connection quality, a screen share
// having started) on a live call without moving its status. Participants
// only; terminal records are frozen.
func (s *Service) ReportProgress(ctx context.Context, callID, actorID string, quality Quality, screenShare bool) (CallRecord, error) {
	if callID == "" || actorID == "" {
		return CallRecord{}, ErrInvalidArgument
	}
	if quality == "" && !screenShare {
		return CallRecord{}, ErrInvalidArgument
	}
	if quality != "" && !quality.IsValid() {
		return CallRecord{}, ErrInvalidArgument
	}
	rec, err := s.repo.GetByID(ctx, callID)
	if err != nil {
		return CallRecord{}, err
	}
	if !rec.IsParticipant(actorID) {
		return CallRecord{}, ErrForbidden
	}
	if rec.Status.IsTerminal() {
		return CallRecord{}, ErrInvalidTransition
	}
	now := s.clock().UTC()
	if quality != "" {
		if err := s.repo.SetQuality(ctx, callID, quality, now); err != nil {
			return CallRecord{}, err
		}
		rec.Quality = quality
	}
	if screenShare {
		if err := s.repo.MarkScreenShare(ctx, callID, now); err != nil {
			return CallRecord{}, err
		}
		rec.HasScreenShare = true
	}
	rec.UpdatedAt = now
	return rec, nil
}
