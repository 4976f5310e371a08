package reporting

import (
	"context"
	"errors"
	"time"

	"vidstream-platform/internal/calls"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts read access to call records for reporting.
//
// IMPORTANT:
// - Implementations must filter to calls the user participated in.
// - The range filters on created_at: from inclusive, to exclusive.

type Repository interface {
	ListCalls(ctx context.Context, userID string, from, to time.Time) ([]calls.CallRecord, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) CallsSummary(ctx context.Context, req SummaryRequest) (Summary, error) {
	if req.UserID == "" {
		return Summary{}, ErrInvalidRequest
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return Summary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return Summary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListCalls(ctx, req.UserID, req.Range.From, req.Range.To)
	if err != nil {
		return Summary{}, err
	}

	out := Summary{UserID: req.UserID, Range: req.Range}
	for _, c := range rows {
		out.TotalCalls++
		out.TotalDurationSeconds += c.DurationSeconds
		if c.HasRecording {
			out.RecordedCalls++
		}
		if c.HasScreenShare {
			out.ScreenShareCalls++
		}
		switch c.Status {
		case calls.StatusEnded:
			out.EndedCalls++
		case calls.StatusRejected:
			out.RejectedCalls++
		case calls.StatusMissed:
			out.MissedCalls++
		case calls.StatusCancelled:
			out.CancelledCalls++
		default:
			// initiated, ringing or ongoing.
			out.ActiveCalls++
		}
	}
	if out.EndedCalls > 0 {
		out.AverageDurationSeconds = out.TotalDurationSeconds / out.EndedCalls
	}
	return out, nil
}
