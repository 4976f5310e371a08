package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"vidstream-platform/internal/calls"
)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 12, 0, 0, 0, time.UTC)
}

func TestCallsSummary_ValidatesRequest(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	cases := []SummaryRequest{
		{UserID: "", Range: TimeRange{From: day(1), To: day(2)}},
		{UserID: "alice"},
		{UserID: "alice", Range: TimeRange{From: day(2), To: day(1)}},
		{UserID: "alice", Range: TimeRange{From: day(1), To: day(1)}},
	}
	for i, req := range cases {
		if _, err := svc.CallsSummary(context.Background(), req); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("case %d: expected ErrInvalidRequest, got %v", i, err)
		}
	}
}

func TestCallsSummary_Aggregates(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Calls = []calls.CallRecord{
		{ID: "1", InitiatorID: "alice", ReceiverID: "bob", Status: calls.StatusEnded, DurationSeconds: 60, HasRecording: true, CreatedAt: day(2)},
		{ID: "2", InitiatorID: "bob", ReceiverID: "alice", Status: calls.StatusEnded, DurationSeconds: 120, HasScreenShare: true, CreatedAt: day(3)},
		{ID: "3", InitiatorID: "alice", ReceiverID: "carol", Status: calls.StatusMissed, CreatedAt: day(4)},
		{ID: "4", InitiatorID: "carol", ReceiverID: "alice", Status: calls.StatusRejected, CreatedAt: day(5)},
		{ID: "5", InitiatorID: "alice", ReceiverID: "bob", Status: calls.StatusOngoing, CreatedAt: day(6)},
		// Outside the range.
		{ID: "6", InitiatorID: "alice", ReceiverID: "bob", Status: calls.StatusEnded, DurationSeconds: 600, CreatedAt: day(20)},
		// Someone else's call.
		{ID: "7", InitiatorID: "bob", ReceiverID: "carol", Status: calls.StatusEnded, DurationSeconds: 600, CreatedAt: day(3)},
	}
	svc := NewService(repo)

	got, err := svc.CallsSummary(context.Background(), SummaryRequest{
		UserID: "alice",
		Range:  TimeRange{From: day(1), To: day(10)},
	})
	if err != nil {
		t.Fatalf("CallsSummary: %v", err)
	}

	if got.TotalCalls != 5 {
		t.Fatalf("total: expected 5, got %d", got.TotalCalls)
	}
	if got.EndedCalls != 2 || got.MissedCalls != 1 || got.RejectedCalls != 1 || got.ActiveCalls != 1 {
		t.Fatalf("unexpected buckets %+v", got)
	}
	if got.TotalDurationSeconds != 180 || got.AverageDurationSeconds != 90 {
		t.Fatalf("unexpected durations %+v", got)
	}
	if got.RecordedCalls != 1 || got.ScreenShareCalls != 1 {
		t.Fatalf("unexpected flags %+v", got)
	}
}

func TestCallsSummary_EmptyRangeIsZero(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	got, err := svc.CallsSummary(context.Background(), SummaryRequest{
		UserID: "alice",
		Range:  TimeRange{From: day(1), To: day(2)},
	})
	if err != nil {
		t.Fatalf("CallsSummary: %v", err)
	}
	if got.TotalCalls != 0 || got.AverageDurationSeconds != 0 {
		t.Fatalf("expected zero summary, got %+v", got)
	}
}
