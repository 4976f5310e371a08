package reporting

import "time"

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// SummaryRequest requests aggregated call metrics for one user.

type SummaryRequest struct {
	UserID string    `json:"user_id"`
	Range  TimeRange `json:"range"`
}

// Summary aggregates a user's calls inside a time range, bucketed by how
// they ended.
type Summary struct {
	UserID string    `json:"user_id"`
	Range  TimeRange `json:"range"`

	TotalCalls     int `json:"total_calls"`
	EndedCalls     int `json:"ended_calls"`
	RejectedCalls  int `json:"rejected_calls"`
	MissedCalls    int `json:"missed_calls"`
	CancelledCalls int `json:"cancelled_calls"`
	ActiveCalls    int `json:"active_calls"`

	TotalDurationSeconds   int `json:"total_duration_seconds"`
	AverageDurationSeconds int `json:"average_duration_seconds"`

	RecordedCalls    int `json:"recorded_calls"`
	ScreenShareCalls int `json:"screen_share_calls"`
}
