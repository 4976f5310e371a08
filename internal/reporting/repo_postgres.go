package reporting

import (
	"context"
	"database/sql"
	"time"

	"vidstream-platform/internal/calls"
)

// PostgresRepo reads call_records directly. Reporting is read-only; writes
// stay with the calls repository.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (p *PostgresRepo) ListCalls(ctx context.Context, userID string, from, to time.Time) ([]calls.CallRecord, error) {
	const q = `
SELECT id, initiator_id, receiver_id, room_id, status, call_type,
       duration, has_recording, has_screen_share, created_at
FROM call_records
WHERE (initiator_id = $1 OR receiver_id = $1)
  AND created_at >= $2 AND created_at < $3
ORDER BY created_at
`
	rows, err := p.db.QueryContext(ctx, q, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]calls.CallRecord, 0)
	for rows.Next() {
		var r calls.CallRecord
		if err := rows.Scan(
			&r.ID,
			&r.InitiatorID,
			&r.ReceiverID,
			&r.RoomID,
			&r.Status,
			&r.CallType,
			&r.DurationSeconds,
			&r.HasRecording,
			&r.HasScreenShare,
			&r.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
