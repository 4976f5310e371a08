package calls

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Repository abstracts durable storage for call records.
//
// IMPORTANT:
// - room_id uniqueness is enforced at this layer (unique index), not by
//   application-level locking.
// - Records are never deleted; history and stats read the full set.
type Repository interface {
	Insert(ctx context.Context, rec CallRecord) error
	GetByID(ctx context.Context, id string) (CallRecord, error)
	GetByRoomID(ctx context.Context, roomID string) (CallRecord, error)

	// UpdateGuarded persists rec only while the stored status still equals
	// prevStatus. Returns false when another writer transitioned the record
	// first; callers treat that as a transition conflict.
	UpdateGuarded(ctx context.Context, rec CallRecord, prevStatus Status) (bool, error)

	// FindActiveByPair returns the non-terminal record between the two users,
	// if one exists, in either direction.
	FindActiveByPair(ctx context.Context, userA, userB string) (CallRecord, bool, error)

	// ListByParticipant returns records where the user is initiator or
	// receiver, newest first.
	ListByParticipant(ctx context.Context, userID string, limit, offset int) ([]CallRecord, int, error)

	UserStats(ctx context.Context, userID string) (Stats, error)

	SetRecording(ctx context.Context, id, url string, now time.Time) error
	SetQuality(ctx context.Context, id string, q Quality, now time.Time) error
	MarkScreenShare(ctx context.Context, id string, now time.Time) error
}

// PostgresRepo implements Repository over database/sql (pgx stdlib driver).
//
// Assumed schema: call_records with a UNIQUE index on room_id and an index on
// (initiator_id), (receiver_id), (status, created_at) for the sweep and
// history queries.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const callColumns = `
id, initiator_id, receiver_id, room_id, status, call_type,
start_time, end_time, duration, recording_url, has_recording, has_screen_share,
disconnect_reason, quality, metadata, created_at, updated_at
`

func scanCall(row *sql.Row) (CallRecord, error) {
	var r CallRecord
	var startTime, endTime sql.NullTime
	var recordingURL, disconnectReason sql.NullString
	err := row.Scan(
		&r.ID,
		&r.InitiatorID,
		&r.ReceiverID,
		&r.RoomID,
		&r.Status,
		&r.CallType,
		&startTime,
		&endTime,
		&r.DurationSeconds,
		&recordingURL,
		&r.HasRecording,
		&r.HasScreenShare,
		&disconnectReason,
		&r.Quality,
		&r.Metadata,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CallRecord{}, ErrNotFound
		}
		return CallRecord{}, err
	}
	if startTime.Valid {
		t := startTime.Time
		r.StartTime = &t
	}
	if endTime.Valid {
		t := endTime.Time
		r.EndTime = &t
	}
	r.RecordingURL = recordingURL.String
	r.DisconnectReason = DisconnectReason(disconnectReason.String)
	return r, nil
}

func (p *PostgresRepo) Insert(ctx context.Context, rec CallRecord) error {
	const q = `
INSERT INTO call_records (
  id, initiator_id, receiver_id, room_id, status, call_type,
  start_time, end_time, duration, recording_url, has_recording, has_screen_share,
  disconnect_reason, quality, metadata, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17
)
`
	_, err := p.db.ExecContext(ctx, q,
		rec.ID,
		rec.InitiatorID,
		rec.ReceiverID,
		rec.RoomID,
		rec.Status,
		rec.CallType,
		nullTime(rec.StartTime),
		nullTime(rec.EndTime),
		rec.DurationSeconds,
		nullString(rec.RecordingURL),
		rec.HasRecording,
		rec.HasScreenShare,
		nullString(string(rec.DisconnectReason)),
		rec.Quality,
		rec.Metadata,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	return err
}

func (p *PostgresRepo) GetByID(ctx context.Context, id string) (CallRecord, error) {
	const q = `SELECT ` + callColumns + ` FROM call_records WHERE id = $1`
	return scanCall(p.db.QueryRowContext(ctx, q, id))
}

func (p *PostgresRepo) GetByRoomID(ctx context.Context, roomID string) (CallRecord, error) {
	const q = `SELECT ` + callColumns + ` FROM call_records WHERE room_id = $1`
	return scanCall(p.db.QueryRowContext(ctx, q, roomID))
}

func (p *PostgresRepo) UpdateGuarded(ctx context.Context, rec CallRecord, prevStatus Status) (bool, error) {
	const q = `
UPDATE call_records
SET status = $1,
    start_time = $2,
    end_time = $3,
    duration = $4,
    disconnect_reason = $5,
    quality = $6,
    has_screen_share = $7,
    updated_at = $8
WHERE id = $9 AND status = $10
`
	res, err := p.db.ExecContext(ctx, q,
		rec.Status,
		nullTime(rec.StartTime),
		nullTime(rec.EndTime),
		rec.DurationSeconds,
		nullString(string(rec.DisconnectReason)),
		rec.Quality,
		rec.HasScreenShare,
		rec.UpdatedAt,
		rec.ID,
		prevStatus,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (p *PostgresRepo) FindActiveByPair(ctx context.Context, userA, userB string) (CallRecord, bool, error) {
	const q = `
SELECT ` + callColumns + `
FROM call_records
WHERE status IN ('initiated','ringing','ongoing')
  AND ((initiator_id = $1 AND receiver_id = $2) OR (initiator_id = $2 AND receiver_id = $1))
ORDER BY created_at DESC
LIMIT 1
`
	rec, err := scanCall(p.db.QueryRowContext(ctx, q, userA, userB))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return CallRecord{}, false, nil
		}
		return CallRecord{}, false, err
	}
	return rec, true, nil
}

func (p *PostgresRepo) ListByParticipant(ctx context.Context, userID string, limit, offset int) ([]CallRecord, int, error) {
	const countQ = `
SELECT COUNT(*) FROM call_records
WHERE initiator_id = $1 OR receiver_id = $1
`
	var total int
	if err := p.db.QueryRowContext(ctx, countQ, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	const q = `
SELECT ` + callColumns + `
FROM call_records
WHERE initiator_id = $1 OR receiver_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`
	rows, err := p.db.QueryContext(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]CallRecord, 0, limit)
	for rows.Next() {
		var r CallRecord
		var startTime, endTime sql.NullTime
		var recordingURL, disconnectReason sql.NullString
		if err := rows.Scan(
			&r.ID,
			&r.InitiatorID,
			&r.ReceiverID,
			&r.RoomID,
			&r.Status,
			&r.CallType,
			&startTime,
			&endTime,
			&r.DurationSeconds,
			&recordingURL,
			&r.HasRecording,
			&r.HasScreenShare,
			&disconnectReason,
			&r.Quality,
			&r.Metadata,
			&r.CreatedAt,
			&r.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		if startTime.Valid {
			t := startTime.Time
			r.StartTime = &t
		}
		if endTime.Valid {
			t := endTime.Time
			r.EndTime = &t
		}
		r.RecordingURL = recordingURL.String
		r.DisconnectReason = DisconnectReason(disconnectReason.String)
		out = append(out, r)
	}
	return out, total, rows.Err()
}

func (p *PostgresRepo) UserStats(ctx context.Context, userID string) (Stats, error) {
	const q = `
SELECT status, COUNT(*), COALESCE(SUM(duration), 0)
FROM call_records
WHERE initiator_id = $1 OR receiver_id = $1
GROUP BY status
`
	rows, err := p.db.QueryContext(ctx, q, userID)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()

	st := Stats{UserID: userID, ByStatus: map[Status]int{}}
	for rows.Next() {
		var status Status
		var count, dur int
		if err := rows.Scan(&status, &count, &dur); err != nil {
			return Stats{}, err
		}
		st.ByStatus[status] = count
		st.TotalCalls += count
		st.TotalDurationSeconds += dur
	}
	return st, rows.Err()
}

func (p *PostgresRepo) SetRecording(ctx context.Context, id, url string, now time.Time) error {
	const q = `
UPDATE call_records
SET recording_url = $1, has_recording = TRUE, updated_at = $2
WHERE id = $3
`
	return execExpectingRow(ctx, p.db, q, url, now, id)
}

func (p *PostgresRepo) SetQuality(ctx context.Context, id string, quality Quality, now time.Time) error {
	const q = `
UPDATE call_records
SET quality = $1, updated_at = $2
WHERE id = $3
`
	return execExpectingRow(ctx, p.db, q, quality, now, id)
}

func (p *PostgresRepo) MarkScreenShare(ctx context.Context, id string, now time.Time) error {
	const q = `
UPDATE call_records
SET has_screen_share = TRUE, updated_at = $1
WHERE id = $2
`
	return execExpectingRow(ctx, p.db, q, now, id)
}

func execExpectingRow(ctx context.Context, db *sql.DB, q string, args ...any) error {
	res, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
