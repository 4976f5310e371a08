package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo implements Repository over database/sql (pgx stdlib driver).
//
// Assumed schema: call_events, INSERT-only, indexed on (call_id, created_at).
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (p *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO call_events (
  id, type, call_id, room_id, actor_user_id, from_status, to_status,
  message, metadata, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
)
`
	_, err := p.db.ExecContext(ctx, q,
		e.ID,
		string(e.Type),
		e.CallID,
		e.RoomID,
		e.ActorUserID,
		e.FromStatus,
		e.ToStatus,
		e.Message,
		e.Metadata,
		e.CreatedAt,
	)
	return err
}
