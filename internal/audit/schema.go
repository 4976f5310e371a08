package audit

import (
	"context"
	"database/sql"

	"vidstream-platform/pkg/utils"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS call_events (
  id            TEXT PRIMARY KEY,
  type          TEXT NOT NULL,
  call_id       TEXT NOT NULL,
  room_id       TEXT,
  actor_user_id TEXT,
  from_status   TEXT,
  to_status     TEXT,
  message       TEXT,
  metadata      TEXT,
  created_at    TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS call_events_call_idx ON call_events (call_id, created_at)`,
}

// EnsureSchema creates the append-only event table. Idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	return utils.WithTx(ctx, db, nil, func(ctx context.Context, tx *sql.Tx) error {
		for _, stmt := range schemaStatements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}
