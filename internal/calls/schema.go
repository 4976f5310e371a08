package calls

import (
	"context"
	"database/sql"

	"vidstream-platform/pkg/utils"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS call_records (
  id                TEXT PRIMARY KEY,
  initiator_id      TEXT NOT NULL,
  receiver_id       TEXT NOT NULL,
  room_id           TEXT NOT NULL,
  status            TEXT NOT NULL,
  call_type         TEXT NOT NULL,
  start_time        TIMESTAMPTZ,
  end_time          TIMESTAMPTZ,
  duration          INTEGER NOT NULL DEFAULT 0,
  recording_url     TEXT,
  has_recording     BOOLEAN NOT NULL DEFAULT FALSE,
  has_screen_share  BOOLEAN NOT NULL DEFAULT FALSE,
  disconnect_reason TEXT,
  quality           TEXT NOT NULL DEFAULT 'unknown',
  metadata          TEXT NOT NULL DEFAULT '',
  created_at        TIMESTAMPTZ NOT NULL,
  updated_at        TIMESTAMPTZ NOT NULL
)`,
	// room_id uniqueness backs the never-reused invariant.
	`CREATE UNIQUE INDEX IF NOT EXISTS call_records_room_id_key ON call_records (room_id)`,
	`CREATE INDEX IF NOT EXISTS call_records_initiator_idx ON call_records (initiator_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS call_records_receiver_idx ON call_records (receiver_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS call_records_status_idx ON call_records (status, created_at)`,
}

// EnsureSchema creates the tables and indexes the repository expects. It is
// idempotent and safe to run at every startup.
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
