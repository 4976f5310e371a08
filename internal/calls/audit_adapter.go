package calls

import (
	"context"
	"log/slog"

	"vidstream-platform/internal/audit"
)

// AuditAdapter bridges the service's Trail hook to the shared audit.Service.
//
// Audit writes are best-effort: failures are logged and swallowed so a broken
// audit store never blocks call flows.

type AuditAdapter struct {
	Audit *audit.Service
	Log   *slog.Logger
}

func (a AuditAdapter) CallInitiated(ctx context.Context, rec CallRecord) {
	if a.Audit == nil {
		return
	}
	if err := a.Audit.LogCallInitiated(ctx, rec.ID, rec.RoomID, rec.InitiatorID, rec.Metadata); err != nil {
		a.warn("call_initiated", rec.ID, err)
	}
}

func (a AuditAdapter) StatusChanged(ctx context.Context, rec CallRecord, from Status, actorID string) {
	if a.Audit == nil {
		return
	}
	msg := ""
	if rec.Status.IsTerminal() {
		msg = string(rec.DisconnectReason)
	}
	if err := a.Audit.LogStatusChange(ctx, rec.ID, rec.RoomID, actorID, string(from), string(rec.Status), msg); err != nil {
		a.warn("call_status_changed", rec.ID, err)
	}
}

func (a AuditAdapter) RecordingAttached(ctx context.Context, rec CallRecord, actorID string) {
	if a.Audit == nil {
		return
	}
	if err := a.Audit.LogRecordingAttached(ctx, rec.ID, rec.RoomID, actorID, rec.RecordingURL); err != nil {
		a.warn("recording_attached", rec.ID, err)
	}
}

func (a AuditAdapter) warn(event, callID string, err error) {
	if a.Log != nil {
		a.Log.Warn("audit write failed", "event", event, "call_id", callID, "err", err)
	}
}
