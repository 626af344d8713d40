package database

import (
	"context"
	"encoding/json"
	"fmt"
)

// ModerationEvent is one audit row describing an operator action on a report.
type ModerationEvent struct {
	Actor     string
	ActorIP   string
	Action    string
	ReportSeq int64
	Details   any
	RequestID string
}

// InsertModerationEvent appends a moderation/audit row (best-effort).
// Callers should treat failures as non-fatal; the status update itself must
// not depend on this log.
func (d *Database) InsertModerationEvent(ctx context.Context, ev ModerationEvent) error {
	var detailsJSON []byte
	if ev.Details != nil {
		if b, err := json.Marshal(ev.Details); err == nil {
			detailsJSON = b
		}
	}

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO moderation_events (
			actor, actor_ip, action, target_type, target_id, details, request_id
		) VALUES (?, ?, ?, 'report', ?, ?, ?)
	`,
		nullableStr(ev.Actor),
		nullableStr(ev.ActorIP),
		ev.Action,
		fmt.Sprintf("%d", ev.ReportSeq),
		nullableBytes(detailsJSON),
		nullableStr(ev.RequestID),
	)
	if err != nil {
		return fmt.Errorf("insert moderation_events: %w", err)
	}
	return nil
}
