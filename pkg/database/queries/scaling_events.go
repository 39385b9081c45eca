package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

// ScalingEventRepository persists control-loop events for audit.
type ScalingEventRepository struct {
	db *sql.DB
}

func NewScalingEventRepository(db *sql.DB) *ScalingEventRepository {
	return &ScalingEventRepository{db: db}
}

func (r *ScalingEventRepository) SaveEvent(ctx context.Context, event *models.Event) error {
	var payload []byte
	if event.Data != nil {
		var err error
		payload, err = json.Marshal(event.Data)
		if err != nil {
			return fmt.Errorf("marshal event payload: %w", err)
		}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scaling_events (id, event_type, severity, message, payload, trace_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`,
		event.ID, event.Type, event.Severity, event.Message, payload, event.TraceID, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert scaling event: %w", err)
	}
	return nil
}

// Recent returns the latest events, newest first.
func (r *ScalingEventRepository) Recent(ctx context.Context, limit int) ([]*models.Event, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event_type, severity, message, payload, trace_id, created_at
		FROM scaling_events
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query scaling events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		var event models.Event
		var payload []byte
		var traceID sql.NullString

		if err := rows.Scan(&event.ID, &event.Type, &event.Severity, &event.Message,
			&payload, &traceID, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("scan scaling event: %w", err)
		}
		if traceID.Valid {
			event.TraceID = traceID.String
		}
		if len(payload) > 0 {
			var data interface{}
			if err := json.Unmarshal(payload, &data); err == nil {
				event.Data = data
			}
		}
		events = append(events, &event)
	}
	return events, rows.Err()
}
