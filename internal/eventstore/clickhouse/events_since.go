package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/btcbridge/internal/bridge/events"
)

const eventsSinceQuery = `
SELECT sequence, kind, payload, created_at
FROM bridge_events FINAL
WHERE sequence > ?
ORDER BY sequence
LIMIT ?`

// EventsSince returns up to limit archived events with a sequence above after, oldest first.
func (r *Repository) EventsSince(ctx context.Context, after uint64, limit int) (_ []events.Record, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("events_since", err, start)
	}()

	rows, err := r.conn.Query(ctx, eventsSinceQuery, after, limit)
	if err != nil {
		return nil, fmt.Errorf("query events since %d: %w", after, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	var out []events.Record
	for rows.Next() {
		var rec events.Record
		if err = rows.Scan(&rec.Sequence, &rec.Kind, &rec.Payload, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}
