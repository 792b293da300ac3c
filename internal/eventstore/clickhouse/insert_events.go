package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/btcbridge/internal/bridge/events"
)

const insertEventsQuery = `
INSERT INTO bridge_events (
	sequence,
	kind,
	payload,
	created_at
) VALUES`

// InsertEvents appends archive records. Re-inserting a sequence replaces the earlier row on merge.
func (r *Repository) InsertEvents(ctx context.Context, records []events.Record) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_events", err, start)
	}()

	if len(records) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, insertEventsQuery)
	if err != nil {
		return fmt.Errorf("prepare events batch: %w", err)
	}

	for _, rec := range records {
		if err = batch.Append(
			rec.Sequence,
			rec.Kind,
			rec.Payload,
			rec.CreatedAt,
		); err != nil {
			return fmt.Errorf("append event %d: %w", rec.Sequence, err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert events: %w", err)
	}
	return nil
}
