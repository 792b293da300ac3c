package events

import (
	"context"
	"time"

	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Sink receives committed events in sequence order.
	Sink interface {
		Publish(ctx context.Context, envelopes []model.Envelope) error
	}

	// Queue accepts archive records for asynchronous storage.
	Queue interface {
		Add(ctx context.Context, record Record) error
	}
)

// Record is the archived form of one event.
type Record struct {
	Sequence  uint64
	Kind      string
	Payload   string
	CreatedAt time.Time
}
