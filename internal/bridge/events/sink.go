// Package events delivers committed bridge events to logs, in-memory subscribers and the archive.
package events

import (
	"context"
	"strings"

	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/internal/clock"
	"github.com/sasha-s/go-deadlock"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogSink writes every event at Info level.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("events")}
}

func (s *LogSink) Publish(_ context.Context, envelopes []model.Envelope) error {
	for _, env := range envelopes {
		fields := append([]zap.Field{zap.Uint64("seq", env.Sequence)}, env.Event.Fields()...)
		s.logger.Info(string(env.Event.Kind()), fields...)
	}
	return nil
}

// Fanout publishes to every sink and collects their errors.
type Fanout []Sink

func (f Fanout) Publish(ctx context.Context, envelopes []model.Envelope) error {
	var err error
	for _, s := range f {
		err = multierr.Append(err, s.Publish(ctx, envelopes))
	}
	return err
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu        deadlock.Mutex
	envelopes []model.Envelope
}

func (r *Recorder) Publish(_ context.Context, envelopes []model.Envelope) error {
	r.mu.Lock()
	r.envelopes = append(r.envelopes, envelopes...)
	r.mu.Unlock()
	return nil
}

// Envelopes returns a copy of everything recorded so far.
func (r *Recorder) Envelopes() []model.Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Envelope(nil), r.envelopes...)
}

// Kinds lists the recorded event kinds in order.
func (r *Recorder) Kinds() []model.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]model.EventKind, 0, len(r.envelopes))
	for _, env := range r.envelopes {
		kinds = append(kinds, env.Event.Kind())
	}
	return kinds
}

// ArchiveSink turns events into archive records and hands them to a queue.
type ArchiveSink struct {
	queue   Queue
	clock   clock.TimeSource
	encoder zapcore.Encoder
}

func NewArchiveSink(queue Queue, ts clock.TimeSource) *ArchiveSink {
	return &ArchiveSink{
		queue: queue,
		clock: ts,
		encoder: zapcore.NewJSONEncoder(zapcore.EncoderConfig{
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		}),
	}
}

func (s *ArchiveSink) Publish(ctx context.Context, envelopes []model.Envelope) error {
	now := s.clock.Now().UTC()
	for _, env := range envelopes {
		payload, err := s.payload(env.Event)
		if err != nil {
			return err
		}
		record := Record{
			Sequence:  env.Sequence,
			Kind:      string(env.Event.Kind()),
			Payload:   payload,
			CreatedAt: now,
		}
		if err := s.queue.Add(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

// payload renders the event fields as one JSON object.
func (s *ArchiveSink) payload(e model.Event) (string, error) {
	buf, err := s.encoder.EncodeEntry(zapcore.Entry{}, e.Fields())
	if err != nil {
		return "", err
	}
	defer buf.Free()
	return strings.TrimSuffix(buf.String(), zapcore.DefaultLineEnding), nil
}
