// README: Outcome sinks; fan-out of terminal offer outcomes to the ledger, stream, broker and log.
package ack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"offerstack/internal/modules/offer"
)

// Sink is anything that accepts a terminal outcome. It matches
// offer.Reporter so a Multi can be handed straight to the runner.
type Sink interface {
	ReportOutcome(ctx context.Context, out offer.Outcome) error
}

type namedSink struct {
	name string
	sink Sink
}

// Multi reports to every sink in order. A failing sink does not stop the
// others; all errors are returned joined.
type Multi struct {
	sinks []namedSink
}

func NewMulti() *Multi {
	return &Multi{}
}

func (m *Multi) Add(name string, s Sink) *Multi {
	m.sinks = append(m.sinks, namedSink{name: name, sink: s})
	return m
}

func (m *Multi) Len() int {
	return len(m.sinks)
}

func (m *Multi) ReportOutcome(ctx context.Context, out offer.Outcome) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.sink.ReportOutcome(ctx, out); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}

// LogSink writes each outcome as a structured log line.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) *LogSink {
	if log == nil {
		log = slog.Default()
	}
	return &LogSink{log: log.With("component", "outcome_log")}
}

func (l *LogSink) ReportOutcome(ctx context.Context, out offer.Outcome) error {
	l.log.InfoContext(ctx, "offer outcome",
		"event_id", out.EventID,
		"offer_id", out.OfferID,
		"resolution", out.Resolution,
		"fare", float64(out.Fare),
		"base_fare", float64(out.BaseFare),
		"decided_at", out.DecidedAt,
	)
	return nil
}
