// README: Outcome ledger backed by PostgreSQL; one row per resolved offer, keyed by event id.
package ack

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"offerstack/internal/modules/offer"
	"offerstack/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS offer_outcomes (
    event_id   TEXT PRIMARY KEY,
    offer_id   TEXT NOT NULL,
    phase      TEXT NOT NULL,
    resolution TEXT NOT NULL,
    fare       DOUBLE PRECISION NOT NULL,
    base_fare  DOUBLE PRECISION NOT NULL,
    decided_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS offer_outcomes_decided_at_idx ON offer_outcomes (decided_at DESC);`

type Ledger struct {
	db *pgxpool.Pool
}

func NewLedger(db *pgxpool.Pool) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) EnsureSchema(ctx context.Context) error {
	_, err := l.db.Exec(ctx, schema)
	return err
}

// ReportOutcome inserts the outcome. Redelivery of the same event id is a
// no-op.
func (l *Ledger) ReportOutcome(ctx context.Context, out offer.Outcome) error {
	_, err := l.db.Exec(ctx, `
        INSERT INTO offer_outcomes (
            event_id, offer_id, phase, resolution, fare, base_fare, decided_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (event_id) DO NOTHING`,
		out.EventID,
		string(out.OfferID),
		string(out.Phase),
		string(out.Resolution),
		float64(out.Fare),
		float64(out.BaseFare),
		out.DecidedAt,
	)
	return err
}

// Recent lists the newest outcomes first.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]offer.Outcome, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.Query(ctx, `
        SELECT event_id, offer_id, phase, resolution, fare, base_fare, decided_at
        FROM offer_outcomes
        ORDER BY decided_at DESC, event_id
        LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outs []offer.Outcome
	for rows.Next() {
		var (
			o              offer.Outcome
			id, phase, res string
			fare, baseFare float64
			decidedAt      time.Time
		)
		if err := rows.Scan(&o.EventID, &id, &phase, &res, &fare, &baseFare, &decidedAt); err != nil {
			return nil, err
		}
		o.OfferID = types.ID(id)
		o.Phase = offer.Phase(phase)
		o.Resolution = offer.Resolution(res)
		o.Fare = types.Fare(fare)
		o.BaseFare = types.Fare(baseFare)
		o.DecidedAt = decidedAt.UTC()
		outs = append(outs, o)
	}
	return outs, rows.Err()
}
