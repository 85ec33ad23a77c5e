// README: Redis stream sink; appends each outcome to a capped XADD stream for downstream consumers.
package ack

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"offerstack/internal/modules/offer"
)

const (
	DefaultStreamKey = "offers:outcomes"
	// Approximate cap; the ledger is the durable record.
	streamMaxLen = 10000
)

type Stream struct {
	redis *redis.Client
	key   string
}

func NewStream(rdb *redis.Client, key string) *Stream {
	if key == "" {
		key = DefaultStreamKey
	}
	return &Stream{redis: rdb, key: key}
}

func (s *Stream) ReportOutcome(ctx context.Context, out offer.Outcome) error {
	payload, err := json.Marshal(out)
	if err != nil {
		return err
	}
	err = s.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: s.key,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"event_id":   out.EventID,
			"offer_id":   string(out.OfferID),
			"resolution": string(out.Resolution),
			"payload":    payload,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", s.key, err)
	}
	return nil
}
