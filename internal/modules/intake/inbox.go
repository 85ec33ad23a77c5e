// README: Redis-backed offer inbox; producers RPUSH JSON records, the runner LPOPs one per poll.
package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"offerstack/internal/modules/offer"
)

const DefaultInboxKey = "offers:inbox"

var ErrBadPayload = errors.New("bad offer payload")

type RedisInbox struct {
	redis *redis.Client
	key   string
}

func NewRedisInbox(rdb *redis.Client, key string) *RedisInbox {
	if key == "" {
		key = DefaultInboxKey
	}
	return &RedisInbox{redis: rdb, key: key}
}

// NextOffer pops the oldest queued record. A payload that does not decode is
// consumed and reported as ErrBadPayload so one bad message cannot wedge the
// inbox.
func (i *RedisInbox) NextOffer(ctx context.Context) (offer.Record, bool, error) {
	raw, err := i.redis.LPop(ctx, i.key).Bytes()
	if err == redis.Nil {
		return offer.Record{}, false, nil
	}
	if err != nil {
		return offer.Record{}, false, fmt.Errorf("lpop %s: %w", i.key, err)
	}
	var r offer.Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return offer.Record{}, false, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return r, true, nil
}

// Push queues records in order.
func (i *RedisInbox) Push(ctx context.Context, recs ...offer.Record) error {
	if len(recs) == 0 {
		return nil
	}
	pipe := i.redis.Pipeline()
	for _, r := range recs {
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		pipe.RPush(ctx, i.key, data)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (i *RedisInbox) Len(ctx context.Context) (int64, error) {
	return i.redis.LLen(ctx, i.key).Result()
}
