package ack

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"offerstack/internal/modules/offer"
)

func TestLedgerRecordsOutcomeOnce(t *testing.T) {
	dsn := os.Getenv("OFFERSTACK_DB_DSN")
	if dsn == "" {
		t.Skip("OFFERSTACK_DB_DSN not set; skipping DB-backed tests")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer db.Close()

	l := NewLedger(db)
	if err := l.EnsureSchema(ctx); err != nil {
		t.Fatalf("schema: %v", err)
	}
	out := sampleOutcome()
	out.EventID = fmt.Sprintf("evt-test-%d", time.Now().UnixNano())
	out.DecidedAt = time.Now().Add(time.Hour).UTC().Truncate(time.Microsecond)
	defer db.Exec(context.Background(), `DELETE FROM offer_outcomes WHERE event_id = $1`, out.EventID)

	for i := 0; i < 2; i++ {
		if err := l.ReportOutcome(ctx, out); err != nil {
			t.Fatalf("report #%d: %v", i+1, err)
		}
	}
	var n int
	if err := db.QueryRow(ctx, `SELECT count(*) FROM offer_outcomes WHERE event_id = $1`, out.EventID).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("rows = %d, want 1", n)
	}

	recent, err := l.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("recent returned %d rows, want 1", len(recent))
	}
	got := recent[0]
	if got.EventID != out.EventID || got.Fare != out.Fare || got.Resolution != out.Resolution || !got.DecidedAt.Equal(out.DecidedAt) {
		t.Fatalf("recent = %+v, want %+v", got, out)
	}
}

func TestStreamAppendsOutcome(t *testing.T) {
	redisAddr := os.Getenv("OFFERSTACK_REDIS_ADDR")
	if redisAddr == "" {
		t.Skip("OFFERSTACK_REDIS_ADDR not set; skipping integration test")
	}
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer rdb.Close()

	ctx := context.Background()
	key := fmt.Sprintf("offers:outcomes:test:%d", time.Now().UnixNano())
	defer rdb.Del(ctx, key)

	if err := NewStream(rdb, key).ReportOutcome(ctx, sampleOutcome()); err != nil {
		t.Fatalf("report: %v", err)
	}
	msgs, err := rdb.XRange(ctx, key, "-", "+").Result()
	if err != nil {
		t.Fatalf("xrange: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Values["offer_id"] != "ride-7" {
		t.Fatalf("unexpected stream entries %+v", msgs)
	}
	var got offer.Outcome
	if err := json.Unmarshal([]byte(msgs[0].Values["payload"].(string)), &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got.Resolution != offer.ResolutionBargained {
		t.Fatalf("payload resolution = %s", got.Resolution)
	}
}
