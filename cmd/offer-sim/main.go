// README: Offer simulator; feeds fixture rides into the Redis inbox or the HTTP API and prints a summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"offerstack/internal/modules/intake"
	"offerstack/internal/modules/offer"
	"offerstack/internal/types"
)

type Config struct {
	Mode      string
	BaseURL   string
	RedisAddr string
	Fixture   string
	IDs       string
	Count     int
	Interval  time.Duration
	Timeout   time.Duration
}

func main() {
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	fixture, err := intake.LoadFixture(cfg.Fixture, true)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	feed, err := newFeed(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer feed.Close()

	results := simulate(ctx, cfg, fixture, feed)

	fmt.Println("\n== Summary ==")
	counts := map[string]int{}
	for _, r := range results {
		counts[r.Status]++
	}
	fmt.Printf("SENT=%d DROPPED=%d FAIL=%d\n", counts[statusSent], counts[statusDropped], counts[statusFail])
	if counts[statusFail] > 0 {
		os.Exit(1)
	}
}

// pickRides returns the rides named in cfg.IDs, falling back to the guest
// ride for unknown ids, or the next cfg.Count rides from the fixture.
func pickRides(ctx context.Context, cfg Config, fixture *intake.Fixture) []offer.Record {
	var recs []offer.Record
	if cfg.IDs != "" {
		for _, id := range strings.Split(cfg.IDs, ",") {
			r, _ := fixture.Lookup(types.ID(strings.TrimSpace(id)))
			recs = append(recs, r)
		}
		return recs
	}
	for i := 0; i < cfg.Count; i++ {
		r, ok, _ := fixture.NextOffer(ctx)
		if !ok {
			break
		}
		recs = append(recs, r)
	}
	return recs
}

func simulate(ctx context.Context, cfg Config, fixture *intake.Fixture, feed Feed) []Result {
	recs := pickRides(ctx, cfg, fixture)
	results := make([]Result, 0, len(recs))
	for i, r := range recs {
		if i > 0 {
			select {
			case <-ctx.Done():
				return results
			case <-time.After(cfg.Interval):
			}
		}
		res := feed.Send(ctx, r)
		fmt.Printf("[%s] %-16s fare=%-7.2f %s\n", res.Status, r.ID, float64(r.BaseFare), res.Note)
		results = append(results, res)
	}
	return results
}

func loadConfig() Config {
	var cfg Config
	flag.StringVar(&cfg.Mode, "mode", envOrDefault("OFFERSIM_MODE", "redis"), "Delivery: redis (inbox) or http (POST /api/offers)")
	flag.StringVar(&cfg.BaseURL, "base-url", envOrDefault("OFFERSIM_BASE_URL", "http://localhost:8080"), "API base URL")
	flag.StringVar(&cfg.RedisAddr, "redis", envOrDefault("OFFERSTACK_REDIS_ADDR", "localhost:6379"), "Redis address")
	flag.StringVar(&cfg.Fixture, "fixture", envOrDefault("OFFERSTACK_FIXTURE_PATH", "data/rides.yaml"), "Ride fixture YAML")
	flag.StringVar(&cfg.IDs, "ids", "", "Comma separated ride ids to send instead of the fixture order")
	flag.IntVar(&cfg.Count, "count", 5, "Rides to send in fixture order")
	flag.DurationVar(&cfg.Interval, "interval", 3*time.Second, "Delay between rides")
	flag.DurationVar(&cfg.Timeout, "timeout", 5*time.Minute, "Total timeout")
	flag.Parse()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
