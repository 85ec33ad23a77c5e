// README: Entry point; loads config, wires the offer stack, intake and outcome sinks, starts the HTTP server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/redis/go-redis/v9"

	"offerstack/internal/config"
	httptransport "offerstack/internal/http"
	"offerstack/internal/infra"
	"offerstack/internal/modules/ack"
	"offerstack/internal/modules/intake"
	"offerstack/internal/modules/offer"
	"offerstack/internal/modules/pricing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg.LogLevel, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("offerstack exited", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	pricingSvc, err := pricing.NewService(pricing.Band{Low: cfg.Offers.FareBandLow, High: cfg.Offers.FareBandHigh})
	if err != nil {
		return err
	}
	offerSvc := offer.NewService(pricingSvc, offer.Options{
		MaxVisible:       cfg.Offers.MaxVisible,
		TickInterval:     cfg.Offers.TickInterval,
		DefaultCountdown: cfg.Offers.DefaultCountdown,
		Logger:           logger,
	})

	var rdb *redis.Client
	if cfg.Intake.Kind == "redis" || cfg.Ack.Stream {
		rdb, err = infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			return err
		}
		defer rdb.Close()
	}

	sinks := ack.NewMulti().Add("log", ack.NewLogSink(logger))
	deps := httptransport.RouterDeps{Logger: logger}

	if cfg.Ack.Ledger {
		pool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		ledger := ack.NewLedger(pool)
		if err := ledger.EnsureSchema(ctx); err != nil {
			return err
		}
		sinks.Add("ledger", ledger)
		deps.Ledger = ledger
	}
	if cfg.Ack.Stream {
		sinks.Add("stream", ack.NewStream(rdb, ack.DefaultStreamKey))
	}
	if cfg.Ack.AMQP {
		mq, err := infra.DialAMQP(ctx, cfg.AMQP.URL, logger)
		if err != nil {
			return err
		}
		defer mq.Close()
		pub, err := ack.NewPublisher(mq.Channel(), cfg.DriverID)
		if err != nil {
			return err
		}
		sinks.Add("amqp", pub)
	}

	var source offer.Source
	switch cfg.Intake.Kind {
	case "redis":
		source = intake.NewRedisInbox(rdb, intake.DefaultInboxKey)
	case "fixture":
		fixture, err := intake.LoadFixture(cfg.Intake.FixturePath, cfg.Intake.Loop)
		if err != nil {
			return err
		}
		source = fixture
	}

	runner := offer.NewRunner(offerSvc, source, sinks, offer.RunnerOptions{
		PollInterval: cfg.Offers.PollInterval,
		Logger:       logger,
	})
	deps.Runner = runner

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = runner.Run(runCtx)
	}()

	logger.Info("offerstack listening", "addr", cfg.HTTP.Addr, "intake", cfg.Intake.Kind, "sinks", sinks.Len())
	server := httptransport.NewServer(cfg.HTTP.Addr, httptransport.NewRouter(deps))
	err = server.Run(runCtx)

	// Stopping the runner reports every outcome still queued.
	cancel()
	wg.Wait()
	return err
}
