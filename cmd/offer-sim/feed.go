// README: Delivery targets for simulated rides (Redis inbox, HTTP API).
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"offerstack/internal/infra"
	"offerstack/internal/modules/intake"
	"offerstack/internal/modules/offer"
)

const (
	statusSent    = "SENT"
	statusDropped = "DROPPED"
	statusFail    = "FAIL"
)

type Result struct {
	Status string
	Note   string
}

type Feed interface {
	Send(ctx context.Context, r offer.Record) Result
	Close()
}

func newFeed(ctx context.Context, cfg Config) (Feed, error) {
	switch cfg.Mode {
	case "redis":
		rdb, err := infra.NewRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		return &redisFeed{inbox: intake.NewRedisInbox(rdb, intake.DefaultInboxKey), close: func() { _ = rdb.Close() }}, nil
	case "http":
		return &httpFeed{baseURL: cfg.BaseURL, httpc: &http.Client{Timeout: 10 * time.Second}}, nil
	}
	return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
}

type redisFeed struct {
	inbox *intake.RedisInbox
	close func()
}

func (f *redisFeed) Send(ctx context.Context, r offer.Record) Result {
	if err := f.inbox.Push(ctx, r); err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	n, _ := f.inbox.Len(ctx)
	return Result{Status: statusSent, Note: fmt.Sprintf("inbox=%d", n)}
}

func (f *redisFeed) Close() { f.close() }

type httpFeed struct {
	baseURL string
	httpc   *http.Client
}

func (f *httpFeed) Send(ctx context.Context, r offer.Record) Result {
	body, err := json.Marshal(r)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/api/offers", bytes.NewReader(body))
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := f.httpc.Do(req)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	defer resp.Body.Close()
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	switch resp.StatusCode {
	case http.StatusCreated:
		return Result{Status: statusSent, Note: "admitted"}
	case http.StatusOK:
		return Result{Status: statusDropped, Note: "stack full"}
	}
	return Result{Status: statusFail, Note: fmt.Sprintf("status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))}
}

func (f *httpFeed) Close() {}
