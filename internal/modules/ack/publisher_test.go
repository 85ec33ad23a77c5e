package ack

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"

	"offerstack/internal/modules/offer"
)

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	declareErr error
	sent       []published
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	if f.declareErr != nil {
		return f.declareErr
	}
	f.declared = append(f.declared, name+":"+kind)
	return nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func TestPublisherSendsDriverResponse(t *testing.T) {
	ch := &fakeChannel{}
	p, err := NewPublisher(ch, "driver-42")
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	if len(ch.declared) != 1 || ch.declared[0] != "driver_topic:topic" {
		t.Fatalf("declared = %v", ch.declared)
	}

	out := sampleOutcome()
	if err := p.ReportOutcome(context.Background(), out); err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(ch.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(ch.sent))
	}
	got := ch.sent[0]
	if got.exchange != DriverExchange || got.key != "driver.response.ride-7" {
		t.Fatalf("published to %s/%s", got.exchange, got.key)
	}
	if got.msg.MessageId != "evt-1" || got.msg.DeliveryMode != amqp.Persistent {
		t.Fatalf("unexpected publishing %+v", got.msg)
	}
	var body DriverResponse
	if err := json.Unmarshal(got.msg.Body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Accepted || body.Resolution != offer.ResolutionBargained || body.Fare != 110 || body.DriverID != "driver-42" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestPublisherRejectedIsNotAccepted(t *testing.T) {
	ch := &fakeChannel{}
	p, _ := NewPublisher(ch, "")
	out := sampleOutcome()
	out.Phase, out.Resolution = offer.PhaseExpired, offer.ResolutionExpired
	_ = p.ReportOutcome(context.Background(), out)

	var body DriverResponse
	_ = json.Unmarshal(ch.sent[0].msg.Body, &body)
	if body.Accepted {
		t.Fatal("expired offer published as accepted")
	}
}

func TestNewPublisherDeclareFailure(t *testing.T) {
	boom := errors.New("channel closed")
	if _, err := NewPublisher(&fakeChannel{declareErr: boom}, ""); !errors.Is(err, boom) {
		t.Fatalf("expected declare error, got %v", err)
	}
}
