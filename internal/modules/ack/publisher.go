// README: AMQP sink; publishes the driver's response for each offer to the driver topic exchange.
package ack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"offerstack/internal/modules/offer"
)

const (
	DriverExchange      = "driver_topic"
	responseRoutingBase = "driver.response."
)

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// DriverResponse is the message body consumers of driver_topic receive.
type DriverResponse struct {
	EventID    string           `json:"event_id"`
	RideID     string           `json:"ride_id"`
	DriverID   string           `json:"driver_id,omitempty"`
	Accepted   bool             `json:"accepted"`
	Resolution offer.Resolution `json:"resolution"`
	Fare       float64          `json:"fare"`
	BaseFare   float64          `json:"base_fare"`
	DecidedAt  time.Time        `json:"decided_at"`
}

type Publisher struct {
	ch       Channel
	driverID string
}

// NewPublisher declares the exchange and returns a publisher tagging every
// message with driverID.
func NewPublisher(ch Channel, driverID string) (*Publisher, error) {
	if err := ch.ExchangeDeclare(DriverExchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", DriverExchange, err)
	}
	return &Publisher{ch: ch, driverID: driverID}, nil
}

func RoutingKey(out offer.Outcome) string {
	return responseRoutingBase + string(out.OfferID)
}

func (p *Publisher) ReportOutcome(ctx context.Context, out offer.Outcome) error {
	body, err := json.Marshal(DriverResponse{
		EventID:    out.EventID,
		RideID:     string(out.OfferID),
		DriverID:   p.driverID,
		Accepted:   out.Phase == offer.PhaseAccepted,
		Resolution: out.Resolution,
		Fare:       float64(out.Fare),
		BaseFare:   float64(out.BaseFare),
		DecidedAt:  out.DecidedAt,
	})
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, DriverExchange, RoutingKey(out), false, false, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    out.EventID,
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    out.DecidedAt,
	})
}
