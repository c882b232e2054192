package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"dinesplit/internal/connections/rabbitmq"
	"dinesplit/internal/domain"
)

// EventPublisher is the push channel the core notifies on order admission,
// status transitions and payment-readiness. Delivery failures never fail the
// write that triggered them; callers log and move on.
type EventPublisher interface {
	OrdersPlaced(ctx context.Context, msg domain.OrdersPlacedMessage) error
	StatusChanged(ctx context.Context, msg domain.StatusChangedMessage) error
	PaymentReady(ctx context.Context, msg domain.PaymentReadyMessage) error
}

type NopPublisher struct{}

func (NopPublisher) OrdersPlaced(context.Context, domain.OrdersPlacedMessage) error   { return nil }
func (NopPublisher) StatusChanged(context.Context, domain.StatusChangedMessage) error { return nil }
func (NopPublisher) PaymentReady(context.Context, domain.PaymentReadyMessage) error   { return nil }

// RabbitPublisher publishes events over the shared RabbitMQ client. Kitchen
// admissions go to the topic exchange routed per table; everything else fans
// out to subscribed clients.
type RabbitPublisher struct {
	client *rabbitmq.Client
}

func NewRabbitPublisher(client *rabbitmq.Client) *RabbitPublisher {
	return &RabbitPublisher{client: client}
}

func (p *RabbitPublisher) publish(ctx context.Context, exchange, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return p.client.Publish(pctx, exchange, key, body, amqp.Table{"x-source": "billing-service"})
}

func (p *RabbitPublisher) OrdersPlaced(ctx context.Context, msg domain.OrdersPlacedMessage) error {
	key := fmt.Sprintf("kitchen.table.%d", msg.TableNumber)
	return p.publish(ctx, rabbitmq.ExchangeOrders, key, msg)
}

func (p *RabbitPublisher) StatusChanged(ctx context.Context, msg domain.StatusChangedMessage) error {
	return p.publish(ctx, rabbitmq.ExchangeNotifications, "", msg)
}

func (p *RabbitPublisher) PaymentReady(ctx context.Context, msg domain.PaymentReadyMessage) error {
	return p.publish(ctx, rabbitmq.ExchangeNotifications, "", msg)
}
