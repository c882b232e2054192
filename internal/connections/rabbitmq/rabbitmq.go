package rabbitmq

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"dinesplit/internal/config"
)

const (
	// ExchangeOrders carries kitchen admission messages, routed per table.
	ExchangeOrders = "orders_topic"
	// ExchangeNotifications fans status-change and payment-ready events out
	// to every subscribed client channel.
	ExchangeNotifications = "notifications_fanout"
	QueueNotifications    = "notifications.q"
)

type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel

	acks <-chan amqp.Confirmation
	mu   sync.Mutex // serializes Publish while waiting on confirms
}

func Dial(cfg config.RabbitMQ) (*Client, error) {
	vhost := cfg.VHost
	if vhost == "" {
		vhost = "/"
	}
	url := fmt.Sprintf("amqp://%s:%s@%s:%d/%s", cfg.User, cfg.Password, cfg.Host, cfg.Port, vhost)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	return &Client{conn: conn, ch: ch, acks: acks}, nil
}

// DialTLS is Dial over amqps for managed brokers.
func DialTLS(cfg config.RabbitMQ) (*Client, error) {
	vhost := cfg.VHost
	if vhost == "" {
		vhost = "/"
	}
	url := fmt.Sprintf("amqps://%s:%s@%s:%d/%s", cfg.User, cfg.Password, cfg.Host, cfg.Port, vhost)
	conn, err := amqp.DialTLS(url, &tls.Config{MinVersion: tls.VersionTLS12})
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	return &Client{conn: conn, ch: ch, acks: acks}, nil
}

func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

func (c *Client) Ping() error {
	if c == nil || c.conn == nil || c.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	return nil
}

// DeclareTopology declares the exchanges and queues idempotently. Both the
// billing service and the subscriber call it so startup order does not matter.
func (c *Client) DeclareTopology() error {
	if err := c.ch.ExchangeDeclare(ExchangeOrders, "topic", true, false, false, false, nil); err != nil {
		return err
	}
	if err := c.ch.ExchangeDeclare(ExchangeNotifications, "fanout", true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := c.ch.QueueDeclare(QueueNotifications, true, false, false, false, nil); err != nil {
		return err
	}
	return c.ch.QueueBind(QueueNotifications, "", ExchangeNotifications, false, nil)
}

// Publish sends one persistent message and waits for the broker confirm or
// context cancellation.
func (c *Client) Publish(ctx context.Context, exchange, key string, body []byte, headers amqp.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ch.PublishWithContext(ctx, exchange, key, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    time.Now().UTC(),
		Headers:      headers,
		Body:         body,
	}); err != nil {
		return err
	}

	select {
	case conf := <-c.acks:
		if conf.Ack {
			return nil
		}
		return errors.New("publish NACK from broker")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume subscribes to a queue with manual acks.
func (c *Client) Consume(queue, consumer string, prefetch int) (<-chan amqp.Delivery, error) {
	if prefetch > 0 {
		if err := c.ch.Qos(prefetch, 0, false); err != nil {
			return nil, err
		}
	}
	return c.ch.Consume(queue, consumer, false, false, false, false, nil)
}
