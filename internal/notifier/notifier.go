// Package notifier consumes the fanout notification queue and surfaces
// status-change and payment-ready events. It stands in for the client push
// channel's server side during development and staging.
package notifier

import (
	"context"
	"encoding/json"

	"dinesplit/internal/common/logger"
	"dinesplit/internal/connections/rabbitmq"
)

func Run(ctx context.Context, client *rabbitmq.Client) error {
	lg := logger.New("notification-subscriber")

	if err := client.DeclareTopology(); err != nil {
		return err
	}
	msgs, err := client.Consume(rabbitmq.QueueNotifications, "notifier", 10)
	if err != nil {
		return err
	}
	lg.Info("subscribed", map[string]any{"queue": rabbitmq.QueueNotifications})

	for {
		select {
		case <-ctx.Done():
			lg.Info("graceful_shutdown", nil)
			return nil
		case d, ok := <-msgs:
			if !ok {
				// channel closed under us: a dropped connection is an error
				// the supervisor should restart on, a broker-side cancel is not
				if err := client.Ping(); err != nil {
					return err
				}
				lg.Info("consumer_cancelled", nil)
				return nil
			}
			var payload map[string]any
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				// unparseable message: drop, don't requeue forever
				_ = d.Nack(false, false)
				continue
			}
			lg.Info(eventAction(payload), payload)
			_ = d.Ack(false)
		}
	}
}

func eventAction(payload map[string]any) string {
	switch {
	case payload["new_status"] != nil:
		return "order_status_changed"
	case payload["total"] != nil:
		return "payment_ready"
	default:
		return "notification"
	}
}
