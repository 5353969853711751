package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// NotificationsExchange carries subscription lifecycle events.
const NotificationsExchange = "notifications"

// Routing keys published by the renewal sweep.
const (
	RoutingKeyRenewed = "subscription.renewed"
	RoutingKeyExpired = "subscription.expired"
)

// QueueConfig binds one consumer queue to a routing key.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues lists the queues the sender consumes.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notification.renewed", RoutingKey: RoutingKeyRenewed},
		{QueueName: "notification.expired", RoutingKey: RoutingKeyExpired},
	}
}

// SetupTopology declares the exchange and the consumer queues with
// their bindings. Safe to call from both producer and consumer.
func SetupTopology(ch *amqp.Channel) error {
	const op = "rabbitmq.SetupTopology"
	if err := ch.ExchangeDeclare(NotificationsExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, q := range GetNotificationQueues() {
		if _, err := ch.QueueDeclare(q.QueueName, true, false, false, false, nil); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := ch.QueueBind(q.QueueName, q.RoutingKey, NotificationsExchange, false, nil); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}
