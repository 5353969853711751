package rabbitmq

import (
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Connect dials the broker with retries. RabbitMQ may still be booting
// when the service comes up in compose.
func Connect(connection string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"
	var conn *amqp.Connection
	var err error

	for range retries {
		conn, err = amqp.Dial(connection)
		if err == nil {
			return conn, nil
		}
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("%s: %w", op, err)
}

// OpenChannel opens a channel with prefetch set and the notification
// topology declared.
func OpenChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	const op = "rabbitmq.OpenChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := SetupTopology(ch); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ch, nil
}
