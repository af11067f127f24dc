package events

import (
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

const OrderCreatedQueue = "order.created"

// MustDialRabbit connects to RabbitMQ or exits. Only called at process
// bootstrap.
func MustDialRabbit(url string) *amqp.Connection {
	conn, err := amqp.Dial(url)
	if err != nil {
		log.Fatalf("connect to RabbitMQ: %v", err)
	}
	return conn
}
