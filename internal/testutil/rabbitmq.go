package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const amqpPort = "5672/tcp"

// StartRabbitMQ runs a throwaway RabbitMQ broker for event tests and
// returns an open AMQP connection. Teardown is registered on t; the
// returned func allows tearing down earlier.
func StartRabbitMQ(t *testing.T) (*amqp.Connection, func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	broker, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "rabbitmq:3.13-alpine",
			ExposedPorts: []string{amqpPort},
			WaitingFor: wait.ForAll(
				wait.ForLog("Server startup complete"),
				wait.ForListeningPort(amqpPort),
			).WithStartupTimeoutDefault(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	host, err := broker.Host(ctx)
	require.NoError(t, err)

	port, err := broker.MappedPort(ctx, amqpPort)
	require.NoError(t, err)

	conn, err := amqp.DialConfig(
		fmt.Sprintf("amqp://%s:%s/", host, port.Port()),
		amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)},
	)
	require.NoError(t, err)

	cleanup := func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer stopCancel()

		_ = conn.Close()
		_ = broker.Terminate(stopCtx)
	}
	t.Cleanup(cleanup)

	return conn, cleanup
}
