package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ChannelMock struct {
	mock.Mock
}

func (m *ChannelMock) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func TestPublishMessage_Unit(t *testing.T) {
	type TestMsg struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	t.Run("publishes persistent json", func(t *testing.T) {
		ch := new(ChannelMock)
		ch.On("Publish", "ex", "key", false, false, mock.MatchedBy(func(p amqp.Publishing) bool {
			var got TestMsg
			return p.ContentType == "application/json" &&
				p.DeliveryMode == amqp.Persistent &&
				json.Unmarshal(p.Body, &got) == nil &&
				got == TestMsg{ID: 1, Name: "Hello"}
		})).Return(nil).Once()

		err := PublishMessage(ch, "ex", "key", TestMsg{ID: 1, Name: "Hello"})
		require.NoError(t, err)
		ch.AssertExpectations(t)
	})

	t.Run("channel error is wrapped", func(t *testing.T) {
		ch := new(ChannelMock)
		ch.On("Publish", mock.Anything, mock.Anything, false, false, mock.Anything).
			Return(errors.New("channel closed")).Once()

		err := PublishMessage(ch, "ex", "key", TestMsg{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rabbitmq.PublishMessage")
		assert.Contains(t, err.Error(), "channel closed")
	})

	t.Run("unmarshalable message", func(t *testing.T) {
		ch := new(ChannelMock)

		err := PublishMessage(ch, "ex", "key", make(chan int))
		require.Error(t, err)
		ch.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPublishMessage_Broker(t *testing.T) {
	ctx := context.Background()
	amqpURI := SetupRabbitMQ(ctx, t)

	conn, err := Connect(amqpURI, 5, time.Second)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	ch, err := SetupExchange(conn, "auth.events.test")
	require.NoError(t, err)
	defer func() { _ = ch.Close() }()

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, "user.registered", "auth.events.test", false, nil))

	deliveries, err := ch.Consume(q.Name, "test-consumer", true, false, false, false, nil)
	require.NoError(t, err)

	require.NoError(t, PublishMessage(ch, "auth.events.test", "user.registered", map[string]any{"id": 1}))

	select {
	case d := <-deliveries:
		assert.JSONEq(t, `{"id":1}`, string(d.Body))
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for message")
	}
}
