package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_RoutesByEventType(t *testing.T) {
	ctx := context.Background()
	conn, err := Connect(ctx, amqpURL(ctx, t), 3, time.Second)
	require.NoError(t, err)
	defer conn.Close()

	exchange := "console.events.publish-test"
	ch, err := SetupChannel(conn, exchange, []QueueConfig{{QueueName: "publish-test.users", RoutingKey: "user_updated"}})
	require.NoError(t, err)

	pub := NewPublisher(ch, exchange)
	defer pub.Close()

	msg := map[string]any{"type": "user_updated", "user": map[string]any{"id": "u1"}}
	require.NoError(t, pub.Publish("user_updated", msg))

	consumeCh, err := conn.Channel()
	require.NoError(t, err)
	defer consumeCh.Close()
	deliveries, err := consumeCh.Consume("publish-test.users", "test-consumer", true, false, false, false, nil)
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		var got map[string]any
		require.NoError(t, json.Unmarshal(d.Body, &got))
		assert.Equal(t, "user_updated", got["type"])
		assert.Equal(t, "user_updated", d.Type)
		assert.Equal(t, "application/json", d.ContentType)
		assert.NotEmpty(t, d.MessageId)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for message via exchange")
	}
}

func TestPublishMessage_MarshalError(t *testing.T) {
	// json не сериализует каналы, до брокера дело не доходит
	err := PublishMessage(nil, "", "q", struct {
		Ch chan int `json:"ch"`
	}{Ch: make(chan int)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rabbitmq.PublishMessage")
}
