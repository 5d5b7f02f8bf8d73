// Package rabbitmq содержит подключение к RabbitMQ и публикацию событий консоли.
package rabbitmq

import (
	"time"

	"github.com/streadway/amqp"
)

// Ограничения очередей, которые консоль объявляет для внешних потребителей.
const (
	usersQueueMaxLength = 10000
	auditQueueMaxLength = 100000
	queueMessageTTL     = 7 * 24 * time.Hour
)

// QueueConfig очередь и ключ маршрутизации, по которому она получает события.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
	// Args аргументы объявления очереди, nil означает очередь без ограничений.
	Args amqp.Table
}

// BoundedQueueArgs ограничивает очередь maxLength сообщениями и временем жизни ttl.
// При переполнении брокер отбрасывает самые старые сообщения.
func BoundedQueueArgs(maxLength int, ttl time.Duration) amqp.Table {
	return amqp.Table{
		"x-max-length":  int32(maxLength),
		"x-overflow":    "drop-head",
		"x-message-ttl": int32(ttl / time.Millisecond),
	}
}

// ConsoleQueues очереди, получающие события push-канала консоли.
// Ключ маршрутизации совпадает с типом события.
func ConsoleQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "console.users.updated", RoutingKey: "user_updated", Args: BoundedQueueArgs(usersQueueMaxLength, queueMessageTTL)},
		{QueueName: "console.audit", RoutingKey: "#", Args: BoundedQueueArgs(auditQueueMaxLength, queueMessageTTL)},
	}
}
