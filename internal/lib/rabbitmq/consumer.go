package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/moviestream-console/internal/lib/sl"
)

// ErrDeliveryClosed возвращается Consume, если брокер закрыл канал доставки.
var ErrDeliveryClosed = errors.New("rabbitmq: delivery channel closed")

// DeclareReplicaQueue объявляет временную очередь этого процесса и привязывает
// её к exchange по routingKey. Каждый процесс консоли получает свою копию событий,
// очередь удаляется брокером после закрытия канала.
func DeclareReplicaQueue(ch *amqp.Channel, exchange, routingKey string) (string, error) {
	const op = "rabbitmq.DeclareReplicaQueue"
	q, err := ch.QueueDeclare(
		"",
		false,
		true,
		true,
		false,
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.QueueBind(q.Name, routingKey, exchange, false, nil); err != nil {
		return "", fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, q.Name, routingKey, err)
	}
	return q.Name, nil
}

// Consume читает очередь queue до отмены ctx, обрабатывая не больше workers
// сообщений одновременно. Сообщение подтверждается после успешной обработки,
// при ошибке handler возвращается в очередь.
// Возврат происходит после завершения всех начатых обработок.
func Consume(ctx context.Context, ch *amqp.Channel, queue string, workers int, handler func(ctx context.Context, body []byte) error, log *slog.Logger) error {
	const op = "rabbitmq.Consume"
	if workers < 1 {
		workers = 1
	}

	delivery, err := ch.Consume(
		queue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	sem := make(chan struct{}, workers)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-delivery:
			if !ok {
				return fmt.Errorf("%s: %w", op, ErrDeliveryClosed)
			}
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				if err := d.Nack(false, true); err != nil {
					log.Warn("failed to nack message", slog.String("op", op), sl.Err(err))
				}
				return nil
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				if err := handler(ctx, d.Body); err != nil {
					log.Warn("message handling failed, requeue",
						slog.String("op", op), slog.String("type", d.Type), sl.Err(err))
					if nackErr := d.Nack(false, true); nackErr != nil {
						log.Error("failed to nack message", slog.String("op", op), sl.Err(nackErr))
					}
					return
				}
				if ackErr := d.Ack(false); ackErr != nil {
					log.Error("failed to ack message", slog.String("op", op), sl.Err(ackErr))
				}
			}()
		}
	}
}
