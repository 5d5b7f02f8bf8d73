// Package cache содержит реализации постоянного хранилища сессии:
// в памяти процесса и в Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/moviestream-console/internal/config"
)

// changesChannel канал Redis, в который публикуются имена изменённых ключей.
const changesChannel = "changes"

// Redis хранилище ключей сессии в Redis. Изменения ключей публикуются
// в канал <prefix>changes, поэтому все экземпляры консоли видят записи друг друга.
type Redis struct {
	Db     *redis.Client
	prefix string
}

// InitServer подключается к Redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.Session) (*Redis, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddress,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		Username:    cfg.RedisUser,
		DialTimeout: cfg.DialTimeout,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Redis{Db: db, prefix: cfg.KeyPrefix}, nil
}

func (c *Redis) key(k string) string {
	return c.prefix + k
}

// Get возвращает значение ключа и признак его наличия.
func (c *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	const op = "cache.Redis.Get"
	val, err := c.Db.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return val, true, nil
}

// Set сохраняет значение без срока жизни, как постоянное хранилище браузера.
func (c *Redis) Set(ctx context.Context, key, value string) error {
	const op = "cache.Redis.Set"
	if err := c.Db.Set(ctx, c.key(key), value, time.Duration(0)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return c.notify(ctx, op, key)
}

// Delete удаляет ключи. Отсутствующие ключи не считаются ошибкой.
func (c *Redis) Delete(ctx context.Context, keys ...string) error {
	const op = "cache.Redis.Delete"
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	removed, err := c.Db.Del(ctx, full...).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if removed == 0 {
		return nil
	}
	return c.notify(ctx, op, keys...)
}

func (c *Redis) notify(ctx context.Context, op string, keys ...string) error {
	for _, k := range keys {
		if err := c.Db.Publish(ctx, c.key(changesChannel), k).Err(); err != nil {
			return fmt.Errorf("%s: publish change: %w", op, err)
		}
	}
	return nil
}

// Watch подписывается на изменения ключей и возвращает канал их имён без префикса
// и функцию отписки. Канал закрывается после отписки или потери подписки.
func (c *Redis) Watch() (<-chan string, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	ps := c.Db.Subscribe(ctx, c.key(changesChannel))

	out := make(chan string, 16)
	go func() {
		defer close(out)
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				default:
				}
			}
		}
	}()

	var once sync.Once
	return out, func() {
		once.Do(func() {
			cancel()
			_ = ps.Close()
		})
	}
}

// Close закрывает соединение с Redis.
func (c *Redis) Close() error {
	return c.Db.Close()
}
