// Package retry содержит общую политику повторных попыток.
//
// Политика задаёт максимальное число повторов и расписание задержек,
// причём расписание может зависеть от ошибки: например, ошибки авторизации
// повторяются с фиксированной паузой, а сетевые — с экспоненциальной.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrStopped возвращается, когда классификатор запретил повтор.
var ErrStopped = errors.New("retry: stopped by classifier")

// Schedule создаёт новое расписание задержек для серии повторов.
type Schedule func() backoff.BackOff

// Fixed возвращает расписание с постоянной задержкой d.
func Fixed(d time.Duration) Schedule {
	return func() backoff.BackOff {
		return backoff.NewConstantBackOff(d)
	}
}

// Exponential возвращает расписание base, 2*base, 4*base, ... без случайного разброса.
// limit ограничивает одну задержку, 0 означает отсутствие ограничения.
func Exponential(base, limit time.Duration) Schedule {
	return func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = base
		b.Multiplier = 2
		b.RandomizationFactor = 0
		b.MaxElapsedTime = 0
		if limit > 0 {
			b.MaxInterval = limit
		} else {
			b.MaxInterval = time.Duration(1<<62 - 1)
		}
		b.Reset()
		return b
	}
}

// Classifier относит ошибку к классу и выбирает для него расписание.
// Возврат nil расписания означает, что ошибка не повторяется.
type Classifier func(err error) (class string, schedule Schedule)

// Policy описывает политику повторов.
type Policy struct {
	// MaxRetries число повторов после первой попытки. Отрицательное значение — без ограничения.
	MaxRetries int
	// Classify выбирает расписание по ошибке.
	Classify Classifier
	// OnRetry вызывается перед ожиданием очередного повтора.
	OnRetry func(attempt int, wait time.Duration, err error)

	sleep func(ctx context.Context, d time.Duration) error
}

// New создаёт политику с одинаковым расписанием для всех ошибок.
func New(maxRetries int, schedule Schedule) *Policy {
	return &Policy{
		MaxRetries: maxRetries,
		Classify:   func(error) (string, Schedule) { return "default", schedule },
	}
}

// WithSleep подменяет функцию ожидания, используется в тестах.
func (p *Policy) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *Policy {
	p.sleep = sleep
	return p
}

// Do выполняет fn, повторяя её по политике. Возвращает последнюю ошибку fn
// или ошибку контекста, если ожидание было прервано.
//
// Смена класса ошибки между попытками начинает расписание нового класса с первой задержки.
func (p *Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var (
		current   backoff.BackOff
		lastClass string
	)
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		if p.MaxRetries >= 0 && attempt >= p.MaxRetries {
			return err
		}

		class, schedule := p.Classify(err)
		if schedule == nil {
			return errors.Join(ErrStopped, err)
		}
		if current == nil || class != lastClass {
			current = schedule()
			lastClass = class
		}

		wait := current.NextBackOff()
		if wait == backoff.Stop {
			return err
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, wait, err)
		}
		if serr := sleep(ctx, wait); serr != nil {
			return serr
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
