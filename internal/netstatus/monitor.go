// Package netstatus определяет доступность сети для консоли.
//
// Monitor объединяет три источника: события операционной системы,
// события service worker и периодический запрос к ping-адресу бэкенда.
// Каждый источник меняет флаг сразу, без сглаживания.
package netstatus

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/magabrotheeeer/moviestream-console/internal/config"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/sl"
	"github.com/magabrotheeeer/moviestream-console/internal/metrics"
)

// Source источник сигнала о состоянии сети.
type Source string

// Источники сигнала.
const (
	SourceNative Source = "native"
	SourceWorker Source = "worker"
	SourcePoll   Source = "poll"
)

// Monitor хранит флаг доступности сети.
type Monitor struct {
	pingURL  string
	interval time.Duration
	client   *http.Client
	log      *slog.Logger
	now      func() time.Time

	mu     sync.RWMutex
	online bool
	subs   map[int]chan bool
	nextID int
}

// NewMonitor создаёт монитор для ping-адреса pingURL. Изначально сеть считается доступной.
func NewMonitor(pingURL string, cfg config.NetStatus, log *slog.Logger) *Monitor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = 5 * time.Second
	}
	metrics.SetOnline(true)
	return &Monitor{
		pingURL:  pingURL,
		interval: cfg.PollInterval,
		client:   &http.Client{Timeout: cfg.PingTimeout},
		log:      log,
		now:      time.Now,
		online:   true,
		subs:     make(map[int]chan bool),
	}
}

// Online сообщает, доступна ли сеть.
func (m *Monitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// NotifyNative принимает событие online/offline операционной системы.
func (m *Monitor) NotifyNative(online bool) {
	m.set(online, SourceNative)
}

// NotifyWorker принимает событие от обёртки service worker.
func (m *Monitor) NotifyWorker(online bool) {
	m.set(online, SourceWorker)
}

// Subscribe возвращает канал переходов online/offline и функцию отписки.
func (m *Monitor) Subscribe() (<-chan bool, func()) {
	ch := make(chan bool, 8)
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = ch
	m.mu.Unlock()

	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if c, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(c)
		}
	}
}

// Run выполняет проверку сразу и затем каждые PollInterval до отмены ctx.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Poll(ctx)
		}
	}
}

// Poll выполняет один запрос к ping-адресу и обновляет флаг.
// Любой ответ 2xx означает доступность, всё остальное недоступность.
func (m *Monitor) Poll(ctx context.Context) bool {
	online := m.ping(ctx)
	if ctx.Err() != nil {
		return m.Online()
	}
	m.set(online, SourcePoll)
	return online
}

func (m *Monitor) ping(ctx context.Context) bool {
	const op = "netstatus.ping"
	target, err := m.cacheBusted()
	if err != nil {
		m.log.Error("invalid ping url", slog.String("op", op), sl.Err(err))
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		m.log.Error("failed to build ping request", slog.String("op", op), sl.Err(err))
		return false
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := m.client.Do(req)
	if err != nil {
		m.log.Debug("ping failed", slog.String("op", op), sl.Err(err))
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// cacheBusted добавляет к ping-адресу параметр t с текущим временем в миллисекундах.
func (m *Monitor) cacheBusted() (string, error) {
	u, err := url.Parse(m.pingURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("t", strconv.FormatInt(m.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (m *Monitor) set(online bool, src Source) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.online == online {
		return
	}
	m.online = online
	metrics.SetOnline(online)
	m.log.Info("network status changed", slog.Bool("online", online), slog.String("source", string(src)))

	for _, ch := range m.subs {
		select {
		case ch <- online:
		default:
		}
	}
}
