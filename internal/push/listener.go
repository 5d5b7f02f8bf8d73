// Package push принимает уведомления бэкенда по websocket.
//
// После подключения Listener отправляет сообщение authenticate с токеном
// текущей сессии, затем передаёт входящие события зарегистрированным
// обработчикам и, при наличии, публикует их в RabbitMQ.
// Разрыв соединения приводит к переподключению по общей политике повторов:
// короткоживущее соединение считается неудачной попыткой.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/magabrotheeeer/moviestream-console/internal/config"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/retry"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/sl"
	"github.com/magabrotheeeer/moviestream-console/internal/metrics"
	"github.com/magabrotheeeer/moviestream-console/internal/models"
)

// Типы сообщений канала.
const (
	TypeAuthenticate = "authenticate"
	TypeUserUpdated  = "user_updated"
)

// Event сообщение бэкенда.
type Event struct {
	Type string          `json:"type"`
	User *models.User    `json:"user,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

type authMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// Handler обрабатывает событие одного типа.
type Handler func(ctx context.Context, ev Event)

// TokenSource отдаёт токен текущей сессии.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Publisher пересылает событие дальше, например в RabbitMQ.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// Listener поддерживает websocket-соединение с бэкендом.
type Listener struct {
	url       string
	tokens    TokenSource
	dialer    *websocket.Dialer
	policy    *retry.Policy
	publisher Publisher
	log       *slog.Logger
	// stableAfter время жизни соединения, после которого расписание переподключения начинается заново.
	stableAfter time.Duration

	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewListener создаёт Listener для адреса cfg.WebSocketURL.
func NewListener(cfg config.Push, tokens TokenSource, log *slog.Logger) *Listener {
	base, limit := cfg.ReconnectBase, cfg.ReconnectMax
	if base <= 0 {
		base = time.Second
	}
	l := &Listener{
		url:         cfg.WebSocketURL,
		tokens:      tokens,
		dialer:      &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		log:         log,
		stableAfter: base,
		handlers:    make(map[string][]Handler),
	}
	l.policy = retry.New(-1, retry.Exponential(base, limit))
	l.policy.OnRetry = func(attempt int, wait time.Duration, err error) {
		l.log.Warn("push connection failed, reconnecting",
			slog.Int("attempt", attempt), slog.Duration("wait", wait), sl.Err(err))
	}
	return l
}

// WithPolicy подменяет политику переподключения.
func (l *Listener) WithPolicy(p *retry.Policy) *Listener {
	l.policy = p
	return l
}

// WithPublisher включает пересылку событий в p.
func (l *Listener) WithPublisher(p Publisher) *Listener {
	l.publisher = p
	return l
}

// Handle регистрирует обработчик событий типа eventType.
func (l *Listener) Handle(eventType string, h Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[eventType] = append(l.handlers[eventType], h)
}

// Run держит соединение открытым до отмены ctx. Соединение, закрытое раньше
// stableAfter, продолжает текущее расписание задержек, иначе оно начинается заново.
func (l *Listener) Run(ctx context.Context) error {
	const op = "push.Run"
	for {
		err := l.policy.Do(ctx, l.session)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
}

// session подключается и читает события. nil означает, что соединение
// было стабильным и переподключаться можно без задержки.
func (l *Listener) session(ctx context.Context) error {
	const op = "push.session"
	conn, err := l.connect(ctx)
	if err != nil {
		return err
	}

	l.log.Info("push channel connected", slog.String("url", l.url))
	started := time.Now()
	err = l.serve(ctx, conn)
	if ctx.Err() != nil {
		return nil
	}
	if err == nil {
		err = errors.New("connection closed")
	}
	if time.Since(started) >= l.stableAfter {
		l.log.Warn("push channel closed", sl.Err(err))
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// connect открывает соединение и отправляет токен сессии.
func (l *Listener) connect(ctx context.Context) (*websocket.Conn, error) {
	const op = "push.connect"
	conn, _, err := l.dialer.DialContext(ctx, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	token, err := l.tokens.Token(ctx)
	if err != nil {
		l.log.Warn("failed to read session token for push channel", sl.Err(err))
	}
	if token == "" {
		l.log.Warn("push channel opened without session token")
		return conn, nil
	}
	if err := conn.WriteJSON(authMessage{Type: TypeAuthenticate, Token: token}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%s: authenticate: %w", op, err)
	}
	return conn, nil
}

// serve читает события до ошибки чтения или отмены ctx.
func (l *Listener) serve(ctx context.Context, conn *websocket.Conn) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			conn.Close()
		case <-done:
			conn.Close()
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return errors.New("closed by server")
			}
			return err
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			l.log.Warn("malformed push message", sl.Err(err))
			continue
		}
		l.dispatch(ctx, ev)
	}
}

func (l *Listener) dispatch(ctx context.Context, ev Event) {
	metrics.PushEvents.WithLabelValues(ev.Type).Inc()

	l.mu.RLock()
	handlers := append([]Handler(nil), l.handlers[ev.Type]...)
	l.mu.RUnlock()
	for _, h := range handlers {
		h(ctx, ev)
	}

	if l.publisher != nil && ev.Type != "" {
		if err := l.publisher.Publish(ev.Type, ev); err != nil {
			l.log.Error("failed to publish push event", slog.String("type", ev.Type), sl.Err(err))
		}
	}
}
