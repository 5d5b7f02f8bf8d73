// Package apiclient реализует HTTP-клиент бэкенда консоли.
//
// Клиент задаёт базовый URL, таймаут и заголовки по умолчанию, добавляет
// токен сессии в каждый запрос и выполняет глобальные переходы:
// при ответе 401 учётные данные удаляются и клиент переводится на страницу
// входа, при ответе 403 с признаком блокировки — на страницу заблокированной
// учётной записи. Исходная ошибка в обоих случаях возвращается вызывающему.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/moviestream-console/internal/endpoints"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/navigator"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/sl"
	"github.com/magabrotheeeer/moviestream-console/internal/metrics"
)

// DefaultBaseURL используется, если базовый URL не задан.
const DefaultBaseURL = "http://localhost:5000/api"

// DefaultTimeout таймаут запроса по умолчанию.
const DefaultTimeout = 30 * time.Second

// Session источник токена и владелец учётных данных.
type Session interface {
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
	MarkAccountLocked(ctx context.Context) error
}

// Doer выполняет запрос к API и возвращает тело успешного ответа.
type Doer interface {
	Do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error)
}

// Options настройки клиента.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Transport         http.RoundTripper
}

// Client HTTP-клиент бэкенда.
type Client struct {
	baseURL   string
	hc        *http.Client
	sess      Session
	nav       navigator.Navigator
	limiter   *rate.Limiter
	log       *slog.Logger
	endpoints *endpoints.Registry
}

// New создаёт клиент.
func New(opt Options, sess Session, nav navigator.Navigator, log *slog.Logger) *Client {
	base := opt.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	base = strings.TrimRight(base, "/")

	timeout := opt.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	var limiter *rate.Limiter
	if opt.RequestsPerSecond > 0 {
		burst := opt.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opt.RequestsPerSecond), burst)
	}

	return &Client{
		baseURL:   base,
		hc:        &http.Client{Timeout: timeout, Transport: opt.Transport},
		sess:      sess,
		nav:       nav,
		limiter:   limiter,
		log:       log,
		endpoints: endpoints.New(base),
	}
}

// Endpoints возвращает реестр адресов для базового URL клиента.
func (c *Client) Endpoints() *endpoints.Registry {
	return c.endpoints
}

// BaseURL возвращает базовый URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get выполняет GET-запрос.
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil)
}

// Post выполняет POST-запрос.
func (c *Client) Post(ctx context.Context, path string, body any) ([]byte, error) {
	return c.Do(ctx, http.MethodPost, path, nil, body)
}

// Put выполняет PUT-запрос.
func (c *Client) Put(ctx context.Context, path string, body any) ([]byte, error) {
	return c.Do(ctx, http.MethodPut, path, nil, body)
}

// Patch выполняет PATCH-запрос.
func (c *Client) Patch(ctx context.Context, path string, body any) ([]byte, error) {
	return c.Do(ctx, http.MethodPatch, path, nil, body)
}

// Delete выполняет DELETE-запрос.
func (c *Client) Delete(ctx context.Context, path string) ([]byte, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do выполняет запрос method к path относительно базового URL.
// Успешный ответ возвращается без изменений.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	op := "apiclient." + method + " " + path

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindUnknown, Err: err}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &Error{Op: op, Kind: transportKind(ctx), Err: err}
		}
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	metrics.APIDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequests.WithLabelValues(method, metrics.StatusClass(0)).Inc()
		c.log.Warn("request failed", slog.String("op", op), sl.Err(err))
		return nil, &Error{Op: op, Kind: transportKind(ctx), Err: err}
	}
	defer resp.Body.Close()
	metrics.APIRequests.WithLabelValues(method, metrics.StatusClass(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, Kind: transportKind(ctx), Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	locked := resp.StatusCode == http.StatusForbidden && accountLocked(raw)
	apiErr := &Error{
		Op:      op,
		Kind:    kindForStatus(resp.StatusCode, locked),
		Status:  resp.StatusCode,
		Message: errorMessage(raw),
	}
	c.handleGlobal(ctx, apiErr)
	return nil, apiErr
}

// handleGlobal выполняет побочные эффекты, общие для всех запросов.
func (c *Client) handleGlobal(ctx context.Context, apiErr *Error) {
	// учётные данные удаляются даже при отменённом контексте запроса
	ctx = context.WithoutCancel(ctx)

	switch apiErr.Kind {
	case KindAccountLocked:
		if err := c.sess.MarkAccountLocked(ctx); err != nil {
			c.log.Error("failed to persist account lock", sl.Err(err))
		}
		c.redirect(navigator.RouteAccountLocked)
	case KindUnauthorized:
		if err := c.sess.Clear(ctx); err != nil {
			c.log.Error("failed to clear credentials", sl.Err(err))
		}
		c.redirect(navigator.RouteLogin)
	}
}

func (c *Client) redirect(route string) {
	metrics.AuthRedirects.WithLabelValues(route).Inc()
	if c.nav != nil {
		c.nav.Redirect(route)
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	token, err := c.sess.Token(ctx)
	if err != nil {
		c.log.Warn("failed to read token, sending request unauthenticated", sl.Err(err))
	}
	if token != "" && token != "undefined" && token != "null" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if method == http.MethodPatch {
		req.Header.Set("Access-Control-Allow-Origin", "*")
		req.Header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		req.Header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	}
	return req, nil
}

func transportKind(ctx context.Context) Kind {
	if errors.Is(ctx.Err(), context.Canceled) {
		return KindCanceled
	}
	return KindNetwork
}

// Call выполняет запрос и декодирует ответ в T, разворачивая обёртку { success, data }.
func Call[T any](ctx context.Context, d Doer, method, path string, query url.Values, body any) (T, error) {
	raw, err := d.Do(ctx, method, path, query, body)
	if err != nil {
		var zero T
		return zero, err
	}
	return Unwrap[T](raw)
}
