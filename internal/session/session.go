// Package session владеет учётными данными клиента консоли.
//
// Токен хранится под одним каноническим ключом auth_token. Ключи token и
// authToken остались от прежних версий клиента: они читаются в порядке
// приоритета и при первом чтении переносятся под канонический ключ.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/magabrotheeeer/moviestream-console/internal/lib/jwt"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/sl"
	"github.com/magabrotheeeer/moviestream-console/internal/models"
)

// Ключи постоянного хранилища.
const (
	KeyToken         = "auth_token"
	KeyLegacyToken   = "token"
	KeyLegacyAuth    = "authToken"
	KeyUser          = "user"
	KeyUserID        = "userId"
	KeyAccountLocked = "isAccountLocked"
)

// TokenKeys ключи токена в порядке приоритета чтения.
var TokenKeys = []string{KeyToken, KeyLegacyToken, KeyLegacyAuth}

// CredentialKeys ключи, удаляемые при выходе и при ответе 401.
var CredentialKeys = []string{KeyToken, KeyLegacyToken, KeyLegacyAuth, KeyUser, KeyUserID}

var (
	// ErrNoUser возвращается, когда в хранилище нет данных пользователя.
	ErrNoUser = errors.New("session: no user")
	// ErrInvalidToken возвращается при попытке сохранить пустой или строковый "null"/"undefined" токен.
	ErrInvalidToken = errors.New("session: invalid token")
)

// Storage постоянное хранилище строк по ключу.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Watcher реализуется хранилищами, которые сообщают об изменении ключей,
// сделанных в том числе другими клиентами того же хранилища.
type Watcher interface {
	Watch() (<-chan string, func())
}

// Change событие изменения состояния авторизации.
type Change struct {
	Authenticated bool
}

// Session единственный владелец токена и данных пользователя.
type Session struct {
	store Storage
	log   *slog.Logger

	mu     sync.Mutex
	subs   map[int]chan Change
	nextID int
	// last последнее опубликованное состояние, known=false до первой публикации.
	last  Change
	known bool
}

// New создаёт сессию поверх хранилища store.
func New(store Storage, log *slog.Logger) *Session {
	return &Session{
		store: store,
		log:   log,
		subs:  make(map[int]chan Change),
	}
}

// IsSentinel сообщает, является ли значение пустым или строковым "undefined"/"null",
// которые веб-клиент мог записать вместо отсутствующего токена.
func IsSentinel(token string) bool {
	return token == "" || token == "undefined" || token == "null"
}

// Token возвращает текущий токен или пустую строку, если пользователь не авторизован.
func (s *Session) Token(ctx context.Context) (string, error) {
	const op = "session.Token"

	for _, key := range TokenKeys {
		val, ok, err := s.store.Get(ctx, key)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		if !ok || IsSentinel(val) {
			continue
		}
		if key != KeyToken {
			if err := s.migrate(ctx, val); err != nil {
				s.log.Warn("failed to migrate legacy token key", slog.String("key", key), sl.Err(err))
			}
		}
		return val, nil
	}
	return "", nil
}

func (s *Session) migrate(ctx context.Context, token string) error {
	if err := s.store.Set(ctx, KeyToken, token); err != nil {
		return err
	}
	return s.store.Delete(ctx, KeyLegacyToken, KeyLegacyAuth)
}

// Authenticated сообщает, есть ли в хранилище токен.
func (s *Session) Authenticated(ctx context.Context) bool {
	token, err := s.Token(ctx)
	if err != nil {
		s.log.Error("failed to read token", sl.Err(err))
		return false
	}
	return token != ""
}

// SetToken сохраняет токен под каноническим ключом и удаляет устаревшие ключи.
func (s *Session) SetToken(ctx context.Context, token string) error {
	const op = "session.SetToken"
	if IsSentinel(token) {
		return fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	// состояние фиксируется до записи, чтобы Watch не повторил собственное изменение
	s.expect(Change{Authenticated: true})
	if err := s.migrate(ctx, token); err != nil {
		s.forget()
		return fmt.Errorf("%s: %w", op, err)
	}
	s.publish(Change{Authenticated: true})
	return nil
}

// Login сохраняет токен и данные пользователя, полученные при входе.
// Недопустимый токен отклоняется до записи данных пользователя.
func (s *Session) Login(ctx context.Context, token string, user models.User) error {
	if IsSentinel(token) {
		return fmt.Errorf("session.Login: %w", ErrInvalidToken)
	}
	if err := s.SetUser(ctx, user); err != nil {
		return err
	}
	return s.SetToken(ctx, token)
}

// Clear удаляет все учётные данные. Используется при выходе и при ответе 401.
func (s *Session) Clear(ctx context.Context) error {
	const op = "session.Clear"
	s.expect(Change{Authenticated: false})
	if err := s.store.Delete(ctx, CredentialKeys...); err != nil {
		s.forget()
		return fmt.Errorf("%s: %w", op, err)
	}
	s.publish(Change{Authenticated: false})
	return nil
}

// User возвращает закешированные данные пользователя.
func (s *Session) User(ctx context.Context) (*models.User, error) {
	const op = "session.User"
	raw, ok, err := s.store.Get(ctx, KeyUser)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok || IsSentinel(raw) {
		return nil, ErrNoUser
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

// SetUser сохраняет данные пользователя как JSON.
func (s *Session) SetUser(ctx context.Context, u models.User) error {
	const op = "session.SetUser"
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.store.Set(ctx, KeyUser, string(raw)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if u.ID != "" {
		if err := s.store.Set(ctx, KeyUserID, u.ID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

// UserID возвращает идентификатор пользователя из userId, из данных пользователя
// или из claim id/userId/sub токена. Подпись и срок действия токена не проверяются.
func (s *Session) UserID(ctx context.Context) (string, error) {
	const op = "session.UserID"

	id, ok, err := s.store.Get(ctx, KeyUserID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if ok && !IsSentinel(id) {
		return id, nil
	}

	if u, err := s.User(ctx); err == nil && u.ID != "" {
		return u.ID, nil
	}

	token, err := s.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if token == "" {
		return "", ErrNoUser
	}
	return subjectFromToken(token)
}

func subjectFromToken(token string) (string, error) {
	const op = "session.subjectFromToken"
	claims, err := jwt.Parse(token)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	id, err := claims.Subject()
	if err != nil {
		return "", ErrNoUser
	}
	return id, nil
}

// MarkAccountLocked сохраняет признак заблокированной учётной записи.
func (s *Session) MarkAccountLocked(ctx context.Context) error {
	const op = "session.MarkAccountLocked"
	if err := s.store.Set(ctx, KeyAccountLocked, "true"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// AccountLocked сообщает, помечена ли учётная запись как заблокированная.
func (s *Session) AccountLocked(ctx context.Context) bool {
	val, ok, err := s.store.Get(ctx, KeyAccountLocked)
	if err != nil {
		s.log.Error("failed to read account lock flag", sl.Err(err))
		return false
	}
	return ok && val == "true"
}

// Subscribe возвращает канал изменений авторизации и функцию отписки.
func (s *Session) Subscribe() (<-chan Change, func()) {
	ch := make(chan Change, 4)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// Watch пересылает подписчикам изменения ключей токена, сделанные
// другими клиентами хранилища. Событие публикуется, только если состояние
// авторизации отличается от последнего опубликованного. Блокируется до отмены ctx.
// Если хранилище не поддерживает Watcher, сразу возвращается.
func (s *Session) Watch(ctx context.Context) {
	w, ok := s.store.(Watcher)
	if !ok {
		return
	}
	keys, stop := w.Watch()
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case key, ok := <-keys:
			if !ok {
				return
			}
			if !isTokenKey(key) {
				continue
			}
			s.publishChanged(Change{Authenticated: s.Authenticated(ctx)})
		}
	}
}

func isTokenKey(key string) bool {
	for _, k := range TokenKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (s *Session) expect(c Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last, s.known = c, true
}

func (s *Session) forget() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.known = false
}

func (s *Session) publishChanged(c Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.known && s.last == c {
		return
	}
	s.send(c)
}

func (s *Session) publish(c Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.send(c)
}

// send вызывается под s.mu.
func (s *Session) send(c Change) {
	s.last, s.known = c, true
	for _, ch := range s.subs {
		select {
		case ch <- c:
		default:
			// подписчик не успевает, отбрасываем самое старое событие
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- c:
			default:
			}
		}
	}
}
