// Package jwt читает claim поля токена, выданного бэкендом.
//
// Консоль не владеет секретом подписи, поэтому подпись не проверяется:
// claims используются только для определения пользователя и срока действия.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSubject возвращается, если в токене нет идентификатора пользователя.
var ErrNoSubject = errors.New("jwt: no subject claim")

// Claims поля токена бэкенда. Идентификатор пользователя встречается
// под именами id, userId или sub в зависимости от версии бэкенда.
type Claims struct {
	ID     string `json:"id,omitempty"`
	UserID string `json:"userId,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Parse разбирает токен без проверки подписи.
func Parse(token string) (*Claims, error) {
	const op = "jwt.Parse"
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return claims, nil
}

// Subject возвращает идентификатор пользователя: id, затем userId, затем sub.
func (c *Claims) Subject() (string, error) {
	for _, v := range []string{c.ID, c.UserID, c.RegisteredClaims.Subject} {
		if v != "" {
			return v, nil
		}
	}
	return "", ErrNoSubject
}

// Expired сообщает, истёк ли срок действия к моменту now.
// Токен без exp считается бессрочным.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}
