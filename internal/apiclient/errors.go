package apiclient

import (
	"errors"
	"fmt"
)

// Kind класс ошибки обращения к API.
type Kind int

// Классы ошибок.
const (
	KindUnknown Kind = iota
	KindUnauthorized
	KindAccountLocked
	KindForbidden
	KindNotFound
	KindValidation
	KindServer
	KindNetwork
	KindDecode
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindAccountLocked:
		return "account_locked"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	case KindDecode:
		return "decode"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Error ошибка обращения к API. Все функции клиента и сервисов
// возвращают ошибки этого типа, обёрнутые с указанием операции.
type Error struct {
	Op      string
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("%s: %s: status %d: %s", e.Op, e.Kind, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s: %s: status %d", e.Op, e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf возвращает класс ошибки или KindUnknown, если ошибка не из API.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsKind сообщает, относится ли err к классу kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsAuth сообщает, является ли ошибка ошибкой авторизации (401 или блокировка).
func IsAuth(err error) bool {
	k := KindOf(err)
	return k == KindUnauthorized || k == KindAccountLocked
}

func kindForStatus(status int, locked bool) Kind {
	switch {
	case status == 401:
		return KindUnauthorized
	case status == 403 && locked:
		return KindAccountLocked
	case status == 403:
		return KindForbidden
	case status == 404:
		return KindNotFound
	case status == 400 || status == 409 || status == 422:
		return KindValidation
	default:
		return KindServer
	}
}
