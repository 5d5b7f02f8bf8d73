// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON-ответов API консоли.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/moviestream-console/internal/apiclient"
	"github.com/magabrotheeeer/moviestream-console/internal/session"
)

// Response описывает стандартную структуру JSON-ответа.
// Поле Status — статус запроса ("OK" или "Error").
// Поле Error — текст ошибки при неуспехе, Data — данные при успехе.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// OKWithData возвращает успешный Response с переданными данными.
func OKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError формирует Response на основе ошибок валидации.
// Каждое нарушение формируется в человеко-читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s", err.Field(), err.Param()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s", err.Field(), err.Param()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be one of [%s]", err.Field(), err.Param()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}

// FromError подбирает HTTP-статус и ответ для ошибки сервисов консоли.
func FromError(err error, fallback string) (int, Response) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return http.StatusBadRequest, ValidationError(verrs)
	}
	if errors.Is(err, session.ErrNoUser) {
		return http.StatusUnauthorized, Error("unauthorized")
	}

	switch apiclient.KindOf(err) {
	case apiclient.KindValidation:
		return http.StatusBadRequest, Error(err.Error())
	case apiclient.KindUnauthorized:
		return http.StatusUnauthorized, Error("unauthorized")
	case apiclient.KindAccountLocked:
		return http.StatusForbidden, Error("account locked")
	case apiclient.KindForbidden:
		return http.StatusForbidden, Error("forbidden")
	case apiclient.KindNotFound:
		return http.StatusNotFound, Error("not found")
	case apiclient.KindNetwork, apiclient.KindServer, apiclient.KindDecode:
		return http.StatusBadGateway, Error(fallback)
	default:
		return http.StatusInternalServerError, Error(fallback)
	}
}
