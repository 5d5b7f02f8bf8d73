package apiclient

import (
	"bytes"
	"encoding/json"
)

// envelope стандартная обёртка ответов бэкенда { success, data, message }.
type envelope struct {
	Success         *bool           `json:"success"`
	Data            json.RawMessage `json:"data"`
	Message         string          `json:"message"`
	Error           string          `json:"error"`
	IsAccountLocked bool            `json:"isAccountLocked"`
}

type lockFlag struct {
	IsAccountLocked bool `json:"isAccountLocked"`
}

func parseEnvelope(raw []byte) (envelope, bool) {
	var env envelope
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return env, false
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return env, false
	}
	return env, true
}

func hasData(env envelope) bool {
	return len(env.Data) > 0 && !bytes.Equal(bytes.TrimSpace(env.Data), []byte("null"))
}

// accountLocked сообщает, сигнализирует ли тело ответа о блокировке учётной записи.
// Флаг ищется на верхнем уровне и внутри data.
func accountLocked(raw []byte) bool {
	env, ok := parseEnvelope(raw)
	if !ok {
		return false
	}
	if env.IsAccountLocked {
		return true
	}
	if hasData(env) {
		var inner lockFlag
		if err := json.Unmarshal(env.Data, &inner); err == nil {
			return inner.IsAccountLocked
		}
	}
	return false
}

// errorMessage извлекает текст ошибки из тела ответа.
func errorMessage(raw []byte) string {
	env, ok := parseEnvelope(raw)
	if !ok {
		return ""
	}
	if env.Message != "" {
		return env.Message
	}
	return env.Error
}

// Unwrap декодирует ответ в T: берёт поле data, если оно есть и не null,
// иначе всё тело. Ответ с success=false считается ошибкой сервера.
func Unwrap[T any](raw []byte) (T, error) {
	const op = "apiclient.Unwrap"
	var out T

	if len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}

	payload := raw
	if env, ok := parseEnvelope(raw); ok {
		if env.Success != nil && !*env.Success {
			msg := env.Message
			if msg == "" {
				msg = env.Error
			}
			return out, &Error{Op: op, Kind: KindServer, Message: msg}
		}
		if hasData(env) {
			payload = env.Data
		}
	}

	if err := json.Unmarshal(payload, &out); err != nil {
		return out, &Error{Op: op, Kind: KindDecode, Err: err}
	}
	return out, nil
}
