package apiclient

import (
	"bytes"
	"encoding/json"

	"github.com/magabrotheeeer/moviestream-console/internal/models"
)

// DecodePage декодирует ответ списка с пагинацией. Бэкенд возвращает списки
// в нескольких формах: массивом в data, объектом с ключом itemsKey или items
// внутри data, с пагинацией внутри data или рядом с ним.
func DecodePage[T any](raw []byte, itemsKey string) (models.Page[T], error) {
	const op = "apiclient.DecodePage"
	var page models.Page[T]

	if env, ok := parseEnvelope(raw); ok && env.Success != nil && !*env.Success {
		return page, &Error{Op: op, Kind: KindServer, Message: env.Message}
	}

	var outer map[string]json.RawMessage
	if err := json.Unmarshal(raw, &outer); err != nil {
		// массив без обёртки
		if err := json.Unmarshal(raw, &page.Items); err != nil {
			return page, &Error{Op: op, Kind: KindDecode, Err: err}
		}
		return page.Normalize(), nil
	}

	if p, ok := outer["pagination"]; ok {
		if err := json.Unmarshal(p, &page.Pagination); err != nil {
			return page, &Error{Op: op, Kind: KindDecode, Err: err}
		}
	}

	body := outer
	if data, ok := outer["data"]; ok && !isNull(data) {
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &page.Items); err != nil {
				return page, &Error{Op: op, Kind: KindDecode, Err: err}
			}
			return page.Normalize(), nil
		}
		body = nil
		if err := json.Unmarshal(trimmed, &body); err != nil {
			return page, &Error{Op: op, Kind: KindDecode, Err: err}
		}
		if p, ok := body["pagination"]; ok {
			if err := json.Unmarshal(p, &page.Pagination); err != nil {
				return page, &Error{Op: op, Kind: KindDecode, Err: err}
			}
		}
	}

	for _, key := range []string{itemsKey, "items"} {
		if key == "" {
			continue
		}
		if items, ok := body[key]; ok && !isNull(items) {
			if err := json.Unmarshal(items, &page.Items); err != nil {
				return page, &Error{Op: op, Kind: KindDecode, Err: err}
			}
			break
		}
	}
	return page.Normalize(), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
