package push

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/magabrotheeeer/moviestream-console/internal/admin"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/sl"
	"github.com/magabrotheeeer/moviestream-console/internal/metrics"
	"github.com/magabrotheeeer/moviestream-console/internal/models"
)

// PatchUsers возвращает обработчик user_updated, заменяющий строку
// пользователя в таблице. Пользователи вне текущей страницы игнорируются.
func PatchUsers(table *admin.Table[models.User], log *slog.Logger) Handler {
	return func(_ context.Context, ev Event) {
		if ev.User == nil || ev.User.ID == "" {
			return
		}
		if table.Replace(*ev.User) {
			log.Debug("user row updated from push", slog.String("user_id", ev.User.ID))
		}
	}
}

// FromBroker адаптирует h к сообщениям, пересланным другими процессами
// консоли через RabbitMQ. Некорректное сообщение пропускается,
// чтобы оно не возвращалось в очередь бесконечно.
func FromBroker(h Handler, log *slog.Logger) func(ctx context.Context, body []byte) error {
	return func(ctx context.Context, body []byte) error {
		var ev Event
		if err := json.Unmarshal(body, &ev); err != nil {
			log.Warn("malformed broker message", sl.Err(err))
			return nil
		}
		metrics.PushEvents.WithLabelValues(ev.Type).Inc()
		h(ctx, ev)
		return nil
	}
}
