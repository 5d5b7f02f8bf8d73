package admin

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/magabrotheeeer/moviestream-console/internal/lib/sl"
	"github.com/magabrotheeeer/moviestream-console/internal/models"
)

// bulkConcurrency ограничивает число одновременных запросов массовой операции.
const bulkConcurrency = 8

// ReportStatusUpdater меняет статус одной жалобы.
type ReportStatusUpdater interface {
	UpdateStatus(ctx context.Context, id, status string) error
}

// UserActivator включает или отключает пользователя.
type UserActivator interface {
	SetActive(ctx context.Context, id string, active bool) (models.User, error)
}

// BulkReportStatus запрос массовой смены статуса жалоб.
type BulkReportStatus struct {
	IDs    []string `json:"ids" validate:"required,min=1,dive,required"`
	Status string   `json:"status" validate:"required,oneof=pending resolved rejected"`
}

// Bulk выполняет массовые операции над строками таблиц.
type Bulk struct {
	log *slog.Logger
}

// NewBulk создаёт исполнитель массовых операций.
func NewBulk(log *slog.Logger) *Bulk {
	return &Bulk{log: log}
}

// UpdateReportStatus отправляет отдельный запрос смены статуса для каждого id.
// Только если все запросы успешны, статус меняется у всех строк table.
// При ошибке локальное состояние не меняется, уже выполненные запросы не откатываются.
func (b *Bulk) UpdateReportStatus(ctx context.Context, svc ReportStatusUpdater, table *Table[models.Report], req BulkReportStatus) error {
	const op = "admin.UpdateReportStatus"
	if err := validate.Struct(req); err != nil {
		return err
	}
	ids := Unique(req.IDs)

	err := run(ctx, ids, func(ctx context.Context, id string) error {
		return svc.UpdateStatus(ctx, id, req.Status)
	})
	if err != nil {
		b.log.Error("bulk report status update failed",
			slog.String("op", op), slog.Int("count", len(ids)), slog.String("status", req.Status), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if table != nil {
		table.PatchMany(ids, func(r *models.Report) { r.Status = req.Status })
	}
	b.log.Info("reports status updated", slog.Int("count", len(ids)), slog.String("status", req.Status))
	return nil
}

// SetUsersActive включает или отключает пользователей ids по тем же правилам,
// что и UpdateReportStatus.
func (b *Bulk) SetUsersActive(ctx context.Context, svc UserActivator, table *Table[models.User], ids []string, active bool) error {
	const op = "admin.SetUsersActive"
	if len(ids) == 0 {
		return fmt.Errorf("%s: no users selected", op)
	}
	ids = Unique(ids)

	err := run(ctx, ids, func(ctx context.Context, id string) error {
		_, err := svc.SetActive(ctx, id, active)
		return err
	})
	if err != nil {
		b.log.Error("bulk user activation failed",
			slog.String("op", op), slog.Int("count", len(ids)), slog.Bool("active", active), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if table != nil {
		table.PatchMany(ids, func(u *models.User) { u.IsActive = active })
	}
	return nil
}

// run вызывает call для каждого id. Ошибка одного вызова не отменяет остальные.
func run(ctx context.Context, ids []string, call func(ctx context.Context, id string) error) error {
	var g errgroup.Group
	g.SetLimit(bulkConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			if err := call(ctx, id); err != nil {
				return fmt.Errorf("%s: %w", id, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Unique возвращает ids без повторов в порядке первого появления.
func Unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
