package admin

import (
	"time"

	"github.com/magabrotheeeer/moviestream-console/internal/models"
)

// NotAvailable подставляется вместо отсутствующего значения.
const NotAvailable = "N/A"

// Display возвращает s или NotAvailable для пустой строки.
func Display(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

// DisplayTime форматирует время по layout, nil и нулевое время дают NotAvailable.
func DisplayTime(t *time.Time, layout string) string {
	if t == nil || t.IsZero() {
		return NotAvailable
	}
	return t.Format(layout)
}

// SubscriptionRow строка страницы премиум-подписок в том виде, в каком она показывается.
type SubscriptionRow struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userId"`
	UserEmail   string  `json:"userEmail"`
	PackageName string  `json:"packageName"`
	PackageType string  `json:"packageType"`
	Status      string  `json:"status"`
	Amount      float64 `json:"amount"`
	StartDate   string  `json:"startDate"`
	EndDate     string  `json:"endDate"`
}

// SubscriptionView заменяет пустые поля подписки на NotAvailable.
func SubscriptionView(s models.PremiumSubscription) SubscriptionRow {
	return SubscriptionRow{
		ID:          s.ID,
		UserID:      s.UserID,
		UserEmail:   Display(s.UserEmail),
		PackageName: Display(s.PackageName),
		PackageType: Display(s.PackageType),
		Status:      Display(s.Status),
		Amount:      s.Amount,
		StartDate:   DisplayTime(s.StartDate, time.DateOnly),
		EndDate:     DisplayTime(s.EndDate, time.DateOnly),
	}
}
