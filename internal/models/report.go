package models

import "time"

// Статусы жалоб.
const (
	ReportPending  = "pending"
	ReportResolved = "resolved"
	ReportRejected = "rejected"
)

// Report жалоба пользователя на контент или другого пользователя.
type Report struct {
	ID          string     `json:"id"`
	ReporterID  string     `json:"reporterId"`
	Reporter    string     `json:"reporterName,omitempty"`
	TargetType  string     `json:"targetType"`
	TargetID    string     `json:"targetId"`
	Reason      string     `json:"reason"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// ReportStats количество жалоб по статусам.
type ReportStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Resolved int `json:"resolved"`
	Rejected int `json:"rejected"`
}

// Notification уведомление пользователя.
type Notification struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Type      string     `json:"type"`
	IsRead    bool       `json:"isRead"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// DashboardOverview сводные показатели админ-панели.
type DashboardOverview struct {
	TotalUsers          int     `json:"totalUsers"`
	ActiveUsers         int     `json:"activeUsers"`
	TotalMovies         int     `json:"totalMovies"`
	PendingReports      int     `json:"pendingReports"`
	ActiveSubscriptions int     `json:"activeSubscriptions"`
	MonthlyRevenue      float64 `json:"monthlyRevenue"`
}
