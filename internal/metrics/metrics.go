// Package metrics содержит метрики Prometheus консоли.
// Метрики регистрируются в реестре по умолчанию и отдаются на GET /metrics.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// APIRequests считает исходящие запросы к бэкенду по методу и классу статуса.
var APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "console_api_requests_total",
	Help: "Outgoing backend API requests.",
}, []string{"method", "status"})

// APIDuration задержка исходящих запросов.
var APIDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "console_api_request_duration_seconds",
	Help:    "Outgoing backend API request latency in seconds.",
	Buckets: prometheus.DefBuckets,
}, []string{"method"})

// AuthRedirects считает глобальные переадресации клиента по маршруту.
var AuthRedirects = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "console_redirects_total",
	Help: "Forced client redirects by route.",
}, []string{"route"})

// BenefitFetches считает попытки загрузки рекламных привилегий по результату.
var BenefitFetches = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "console_ad_benefit_fetches_total",
	Help: "Ad-benefit fetch attempts by result.",
}, []string{"result"})

// Online 1, если бэкенд доступен, иначе 0.
var Online = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "console_online",
	Help: "Whether the backend is reachable (1) or not (0).",
})

// PushEvents считает события websocket-канала по типу.
var PushEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "console_push_events_total",
	Help: "Push notifications received by type.",
}, []string{"type"})

// StatusClass возвращает класс HTTP-статуса вида "2xx"; 0 означает сетевую ошибку.
func StatusClass(code int) string {
	if code <= 0 {
		return "error"
	}
	return strconv.Itoa(code/100) + "xx"
}

// SetOnline обновляет метрику доступности.
func SetOnline(online bool) {
	if online {
		Online.Set(1)
		return
	}
	Online.Set(0)
}
