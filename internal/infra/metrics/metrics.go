package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "foodgram_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_cache_requests_total",
		Help: "Read-through cache lookups by result (hit|miss|error).",
	}, []string{"result"})

	ShoppingListDownloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_shopping_list_downloads_total",
		Help: "Shopping list downloads by format.",
	}, []string{"format"})

	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_notifications_total",
		Help: "Admin chat notifications by outcome.",
	}, []string{"outcome"})
)

func RecordRequest(method, route, status string, d time.Duration) {
	httpRequests.WithLabelValues(method, route, status).Inc()
	httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
