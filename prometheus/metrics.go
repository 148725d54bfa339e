package prometheus

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"casedesk/pkg/config"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec
	HttpStatusCategory  *prometheus.CounterVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthSuccessCounter  prometheus.Counter
	AuthErrorsCounter   *prometheus.CounterVec

	// Tenant context metrics
	TenantContextMissingCounter prometheus.Counter

	// Record store metrics
	StoreOperationDuration    *prometheus.HistogramVec
	RecordOperationsCounter   *prometheus.CounterVec
	RecordsPerCollectionGauge *prometheus.GaugeVec

	// Workflow metrics
	NotificationsCounter  *prometheus.CounterVec
	DialogsCounter        *prometheus.CounterVec
	HostedFallbackCounter prometheus.Counter
	ExportsCounter        *prometheus.CounterVec

	initOnce sync.Once
)

// InitMetrics registers the metrics with the configured prefix. Later calls are no-ops.
func InitMetrics(config *config.Config) {
	initOnce.Do(func() { register(config.Metrics.Prefix) })
}

func register(prefix string) {
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	HttpStatusCategory = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_status_category_total",
			Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
		},
		[]string{"category"},
	)

	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
	)

	AuthSuccessCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_success_total",
			Help: "Total number of successful authentications",
		},
	)

	AuthErrorsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors by type",
		},
		[]string{"type"},
	)

	TenantContextMissingCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_tenant_context_missing_total",
			Help: "Total number of requests without tenant context",
		},
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_store_operation_duration_seconds",
			Help:    "Duration of record store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	RecordOperationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_record_operations_total",
			Help: "Total number of record operations by collection",
		},
		[]string{"collection", "operation"},
	)

	RecordsPerCollectionGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_records_per_collection",
			Help: "Number of records per collection and tenant after the last list",
		},
		[]string{"collection", "tenant_id"},
	)

	NotificationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_notifications_total",
			Help: "Total number of user notifications by type",
		},
		[]string{"type"},
	)

	DialogsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_dialogs_total",
			Help: "Total number of confirmation dialogs by outcome",
		},
		[]string{"outcome"},
	)

	HostedFallbackCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_hosted_fallback_total",
			Help: "Total number of times the predefined organization list was served",
		},
	)

	ExportsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_exports_total",
			Help: "Total number of exports by blob driver",
		},
		[]string{"driver"},
	)
}

// TrackStoreOperation returns a function that records the duration of a store operation
func TrackStoreOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		StoreOperationDuration.WithLabelValues(operationType).Observe(time.Since(startTime).Seconds())
	}
}

// RecordOperation increments the counter for record operations
func RecordOperation(collection, operation string) {
	RecordOperationsCounter.WithLabelValues(collection, operation).Inc()
}

// UpdateRecordsPerCollection sets the record gauge for a collection and tenant
func UpdateRecordsPerCollection(collection, tenantID string, count int) {
	RecordsPerCollectionGauge.WithLabelValues(collection, tenantID).Set(float64(count))
}

// RecordAuthError increments the authentication error counter
func RecordAuthError(errorType string) {
	AuthErrorsCounter.WithLabelValues(errorType).Inc()
}

// RecordNotification increments the notification counter
func RecordNotification(notificationType string) {
	NotificationsCounter.WithLabelValues(notificationType).Inc()
}

// RecordDialog increments the dialog counter
func RecordDialog(outcome string) {
	DialogsCounter.WithLabelValues(outcome).Inc()
}

// Middleware records request count, duration and status category for every request
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			method := c.Request().Method
			path := c.Path()
			statusStr := strconv.Itoa(status)

			HttpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
			HttpRequestDuration.WithLabelValues(method, path, statusStr).Observe(time.Since(start).Seconds())

			switch {
			case status >= 200 && status < 300:
				HttpStatusCategory.WithLabelValues("2xx").Inc()
			case status >= 400 && status < 500:
				HttpStatusCategory.WithLabelValues("4xx").Inc()
			case status >= 500:
				HttpStatusCategory.WithLabelValues("5xx").Inc()
			}

			return err
		}
	}
}

// Handler returns an HTTP handler exposing the registered metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
