package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

var (
	// API 请求计数器
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	// API 请求响应时间
	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// 暂存草稿数
	draftsStagedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "drafts_staged_total",
			Help: "Total number of payment drafts staged",
		},
	)

	// 支付创建数(落库)
	paymentsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_created_total",
			Help: "Total number of payments committed to the ledger",
		},
	)

	// 审批决定数
	decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "decisions_total",
			Help: "Total number of approval decisions",
		},
		[]string{"action"}, // approve, reject
	)

	// 支付状态分布
	paymentsByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "payments_by_status",
			Help: "Number of payments by status",
		},
		[]string{"status"},
	)

	// 数据库连接数
	databaseConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_active",
			Help: "Number of active database connections",
		},
	)

	databaseConnectionsIdle = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

var (
	once sync.Once
)

func init() {
	// 注册指标
	prometheus.MustRegister(apiRequestsTotal)
	prometheus.MustRegister(apiRequestDuration)
	prometheus.MustRegister(draftsStagedTotal)
	prometheus.MustRegister(paymentsCreatedTotal)
	prometheus.MustRegister(decisionsTotal)
	prometheus.MustRegister(paymentsByStatus)
	prometheus.MustRegister(databaseConnectionsActive)
	prometheus.MustRegister(databaseConnectionsIdle)

	// 注册 Go 运行时指标(只注册一次)
	once.Do(func() {
		_ = prometheus.Register(prometheus.NewGoCollector())
		_ = prometheus.Register(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	})
}

// Handler 返回 Prometheus 指标处理器
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAPIRequest 记录 API 请求
func RecordAPIRequest(method, path string, status int, duration float64) {
	statusText := http.StatusText(status)
	if statusText == "" {
		statusText = fmt.Sprintf("%d", status)
	}
	apiRequestsTotal.WithLabelValues(method, path, statusText).Inc()
	apiRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordDraftStaged 记录草稿暂存
func RecordDraftStaged() {
	draftsStagedTotal.Inc()
}

// RecordPaymentCreated 记录支付落库
func RecordPaymentCreated() {
	paymentsCreatedTotal.Inc()
}

// RecordDecision 记录审批决定
func RecordDecision(action string) {
	decisionsTotal.WithLabelValues(action).Inc()
}

// UpdatePaymentsByStatus 更新支付状态分布指标
func UpdatePaymentsByStatus(status string, count float64) {
	paymentsByStatus.WithLabelValues(status).Set(count)
}

// UpdateDatabaseConnections 更新数据库连接数指标
func UpdateDatabaseConnections(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	stats := sqlDB.Stats()
	databaseConnectionsActive.Set(float64(stats.OpenConnections - stats.Idle))
	databaseConnectionsIdle.Set(float64(stats.Idle))

	return nil
}
