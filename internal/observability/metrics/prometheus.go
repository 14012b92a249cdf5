package metrics

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	ReasonDeadlineExceeded     = "deadline_exceeded"
	ReasonSerializationFailure = "serialization_failure"
	ReasonUniqueViolation      = "unique_violation"
	ReasonNotFound             = "not_found"
	ReasonUnknown              = "unknown"
)

const (
	OutcomeCreated   = "created"
	OutcomeFailed    = "failed"
	OutcomePaid      = "paid"
	OutcomeDuplicate = "duplicate"
	OutcomeIgnored   = "ignored"
	OutcomeUnmatched = "unmatched"
	OutcomeRejected  = "rejected"
)

// HTTPMetrics records request counts and latency per route.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// MarketplaceMetrics captures checkout and reconciliation health for the order pipeline.
type MarketplaceMetrics struct {
	checkouts      *prometheus.CounterVec
	reconciliation *prometheus.CounterVec
	proposals      *prometheus.CounterVec
	sessionsSwept  prometheus.Counter
	pipelineRows   prometheus.Gauge
	dbErrors       *prometheus.CounterVec
	jobRuns        *prometheus.CounterVec
	jobDuration    *prometheus.HistogramVec
}

var (
	httpMetricsOnce sync.Once
	httpMetrics     *HTTPMetrics

	marketplaceMetricsOnce sync.Once
	marketplaceMetrics     *MarketplaceMetrics
)

// NewHTTPMetrics returns the process-wide HTTP metrics registered on the default registerer.
func NewHTTPMetrics(cfg Config) *HTTPMetrics {
	httpMetricsOnce.Do(func() {
		httpMetrics = newHTTPMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return httpMetrics
}

// NewMarketplaceMetrics returns the process-wide marketplace metrics.
func NewMarketplaceMetrics(cfg Config) *MarketplaceMetrics {
	marketplaceMetricsOnce.Do(func() {
		marketplaceMetrics = newMarketplaceMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return marketplaceMetrics
}

func constLabels(cfg Config) prometheus.Labels {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "descomplaca"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	return prometheus.Labels{"service": serviceName, "env": environment}
}

func newHTTPMetrics(registerer prometheus.Registerer, cfg Config) *HTTPMetrics {
	labels := constLabels(cfg)
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "descomplaca_http_requests_total",
			Help:        "HTTP requests by method, route and status code.",
			ConstLabels: labels,
		}, []string{"method", "route", "status_code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "descomplaca_http_request_duration_seconds",
			Help:        "HTTP request latency by route.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}, []string{"method", "route"}),
	}
	registerer.MustRegister(m.requests, m.duration)
	return m
}

func newMarketplaceMetrics(registerer prometheus.Registerer, cfg Config) *MarketplaceMetrics {
	labels := constLabels(cfg)
	m := &MarketplaceMetrics{
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "descomplaca_checkout_total",
			Help:        "Checkout attempts by provider and outcome.",
			ConstLabels: labels,
		}, []string{"provider", "outcome"}),
		reconciliation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "descomplaca_reconciliation_total",
			Help:        "Payment notifications by provider and reconciliation outcome.",
			ConstLabels: labels,
		}, []string{"provider", "outcome"}),
		proposals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "descomplaca_proposals_total",
			Help:        "Proposal submissions by outcome.",
			ConstLabels: labels,
		}, []string{"outcome"}),
		sessionsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "descomplaca_sessions_swept_total",
			Help:        "Automation sessions removed after the idle timeout.",
			ConstLabels: labels,
		}),
		pipelineRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "descomplaca_pipeline_rows",
			Help:        "Rows in the last plate pipeline snapshot.",
			ConstLabels: labels,
		}),
		dbErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "descomplaca_db_errors_total",
			Help:        "Database errors by operation and low-cardinality reason.",
			ConstLabels: labels,
		}, []string{"operation", "reason"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "descomplaca_scheduler_job_runs_total",
			Help:        "Background job runs by job and outcome.",
			ConstLabels: labels,
		}, []string{"job", "outcome"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "descomplaca_scheduler_job_duration_seconds",
			Help:        "Background job duration.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}, []string{"job"}),
	}
	registerer.MustRegister(m.checkouts, m.reconciliation, m.proposals, m.sessionsSwept, m.pipelineRows, m.dbErrors, m.jobRuns, m.jobDuration)
	return m
}

// GinMiddleware observes every request once routing has resolved.
func (m *HTTPMetrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		method := c.Request.Method
		m.requests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *MarketplaceMetrics) IncCheckout(provider, outcome string) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(provider, outcome).Inc()
}

func (m *MarketplaceMetrics) IncReconciliation(provider, outcome string) {
	if m == nil {
		return
	}
	m.reconciliation.WithLabelValues(provider, outcome).Inc()
}

func (m *MarketplaceMetrics) IncProposal(outcome string) {
	if m == nil {
		return
	}
	m.proposals.WithLabelValues(outcome).Inc()
}

func (m *MarketplaceMetrics) AddSessionsSwept(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sessionsSwept.Add(float64(n))
}

func (m *MarketplaceMetrics) SetPipelineRows(n int) {
	if m == nil {
		return
	}
	m.pipelineRows.Set(float64(n))
}

// ObserveJob records one scheduler job run. outcome is "ok", "timeout" or "error".
func (m *MarketplaceMetrics) ObserveJob(job, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job, outcome).Inc()
	m.jobDuration.WithLabelValues(job).Observe(elapsed.Seconds())
}

// RecordDBError classifies err and counts it against operation.
func (m *MarketplaceMetrics) RecordDBError(operation string, err error) {
	if m == nil || err == nil {
		return
	}
	m.dbErrors.WithLabelValues(operation, ClassifyReason(err)).Inc()
}

// ClassifyReason maps errors to low-cardinality labels.
func ClassifyReason(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonDeadlineExceeded
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ReasonUniqueViolation
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ReasonNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return ReasonUniqueViolation
		case pgerrcode.SerializationFailure:
			return ReasonSerializationFailure
		}
	}
	return ReasonUnknown
}
