package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/gorm"
)

func TestClassifyReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: ReasonDeadlineExceeded},
		{name: "serialization_failure", err: &pgconn.PgError{Code: "40001"}, want: ReasonSerializationFailure},
		{name: "pg_unique", err: &pgconn.PgError{Code: "23505"}, want: ReasonUniqueViolation},
		{name: "gorm_unique", err: gorm.ErrDuplicatedKey, want: ReasonUniqueViolation},
		{name: "not_found", err: gorm.ErrRecordNotFound, want: ReasonNotFound},
		{name: "unknown", err: errors.New("boom"), want: ReasonUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyReason(tc.err); got != tc.want {
				t.Fatalf("expected reason %q, got %q", tc.want, got)
			}
		})
	}
}

func TestMarketplaceCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newMarketplaceMetrics(registry, Config{ServiceName: "descomplaca", Environment: "test"})

	m.IncReconciliation("asaas", OutcomePaid)
	m.IncReconciliation("asaas", OutcomeDuplicate)
	m.IncReconciliation("asaas", OutcomeDuplicate)
	m.IncCheckout("asaas", OutcomeCreated)
	m.SetPipelineRows(7)
	m.ObserveJob("pipeline_refresh", "timeout", 0)

	if got := testutil.ToFloat64(m.reconciliation.WithLabelValues("asaas", OutcomeDuplicate)); got != 2 {
		t.Fatalf("expected 2 duplicates, got %v", got)
	}
	if got := testutil.ToFloat64(m.checkouts.WithLabelValues("asaas", OutcomeCreated)); got != 1 {
		t.Fatalf("expected 1 checkout, got %v", got)
	}
	if got := testutil.ToFloat64(m.pipelineRows); got != 7 {
		t.Fatalf("expected 7 pipeline rows, got %v", got)
	}
	if got := testutil.ToFloat64(m.jobRuns.WithLabelValues("pipeline_refresh", "timeout")); got != 1 {
		t.Fatalf("expected 1 timed out job run, got %v", got)
	}
}

func TestNilMarketplaceMetricsIsSafe(t *testing.T) {
	var m *MarketplaceMetrics
	m.IncCheckout("asaas", OutcomeFailed)
	m.ObserveJob("pipeline_refresh", "ok", 0)
	m.RecordDBError("order.create", errors.New("boom"))
}

func TestHTTPMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registry := prometheus.NewRegistry()
	m := newHTTPMetrics(registry, Config{})

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/api/orders/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/"+id, nil))
	}

	if got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/orders/:id", "204")); got != 2 {
		t.Fatalf("expected 2 requests on the route template, got %v", got)
	}
}
