package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/abolfazlirani/asar-backend-app/internal/layout"
)

func TestRowResolvedCountsByOutcome(t *testing.T) {
	m := New(false)
	m.RowResolved(layout.KindPosts, nil, time.Millisecond)
	m.RowResolved(layout.KindPosts, errors.New("db down"), time.Millisecond)
	m.RowResolved(layout.KindPosts, nil, time.Millisecond)

	if got := testutil.ToFloat64(m.layoutRows.WithLabelValues("posts", "ok")); got != 2 {
		t.Fatalf("expected 2 ok rows, got %v", got)
	}
	if got := testutil.ToFloat64(m.layoutRows.WithLabelValues("posts", "error")); got != 1 {
		t.Fatalf("expected 1 failed row, got %v", got)
	}
}

func TestPricesSyncedKeepsLastGoodCount(t *testing.T) {
	m := New(false)
	m.PricesSynced(14, nil, time.Second)
	m.PricesSynced(0, errors.New("feed down"), time.Second)

	if got := testutil.ToFloat64(m.priceSyncItems); got != 14 {
		t.Fatalf("expected item gauge 14, got %v", got)
	}
	if got := testutil.ToFloat64(m.priceSyncs.WithLabelValues("error")); got != 1 {
		t.Fatalf("expected one failed sync, got %v", got)
	}
}

func TestInstrumentHandlerUsesRoutePattern(t *testing.T) {
	m := New(false)
	router := chi.NewRouter()
	router.Use(m.InstrumentHandler)
	router.Get("/api/v1/pages/{slug}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	router.Handle("/metrics", m.Handler())

	for _, slug := range []string{"home", "gold"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/pages/"+slug, nil))
	}

	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/pages/{slug}", "404")); got != 2 {
		t.Fatalf("expected both requests under one route label, got %v", got)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "asar_http_requests_total") {
		t.Fatalf("expected exposition to include request counter, got %s", rec.Body.String())
	}
}
