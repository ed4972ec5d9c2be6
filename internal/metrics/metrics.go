package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abolfazlirani/asar-backend-app/internal/layout"
)

const namespace = "asar"

// Metrics owns the service collectors. It implements layout.Observer and
// prices.SyncObserver.
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	layoutRows     *prometheus.CounterVec
	layoutDuration *prometheus.HistogramVec

	priceSyncs        *prometheus.CounterVec
	priceSyncItems    prometheus.Gauge
	priceSyncDuration prometheus.Histogram

	commands *prometheus.CounterVec
}

// New builds the collectors on a fresh registry. Process and Go runtime
// collectors are included unless withRuntime is false.
func New(withRuntime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method", "route"}),
		layoutRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "layout",
			Name:      "rows_resolved_total",
			Help:      "Data-bound layout rows resolved, by data source kind and outcome.",
		}, []string{"kind", "outcome"}),
		layoutDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "layout",
			Name:      "row_duration_seconds",
			Help:      "Time spent resolving one data-bound row.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"kind"}),
		priceSyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "prices",
			Name:      "syncs_total",
			Help:      "Price sync runs, by outcome.",
		}, []string{"outcome"}),
		priceSyncItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "prices",
			Name:      "items",
			Help:      "Number of price items stored by the last successful sync.",
		}),
		priceSyncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "prices",
			Name:      "sync_duration_seconds",
			Help:      "Duration of price sync runs.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "commands",
			Name:      "executions_total",
			Help:      "Command executions, by command and status.",
		}, []string{"command", "status"}),
	}

	m.registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.layoutRows,
		m.layoutDuration,
		m.priceSyncs,
		m.priceSyncItems,
		m.priceSyncDuration,
		m.commands,
	)
	if withRuntime {
		m.registry.MustRegister(
			prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
			prometheus.NewGoCollector(),
		)
	}
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RowResolved implements layout.Observer.
func (m *Metrics) RowResolved(kind layout.Kind, err error, elapsed time.Duration) {
	label := kind.String()
	m.layoutRows.WithLabelValues(label, outcome(err)).Inc()
	m.layoutDuration.WithLabelValues(label).Observe(elapsed.Seconds())
}

// PricesSynced implements prices.SyncObserver.
func (m *Metrics) PricesSynced(count int, err error, elapsed time.Duration) {
	m.priceSyncs.WithLabelValues(outcome(err)).Inc()
	m.priceSyncDuration.Observe(elapsed.Seconds())
	if err == nil {
		m.priceSyncItems.Set(float64(count))
	}
}

// CommandExecuted counts one command outcome.
func (m *Metrics) CommandExecuted(command, status string) {
	m.commands.WithLabelValues(command, status).Inc()
}

// InstrumentHandler records request counts and durations. Routes are
// labelled with their chi pattern so path parameters do not explode the
// label space.
func (m *Metrics) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := routePattern(r)
		method := strings.ToUpper(r.Method)
		m.httpRequests.WithLabelValues(method, route, strconv.Itoa(rec.status)).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
