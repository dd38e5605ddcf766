// Package metrics holds the Prometheus collectors of the tubestats service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Load results recorded by TableLoads.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics groups every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	TableLoads       *prometheus.CounterVec
	TableRows        prometheus.Gauge
	TableLoadSeconds prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tubestats_api_request_duration_seconds",
				Help:    "HTTP request duration in seconds, by route, method and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method", "status"},
		),
		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tubestats_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tubestats_dashboard_cache_hits_total",
			Help: "Dashboard results served from Redis.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tubestats_dashboard_cache_misses_total",
			Help: "Dashboard results computed because Redis had no entry.",
		}),
		TableLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tubestats_table_loads_total",
				Help: "Channel table loads, by result.",
			},
			[]string{"result"},
		),
		TableRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tubestats_table_rows",
			Help: "Rows in the currently served channel table.",
		}),
		TableLoadSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tubestats_table_load_duration_seconds",
			Help:    "Time spent loading the channel table from its source.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(
		m.RequestDuration,
		m.RequestsInFlight,
		m.CacheHits,
		m.CacheMisses,
		m.TableLoads,
		m.TableRows,
		m.TableLoadSeconds,
	)
	return m
}

// ObserveLoad records one table load attempt.
func (m *Metrics) ObserveLoad(rows int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.TableLoadSeconds.Observe(elapsed.Seconds())
	if err != nil {
		m.TableLoads.WithLabelValues(ResultError).Inc()
		return
	}
	m.TableLoads.WithLabelValues(ResultOK).Inc()
	m.TableRows.Set(float64(rows))
}

// CacheHit counts a dashboard cache hit.
func (m *Metrics) CacheHit() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

// CacheMiss counts a dashboard cache miss.
func (m *Metrics) CacheMiss() {
	if m != nil {
		m.CacheMisses.Inc()
	}
}

// ObserveRequest records one served HTTP request. route is the router
// pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// TrackInFlight increments the in-flight gauge and returns its decrement.
func (m *Metrics) TrackInFlight() func() {
	if m == nil {
		return func() {}
	}
	m.RequestsInFlight.Inc()
	return m.RequestsInFlight.Dec
}
