package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveLoad(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveLoad(42, 10*time.Millisecond, nil)
	m.ObserveLoad(0, time.Millisecond, errors.New("boom"))

	assert.InDelta(t, 1, testutil.ToFloat64(m.TableLoads.WithLabelValues(ResultOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.TableLoads.WithLabelValues(ResultError)), 0)
	// A failed load leaves the served row count alone.
	assert.InDelta(t, 42, testutil.ToFloat64(m.TableRows), 0)
}

func TestCacheCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.CacheHit()
	m.CacheHit()
	m.CacheMiss()

	assert.InDelta(t, 2, testutil.ToFloat64(m.CacheHits), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CacheMisses), 0)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.ObserveLoad(1, time.Second, nil)
		m.CacheHit()
		m.CacheMiss()
		m.ObserveRequest("/api/summary", "GET", 200, time.Millisecond)
		m.TrackInFlight()()
	})
}

func TestObserveRequest(t *testing.T) {
	m := New(prometheus.NewRegistry())

	done := m.TrackInFlight()
	assert.InDelta(t, 1, testutil.ToFloat64(m.RequestsInFlight), 0)
	m.ObserveRequest("/api/dashboard", "GET", 200, 5*time.Millisecond)
	m.ObserveRequest("/api/dashboard", "GET", 400, time.Millisecond)
	done()

	assert.InDelta(t, 0, testutil.ToFloat64(m.RequestsInFlight), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(m.RequestDuration))
}

func TestNew_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
