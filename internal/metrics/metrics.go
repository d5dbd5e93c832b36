package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vaslog"

// Metrics holds the Prometheus collectors for the log facility. All
// recording methods are safe to call on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	// Record metrics
	RecordsTotal       *prometheus.CounterVec
	RecordBytesTotal   *prometheus.CounterVec
	WriteFailuresTotal *prometheus.CounterVec

	// Session metrics
	SessionsTotal *prometheus.CounterVec
	SessionOpen   prometheus.Gauge

	// File maintenance metrics
	RotationsTotal prometheus.Counter
	ReopensTotal   prometheus.Counter
}

// NewMetrics creates and registers all metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		RecordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_total",
				Help:      "Total number of records appended to a sink",
			},
			[]string{"target_kind"},
		),
		RecordBytesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "record_bytes_total",
				Help:      "Total number of bytes appended to a sink",
			},
			[]string{"target_kind"},
		),
		WriteFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "write_failures_total",
				Help:      "Total number of records a sink rejected",
			},
			[]string{"target_kind"},
		),

		SessionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_total",
				Help:      "Total number of log sessions opened",
			},
			[]string{"target_kind"},
		),
		SessionOpen: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "session_open",
				Help:      "1 while a log session is open",
			},
		),

		RotationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rotations_total",
				Help:      "Total number of forced or scheduled rotations",
			},
		),
		ReopensTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reopens_total",
				Help:      "Total number of times a target was reopened in place",
			},
		),
	}

	m.registerMetrics()

	return m
}

// registerMetrics registers all metrics with the registry
func (m *Metrics) registerMetrics() {
	m.registry.MustRegister(m.RecordsTotal)
	m.registry.MustRegister(m.RecordBytesTotal)
	m.registry.MustRegister(m.WriteFailuresTotal)

	m.registry.MustRegister(m.SessionsTotal)
	m.registry.MustRegister(m.SessionOpen)

	m.registry.MustRegister(m.RotationsTotal)
	m.registry.MustRegister(m.ReopensTotal)
}

// RecordWritten counts one record of n bytes.
func (m *Metrics) RecordWritten(kind string, n int) {
	if m == nil {
		return
	}
	m.RecordsTotal.WithLabelValues(kind).Inc()
	m.RecordBytesTotal.WithLabelValues(kind).Add(float64(n))
}

// WriteFailed counts one rejected record.
func (m *Metrics) WriteFailed(kind string) {
	if m == nil {
		return
	}
	m.WriteFailuresTotal.WithLabelValues(kind).Inc()
}

// SessionOpened marks a session as open.
func (m *Metrics) SessionOpened(kind string) {
	if m == nil {
		return
	}
	m.SessionsTotal.WithLabelValues(kind).Inc()
	m.SessionOpen.Set(1)
}

// SessionClosed marks the session as closed.
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.SessionOpen.Set(0)
}

func (m *Metrics) Rotated() {
	if m == nil {
		return
	}
	m.RotationsTotal.Inc()
}

func (m *Metrics) Reopened() {
	if m == nil {
		return
	}
	m.ReopensTotal.Inc()
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
