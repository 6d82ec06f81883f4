// Package metrics exposes placement-core counters to Prometheus.
//
// All methods are safe to call on a nil *Metrics, so components can be built
// without instrumentation in tests.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "midgard_ar"

// Frame outcomes.
const (
	FrameHit     = "hit"
	FrameMiss    = "miss"
	FrameSkipped = "skipped"
	FrameNoFrame = "no_frame"
)

// Trigger rejection reasons.
const (
	RejectNoReticle = "no_reticle"
	RejectNotLoaded = "not_loaded"
	RejectNoSession = "no_session"
)

// Metrics holds the core's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	frames           *prometheus.CounterVec
	placements       *prometheus.CounterVec
	rejectedTriggers *prometheus.CounterVec
	sessions         prometheus.Counter
	sourceFailures   prometheus.Counter
	modelsLoaded     prometheus.Gauge
	activeSession    prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frame ticks by hit-test outcome.",
		}, []string{"outcome"}),
		placements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "placements_total",
			Help:      "Objects placed, by model source.",
		}, []string{"model"}),
		rejectedTriggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_triggers_total",
			Help:      "Select triggers that placed nothing, by reason.",
		}, []string{"reason"}),
		sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "AR sessions started.",
		}),
		sourceFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hit_test_source_failures_total",
			Help:      "Hit-test source acquisitions rejected by the platform.",
		}),
		modelsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "models_loaded",
			Help:      "Catalog templates whose model has finished loading.",
		}),
		activeSession: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_active",
			Help:      "1 while an AR session is running.",
		}),
	}

	m.registry.MustRegister(
		m.frames,
		m.placements,
		m.rejectedTriggers,
		m.sessions,
		m.sourceFailures,
		m.modelsLoaded,
		m.activeSession,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Frame counts one frame tick with the given outcome.
func (m *Metrics) Frame(outcome string) {
	if m == nil {
		return
	}
	m.frames.WithLabelValues(outcome).Inc()
}

// Placed counts a placed object.
func (m *Metrics) Placed(model string) {
	if m == nil {
		return
	}
	m.placements.WithLabelValues(model).Inc()
}

// Rejected counts a trigger that placed nothing.
func (m *Metrics) Rejected(reason string) {
	if m == nil {
		return
	}
	m.rejectedTriggers.WithLabelValues(reason).Inc()
}

// SessionStarted marks a session as running.
func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessions.Inc()
	m.activeSession.Set(1)
}

// SessionEnded marks the session as stopped.
func (m *Metrics) SessionEnded() {
	if m == nil {
		return
	}
	m.activeSession.Set(0)
}

// SourceFailed counts a rejected hit-test source acquisition.
func (m *Metrics) SourceFailed() {
	if m == nil {
		return
	}
	m.sourceFailures.Inc()
}

// ModelLoaded counts a finished catalog load.
func (m *Metrics) ModelLoaded() {
	if m == nil {
		return
	}
	m.modelsLoaded.Inc()
}
