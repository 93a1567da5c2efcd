package client

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/NicolasHaas/badgeboard/pkg/model"
	"github.com/NicolasHaas/badgeboard/pkg/realtime"
)

// Metrics collects client telemetry on a private registry. All methods are
// safe on a nil *Metrics, which records nothing.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests      *prometheus.CounterVec
	apiDuration      *prometheus.HistogramVec
	framesDecoded    *prometheus.CounterVec
	framesDropped    *prometheus.CounterVec
	connState        *prometheus.GaugeVec
	coordState       *prometheus.GaugeVec
	eventsApplied    *prometheus.CounterVec
	sectionFailures  *prometheus.CounterVec
	realtimeRedials  prometheus.Counter
	lastEventApplied prometheus.Gauge
}

var _ realtime.Recorder = (*Metrics)(nil)

// NewMetrics creates and registers the client metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "badgeboard_api_requests_total",
			Help: "Backend API calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		apiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "badgeboard_api_request_duration_seconds",
			Help:    "Backend API call latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		framesDecoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "badgeboard_realtime_frames_decoded_total",
			Help: "Realtime frames decoded by event type.",
		}, []string{"type"}),
		framesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "badgeboard_realtime_frames_dropped_total",
			Help: "Malformed realtime frames dropped by reason.",
		}, []string{"reason"}),
		connState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "badgeboard_realtime_connection_state",
			Help: "1 for the current realtime connection state, 0 otherwise.",
		}, []string{"state"}),
		coordState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "badgeboard_coordinator_state",
			Help: "1 for the current coordinator state, 0 otherwise.",
		}, []string{"state"}),
		eventsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "badgeboard_events_applied_total",
			Help: "Realtime events applied to the view by type.",
		}, []string{"type"}),
		sectionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "badgeboard_section_fetch_failures_total",
			Help: "Failed section fetches by section.",
		}, []string{"section"}),
		realtimeRedials: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "badgeboard_realtime_reconnects_total",
			Help: "Times the realtime channel entered the reconnecting state.",
		}),
		lastEventApplied: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "badgeboard_last_event_applied_timestamp_seconds",
			Help: "Unix time of the last applied realtime event.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests, m.apiDuration,
		m.framesDecoded, m.framesDropped, m.connState, m.realtimeRedials,
		m.coordState, m.eventsApplied, m.lastEventApplied, m.sectionFailures,
	)
	return m
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveAPI matches api.Observer.
func (m *Metrics) ObserveAPI(op, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(op, outcome).Inc()
	m.apiDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *Metrics) FrameDecoded(t model.EventType) {
	if m == nil {
		return
	}
	m.framesDecoded.WithLabelValues(string(t)).Inc()
}

func (m *Metrics) FrameDropped(reason string) {
	if m == nil {
		return
	}
	m.framesDropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) ConnState(s realtime.State) {
	if m == nil {
		return
	}
	for _, st := range []realtime.State{
		realtime.StateConnecting, realtime.StateConnected,
		realtime.StateReconnecting, realtime.StateDisconnected,
	} {
		v := 0.0
		if st == s {
			v = 1
		}
		m.connState.WithLabelValues(st.String()).Set(v)
	}
	if s == realtime.StateReconnecting {
		m.realtimeRedials.Inc()
	}
}

func (m *Metrics) coordinatorState(s State) {
	if m == nil {
		return
	}
	for _, st := range []State{StateUninitialized, StateHydrating, StateReady, StateRefreshing} {
		v := 0.0
		if st == s {
			v = 1
		}
		m.coordState.WithLabelValues(st.String()).Set(v)
	}
}

func (m *Metrics) eventApplied(t model.EventType) {
	if m == nil {
		return
	}
	m.eventsApplied.WithLabelValues(string(t)).Inc()
	m.lastEventApplied.SetToCurrentTime()
}

func (m *Metrics) sectionFailed(section string) {
	if m == nil {
		return
	}
	m.sectionFailures.WithLabelValues(section).Inc()
}
