package client

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NicolasHaas/badgeboard/pkg/model"
	"github.com/NicolasHaas/badgeboard/pkg/realtime"
)

func TestMetricsRecordCoordinator(t *testing.T) {
	m := NewMetrics()
	fb := newFake()
	fb.badgesErr = errOffline
	h := newHarness(t, fb, &alice, WithMetrics(m))
	h.start(t)
	h.waitProfile(t)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.sectionFailures.WithLabelValues("badges")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.sectionFailures.WithLabelValues("feed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.coordState.WithLabelValues("ready")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.coordState.WithLabelValues("hydrating")))

	h.c.HandleEvent(model.BadgeRemoved{BadgeID: "b1", UserID: "u2", Count: 1})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsApplied.WithLabelValues("badge_removed")))
	assert.Greater(t, testutil.ToFloat64(m.lastEventApplied), 0.0)
}

func TestMetricsRecorder(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("GET /badges", "ok", 20*time.Millisecond)
	m.ObserveAPI("GET /badges", "network", time.Second)
	m.FrameDecoded(model.EventBadgeAwarded)
	m.FrameDropped("malformed")
	m.ConnState(realtime.StateConnected)
	m.ConnState(realtime.StateReconnecting)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiRequests.WithLabelValues("GET /badges", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiRequests.WithLabelValues("GET /badges", "network")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.framesDecoded.WithLabelValues("badge_awarded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.framesDropped.WithLabelValues("malformed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.connState.WithLabelValues("connected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connState.WithLabelValues("reconnecting")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.realtimeRedials))
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAPI("op", "ok", time.Millisecond)
		m.FrameDecoded(model.EventBadgeRemoved)
		m.FrameDropped("too_large")
		m.ConnState(realtime.StateDisconnected)
		m.coordinatorState(StateReady)
		m.eventApplied(model.EventBadgeAwarded)
		m.sectionFailed("feed")
	})
}

func TestStartMetricsHTTP(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewMetrics()
	m.coordinatorState(StateReady)
	addr, err := StartMetricsHTTP(ctx, "127.0.0.1:0", m)
	require.NoError(t, err)
	require.NotEmpty(t, addr)

	get := func(path string) (int, string) {
		resp, err := http.Get("http://" + addr + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	code, body := get("/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok\n", body)

	code, body = get("/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `badgeboard_coordinator_state{state="ready"} 1`)

	addr, err = StartMetricsHTTP(ctx, "", m)
	require.NoError(t, err)
	assert.Empty(t, addr)
}
