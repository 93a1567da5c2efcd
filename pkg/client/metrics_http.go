package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// StartMetricsHTTP serves /metrics and /healthz on addr in the background
// until ctx is cancelled. It returns the bound address, which differs from
// addr when addr asks for port 0. An empty addr disables the endpoint.
func StartMetricsHTTP(ctx context.Context, addr string, m *Metrics) (string, error) {
	if addr == "" || m == nil {
		return "", nil // metrics endpoint disabled
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return "", fmt.Errorf("client: metrics listen: %w", err)
	}

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("metrics HTTP listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics HTTP error", "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	return ln.Addr().String(), nil
}
