package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/mctbnc/pkg/observability"
)

// serveMetrics registers Prometheus hooks and serves them on addr until the
// returned stop function is called. An empty addr disables metrics.
func serveMetrics(addr string, logger *log.Logger) (func(), error) {
	if addr == "" {
		return func() {}, nil
	}

	reg := prometheus.NewRegistry()
	hooks := observability.NewPrometheusHooks(reg)
	observability.SetSearchHooks(hooks)
	observability.SetLearnHooks(hooks)
	observability.SetCacheHooks(hooks)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		observability.Reset()
		return nil, err
	}
	srv := &http.Server{
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		observability.Reset()
	}, nil
}
