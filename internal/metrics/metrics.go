// Package metrics counts what the engine reads and alerts on, and exposes
// the counters to Prometheus.
package metrics

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ben0x539/eve-log-alert/internal/errors"
	"github.com/ben0x539/eve-log-alert/internal/event"
	"github.com/ben0x539/eve-log-alert/internal/logging"
)

const namespace = "evealert"

// Collector holds the counters. It uses its own registry so the Go
// runtime collectors are not exported.
type Collector struct {
	registry   *prometheus.Registry
	lines      *prometheus.CounterVec
	alerts     *prometheus.CounterVec
	suppressed *prometheus.CounterVec
	rotations  *prometheus.CounterVec
}

// New creates and registers the counters.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_total",
			Help:      "Complete log lines read, by stream.",
		}, []string{"stream"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Alerts delivered, by kind.",
		}, []string{"kind"}),
		suppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_suppressed_total",
			Help:      "Alerts held back by a throttle or while docked, by kind.",
		}, []string{"kind"}),
		rotations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rotations_total",
			Help:      "Tailed logs replaced by a successor, by stream.",
		}, []string{"stream"}),
	}
	c.registry.MustRegister(c.lines, c.alerts, c.suppressed, c.rotations)
	return c
}

// Registry returns the registry holding the counters.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Attach subscribes the collector to every event on bus and returns the
// subscription ID.
func (c *Collector) Attach(bus *event.Bus) string {
	return bus.SubscribeAll(c.observe)
}

func (c *Collector) observe(e event.Event) {
	switch ev := e.(type) {
	case event.AlertEvent:
		c.alerts.WithLabelValues(string(ev.Kind)).Inc()
	case event.SuppressedEvent:
		c.suppressed.WithLabelValues(string(ev.Kind)).Inc()
	case event.LinesReadEvent:
		c.lines.WithLabelValues(ev.Stream).Add(float64(ev.Count))
	case event.RotatedEvent:
		c.rotations.WithLabelValues(ev.Stream).Inc()
	}
}

// Handler serves the counters in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (c *Collector) Serve(ctx context.Context, addr string, logger *logging.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "metrics listener on %s", addr)
	}
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if logger != nil {
		logger.Info("metrics listening", "addr", ln.Addr().String())
	}
	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "metrics server")
	}
	return nil
}
