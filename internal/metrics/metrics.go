// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package metrics exposes the bot's Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace       = "tenki"
	shutdownTimeout = 5 * time.Second
	readTimeout     = 10 * time.Second
)

// Metrics holds the collectors of the bot. All methods are safe to call on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	CommandsTotal    *prometheus.CounterVec
	CommandDuration  *prometheus.HistogramVec
	GeocodeLookups   *prometheus.CounterVec
	CachePrunedTotal prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Total number of processed chat messages by result",
			},
			[]string{"result"},
		),
		CommandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "command_duration_seconds",
				Help:      "Histogram of weather command processing latencies",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"result"},
		),
		GeocodeLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "geocode_lookups_total",
				Help:      "Total number of successful geocode lookups by cache usage",
			},
			[]string{"cache"},
		),
		CachePrunedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "geocode_cache_pruned_total",
				Help:      "Total number of expired geocode cache entries removed",
			},
		),
	}
	reg.MustRegister(
		m.CommandsTotal,
		m.CommandDuration,
		m.GeocodeLookups,
		m.CachePrunedTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveCommand records the result of a processed message. No-match results are counted
// but not timed.
func (m *Metrics) ObserveCommand(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(result).Inc()
	if result != "no_match" {
		m.CommandDuration.WithLabelValues(result).Observe(duration.Seconds())
	}
}

func (m *Metrics) ObserveGeocode(cacheHit bool) {
	if m == nil {
		return
	}
	label := "miss"
	if cacheHit {
		label = "hit"
	}
	m.GeocodeLookups.WithLabelValues(label).Inc()
}

func (m *Metrics) ObservePruned(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.CachePrunedTotal.Add(float64(n))
}

// Handler returns the HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve serves /metrics on the listener until the context is canceled.
func (m *Metrics) Serve(ctx context.Context, listener net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{Handler: mux, ReadHeaderTimeout: readTimeout}

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Serve(listener)
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server failed: %w", err)
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			return fmt.Errorf("failed to shut down metrics server: %w", err)
		}
		return nil
	}
}

// ListenAndServe listens on addr and serves /metrics until the context is canceled.
func (m *Metrics) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return m.Serve(ctx, listener)
}
