// The MIT License (MIT)
//
// Copyright (c) 2024-2026 nodeforge
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

// Package metrics exposes Prometheus counters and gauges for
// SecureChannel lifecycle events and chunk reassembly aborts. The core
// protocol packages never import it directly; a dispatcher.Handler
// wrapper in this package observes the same ChannelOpened/ChannelClosed/
// TokenRenewed callbacks any other Handler does.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// defaultRegistry is the registry NewMetrics registers against.
var defaultRegistry = prometheus.DefaultRegisterer

// Metrics holds the channel and connection lifecycle instruments this
// module exposes.
type Metrics struct {
	channelsOpenedTotal  *prometheus.CounterVec
	channelsClosedTotal  *prometheus.CounterVec
	channelsRenewedTotal *prometheus.CounterVec
	chunkAbortsTotal     prometheus.Counter
	activeChannels       prometheus.Gauge
}

// NewMetrics creates a Metrics instance registered against the default
// Prometheus registry.
func NewMetrics() *Metrics {
	return newMetrics(defaultRegistry)
}

// NewMetricsWithRegistry creates a Metrics instance registered against reg,
// so tests can use their own registry and avoid collisions with other
// tests registering the same metric names against the default one.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	return newMetrics(reg)
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		channelsOpenedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opcua_channels_opened_total",
				Help: "Total number of secure channels opened, by role.",
			},
			[]string{"role"},
		),
		channelsClosedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opcua_channels_closed_total",
				Help: "Total number of secure channels closed, by role and reason.",
			},
			[]string{"role", "reason"},
		),
		channelsRenewedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opcua_channels_renewed_total",
				Help: "Total number of security token renewals, by role.",
			},
			[]string{"role"},
		),
		chunkAbortsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "opcua_chunk_aborts_total",
				Help: "Total number of chunk reassemblies abandoned after an A (abort) chunk.",
			},
		),
		activeChannels: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "opcua_active_channels",
				Help: "Number of secure channels currently open.",
			},
		),
	}
}

// ChannelOpened records a channel transitioning to open for the given role
// ("client" or "server").
func (m *Metrics) ChannelOpened(role string) {
	m.channelsOpenedTotal.WithLabelValues(role).Inc()
	m.activeChannels.Inc()
}

// ChannelClosed records a channel closing for the given role and reason
// ("peer-closed", "error", "abort", ...).
func (m *Metrics) ChannelClosed(role, reason string) {
	m.channelsClosedTotal.WithLabelValues(role, reason).Inc()
	m.activeChannels.Dec()
}

// ChannelRenewed records a successful token renewal for the given role.
func (m *Metrics) ChannelRenewed(role string) {
	m.channelsRenewedTotal.WithLabelValues(role).Inc()
}

// ChunkAbort records a chunk stream abandoned after the peer sent an A
// chunk.
func (m *Metrics) ChunkAbort() {
	m.chunkAbortsTotal.Inc()
}

// Handler returns the HTTP handler a server mounts at its metrics
// endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}
