// Package metrics exposes Prometheus instrumentation for the RPC layer and the ledger.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OutcomeAdmitted labels a settlement check that passed.
const OutcomeAdmitted = "admitted"

// Metrics owns a private registry so tests can create as many as they like.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	rpcRequests      *prometheus.CounterVec
	rpcDuration      *prometheus.HistogramVec
	settlementChecks *prometheus.CounterVec
	eventsPublished  *prometheus.CounterVec
}

// New registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "settleup",
			Name:      "rpc_requests_total",
			Help:      "RPC calls by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "settleup",
			Name:      "rpc_duration_seconds",
			Help:      "RPC handling time.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		settlementChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "settleup",
			Name:      "settlement_checks_total",
			Help:      "Settlement admissibility decisions by outcome (admitted or rejection reason).",
		}, []string{"outcome"}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "settleup",
			Name:      "events_published_total",
			Help:      "Realtime events by type and delivery result.",
		}, []string{"type", "result"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.rpcRequests,
		m.rpcDuration,
		m.settlementChecks,
		m.eventsPublished,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveSettlementCheck counts one admissibility decision.
func (m *Metrics) ObserveSettlementCheck(outcome string) {
	if m == nil {
		return
	}
	m.settlementChecks.WithLabelValues(outcome).Inc()
}

// ObserveEvent counts one publish attempt.
func (m *Metrics) ObserveEvent(eventType string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.eventsPublished.WithLabelValues(eventType, result).Inc()
}

// Interceptor records count and latency of every unary RPC.
func (m *Metrics) Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if m == nil {
				return next(ctx, req)
			}
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			code := "ok"
			if err != nil {
				code = connect.CodeUnknown.String()
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					code = connectErr.Code().String()
				}
			}
			m.rpcRequests.WithLabelValues(procedure, code).Inc()
			m.rpcDuration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
			return resp, err
		}
	}
}
