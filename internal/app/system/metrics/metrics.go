// internal/app/system/metrics/metrics.go

// Package metrics records quest lifecycle, matching and sweep telemetry.
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Observer captures telemetry for the quest core.
type Observer interface {
	// ObserveOperation records one lifecycle or matching call.
	ObserveOperation(op, outcome string, d time.Duration)
	// AddConflictRetry counts an optimistic-concurrency retry.
	AddConflictRetry(op string)
	// AddSwept counts documents handled by a background sweep.
	AddSwept(job string, n int)
}

// Nop discards everything.
type Nop struct{}

func (Nop) ObserveOperation(string, string, time.Duration) {}
func (Nop) AddConflictRetry(string)                        {}
func (Nop) AddSwept(string, int)                           {}

// Prometheus exports Observer metrics.
type Prometheus struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
	retries  *prometheus.CounterVec
	swept    *prometheus.CounterVec
}

// NewPrometheus registers the quest metrics on reg. Registering twice on the
// same registry reuses the existing collectors.
func NewPrometheus(namespace string, reg prometheus.Registerer) (*Prometheus, error) {
	if namespace == "" {
		namespace = "sidequest"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Latency of quest lifecycle and matching operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Quest operations by outcome.",
	}, []string{"operation", "outcome"})
	retries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "conflict_retries_total",
		Help:      "Optimistic concurrency retries.",
	}, []string{"operation"})
	swept := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "swept_quests_total",
		Help:      "Quests expired or removed by background sweeps.",
	}, []string{"job"})

	var err error
	p := &Prometheus{}
	if p.duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if p.total, err = register(reg, total); err != nil {
		return nil, err
	}
	if p.retries, err = register(reg, retries); err != nil {
		return nil, err
	}
	if p.swept, err = register(reg, swept); err != nil {
		return nil, err
	}
	return p, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register metric: %w", err)
	}
	return c, nil
}

func (p *Prometheus) ObserveOperation(op, outcome string, d time.Duration) {
	p.duration.WithLabelValues(op).Observe(d.Seconds())
	p.total.WithLabelValues(op, outcome).Inc()
}

func (p *Prometheus) AddConflictRetry(op string) {
	p.retries.WithLabelValues(op).Inc()
}

func (p *Prometheus) AddSwept(job string, n int) {
	if n > 0 {
		p.swept.WithLabelValues(job).Add(float64(n))
	}
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the exposition format for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
