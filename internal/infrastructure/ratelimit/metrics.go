package ratelimit

import (
	"context"
	"errors"

	"github.com/ipede/album-catalog/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder exports admission outcomes as a counter vector
type PrometheusRecorder struct {
	decisions *prometheus.CounterVec
}

// NewPrometheusRecorder registers the admission counters on reg
func NewPrometheusRecorder(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "admission_decisions_total",
		Help:      "Total number of per-principal admission decisions.",
	}, []string{"outcome", "method"})

	if err := reg.Register(decisions); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}
		decisions = already.ExistingCollector.(*prometheus.CounterVec)
	}
	return &PrometheusRecorder{decisions: decisions}, nil
}

// Record never fails. Route paths are left out of the labels to bound cardinality.
func (p *PrometheusRecorder) Record(_ context.Context, ev domain.AdmissionEvent) error {
	p.decisions.WithLabelValues(outcome(ev.Admitted), ev.Method).Inc()
	return nil
}

// Collector exposes the underlying counters, mainly for tests
func (p *PrometheusRecorder) Collector() *prometheus.CounterVec {
	return p.decisions
}

// MultiRecorder fans one event out to several recorders and joins their errors
type MultiRecorder []domain.AdmissionRecorder

func (m MultiRecorder) Record(ctx context.Context, ev domain.AdmissionEvent) error {
	var errs []error
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := r.Record(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
