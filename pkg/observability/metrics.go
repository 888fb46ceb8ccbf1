package observability

import (
	"context"
	"strconv"

	"github.com/aretw0/formstate/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts engine activity in Prometheus.
type Metrics struct {
	Transitions *prometheus.CounterVec
	Rejections  *prometheus.CounterVec
	FlagChanges *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formstate_transitions_total",
				Help: "Total number of applied form transitions",
			},
			[]string{"form", "action"},
		),
		Rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formstate_rejections_total",
				Help: "Total number of rejected form transitions (unknown fields)",
			},
			[]string{"form", "action"},
		),
		FlagChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formstate_flag_changes_total",
				Help: "Total number of derived flag flips",
			},
			[]string{"form", "flag", "value"},
		),
	}
	reg.MustRegister(m.Transitions, m.Rejections, m.FlagChanges)
	return m
}

// Hooks returns lifecycle hooks that feed the counters.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			m.Transitions.WithLabelValues(e.FormName, string(e.Action)).Inc()
		},
		OnRejected: func(_ context.Context, e *domain.TransitionEvent) {
			m.Rejections.WithLabelValues(e.FormName, string(e.Action)).Inc()
		},
		OnFlagChange: func(_ context.Context, e *domain.FlagEvent) {
			m.FlagChanges.WithLabelValues(e.FormName, string(e.Flag), strconv.FormatBool(e.Value)).Inc()
		},
	}
}
