package observability

import (
	"context"
	"errors"

	"github.com/aretw0/subboxer/pkg/bridge"
	"github.com/aretw0/subboxer/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "subboxer"

// Metrics holds the session and apply collectors.
type Metrics struct {
	subparticles  prometheus.Counter
	gestures      *prometheus.CounterVec
	modeChanges   *prometheus.CounterVec
	activeChanges prometheus.Counter
	applyRuns     prometheus.Counter
	applyWritten  prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg. Collectors that are
// already registered are reused, so several sessions may share one registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		subparticles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subparticles_added_total",
			Help:      "Subparticles added by alt-click.",
		}),
		gestures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gestures_total",
			Help:      "Pointer gestures by name and outcome.",
		}, []string{"gesture", "outcome"}),
		modeChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mode_changes_total",
			Help:      "Annotation mode changes by target mode.",
		}, []string{"mode"}),
		activeChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "active_changes_total",
			Help:      "Changes of the active subparticle.",
		}),
		applyRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "apply_runs_total",
			Help:      "Completed apply runs.",
		}),
		applyWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "apply_subparticles_written_total",
			Help:      "Subparticle poses written by apply runs.",
		}),
	}

	var err error
	if m.subparticles, err = register(reg, m.subparticles); err != nil {
		return nil, err
	}
	if m.gestures, err = register(reg, m.gestures); err != nil {
		return nil, err
	}
	if m.modeChanges, err = register(reg, m.modeChanges); err != nil {
		return nil, err
	}
	if m.activeChanges, err = register(reg, m.activeChanges); err != nil {
		return nil, err
	}
	if m.applyRuns, err = register(reg, m.applyRuns); err != nil {
		return nil, err
	}
	if m.applyWritten, err = register(reg, m.applyWritten); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Hooks returns notifications that update the session collectors.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnSubparticleAdded: func(context.Context, *domain.SubparticleEvent) {
			m.subparticles.Inc()
		},
		OnModeChanged: func(_ context.Context, e *domain.ModeEvent) {
			m.modeChanges.WithLabelValues(string(e.To)).Inc()
		},
		OnActiveChanged: func(context.Context, *domain.ActiveEvent) {
			m.activeChanges.Inc()
		},
		OnGestureEnded: func(_ context.Context, e *domain.GestureEvent) {
			outcome := "completed"
			if e.Aborted {
				outcome = "aborted"
			}
			m.gestures.WithLabelValues(e.Gesture, outcome).Inc()
		},
	}
}

// ObserveApply records a finished apply run.
func (m *Metrics) ObserveApply(s bridge.ApplySummary) {
	m.applyRuns.Inc()
	m.applyWritten.Add(float64(s.Written))
}
