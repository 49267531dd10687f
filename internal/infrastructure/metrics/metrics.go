// Package metrics exposes swipe and match counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
)

const namespace = "sublease"

type Metrics struct {
	swipesRecorded  *prometheus.CounterVec
	swipesDuplicate prometheus.Counter
	matchesMutual   prometheus.Counter
}

// New registers the counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		swipesRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "swipes",
				Name:      "recorded_total",
				Help:      "Swipes stored, by decision.",
			},
			[]string{"decision"},
		),
		swipesDuplicate: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swipes",
			Name:      "duplicate_total",
			Help:      "Swipes rejected because the same decision was already recorded.",
		}),
		matchesMutual: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matches",
			Name:      "mutual_total",
			Help:      "Matches that became mutual.",
		}),
	}
}

func (m *Metrics) SwipeRecorded(decision domain.Decision) {
	m.swipesRecorded.WithLabelValues(string(decision)).Inc()
}

func (m *Metrics) DuplicateSwipe() {
	m.swipesDuplicate.Inc()
}

func (m *Metrics) MatchMutual() {
	m.matchesMutual.Inc()
}
