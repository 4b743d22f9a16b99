package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tracklit"

// Outcome labels for the statistics counter.
const (
	OutcomeCompleted = "completed"
	OutcomeForgotten = "forgotten"
)

// Metrics holds the engine collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Reconciliations     prometheus.Counter
	ReminderTransitions *prometheus.CounterVec
	StatisticsCounted   *prometheus.CounterVec
	StatisticsResets    prometheus.Counter
	HabitCompletions    prometheus.Counter
	AchievementUnlocks  *prometheus.CounterVec
}

// New creates the collectors and registers them with reg when reg is non-nil.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Reconciliations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciliations_total",
			Help:      "Number of reconciliation passes run.",
		}),
		ReminderTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_transitions_total",
			Help:      "Reminder status transitions by target status.",
		}, []string{"to"}),
		StatisticsCounted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "statistics_counted_total",
			Help:      "Terminal reminder outcomes recorded into user statistics.",
		}, []string{"outcome"}),
		StatisticsResets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "statistics_resets_total",
			Help:      "Daily statistics counter resets.",
		}),
		HabitCompletions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "habit_completions_total",
			Help:      "Habit days marked completed.",
		}),
		AchievementUnlocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "achievements_unlocked_total",
			Help:      "Achievements unlocked by template.",
		}, []string{"achievement"}),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Reconciliations,
		m.ReminderTransitions,
		m.StatisticsCounted,
		m.StatisticsResets,
		m.HabitCompletions,
		m.AchievementUnlocks,
	}
}

func (m *Metrics) ObserveReconcile() {
	if m != nil {
		m.Reconciliations.Inc()
	}
}

func (m *Metrics) ObserveTransition(to string) {
	if m != nil {
		m.ReminderTransitions.WithLabelValues(to).Inc()
	}
}

func (m *Metrics) ObserveCounted(outcome string) {
	if m != nil {
		m.StatisticsCounted.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ObserveReset() {
	if m != nil {
		m.StatisticsResets.Inc()
	}
}

func (m *Metrics) ObserveHabitCompletion() {
	if m != nil {
		m.HabitCompletions.Inc()
	}
}

func (m *Metrics) ObserveAchievementUnlocked(templateID string) {
	if m != nil {
		m.AchievementUnlocks.WithLabelValues(templateID).Inc()
	}
}
