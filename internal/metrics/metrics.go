// Package metrics exports gameplay counters to Prometheus.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/code-arsenal/arsenal/internal/gamification"
)

const namespace = "arsenal"

// Metrics implements gamification.Observer on Prometheus collectors.
type Metrics struct {
	submissions  *prometheus.CounterVec
	xpAwarded    *prometheus.CounterVec
	rewardXP     prometheus.Histogram
	level        prometheus.Gauge
	achievements *prometheus.CounterVec
	writeErrors  prometheus.Counter
	wsClients    prometheus.Gauge
}

var _ gamification.Observer = (*Metrics)(nil)

// New registers the collectors with reg. Collectors already registered under
// the same name are reused, so calling New twice against one registry is safe.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Graded challenge submissions.",
		}, []string{"category", "difficulty", "result"}),
		xpAwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "xp_awarded_total",
			Help:      "XP credited to the player.",
		}, []string{"category"}),
		rewardXP: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reward_xp",
			Help:      "Final XP per successful submission.",
			Buckets:   []float64{10, 25, 50, 100, 200, 400, 800, 1600},
		}),
		level: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "player_level",
			Help:      "Current player level.",
		}),
		achievements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "achievements_unlocked_total",
			Help:      "Achievements unlocked, by tier.",
		}, []string{"tier"}),
		writeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_write_errors_total",
			Help:      "Failed writes to the persistence backend.",
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_clients",
			Help:      "Connected WebSocket clients.",
		}),
	}

	if err := register(reg, &m.submissions); err != nil {
		return nil, err
	}
	if err := register(reg, &m.xpAwarded); err != nil {
		return nil, err
	}
	if err := register(reg, &m.rewardXP); err != nil {
		return nil, err
	}
	if err := register(reg, &m.level); err != nil {
		return nil, err
	}
	if err := register(reg, &m.achievements); err != nil {
		return nil, err
	}
	if err := register(reg, &m.writeErrors); err != nil {
		return nil, err
	}
	if err := register(reg, &m.wsClients); err != nil {
		return nil, err
	}
	return m, nil
}

// register adds *c to reg, swapping in the existing collector on a
// duplicate registration.
func register[C prometheus.Collector](reg prometheus.Registerer, c *C) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(C); ok {
			*c = existing
			return nil
		}
	}
	return err
}

func (m *Metrics) ObserveSubmission(category string, difficulty gamification.Difficulty, success bool) {
	result := "fail"
	if success {
		result = "success"
	}
	m.submissions.WithLabelValues(category, string(difficulty), result).Inc()
}

func (m *Metrics) ObserveReward(b gamification.RewardBreakdown) {
	m.xpAwarded.WithLabelValues(b.Category).Add(float64(b.FinalXP))
	m.rewardXP.Observe(float64(b.FinalXP))
}

func (m *Metrics) ObserveLevel(level int) {
	m.level.Set(float64(level))
}

func (m *Metrics) ObserveAchievement(a gamification.Achievement) {
	m.achievements.WithLabelValues(string(a.Tier)).Inc()
}

func (m *Metrics) ObserveWriteError() {
	m.writeErrors.Inc()
}

// SetClients records the WebSocket client count.
func (m *Metrics) SetClients(n int) {
	m.wsClients.Set(float64(n))
}
