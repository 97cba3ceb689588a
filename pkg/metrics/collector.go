// Package metrics exposes Prometheus instrumentation for the bot.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/newscluster/telegram-bot/internal/state"
)

var (
	botCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total number of bot commands received labeled by command and status",
		},
		[]string{"command", "status"},
	)
	commandDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "command_duration_seconds",
			Help:    "Duration of bot commands in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	stateTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "state_transitions_total",
			Help: "Total number of conversation state transitions",
		},
		[]string{"from", "to"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by type and severity",
		},
		[]string{"type", "severity"},
	)
	feedRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_requests_total",
			Help: "Total number of RSS feed requests labeled by outcome",
		},
		[]string{"status"},
	)
	feedArticlesFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_articles_fetched_total",
			Help: "Total number of articles fetched from news feeds",
		},
	)
	digestClustersBuilt = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "digest_clusters_built",
			Help:    "Number of clusters produced per digest run",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)
	digestDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_deliveries_total",
			Help: "Total number of digest deliveries labeled by trigger and status",
		},
		[]string{"trigger", "status"},
	)
	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Current number of active conversation sessions",
		},
	)
	sessionsByState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sessions_by_state",
			Help: "Number of conversation sessions per state",
		},
		[]string{"state"},
	)
)

var trackedStates = []state.State{
	state.StateIdle,
	state.StateAwaitingTopic,
	state.StateAwaitingLocation,
	state.StateAwaitingLanguage,
	state.StateAwaitingAuto,
	state.StateError,
}

func init() {
	state.RegisterTransitionRecorder(RecordStateTransition)
}

// RecordCommand increments command counters and records duration.
func RecordCommand(command, status string, duration time.Duration) {
	if command == "" {
		command = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botCommandsTotal.WithLabelValues(command, status).Inc()
	commandDurationSeconds.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordStateTransition tracks FSM transitions.
func RecordStateTransition(from, to string) {
	if from == "" {
		from = "unknown"
	}
	if to == "" {
		to = "unknown"
	}

	stateTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordError increments error counters with metadata.
func RecordError(errType, severity string) {
	if errType == "" {
		errType = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(errType, severity).Inc()
}

// RecordFeedRequest tracks one upstream feed request outcome.
func RecordFeedRequest(status string, articles int) {
	if status == "" {
		status = "unknown"
	}

	feedRequestsTotal.WithLabelValues(status).Inc()
	if articles > 0 {
		feedArticlesFetched.Add(float64(articles))
	}
}

// RecordClusters observes the cluster count of a digest run.
func RecordClusters(count int) {
	digestClustersBuilt.Observe(float64(count))
}

// RecordDigestDelivery tracks a digest delivery attempt.
func RecordDigestDelivery(trigger, status string) {
	if trigger == "" {
		trigger = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	digestDeliveriesTotal.WithLabelValues(trigger, status).Inc()
}

// SessionCollector periodically gathers FSM state counts and emits gauge metrics.
type SessionCollector struct {
	fsm      state.StateMachine
	interval time.Duration
}

// NewSessionCollector builds a metrics collector bound to the provided FSM.
func NewSessionCollector(fsm state.StateMachine) *SessionCollector {
	return &SessionCollector{fsm: fsm, interval: 10 * time.Second}
}

// Run polls the FSM on an interval, updating session gauges until ctx is cancelled.
func (c *SessionCollector) Run(ctx context.Context) {
	if c == nil || c.fsm == nil {
		return
	}

	for {
		_ = c.collect(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.interval):
		}
	}
}

func (c *SessionCollector) collect(ctx context.Context) error {
	states, err := c.fsm.GetAllStates(ctx)
	if err != nil {
		return err
	}

	activeSessions.Set(float64(len(states)))

	counts := make(map[string]int, len(states))
	for _, st := range states {
		label := "unknown"
		if st != nil && st.CurrentState != "" {
			label = string(st.CurrentState)
		}
		counts[label]++
	}

	sessionsByState.Reset()

	for _, tracked := range trackedStates {
		label := string(tracked)
		sessionsByState.WithLabelValues(label).Set(float64(counts[label]))
		delete(counts, label)
	}

	for label, count := range counts {
		sessionsByState.WithLabelValues(label).Set(float64(count))
	}

	return nil
}
