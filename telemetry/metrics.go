// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	RoundsStarted         prometheus.Counter
	RoundsWithWinner      prometheus.Counter
	RoundsEmpty           prometheus.Counter
	RoundsRecovered       prometheus.Counter
	EntriesJoined         prometheus.Counter
	EntriesRejected       *prometheus.CounterVec // labeled by rejection reason
	FulfillmentsSucceeded prometheus.Counter
	FulfillmentsFailed    prometheus.Counter
	ChatPollErrors        prometheus.Counter

	// Histograms (seconds)
	ResolveDuration prometheus.Observer
	RoundDuration   prometheus.Observer

	// Gauges
	EntrantsGauge   prometheus.Gauge
	RoundStateGauge prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		RoundsStarted = promauto.NewCounter(prometheus.CounterOpts{Name: "giveaway_rounds_started_total", Help: "Number of giveaway rounds started"})
		RoundsWithWinner = promauto.NewCounter(prometheus.CounterOpts{Name: "giveaway_rounds_won_total", Help: "Number of rounds that selected a winner"})
		RoundsEmpty = promauto.NewCounter(prometheus.CounterOpts{Name: "giveaway_rounds_empty_total", Help: "Number of rounds that closed with no entrants"})
		RoundsRecovered = promauto.NewCounter(prometheus.CounterOpts{Name: "giveaway_rounds_recovered_total", Help: "Number of rounds aborted by an unexpected error and recovered"})
		EntriesJoined = promauto.NewCounter(prometheus.CounterOpts{Name: "giveaway_entries_joined_total", Help: "Number of accepted giveaway entries"})
		EntriesRejected = promauto.NewCounterVec(prometheus.CounterOpts{Name: "giveaway_entries_rejected_total", Help: "Number of rejected entries by reason"}, []string{"reason"})
		FulfillmentsSucceeded = promauto.NewCounter(prometheus.CounterOpts{Name: "giveaway_fulfillments_succeeded_total", Help: "Number of confirmed gamepass purchases"})
		FulfillmentsFailed = promauto.NewCounter(prometheus.CounterOpts{Name: "giveaway_fulfillments_failed_total", Help: "Number of unconfirmed or failed gamepass purchases"})
		ChatPollErrors = promauto.NewCounter(prometheus.CounterOpts{Name: "giveaway_chat_poll_errors_total", Help: "Number of transient chat poll failures"})
		ResolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "giveaway_resolve_duration_seconds", Help: "Eligibility resolution duration seconds", Buckets: prometheus.DefBuckets})
		RoundDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "giveaway_round_duration_seconds", Help: "Full round duration seconds", Buckets: []float64{15, 30, 60, 120, 180, 300, 600}})
		EntrantsGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "giveaway_entrants", Help: "Entrants joined in the current round"})
		RoundStateGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "giveaway_round_state", Help: "Current round state (0=idle 1=intake 2=selecting 3=fulfilling 4=cooldown 5=stopped)"})
	})
}

// SetEntrants records the current round's entrant count.
func SetEntrants(n int) {
	if EntrantsGauge != nil {
		EntrantsGauge.Set(float64(n))
	}
}

// SetRoundState records the scheduler's current state.
func SetRoundState(s int) {
	if RoundStateGauge != nil {
		RoundStateGauge.Set(float64(s))
	}
}

// RejectEntry counts a rejected entry under the given reason label.
func RejectEntry(reason string) {
	if EntriesRejected != nil {
		EntriesRejected.WithLabelValues(reason).Inc()
	}
}

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding correlation id (if absent) and the id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	v := ctx.Value(corrKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
