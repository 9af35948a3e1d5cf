// Package metrics records what a bot run did and pushes it to a Prometheus
// Pushgateway. A run is a short-lived process, so nothing is scraped.
package metrics

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"nagato/internal/models"
	"nagato/internal/recommend"
)

const namespace = "nagato"

// Recommendation outcomes.
const (
	RecommendationFound = "found"
	RecommendationNone  = "none"
	RecommendationError = "error"
)

// Follow actions.
const (
	ActionFollow   = "follow"
	ActionUnfollow = "unfollow"
)

// Recorder holds the metrics of one run. A nil *Recorder discards everything.
type Recorder struct {
	registry        *prometheus.Registry
	oracleQueries   *prometheus.CounterVec
	responses       *prometheus.CounterVec
	recommendations *prometheus.CounterVec
	followChanges   *prometheus.CounterVec
	timelineSpeed   prometheus.Gauge
	lastRun         prometheus.Gauge
	runDuration     prometheus.Gauge
}

// New creates a recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		oracleQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_queries_total",
			Help:      "Book search queries issued during recommendation, by result size",
		}, []string{"outcome"}),
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "responses_total",
			Help:      "Replies sent, by intent",
		}, []string{"intent"}),
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Book recommendations, by result",
		}, []string{"result"}),
		followChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "follow_changes_total",
			Help:      "Follow and unfollow calls, by action and outcome",
		}, []string{"action", "outcome"}),
		timelineSpeed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "timeline_speed_posts_per_hour",
			Help:      "Home timeline speed observed by the last run",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Duration of the last run",
		}),
	}
	r.registry.MustRegister(
		r.oracleQueries,
		r.responses,
		r.recommendations,
		r.followChanges,
		r.timelineSpeed,
		r.lastRun,
		r.runDuration,
	)
	return r
}

// Registry returns the registry holding the run's metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe implements recommend.Observer.
func (r *Recorder) Observe(step recommend.Step) {
	if r == nil {
		return
	}
	outcome := "none"
	switch {
	case step.Count == 1:
		outcome = "singleton"
	case step.Count > 1:
		outcome = "ambiguous"
	}
	r.oracleQueries.WithLabelValues(outcome).Inc()
}

// RecordResponse counts a reply sent for intent.
func (r *Recorder) RecordResponse(intent models.Intent) {
	if r == nil {
		return
	}
	r.responses.WithLabelValues(string(intent)).Inc()
}

// RecordRecommendation counts a recommendation by result.
func (r *Recorder) RecordRecommendation(result string) {
	if r == nil {
		return
	}
	r.recommendations.WithLabelValues(result).Inc()
}

// RecordFollowChange counts a follow or unfollow call.
func (r *Recorder) RecordFollowChange(action string, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.followChanges.WithLabelValues(action, outcome).Inc()
}

// SetTimelineSpeed records the home timeline speed in posts per hour.
func (r *Recorder) SetTimelineSpeed(postsPerHour int) {
	if r == nil {
		return
	}
	r.timelineSpeed.Set(float64(postsPerHour))
}

// MarkRun records when a run started and finished.
func (r *Recorder) MarkRun(started, finished time.Time) {
	if r == nil {
		return
	}
	r.lastRun.Set(float64(finished.Unix()))
	r.runDuration.Set(finished.Sub(started).Seconds())
}

// Push sends the run's metrics to the Pushgateway at url under job,
// replacing the previous push of the same job.
func (r *Recorder) Push(url, job string) error {
	if r == nil || url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(r.registry).Push(); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	slog.Debug("pushed metrics", "url", url, "job", job)
	return nil
}

var _ recommend.Observer = (*Recorder)(nil)
