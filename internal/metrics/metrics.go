// Package metrics records per-run counters and pushes them to a Prometheus Pushgateway.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/ad-tracker/youtube-comment-export/internal/service"
)

const namespace = "youtube_comment_export"

// Metrics holds the counters of a single run on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	APICalls         *prometheus.CounterVec
	QuotaUnits       *prometheus.CounterVec
	CandidateIDs     prometheus.Counter
	VideosKept       prometheus.Counter
	ShortsExcluded   prometheus.Counter
	CommentRows      prometheus.Counter
	CommentsByStatus *prometheus.CounterVec
	LastSuccess      prometheus.Gauge
}

// New creates and registers the run metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		APICalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_calls_total",
			Help:      "Data API calls issued, by operation.",
		}, []string{"operation"}),
		QuotaUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_units_total",
			Help:      "Estimated Data API quota units spent, by operation.",
		}, []string{"operation"}),
		CandidateIDs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidate_videos_total",
			Help:      "Video ids enumerated from the uploads playlist.",
		}),
		VideosKept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "videos_kept_total",
			Help:      "Long-form videos selected for comment collection.",
		}),
		ShortsExcluded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shorts_excluded_total",
			Help:      "Videos dropped as short-form.",
		}),
		CommentRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comment_rows_total",
			Help:      "Rows written to the report.",
		}),
		CommentsByStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comment_fetches_total",
			Help:      "Per-video comment fetches, by outcome.",
		}, []string{"status"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that wrote a report.",
		}),
	}

	m.registry.MustRegister(
		m.APICalls,
		m.QuotaUnits,
		m.CandidateIDs,
		m.VideosKept,
		m.ShortsExcluded,
		m.CommentRows,
		m.CommentsByStatus,
		m.LastSuccess,
	)

	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordAPICall counts one API call and its quota cost. It matches the quota manager's
// OnRecord hook signature.
func (m *Metrics) RecordAPICall(operation string, cost int) {
	m.APICalls.WithLabelValues(operation).Inc()
	m.QuotaUnits.WithLabelValues(operation).Add(float64(cost))
}

// RecordRun adds a finished run's totals.
func (m *Metrics) RecordRun(summary *service.RunSummary) {
	if summary == nil {
		return
	}
	m.CandidateIDs.Add(float64(summary.CandidateIDs))
	m.VideosKept.Add(float64(summary.Videos))
	m.ShortsExcluded.Add(float64(summary.ShortsExcluded))
	m.CommentRows.Add(float64(summary.Comments.Rows))

	c := summary.Comments
	m.CommentsByStatus.WithLabelValues(service.CommentsFetched.String()).Add(float64(c.Videos - c.Disabled - c.Failed))
	m.CommentsByStatus.WithLabelValues(service.CommentsDisabled.String()).Add(float64(c.Disabled))
	m.CommentsByStatus.WithLabelValues(service.CommentsFailed.String()).Add(float64(c.Failed))

	m.LastSuccess.Set(float64(time.Now().Unix()))
}

// Push sends every metric to the Pushgateway at url, grouped by job and run id.
func (m *Metrics) Push(ctx context.Context, url, job, runID string) error {
	err := push.New(url, job).
		Gatherer(m.registry).
		Grouping("run_id", runID).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
