// Package metrics holds the Prometheus collectors for analysis runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/chrissnell/powerspeed/internal/analysis"
)

var (
	analysisRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "powerspeed_analysis_runs_total",
		Help: "Analysis passes by outcome status",
	}, []string{"status"})

	loadFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "powerspeed_load_failures_total",
		Help: "Dataset loads that failed, by error kind",
	}, []string{"kind"})

	trendUnavailable = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "powerspeed_trend_unavailable_total",
		Help: "Vessel series without a trend line, by reason",
	}, []string{"reason"})

	analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "powerspeed_analysis_duration_seconds",
		Help:    "Time spent loading and analysing a dataset",
		Buckets: prometheus.DefBuckets,
	})
)

// ObserveResult records the outcome of one analysis pass
func ObserveResult(res *analysis.Result, took time.Duration) {
	analysisRuns.WithLabelValues(string(res.Status)).Inc()
	for _, s := range res.Series {
		if !s.Trend.Available() {
			trendUnavailable.WithLabelValues(string(s.Trend.Reason)).Inc()
		}
	}
	analysisDuration.Observe(took.Seconds())
}

// ObserveLoadFailure records a failed dataset load
func ObserveLoadFailure(kind string) {
	loadFailures.WithLabelValues(kind).Inc()
	analysisRuns.WithLabelValues("error").Inc()
}
