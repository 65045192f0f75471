// Package metrics exposes Prometheus collectors for the round engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "roundup"

// Recorder records engine activity. A nil *Recorder is valid and records nothing.
type Recorder struct {
	eventsPosted      *prometheus.CounterVec
	eventsDeduped     *prometheus.CounterVec
	roundsCompleted   prometheus.Counter
	reconcileFailures *prometheus.CounterVec
	reconcileDuration prometheus.Histogram
	aggregations      *prometheus.CounterVec
}

// New creates a Recorder and registers its collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		eventsPosted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_events_posted_total",
			Help:      "Social feed events posted, by type.",
		}, []string{"type"}),
		eventsDeduped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_events_deduplicated_total",
			Help:      "One-time events skipped because their ledger key was already claimed.",
		}, []string{"type"}),
		roundsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_completed_total",
			Help:      "Rounds transitioned to completed.",
		}),
		reconcileFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_failures_total",
			Help:      "Failures during round reconciliation, by stage.",
		}, []string{"stage"}),
		reconcileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of a reconciliation pass for one challenge.",
			Buckets:   prometheus.DefBuckets,
		}),
		aggregations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregations_total",
			Help:      "Metric aggregations, by metric and result.",
		}, []string{"metric", "result"}),
	}

	if reg != nil {
		reg.MustRegister(
			r.eventsPosted,
			r.eventsDeduped,
			r.roundsCompleted,
			r.reconcileFailures,
			r.reconcileDuration,
			r.aggregations,
		)
	}
	return r
}

// EventPosted counts a posted feed event.
func (r *Recorder) EventPosted(eventType string) {
	if r == nil {
		return
	}
	r.eventsPosted.WithLabelValues(eventType).Inc()
}

// EventDeduplicated counts a one-time event that was already emitted.
func (r *Recorder) EventDeduplicated(eventType string) {
	if r == nil {
		return
	}
	r.eventsDeduped.WithLabelValues(eventType).Inc()
}

// RoundCompleted counts a round completion.
func (r *Recorder) RoundCompleted() {
	if r == nil {
		return
	}
	r.roundsCompleted.Inc()
}

// ReconcileFailure counts a failed reconciliation step.
func (r *Recorder) ReconcileFailure(stage string) {
	if r == nil {
		return
	}
	r.reconcileFailures.WithLabelValues(stage).Inc()
}

// ObserveReconcile records the duration of a reconciliation pass.
func (r *Recorder) ObserveReconcile(d time.Duration) {
	if r == nil {
		return
	}
	r.reconcileDuration.Observe(d.Seconds())
}

// Aggregation counts an aggregation by metric and outcome ("ok" or "error").
func (r *Recorder) Aggregation(metric string, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.aggregations.WithLabelValues(metric, result).Inc()
}
