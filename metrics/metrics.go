// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values
const (
	OutcomeAccepted   = "accepted"
	OutcomeRejected   = "rejected"
	OutcomeDuplicate  = "duplicate"
	OutcomeConflict   = "conflict"
	OutcomeInternal   = "error"
	OutcomeAnchorFail = "anchor_failed"
	OutcomeAnchorOK   = "anchored"
	ResultCacheHit    = "hit"
	ResultCacheMiss   = "miss"
	ResultCacheShared = "shared"
)

var latencyBuckets = []float64{
	0.001, // 1ms
	0.005, // 5ms
	0.01,  // 10ms
	0.025, // 25ms
	0.05,  // 50ms
	0.1,   // 100ms
	0.25,  // 250ms
	0.5,   // 500ms
	1.0,   // 1s
	2.5,   // 2.5s
	5.0,   // 5s
}

var (
	// CastVoteDuration tracks the latency of vote casting by outcome
	CastVoteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "votebox_cast_vote_duration_seconds",
			Help:    "Duration of vote casting in seconds",
			Buckets: latencyBuckets,
		},
		[]string{"outcome"},
	)

	// CastVoteRetries counts transaction retries after transient conflicts
	CastVoteRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "votebox_cast_vote_retries_total",
		Help: "Vote transactions retried after a transient storage conflict",
	})

	// AnchorResults counts post-commit anchor attempts
	AnchorResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "votebox_anchor_total",
			Help: "Post-commit vote anchoring attempts by result",
		},
		[]string{"result"},
	)

	// TallyDuration tracks how long one tally computation takes
	TallyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "votebox_tally_duration_seconds",
		Help:    "Duration of tally computation in seconds",
		Buckets: latencyBuckets,
	})

	// LiveResultsRequests counts live result reads by cache outcome
	LiveResultsRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "votebox_live_results_total",
			Help: "Live result reads by cache outcome",
		},
		[]string{"cache"},
	)
)

// RecordCastVote records the duration of one CastVote call
func RecordCastVote(outcome string, seconds float64) {
	CastVoteDuration.WithLabelValues(outcome).Observe(seconds)
}

func RecordRetry() {
	CastVoteRetries.Inc()
}

func RecordAnchor(ok bool) {
	if ok {
		AnchorResults.WithLabelValues(OutcomeAnchorOK).Inc()
		return
	}
	AnchorResults.WithLabelValues(OutcomeAnchorFail).Inc()
}

func RecordTally(seconds float64) {
	TallyDuration.Observe(seconds)
}

func RecordLiveResults(cache string) {
	LiveResultsRequests.WithLabelValues(cache).Inc()
}
