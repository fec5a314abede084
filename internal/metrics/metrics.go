// Package metrics holds the Prometheus counters of the choice service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики регистрируются в глобальном реестре: /metrics отдаёт go-gin-prometheus.
var (
	ChoicesSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "butterfly_choices_submitted_total",
			Help: "Total number of story choices persisted.",
		},
	)
	SubmissionsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "butterfly_choice_submissions_failed_total",
			Help: "Total number of rejected or failed choice submissions, partitioned by reason.",
		},
		[]string{"reason"},
	)
	EffectScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "butterfly_effect_score",
			Help:    "Distribution of butterfly effect scores assigned at submission.",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)
	RevealOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "butterfly_reveal_outcomes_total",
			Help: "Reveal attempts, partitioned by outcome.",
		},
		[]string{"outcome"},
	)
	EventsPublishFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "butterfly_events_publish_failed_total",
			Help: "Choice events that could not be delivered, partitioned by sink.",
		},
		[]string{"sink"},
	)
)

// Причины отказа при отправке развилки.
const (
	ReasonValidation = "validation"
	ReasonStore      = "store"
	ReasonAuth       = "auth"
)
