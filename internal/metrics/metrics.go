package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RulesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rulegate_rules_created_total",
		Help: "Total number of rules admitted to the store.",
	})

	RulesCompiled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rulegate_rules_compiled_total",
		Help: "Total number of natural-language compilations, labelled by status.",
	}, []string{"status"})

	EvaluationPasses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rulegate_evaluation_passes_total",
		Help: "Total number of evaluation passes, labelled by outcome.",
	}, []string{"outcome"})

	PassesRejectedBusy = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rulegate_passes_rejected_busy_total",
		Help: "Evaluation requests rejected because a pass was already running.",
	})

	RulesFired = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rulegate_rules_fired_total",
		Help: "Total number of rule firings, labelled by rule ID.",
	}, []string{"rule_id"})

	ActionsExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rulegate_actions_executed_total",
		Help: "Total number of actions executed, labelled by type and status.",
	}, []string{"action_type", "status"})

	PassDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rulegate_pass_duration_ms",
		Help:    "End-to-end evaluation pass latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 10000},
	})

	NotificationsRetained = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rulegate_notifications_retained",
		Help: "Number of notifications currently held in the feed.",
	})
)
