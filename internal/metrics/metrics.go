package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	damageConsole = "damage_console"

	submissionsTotal     = "submissions_total"
	sideEffectsTotal     = "side_effects_total"
	guardRedirectsTotal  = "guard_redirects_total"
	previewHandlesActive = "preview_handles_active"

	// Labels
	outcomeLabel = "outcome"
	sinkLabel    = "sink"
	pageLabel    = "page"
)

const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeStale    = "stale"
	OutcomeRejected = "rejected"
	OutcomeSkipped  = "skipped"
)

/**
* Metrics definition
**/
var submissionsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: damageConsole,
		Name:      submissionsTotal,
		Help:      "number of assessment submissions by outcome",
	},
	[]string{outcomeLabel},
)

var sideEffectsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: damageConsole,
		Name:      sideEffectsTotal,
		Help:      "number of best-effort writes after a successful assessment, by sink and outcome",
	},
	[]string{sinkLabel, outcomeLabel},
)

var guardRedirectsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: damageConsole,
		Name:      guardRedirectsTotal,
		Help:      "number of detail page visits redirected because no assessment was stored",
	},
	[]string{pageLabel},
)

var previewHandlesActiveMetric = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Subsystem: damageConsole,
		Name:      previewHandlesActive,
		Help:      "number of preview handles currently held by acquisition panels",
	},
)

func IncreaseSubmissionsMetric(outcome string) {
	submissionsTotalMetric.With(prometheus.Labels{outcomeLabel: outcome}).Inc()
}

func IncreaseSideEffectsMetric(sink, outcome string) {
	sideEffectsTotalMetric.With(prometheus.Labels{sinkLabel: sink, outcomeLabel: outcome}).Inc()
}

func IncreaseGuardRedirectsMetric(page string) {
	guardRedirectsTotalMetric.With(prometheus.Labels{pageLabel: page}).Inc()
}

func AddPreviewHandles(delta int) {
	previewHandlesActiveMetric.Add(float64(delta))
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(submissionsTotalMetric)
	prometheus.MustRegister(sideEffectsTotalMetric)
	prometheus.MustRegister(guardRedirectsTotalMetric)
	prometheus.MustRegister(previewHandlesActiveMetric)
}
