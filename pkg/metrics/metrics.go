package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	catalogctl = "catalogctl"

	// Job metrics
	jobsTotal         = "jobs_total"
	statusPollsTotal  = "status_polls_total"
	jobDurationSecond = "job_duration_seconds"

	// Labels
	jobKindLabel    = "kind"
	jobOutcomeLabel = "outcome"
	taskStateLabel  = "state"
)

var jobsTotalLabels = []string{
	jobKindLabel,
	jobOutcomeLabel,
}

var statusPollsTotalLabels = []string{
	jobKindLabel,
	taskStateLabel,
}

/**
* Metrics definition
**/
var jobsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: catalogctl,
		Name:      jobsTotal,
		Help:      "number of followed jobs by kind and outcome",
	},
	jobsTotalLabels,
)

var statusPollsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: catalogctl,
		Name:      statusPollsTotal,
		Help:      "number of status requests by job kind and reported state",
	},
	statusPollsTotalLabels,
)

var jobDurationMetric = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Subsystem: catalogctl,
		Name:      jobDurationSecond,
		Help:      "time from submission to a terminal state",
		Buckets:   []float64{1, 5, 15, 60, 300, 900},
	},
	[]string{jobKindLabel},
)

func IncreaseJobsTotalMetric(kind, outcome string) {
	labels := prometheus.Labels{
		jobKindLabel:    kind,
		jobOutcomeLabel: outcome,
	}
	jobsTotalMetric.With(labels).Inc()
}

func IncreaseStatusPollsTotalMetric(kind, state string) {
	labels := prometheus.Labels{
		jobKindLabel:   kind,
		taskStateLabel: state,
	}
	statusPollsTotalMetric.With(labels).Inc()
}

func ObserveJobDurationMetric(kind string, d time.Duration) {
	jobDurationMetric.With(prometheus.Labels{jobKindLabel: kind}).Observe(d.Seconds())
}

// WriteTextfile writes every registered metric to path in the text
// exposition format, for the node exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(jobsTotalMetric)
	prometheus.MustRegister(statusPollsTotalMetric)
	prometheus.MustRegister(jobDurationMetric)
}
