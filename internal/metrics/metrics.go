package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "eleven"

// Upstream call metrics (incremented directly by the speech executor).
var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Upstream API calls by capability, path (sdk/http) and outcome.",
	}, []string{"capability", "path", "outcome"})

	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_seconds",
		Help:      "Upstream API call duration in seconds.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 11), // 100ms → ~100s
	}, []string{"capability", "path"})

	FallbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fallbacks_total",
		Help:      "Calls retried over raw HTTP after the vendor client failed.",
	}, []string{"capability"})

	APIErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_errors_total",
		Help:      "Fatal upstream errors by capability and status code.",
	}, []string{"capability", "status_code"})

	RetriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "retries_total",
		Help:      "Transcription attempts after the first.",
	})

	ArchiveWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "archive_writes_total",
		Help:      "Artifacts copied to the archive store, by store type and outcome.",
	}, []string{"store", "outcome"})
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		FallbacksTotal,
		APIErrorsTotal,
		RetriesTotal,
		ArchiveWritesTotal,
	)
}

// WriteTextfile writes every metric in the default registry, plus the run
// collector, to path in the text exposition format read by the node
// exporter's textfile collector.
func WriteTextfile(path string, run *RunCollector) error {
	reg := prometheus.NewRegistry()
	if run != nil {
		if err := reg.Register(run); err != nil {
			return fmt.Errorf("register run collector: %w", err)
		}
	}
	gatherers := prometheus.Gatherers{prometheus.DefaultGatherer, reg}
	if err := prometheus.WriteToTextfile(path, gatherers); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
