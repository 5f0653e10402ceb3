package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RunCollector implements prometheus.Collector to report the outcome of the
// current CLI invocation at gather time.
type RunCollector struct {
	command string
	version string

	mu       sync.Mutex
	finished time.Time
	success  bool

	lastRun    *prometheus.Desc
	lastResult *prometheus.Desc
	info       *prometheus.Desc
}

// NewRunCollector creates a collector for one invocation of command.
func NewRunCollector(command, version string) *RunCollector {
	return &RunCollector{
		command: command,
		version: version,
		lastRun: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "last_run_timestamp_seconds"),
			"Unix time the last invocation finished.",
			[]string{"command"}, nil,
		),
		lastResult: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "last_run_success"),
			"1 if the last invocation succeeded, 0 otherwise.",
			[]string{"command"}, nil,
		),
		info: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "build_info"),
			"Build information.",
			[]string{"version"}, nil,
		),
	}
}

// Finish records the invocation result.
func (c *RunCollector) Finish(success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finished = time.Now()
	c.success = success
}

// Describe implements prometheus.Collector.
func (c *RunCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.lastRun
	ch <- c.lastResult
	ch <- c.info
}

// Collect implements prometheus.Collector.
func (c *RunCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	finished, success := c.finished, c.success
	c.mu.Unlock()

	ch <- prometheus.MustNewConstMetric(c.info, prometheus.GaugeValue, 1, c.version)
	if finished.IsZero() {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.lastRun, prometheus.GaugeValue,
		float64(finished.UnixNano())/1e9, c.command)
	result := 0.0
	if success {
		result = 1
	}
	ch <- prometheus.MustNewConstMetric(c.lastResult, prometheus.GaugeValue, result, c.command)
}
