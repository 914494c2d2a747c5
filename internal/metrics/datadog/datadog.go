// Package datadog sends pipeline metrics to a DogStatsD agent.
//
// Prometheus-style metric names from the metrics package are renamed to
// Datadog's dotted convention under a namespace ("loanetl." by default), and
// labels become "key:value" tags. Step durations are sent as distributions
// so percentiles aggregate across hosts; other observations are histograms.
package datadog

import (
	"fmt"
	"math"
	"sort"

	"github.com/DataDog/datadog-go/v5/statsd"

	"loanetl/internal/metrics"
)

// DefaultNamespace prefixes every metric when Config.Namespace is empty.
const DefaultNamespace = "loanetl."

// Config holds Datadog backend configuration.
type Config struct {
	// Addr is the DogStatsD address, e.g. "127.0.0.1:8125" or "unix:///var/run/datadog/dsd.socket".
	Addr string

	// Namespace prefixes all metric names. A trailing dot is added if missing.
	Namespace string

	// GlobalTags are applied to every metric, e.g. "env:prod".
	GlobalTags []string
}

var names = map[string]string{
	metrics.StepTotal:      "step.count",
	metrics.StepDuration:   "step.duration",
	metrics.RecordsTotal:   "records",
	metrics.ChunksTotal:    "chunks",
	metrics.ChunkRowsTotal: "chunk.rows",
}

// Backend is a metrics.Backend over a statsd client.
type Backend struct {
	client statsd.ClientInterface
}

// NewBackend dials the agent. Addr is required.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("datadog: Addr is required")
	}
	ns := cfg.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	if ns[len(ns)-1] != '.' {
		ns += "."
	}

	opts := []statsd.Option{statsd.WithoutTelemetry(), statsd.WithNamespace(ns)}
	if len(cfg.GlobalTags) > 0 {
		opts = append(opts, statsd.WithTags(cfg.GlobalTags))
	}
	c, err := statsd.New(cfg.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("datadog: create client: %w", err)
	}
	return &Backend{client: c}, nil
}

// IncCounter sends a count. DogStatsD counts are integers; delta is rounded.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	_ = b.client.Count(metricName(name), int64(math.Round(delta)), labelsToTags(labels), 1)
}

// ObserveHistogram sends durations as distributions and everything else as
// histograms.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name == metrics.StepDuration {
		_ = b.client.Distribution(metricName(name), value, labelsToTags(labels), 1)
		return
	}
	_ = b.client.Histogram(metricName(name), value, labelsToTags(labels), 1)
}

// Flush sends buffered metrics and closes the client; call it once at exit.
func (b *Backend) Flush() error {
	if err := b.client.Flush(); err != nil {
		return fmt.Errorf("datadog: flush: %w", err)
	}
	return b.client.Close()
}

func metricName(name string) string {
	if n, ok := names[name]; ok {
		return n
	}
	return name
}

// labelsToTags converts labels into sorted "key:value" tags.
func labelsToTags(lbls metrics.Labels) []string {
	if len(lbls) == 0 {
		return nil
	}
	out := make([]string, 0, len(lbls))
	for k, v := range lbls {
		out = append(out, k+":"+v)
	}
	sort.Strings(out)
	return out
}
