// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the loan pipeline.
//
//   - Backend is a narrow interface of counters and timing observations.
//   - A process-wide backend defaults to a no-op, so instrumentation is always
//     safe to call whether or not a real backend is configured.
//   - Concrete systems (Prometheus Pushgateway, DogStatsD) live in
//     subpackages and are installed once at startup with SetBackend.
package metrics

import "time"

// Metric names emitted by the pipeline.
const (
	StepTotal      = "loanetl_step_total"
	StepDuration   = "loanetl_step_duration_seconds"
	RecordsTotal   = "loanetl_records_total"
	ChunksTotal    = "loanetl_chunks_total"
	ChunkRowsTotal = "loanetl_chunk_rows"
)

// Record kinds used with RecordRow.
const (
	KindRead     = "read"
	KindAccepted = "accepted"
	KindRejected = "rejected"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/size style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var backend Backend = nopBackend{}

// SetBackend installs b and returns a function restoring the previous
// backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) (restore func()) {
	prev := backend
	if b != nil {
		backend = b
	}
	return func() { backend = prev }
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep measures latency plus success/failure of one pipeline step
// (read, clean, classify, load_accepted, load_rejected, audit).
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "step": step, "status": status}

	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRow increments the record counter for kind (see Kind* constants).
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RecordsTotal, float64(delta), Labels{"job": job, "kind": kind})
}

// RecordChunk counts one processed chunk and its size split.
func RecordChunk(job string, accepted, rejected int) {
	backend.IncCounter(ChunksTotal, 1, Labels{"job": job})
	backend.ObserveHistogram(ChunkRowsTotal, float64(accepted+rejected), Labels{"job": job})
	RecordRow(job, KindRead, int64(accepted+rejected))
	RecordRow(job, KindAccepted, int64(accepted))
	RecordRow(job, KindRejected, int64(rejected))
}
