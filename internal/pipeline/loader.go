// Package pipeline runs the chunked load: read a bounded batch, clean it,
// classify it, append rejects and accepted rows to their tables, and repeat
// until the input ends or the record budget is spent. Pipeline brackets a
// Loader run with the audit row.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"loanetl/internal/metrics"
	"loanetl/internal/quality"
	"loanetl/internal/records"
	"loanetl/internal/transformer"
	"loanetl/internal/typemap"
)

// BatchReader yields at most n records per call and io.EOF at end of input.
type BatchReader interface {
	Next(ctx context.Context, n int) (records.Batch, error)
}

// BatchSink appends typed rows to a table in one committed unit.
type BatchSink interface {
	Append(ctx context.Context, table string, types typemap.Map, columns []string, rows [][]any) (int64, error)
}

// Totals counts accepted (Good) and rejected (Bad) records of one run.
type Totals struct {
	Good int64
	Bad  int64
}

// Total returns Good + Bad.
func (t Totals) Total() int64 { return t.Good + t.Bad }

// Loader moves records from Reader to Sink chunk by chunk. Chunks are
// processed strictly in order and each append commits on its own; a failure
// leaves earlier chunks loaded.
type Loader struct {
	Reader     BatchReader
	Sink       BatchSink
	Transform  transformer.Transformer // optional
	Classifier quality.Classifier

	Types       typemap.Map // accepted table
	RejectTypes typemap.Map // rejected table, Types + error_reason

	AcceptedTable string
	RejectedTable string

	ChunkSize int
	// MaxRecords stops the run once this many records were loaded; the last
	// read is shortened so the budget is never exceeded. <= 0 is unbounded.
	MaxRecords int64

	Job string
	Log *zap.Logger
}

// Run loads until end of input or budget, adding to totals after every chunk.
func (l *Loader) Run(ctx context.Context, totals *Totals) error {
	if l.ChunkSize <= 0 {
		return fmt.Errorf("loader: chunk size must be positive, got %d", l.ChunkSize)
	}
	log := l.Log
	if log == nil {
		log = zap.NewNop()
	}

	for chunk := 1; ; chunk++ {
		limit := l.ChunkSize
		if l.MaxRecords > 0 {
			remaining := l.MaxRecords - totals.Total()
			if remaining <= 0 {
				log.Info("record budget reached", zap.Int64("max_records", l.MaxRecords))
				return nil
			}
			limit = int(min(int64(limit), remaining))
		}

		start := time.Now()
		b, err := l.Reader.Next(ctx, limit)
		if errors.Is(err, io.EOF) {
			return nil
		}
		metrics.RecordStep(l.Job, "read", err, time.Since(start))
		if err != nil {
			return fmt.Errorf("read chunk %d: %w", chunk, err)
		}
		if b.Empty() {
			return nil
		}

		good, bad, err := l.prepare(b)
		if err != nil {
			return fmt.Errorf("clean chunk %d: %w", chunk, err)
		}

		if !bad.Empty() {
			if err := l.append(ctx, "load_rejected", l.RejectedTable, l.RejectTypes, bad); err != nil {
				return fmt.Errorf("load %s chunk %d: %w", l.RejectedTable, chunk, err)
			}
		}
		if !good.Empty() {
			if err := l.append(ctx, "load_accepted", l.AcceptedTable, l.Types, good); err != nil {
				return fmt.Errorf("load %s chunk %d: %w", l.AcceptedTable, chunk, err)
			}
		}

		totals.Good += int64(good.Len())
		totals.Bad += int64(bad.Len())
		metrics.RecordChunk(l.Job, good.Len(), bad.Len())

		log.Info("batch processed",
			zap.Int("chunk", chunk),
			zap.Int("good", good.Len()),
			zap.Int("bad", bad.Len()),
			zap.Int64("total_good", totals.Good),
			zap.Int64("total_bad", totals.Bad),
		)
	}
}

func (l *Loader) prepare(b records.Batch) (good, bad records.Batch, err error) {
	if l.Transform != nil {
		start := time.Now()
		b, err = l.Transform.Apply(b)
		metrics.RecordStep(l.Job, "clean", err, time.Since(start))
		if err != nil {
			return records.Batch{}, records.Batch{}, err
		}
	}
	good, bad = l.Classifier.Classify(b)
	return good, bad, nil
}

func (l *Loader) append(ctx context.Context, step, table string, types typemap.Map, b records.Batch) error {
	start := time.Now()
	_, err := l.Sink.Append(ctx, table, types, b.LowerColumns(), b.Values())
	metrics.RecordStep(l.Job, step, err, time.Since(start))
	return err
}
