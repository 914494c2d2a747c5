package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"loanetl/internal/audit"
	"loanetl/internal/metrics"
)

// Recorder tracks the run in the audit table.
type Recorder interface {
	Begin(ctx context.Context, job string) (*audit.JobRun, error)
	Complete(ctx context.Context, run *audit.JobRun, inserted, rejected int64) (int64, error)
	Fail(ctx context.Context, run *audit.JobRun, inserted, rejected int64) (int64, error)
}

// failTimeout bounds the FAILURE update after the run context was canceled.
const failTimeout = 10 * time.Second

// Pipeline runs one Loader between audit begin and completion.
type Pipeline struct {
	Job    string
	Loader *Loader
	Audit  Recorder

	// RecordFailures marks the audit row FAILURE when the load fails.
	// Otherwise the row is left RUNNING.
	RecordFailures bool

	Log *zap.Logger
}

// Run executes the pipeline. Audit begin is best-effort; a load error or an
// audit completion error fails the run.
func (p *Pipeline) Run(ctx context.Context) (Totals, error) {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	rec := p.Audit
	if rec == nil {
		rec = audit.Nop{}
	}

	started := time.Now()
	run, err := rec.Begin(ctx, p.Job)
	if err != nil {
		log.Warn("audit begin failed; continuing without a RUNNING row", zap.Error(err))
	}
	if run == nil {
		run, _ = audit.Nop{}.Begin(ctx, p.Job)
	}
	log = log.With(zap.String("job", p.Job), zap.String("run_id", run.RunID.String()))
	log.Info("pipeline started", zap.Time("start_time", run.StartTime))

	loader := *p.Loader
	loader.Job = p.Job
	loader.Log = log

	var totals Totals
	if err := loader.Run(ctx, &totals); err != nil {
		metrics.RecordStep(p.Job, "run", err, time.Since(started))
		if p.RecordFailures {
			fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failTimeout)
			if _, ferr := rec.Fail(fctx, run, totals.Good, totals.Bad); ferr != nil {
				log.Warn("audit failure update failed", zap.Error(ferr))
			}
			cancel()
		}
		return totals, err
	}

	astart := time.Now()
	n, err := rec.Complete(ctx, run, totals.Good, totals.Bad)
	metrics.RecordStep(p.Job, "audit", err, time.Since(astart))
	if err != nil {
		return totals, fmt.Errorf("audit complete: %w", err)
	}
	if _, nop := rec.(audit.Nop); n == 0 && !nop {
		log.Warn("no RUNNING audit row matched this run")
	}

	metrics.RecordStep(p.Job, "run", nil, time.Since(started))
	log.Info("pipeline finished successfully",
		zap.Int64("records_inserted", totals.Good),
		zap.Int64("records_rejected", totals.Bad),
		zap.Duration("elapsed", time.Since(started)),
	)
	return totals, nil
}
