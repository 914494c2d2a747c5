// Package audit records one row per ETL run in the audit table: inserted as
// RUNNING when the run starts and updated to SUCCESS (or FAILURE) with the
// final counts when it ends.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"loanetl/internal/ddl"
	"loanetl/internal/storage"
	"loanetl/internal/typemap"
)

// Run statuses.
const (
	StatusRunning = "RUNNING"
	StatusSuccess = "SUCCESS"
	StatusFailure = "FAILURE"
)

// DefaultTable is the audit table name.
const DefaultTable = "ETL_AUDIT_LOG"

// Audit columns. Names are upper case and always quoted, so every dialect
// resolves them to the same identifiers.
const (
	colJobName  = "JOB_NAME"
	colStart    = "START_TIME"
	colEnd      = "END_TIME"
	colStatus   = "STATUS"
	colInserted = "RECORDS_INSERTED"
	colRejected = "RECORDS_REJECTED"
)

// JobRun is one execution of a job as tracked in the audit table.
type JobRun struct {
	Job   string
	RunID uuid.UUID // process-local, for log correlation only

	// StartTime is truncated to the second; it identifies the row together
	// with Job and the RUNNING status.
	StartTime time.Time
	EndTime   time.Time
	Status    string

	Inserted int64
	Rejected int64

	// Persisted reports whether the RUNNING row was written.
	Persisted bool
}

// Log writes audit rows through a storage.Repository.
type Log struct {
	repo  storage.Repository
	table string
	now   func() time.Time
}

// NewLog returns a Log writing to table (DefaultTable when empty).
func NewLog(repo storage.Repository, table string) *Log {
	if table == "" {
		table = DefaultTable
	}
	return &Log{repo: repo, table: table, now: time.Now}
}

// TableDef describes the audit table for create-if-absent.
func (l *Log) TableDef() ddl.TableDef {
	dia := l.repo.Dialect()
	col := func(name string, d typemap.Descriptor) ddl.ColumnDef {
		return ddl.ColumnDef{Name: name, SQLType: dia.MapType(d), Nullable: true}
	}
	return ddl.TableDef{
		FQN: l.table,
		Columns: []ddl.ColumnDef{
			col(colJobName, typemap.Varchar(100)),
			col(colStart, typemap.Timestamp()),
			col(colEnd, typemap.Timestamp()),
			col(colStatus, typemap.Varchar(20)),
			col(colInserted, typemap.Decimal(18, 0)),
			col(colRejected, typemap.Decimal(18, 0)),
		},
	}
}

// EnsureTable creates the audit table when it does not exist.
func (l *Log) EnsureTable(ctx context.Context) error {
	stmt, err := l.repo.Dialect().CreateTableSQL(l.TableDef())
	if err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	if _, err := l.repo.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("audit: create %s: %w", l.table, err)
	}
	return nil
}

// Begin inserts the RUNNING row for job. The returned run is usable even when
// err is non-nil; Persisted is false in that case.
func (l *Log) Begin(ctx context.Context, job string) (*JobRun, error) {
	run := &JobRun{
		Job:       job,
		RunID:     uuid.New(),
		StartTime: l.now().Truncate(time.Second),
		Status:    StatusRunning,
	}

	dia := l.repo.Dialect()
	start, err := dia.Bind(run.StartTime, typemap.Timestamp())
	if err != nil {
		return run, fmt.Errorf("audit: %w", err)
	}
	q := fmt.Sprintf("INSERT INTO %s (%s, %s, %s) VALUES (%s, %s, %s)",
		dia.QuoteTable(l.table),
		dia.QuoteIdent(colJobName), dia.QuoteIdent(colStart), dia.QuoteIdent(colStatus),
		dia.Placeholder(1), dia.Placeholder(2), dia.Placeholder(3),
	)
	if _, err := l.repo.Exec(ctx, q, job, start, StatusRunning); err != nil {
		return run, fmt.Errorf("audit: begin %s: %w", job, err)
	}
	run.Persisted = true
	return run, nil
}

// Complete marks run SUCCESS with the final counts. It returns the number of
// audit rows updated; zero means the RUNNING row was never written.
func (l *Log) Complete(ctx context.Context, run *JobRun, inserted, rejected int64) (int64, error) {
	return l.finish(ctx, run, StatusSuccess, inserted, rejected)
}

// Fail marks run FAILURE with the counts loaded so far.
func (l *Log) Fail(ctx context.Context, run *JobRun, inserted, rejected int64) (int64, error) {
	return l.finish(ctx, run, StatusFailure, inserted, rejected)
}

func (l *Log) finish(ctx context.Context, run *JobRun, status string, inserted, rejected int64) (int64, error) {
	dia := l.repo.Dialect()
	end := l.now()
	endV, err := dia.Bind(end, typemap.Timestamp())
	if err != nil {
		return 0, fmt.Errorf("audit: %w", err)
	}
	startV, err := dia.Bind(run.StartTime, typemap.Timestamp())
	if err != nil {
		return 0, fmt.Errorf("audit: %w", err)
	}

	q := fmt.Sprintf(
		"UPDATE %s SET %s = %s, %s = %s, %s = %s, %s = %s WHERE %s = %s AND %s = %s AND %s = %s",
		dia.QuoteTable(l.table),
		dia.QuoteIdent(colEnd), dia.Placeholder(1),
		dia.QuoteIdent(colStatus), dia.Placeholder(2),
		dia.QuoteIdent(colInserted), dia.Placeholder(3),
		dia.QuoteIdent(colRejected), dia.Placeholder(4),
		dia.QuoteIdent(colJobName), dia.Placeholder(5),
		dia.QuoteIdent(colStatus), dia.Placeholder(6),
		dia.QuoteIdent(colStart), dia.Placeholder(7),
	)
	n, err := l.repo.Exec(ctx, q, endV, status, inserted, rejected, run.Job, StatusRunning, startV)
	if err != nil {
		return 0, fmt.Errorf("audit: mark %s %s: %w", run.Job, status, err)
	}

	run.EndTime = end
	run.Status = status
	run.Inserted = inserted
	run.Rejected = rejected
	return n, nil
}

// Nop is a Recorder that writes nothing; used when auditing is disabled.
type Nop struct{}

func (Nop) EnsureTable(context.Context) error { return nil }

func (Nop) Begin(_ context.Context, job string) (*JobRun, error) {
	return &JobRun{Job: job, RunID: uuid.New(), StartTime: time.Now().Truncate(time.Second), Status: StatusRunning}, nil
}

func (Nop) Complete(_ context.Context, run *JobRun, inserted, rejected int64) (int64, error) {
	run.EndTime, run.Status, run.Inserted, run.Rejected = time.Now(), StatusSuccess, inserted, rejected
	return 0, nil
}

func (Nop) Fail(_ context.Context, run *JobRun, inserted, rejected int64) (int64, error) {
	run.EndTime, run.Status, run.Inserted, run.Rejected = time.Now(), StatusFailure, inserted, rejected
	return 0, nil
}
