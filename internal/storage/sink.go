package storage

import (
	"context"
	"errors"
	"fmt"

	"loanetl/internal/ddl"
	"loanetl/internal/typemap"
)

// Sink appends typed batches to destination tables through a Repository.
// With autoCreate, a destination table is created (if absent) on the first
// append to it, using the column order of that first batch. Not safe for
// concurrent use.
type Sink struct {
	repo       Repository
	autoCreate bool
	ensured    map[string]bool
}

// NewSink wraps repo.
func NewSink(repo Repository, autoCreate bool) *Sink {
	return &Sink{repo: repo, autoCreate: autoCreate, ensured: map[string]bool{}}
}

// Repository returns the underlying repository.
func (s *Sink) Repository() Repository { return s.repo }

// Append binds rows with the descriptors from types and writes them to table
// in a single committed unit. Every column must be present in types.
func (s *Sink) Append(ctx context.Context, table string, types typemap.Map, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	descs := make([]typemap.Descriptor, len(columns))
	for i, c := range columns {
		d, ok := types.TypeFor(c)
		if !ok {
			return 0, fmt.Errorf("storage: column %q of %s has no type mapping", c, table)
		}
		descs[i] = d
	}

	if err := s.ensure(ctx, table, types, columns); err != nil {
		return 0, err
	}

	dia := s.repo.Dialect()
	bound := make([][]any, len(rows))
	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("storage: row %d has %d values, want %d", i, len(row), len(columns))
		}
		out := make([]any, len(row))
		for j, v := range row {
			bv, err := dia.Bind(v, descs[j])
			if err != nil {
				var be *BindError
				if errors.As(err, &be) && be.Column == "" {
					be.Column = columns[j]
				}
				return 0, fmt.Errorf("storage: %s row %d: %w", table, i, err)
			}
			out[j] = bv
		}
		bound[i] = out
	}

	n, err := s.repo.CopyFrom(ctx, table, columns, bound)
	if err != nil {
		return n, fmt.Errorf("storage: append %s: %w", table, err)
	}
	return n, nil
}

func (s *Sink) ensure(ctx context.Context, table string, types typemap.Map, columns []string) error {
	if !s.autoCreate || s.ensured[table] {
		return nil
	}
	dia := s.repo.Dialect()
	td, err := ddl.FromTypeMap(table, columns, types, dia.MapType)
	if err != nil {
		return err
	}
	stmt, err := dia.CreateTableSQL(td)
	if err != nil {
		return fmt.Errorf("storage: render DDL for %s: %w", table, err)
	}
	if _, err := s.repo.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("storage: create table %s: %w", table, err)
	}
	s.ensured[table] = true
	return nil
}
