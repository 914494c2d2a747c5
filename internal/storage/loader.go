package storage

import (
	"context"
	"fmt"
)

// CopyFn inserts rows aligned to columns and returns rows written.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches splits rows into slices of at most batchSize and calls copyFn
// for each, in order. It returns the total reported by copyFn and the first
// error. Backends without a bulk API use it to bound statement size.
func LoadBatches(
	ctx context.Context,
	columns []string,
	rows [][]any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}

	var total int64
	for start := 0; start < len(rows); start += batchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		end := min(start+batchSize, len(rows))
		n, err := copyFn(ctx, columns, rows[start:end])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
