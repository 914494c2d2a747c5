// Package csv reads delimited loan files in bounded chunks.
//
// ChunkReader never buffers the whole input: each Next call reads at most the
// requested number of records from the underlying csv.Reader and returns them
// as a records.Batch. Values stay strings (or nil for empty cells); typing is
// left to the transform stage so a mixed column never fails on read.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"loanetl/internal/records"
	"loanetl/internal/transformer/builtin"
)

// Options configures the reader. All fields are optional.
type Options struct {
	// Comma is the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing ASCII spaces from each field value.
	TrimSpace bool

	// LazyQuotes relaxes quote handling (csv.Reader.LazyQuotes).
	LazyQuotes bool

	// Encoding names the input charset (htmlindex label). Empty = UTF-8.
	Encoding string

	// Columns selects a subset of header columns, matched case-insensitively.
	// Output keeps the file's column order. Empty selects every column.
	Columns []string
}

// ChunkReader yields batches of at most n records. Not safe for concurrent use.
type ChunkReader struct {
	cr      *csv.Reader
	opt     Options
	columns []string // selected header names, source casing
	srcIx   []int    // srcIx[i] = position of columns[i] in the file
	done    bool
}

// NewChunkReader reads the header row from r and resolves column selection.
// A selected column absent from the header is an error.
func NewChunkReader(r io.Reader, opt Options) (*ChunkReader, error) {
	dr, err := decodeReader(r, opt.Encoding)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(dr)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.LazyQuotes = opt.LazyQuotes
	cr.FieldsPerRecord = -1 // ragged rows are padded with nil
	cr.ReuseRecord = true

	hdr, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv: empty input, no header row")
		}
		return nil, fmt.Errorf("csv: read header: %w", err)
	}
	hdr = cleanHeader(hdr)

	c := &ChunkReader{cr: cr, opt: opt}
	if len(opt.Columns) == 0 {
		c.columns = hdr
		c.srcIx = make([]int, len(hdr))
		for i := range hdr {
			c.srcIx[i] = i
		}
		return c, nil
	}

	want := make(map[string]bool, len(opt.Columns))
	for _, col := range opt.Columns {
		want[strings.ToLower(strings.TrimSpace(col))] = true
	}
	found := make(map[string]bool, len(want))
	for i, h := range hdr {
		key := strings.ToLower(h)
		if want[key] && !found[key] {
			found[key] = true
			c.columns = append(c.columns, h)
			c.srcIx = append(c.srcIx, i)
		}
	}
	var missing []string
	for _, col := range opt.Columns {
		if !found[strings.ToLower(strings.TrimSpace(col))] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("csv: columns not found in header: %s", strings.Join(missing, ", "))
	}
	return c, nil
}

// Columns returns the selected column names in output order.
func (c *ChunkReader) Columns() []string { return c.columns }

// Next returns up to n records. It returns io.EOF, with an empty batch, once
// the input is exhausted. A final short batch is returned with a nil error.
func (c *ChunkReader) Next(ctx context.Context, n int) (records.Batch, error) {
	b := records.Batch{Columns: c.columns}
	if c.done {
		return b, io.EOF
	}
	if n <= 0 {
		return b, fmt.Errorf("csv: chunk size must be positive, got %d", n)
	}
	b.Rows = make([]records.Row, 0, min(n, 4096))

	for len(b.Rows) < n {
		if err := ctx.Err(); err != nil {
			return b, err
		}
		rec, err := c.cr.Read()
		if errors.Is(err, io.EOF) {
			c.done = true
			break
		}
		if err != nil {
			return b, fmt.Errorf("csv: %w", err)
		}
		line, _ := c.cr.FieldPos(0)

		v := make([]any, len(c.srcIx))
		for i, si := range c.srcIx {
			if si >= len(rec) {
				continue
			}
			s := rec[si]
			if c.opt.TrimSpace && builtin.HasEdgeSpace(s) {
				s = strings.TrimSpace(s)
			}
			if s != "" {
				v[i] = s
			}
		}
		b.Rows = append(b.Rows, records.Row{Line: line, V: v})
	}

	if len(b.Rows) == 0 && c.done {
		return b, io.EOF
	}
	return b, nil
}
