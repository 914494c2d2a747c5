// Package transformer defines batch-level cleaning steps applied to each chunk
// between the reader and the quality classifier.
package transformer

import "loanetl/internal/records"

// Transformer rewrites a batch. A returned error aborts the run.
type Transformer interface {
	Apply(records.Batch) (records.Batch, error)
}

// Func adapts a plain function to Transformer.
type Func func(records.Batch) (records.Batch, error)

func (f Func) Apply(b records.Batch) (records.Batch, error) { return f(b) }

// Chain is an ordered list of transformers.
type Chain []Transformer

func (c Chain) Apply(in records.Batch) (records.Batch, error) {
	out := in
	for _, t := range c {
		var err error
		if out, err = t.Apply(out); err != nil {
			return out, err
		}
	}
	return out, nil
}
