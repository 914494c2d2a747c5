package main

import (
	"context"
	"fmt"
	"io"

	"loanetl/internal/config"
	"loanetl/internal/probe"
)

// runProbe samples the configured source and prints the suggested types.
func runProbe(ctx context.Context, p config.Pipeline, rows int, asConfig bool, out io.Writer) error {
	src, err := openSourceFn(ctx, p.Source)
	if err != nil {
		return err
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer rc.Close()

	reader, err := newChunkReader(rc, p.Parser)
	if err != nil {
		return err
	}
	rep, err := probe.Sample(ctx, reader, probe.Options{Rows: rows})
	if err != nil {
		return err
	}
	if asConfig {
		return rep.WriteConfig(out)
	}
	return rep.WriteTable(out)
}
