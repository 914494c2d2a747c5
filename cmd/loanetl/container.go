// Package main wires the loan ETL end to end. This file keeps the CLI layer
// thin: it builds the source, reader, cleaning chain, classifier, sink and
// audit log from configuration and never imports database drivers directly.
package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"loanetl/internal/audit"
	"loanetl/internal/config"
	"loanetl/internal/datasource"
	"loanetl/internal/datasource/file"
	"loanetl/internal/datasource/httpds"
	"loanetl/internal/datasource/s3ds"
	"loanetl/internal/metrics"
	"loanetl/internal/metrics/datadog"
	"loanetl/internal/metrics/prompush"
	csvparser "loanetl/internal/parser/csv"
	"loanetl/internal/pipeline"
	"loanetl/internal/quality"
	"loanetl/internal/storage"
	"loanetl/internal/transformer"
	"loanetl/internal/transformer/builtin"
	"loanetl/internal/typemap"
)

// Function variables used to introduce test seams.
// In production these point to real implementations; tests can override them.
var (
	newRepositoryFn = func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return storage.New(ctx, cfg)
	}

	openSourceFn = openSource
)

// run executes one pipeline described by p.
func run(ctx context.Context, p config.Pipeline, log *zap.Logger) (pipeline.Totals, error) {
	types, err := buildTypes(p.Types)
	if err != nil {
		return pipeline.Totals{}, err
	}
	chain, err := buildTransformer(p.Transform, types)
	if err != nil {
		return pipeline.Totals{}, err
	}
	cls, err := buildClassifier(p.Quality.Rules)
	if err != nil {
		return pipeline.Totals{}, err
	}

	repo, err := newRepositoryFn(ctx, storage.Config{
		Kind:      p.Storage.Kind,
		DSN:       p.Storage.DSN,
		BatchRows: p.Storage.BatchRows,
	})
	if err != nil {
		return pipeline.Totals{}, fmt.Errorf("open %s storage: %w", p.Storage.Kind, err)
	}
	defer repo.Close()

	var rec pipeline.Recorder = audit.Nop{}
	if p.Audit.Enabled {
		al := audit.NewLog(repo, p.Audit.Table)
		if p.Audit.AutoCreate {
			if err := al.EnsureTable(ctx); err != nil {
				log.Warn("audit table setup failed; continuing", zap.String("table", p.Audit.Table), zap.Error(err))
			}
		}
		rec = al
	}

	src, err := openSourceFn(ctx, p.Source)
	if err != nil {
		return pipeline.Totals{}, err
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return pipeline.Totals{}, fmt.Errorf("open source: %w", err)
	}
	defer rc.Close()

	reader, err := newChunkReader(rc, p.Parser)
	if err != nil {
		return pipeline.Totals{}, err
	}
	log.Debug("source opened", zap.Strings("columns", reader.Columns()))

	pl := &pipeline.Pipeline{
		Job: p.Job,
		Loader: &pipeline.Loader{
			Reader:        reader,
			Sink:          storage.NewSink(repo, p.Storage.AutoCreateTable),
			Transform:     chain,
			Classifier:    cls,
			Types:         types,
			RejectTypes:   typemap.Rejects(types),
			AcceptedTable: p.Storage.AcceptedTable,
			RejectedTable: p.Storage.RejectedTable,
			ChunkSize:     p.Runtime.ChunkSize,
			MaxRecords:    int64(p.Runtime.MaxRecords),
		},
		Audit:          rec,
		RecordFailures: p.Audit.RecordFailures,
		Log:            log,
	}
	return pl.Run(ctx)
}

func newChunkReader(r io.Reader, p config.Parser) (*csvparser.ChunkReader, error) {
	return csvparser.NewChunkReader(r, csvparser.Options{
		Comma:      config.Rune(p.Comma, ','),
		TrimSpace:  p.TrimSpace,
		LazyQuotes: p.LazyQuotes,
		Encoding:   p.Encoding,
		Columns:    p.Columns,
	})
}

func openSource(ctx context.Context, s config.Source) (datasource.Source, error) {
	switch strings.ToLower(s.Kind) {
	case "", "file":
		return file.NewLocal(s.File.Path), nil
	case "http":
		return httpds.New(httpds.Config{
			URL:                s.HTTP.URL,
			Timeout:            s.HTTP.Timeout,
			MaxRetries:         s.HTTP.MaxRetries,
			InsecureSkipVerify: s.HTTP.InsecureSkipVerify,
			Headers:            s.HTTP.Headers,
		}), nil
	case "s3":
		return s3ds.New(ctx, s3ds.Config{
			Bucket:    s.S3.Bucket,
			Key:       s.S3.Key,
			Region:    s.S3.Region,
			Endpoint:  s.S3.Endpoint,
			AccessKey: s.S3.AccessKey,
			SecretKey: s.S3.SecretKey,
		})
	default:
		return nil, fmt.Errorf("unsupported source.kind=%s", s.Kind)
	}
}

// buildTypes returns the loan type map with configured columns replaced.
func buildTypes(overrides map[string]string) (typemap.Map, error) {
	types := typemap.Loans()
	if len(overrides) == 0 {
		return types, nil
	}
	extra, err := typemap.ParseMap(overrides)
	if err != nil {
		return typemap.Map{}, fmt.Errorf("types: %w", err)
	}
	for _, col := range extra.Columns() {
		d, _ := extra.TypeFor(col)
		types = types.Extend(col, d)
	}
	return types, nil
}

func buildTransformer(specs []config.Transform, types typemap.Map) (transformer.Chain, error) {
	chain := make(transformer.Chain, 0, len(specs))
	for i, s := range specs {
		switch strings.ToLower(s.Kind) {
		case "percent":
			chain = append(chain, builtin.Percent{Column: s.Options.String("column", "int_rate")})
		case "normalize":
			chain = append(chain, builtin.Normalize{})
		case "coerce":
			chain = append(chain, builtin.Coerce{Types: types})
		default:
			return nil, fmt.Errorf("transform[%d]: unknown kind %q", i, s.Kind)
		}
	}
	return chain, nil
}

// buildClassifier turns configured rules into a classifier. No rules means
// the default annual income rule.
func buildClassifier(rules []config.Rule) (quality.Classifier, error) {
	if len(rules) == 0 {
		return quality.Default(), nil
	}
	out := quality.Classifier{Rules: make([]quality.Rule, 0, len(rules))}
	for i, r := range rules {
		pred, ok := quality.Predicate(r.Check)
		if !ok {
			return quality.Classifier{}, fmt.Errorf("quality.rules[%d]: unknown check %q", i, r.Check)
		}
		reason := r.Reason
		if reason == "" {
			reason = quality.InvalidIncome
		}
		out.Rules = append(out.Rules, quality.Rule{
			Column: strings.ToLower(r.Column),
			Reason: reason,
			Reject: pred,
		})
	}
	return out, nil
}

// setupMetrics installs the configured backend and returns the flush to run
// at exit. A backend that fails to initialize leaves metrics disabled.
func setupMetrics(p config.Pipeline, log *zap.Logger) (flush func()) {
	var (
		b   metrics.Backend
		err error
	)
	switch p.Metrics.Backend {
	case "prometheus":
		b, err = prompush.NewBackend(p.Job, p.Metrics.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       p.Metrics.DatadogAddr,
			Namespace:  p.Metrics.Namespace,
			GlobalTags: p.Metrics.Tags,
		})
	default:
		log.Debug("metrics disabled", zap.String("backend", p.Metrics.Backend))
		return func() {}
	}
	if err != nil {
		log.Warn("metrics backend init failed; using nop", zap.String("backend", p.Metrics.Backend), zap.Error(err))
		return func() {}
	}

	restore := metrics.SetBackend(b)
	log.Info("metrics enabled", zap.String("backend", p.Metrics.Backend))
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics flush failed", zap.Error(err))
		}
		restore()
	}
}
