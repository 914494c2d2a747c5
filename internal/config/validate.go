// This file adds a lightweight linter for Pipeline values. It performs static
// checks over a decoded Pipeline and returns a list of issues (errors and
// warnings) that the CLI surfaces with -validate and before every run.

package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"loanetl/internal/typemap"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding that is surfaced but does not block.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "quality.rules[0].check"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether issues contains an error-severity finding.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// KnownStorageKinds is consulted for the storage.kind check. The CLI fills it
// from storage.ListKinds so the linter agrees with what is compiled in.
var KnownStorageKinds = []string{"postgres", "mssql", "sqlite", "mysql", "oracle"}

// ValidatePipeline performs static validation / linting of a Pipeline. It
// does not mutate the pipeline.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, errorf("job", "job must not be empty; it names the audit row and metrics group"))
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateTransforms(p.Transform)...)
	issues = append(issues, validateQuality(p.Quality, p.Parser.Columns)...)
	issues = append(issues, validateTypes(p.Types)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateAudit(p.Audit)...)
	issues = append(issues, validateRuntime(p.Runtime)...)
	issues = append(issues, validateMetrics(p.Metrics)...)

	return issues
}

func errorf(path, format string, args ...any) Issue {
	return Issue{Severity: SeverityError, Path: path, Message: fmt.Sprintf(format, args...)}
}

func warnf(path, format string, args ...any) Issue {
	return Issue{Severity: SeverityWarning, Path: path, Message: fmt.Sprintf(format, args...)}
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func validateSource(s Source) []Issue {
	var issues []Issue
	switch s.Kind {
	case "file":
		if blank(s.File.Path) {
			issues = append(issues, errorf("source.file.path", "file source requires a non-empty path"))
		}
	case "http":
		u := strings.ToLower(s.HTTP.URL)
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			issues = append(issues, errorf("source.http.url", "http source requires an http(s) URL"))
		}
		if s.HTTP.InsecureSkipVerify {
			issues = append(issues, warnf("source.http.insecure_skip_verify", "TLS verification is disabled"))
		}
	case "s3":
		if blank(s.S3.Bucket) || blank(s.S3.Key) {
			issues = append(issues, errorf("source.s3", "s3 source requires bucket and key"))
		}
		if (s.S3.AccessKey == "") != (s.S3.SecretKey == "") {
			issues = append(issues, errorf("source.s3", "access_key and secret_key must be set together"))
		}
	case "":
		issues = append(issues, errorf("source.kind", "source.kind must not be empty"))
	default:
		issues = append(issues, errorf("source.kind", "unknown source kind %q (want file, http or s3)", s.Kind))
	}
	return issues
}

func validateParser(p Parser) []Issue {
	var issues []Issue
	if p.Kind != "" && p.Kind != "csv" {
		issues = append(issues, errorf("parser.kind", "unsupported parser kind %q", p.Kind))
	}
	if p.Comma != "" && utf8.RuneCountInString(p.Comma) != 1 {
		issues = append(issues, errorf("parser.comma", "delimiter must be a single character, got %q", p.Comma))
	}
	if len(p.Columns) == 0 {
		issues = append(issues, errorf("parser.columns", "at least one column must be selected"))
	}
	seen := map[string]bool{}
	for i, c := range p.Columns {
		lc := strings.ToLower(strings.TrimSpace(c))
		if lc == "" {
			issues = append(issues, errorf(fmt.Sprintf("parser.columns[%d]", i), "column name must not be empty"))
			continue
		}
		if seen[lc] {
			issues = append(issues, errorf(fmt.Sprintf("parser.columns[%d]", i), "duplicate column %q", c))
		}
		seen[lc] = true
	}
	return issues
}

func validateTransforms(ts []Transform) []Issue {
	var issues []Issue
	hasPercent := false
	for i, t := range ts {
		path := fmt.Sprintf("transform[%d]", i)
		switch t.Kind {
		case "percent":
			hasPercent = true
			if blank(t.Options.String("column", "")) {
				issues = append(issues, errorf(path+".options.column", "percent transform requires a column"))
			}
		case "normalize", "coerce":
		default:
			issues = append(issues, errorf(path+".kind", "unknown transform kind %q", t.Kind))
		}
	}
	if !hasPercent {
		issues = append(issues, warnf("transform", "no percent transform; int_rate values like \"13.5%%\" will fail to load"))
	}
	return issues
}

func validateQuality(q Quality, columns []string) []Issue {
	var issues []Issue
	selected := map[string]bool{}
	for _, c := range columns {
		selected[strings.ToLower(c)] = true
	}
	for i, r := range q.Rules {
		path := fmt.Sprintf("quality.rules[%d]", i)
		if blank(r.Column) {
			issues = append(issues, errorf(path+".column", "rule column must not be empty"))
		} else if len(columns) > 0 && !selected[strings.ToLower(r.Column)] {
			issues = append(issues, warnf(path+".column", "column %q is not selected; every record will be rejected", r.Column))
		}
		if r.Check != "positive" {
			issues = append(issues, errorf(path+".check", "unsupported check %q (want positive)", r.Check))
		}
		if blank(r.Reason) {
			issues = append(issues, errorf(path+".reason", "rule reason must not be empty"))
		} else if utf8.RuneCountInString(r.Reason) > 255 {
			issues = append(issues, errorf(path+".reason", "reason exceeds error_reason VARCHAR(255)"))
		}
	}
	return issues
}

func validateTypes(types map[string]string) []Issue {
	var issues []Issue
	for col, txt := range types {
		if _, err := typemap.Parse(txt); err != nil {
			issues = append(issues, errorf("types."+col, "%v", err))
		}
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue
	known := false
	for _, k := range KnownStorageKinds {
		if k == s.Kind {
			known = true
		}
	}
	if !known {
		issues = append(issues, errorf("storage.kind", "unknown storage kind %q (have %s)", s.Kind, strings.Join(KnownStorageKinds, ", ")))
	}
	if blank(s.DSN) {
		issues = append(issues, errorf("storage.dsn", "dsn must not be empty"))
	}
	if blank(s.AcceptedTable) {
		issues = append(issues, errorf("storage.accepted_table", "accepted table must not be empty"))
	}
	if blank(s.RejectedTable) {
		issues = append(issues, errorf("storage.rejected_table", "rejected table must not be empty"))
	}
	if !blank(s.AcceptedTable) && strings.EqualFold(s.AcceptedTable, s.RejectedTable) {
		issues = append(issues, errorf("storage.rejected_table", "accepted and rejected tables must differ"))
	}
	if s.BatchRows < 0 {
		issues = append(issues, errorf("storage.batch_rows", "batch_rows must be >= 0"))
	}
	return issues
}

func validateAudit(a Audit) []Issue {
	if a.Enabled && blank(a.Table) {
		return []Issue{errorf("audit.table", "audit table must not be empty when audit is enabled")}
	}
	return nil
}

func validateRuntime(r RuntimeConfig) []Issue {
	var issues []Issue
	if r.ChunkSize <= 0 {
		issues = append(issues, errorf("runtime.chunk_size", "chunk_size must be > 0"))
	}
	if r.MaxRecords <= 0 {
		issues = append(issues, warnf("runtime.max_records", "max_records <= 0; the whole file will be loaded"))
	} else if r.ChunkSize > r.MaxRecords {
		issues = append(issues, warnf("runtime.chunk_size", "chunk_size %d exceeds max_records %d", r.ChunkSize, r.MaxRecords))
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "", "none":
	case "prometheus":
		if blank(m.PushgatewayURL) {
			return []Issue{errorf("metrics.pushgateway_url", "prometheus backend requires pushgateway_url")}
		}
	case "datadog":
		if blank(m.DatadogAddr) {
			return []Issue{errorf("metrics.datadog_addr", "datadog backend requires datadog_addr")}
		}
	default:
		return []Issue{errorf("metrics.backend", "unknown metrics backend %q", m.Backend)}
	}
	return nil
}
