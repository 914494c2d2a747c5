// Package datasource defines where raw loan files come from. Concrete sources
// live in subpackages: file (local disk), httpds (HTTP download) and s3ds
// (S3-compatible object storage).
package datasource

import (
	"context"
	"io"
)

// Source opens a fresh byte stream. The caller owns and must close it.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
