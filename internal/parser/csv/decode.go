package csv

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"loanetl/internal/transformer/builtin"
)

// decodeReader wraps r so that the CSV reader always sees UTF-8. name is an
// encoding label such as "utf-8", "windows-1252" or "latin1"; empty means
// UTF-8. A leading byte order mark selects UTF-8/16 regardless of name and
// is dropped.
func decodeReader(r io.Reader, name string) (io.Reader, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "utf-8"
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("csv: unknown encoding %q: %w", name, err)
	}
	if enc == unicode.UTF8 {
		// UTF8.NewDecoder would rewrite invalid bytes; keep them as-is.
		return transform.NewReader(r, unicode.BOMOverride(transform.Nop)), nil
	}
	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())), nil
}

// cleanHeader returns a copy of hdr with edge whitespace trimmed from every
// name. A byte order mark that survived decoding (an explicit encoding on a
// file that also carries one) is dropped from the first name.
func cleanHeader(hdr []string) []string {
	out := make([]string, len(hdr))
	for i, h := range hdr {
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		if builtin.HasEdgeSpace(h) {
			h = strings.TrimSpace(h)
		}
		out[i] = h
	}
	return out
}
