package builtin

import (
	"strings"

	"loanetl/internal/records"
)

const nbspace = "\u00a0"

// Normalize trims string fields and replaces NBSP with a plain space.
// Fields that become empty are set to nil.
type Normalize struct{}

func (Normalize) Apply(in records.Batch) (records.Batch, error) {
	for i := range in.Rows {
		v := in.Rows[i].V
		for k, x := range v {
			s, ok := x.(string)
			if !ok {
				continue
			}
			if strings.Contains(s, nbspace) {
				s = strings.ReplaceAll(s, nbspace, " ")
			} else if !HasEdgeSpace(s) {
				continue
			}
			s = strings.TrimSpace(s)
			if s == "" {
				v[k] = nil
				continue
			}
			v[k] = s
		}
	}
	return in, nil
}

// HasEdgeSpace reports whether s starts or ends with ASCII whitespace.
func HasEdgeSpace(s string) bool {
	if s == "" {
		return false
	}
	return isSpace(s[0]) || isSpace(s[len(s)-1])
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
