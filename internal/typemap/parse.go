package typemap

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var descRe = regexp.MustCompile(`^([A-Z0-9]+)\s*(?:\(\s*(\d+)\s*(?:,\s*(\d+)\s*)?\))?$`)

// Parse reads a descriptor from its textual form. Dialect spellings are
// accepted so that configs written against Oracle or SQL Server read the same:
//
//	DECIMAL(15,2), NUMERIC(15,2), NUMBER(15,2) -> DECIMAL
//	VARCHAR(50), VARCHAR2(50), NVARCHAR(50)    -> VARCHAR
//	TIMESTAMP, DATETIME, DATETIME2             -> TIMESTAMP
func Parse(s string) (Descriptor, error) {
	m := descRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return Descriptor{}, fmt.Errorf("typemap: cannot parse type %q", s)
	}
	name := m[1]
	var a, b int
	var err error
	if m[2] != "" {
		if a, err = strconv.Atoi(m[2]); err != nil {
			return Descriptor{}, fmt.Errorf("typemap: %q size: %w", s, err)
		}
	}
	if m[3] != "" {
		if b, err = strconv.Atoi(m[3]); err != nil {
			return Descriptor{}, fmt.Errorf("typemap: %q scale: %w", s, err)
		}
	}

	switch name {
	case "DECIMAL", "NUMERIC", "NUMBER":
		if m[2] == "" {
			return Descriptor{}, fmt.Errorf("typemap: %q needs a precision", s)
		}
		if b > a {
			return Descriptor{}, fmt.Errorf("typemap: %q scale exceeds precision", s)
		}
		return Decimal(a, b), nil
	case "VARCHAR", "VARCHAR2", "NVARCHAR", "NVARCHAR2", "TEXT":
		if m[2] == "" || a <= 0 {
			return Descriptor{}, fmt.Errorf("typemap: %q needs a positive length", s)
		}
		if m[3] != "" {
			return Descriptor{}, fmt.Errorf("typemap: %q takes a single length", s)
		}
		return Varchar(a), nil
	case "TIMESTAMP", "DATETIME", "DATETIME2":
		return Timestamp(), nil
	default:
		return Descriptor{}, fmt.Errorf("typemap: unsupported type %q", s)
	}
}

// ParseMap builds a Map from column -> type text. Column names are
// lower-cased to match the names written to the sink.
func ParseMap(in map[string]string) (Map, error) {
	out := make(map[string]Descriptor, len(in))
	for col, txt := range in {
		d, err := Parse(txt)
		if err != nil {
			return Map{}, fmt.Errorf("column %s: %w", col, err)
		}
		out[strings.ToLower(col)] = d
	}
	return New(out), nil
}
