package builtin

import "fmt"

// ParseError reports a value that could not be converted to a number.
// It is fatal to the run; there is no per-record recovery.
type ParseError struct {
	Column string
	Line   int
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s at line %d: invalid decimal %q", e.Column, e.Line, e.Value)
}

func (e *ParseError) Unwrap() error { return e.Err }
