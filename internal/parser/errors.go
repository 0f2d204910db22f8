package parser

import "fmt"

// ParseError reports a structural violation the parser cannot recover from.
// It aborts the parse of the whole file.
type ParseError struct {
	File   string
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parser: %s:%d: %s", e.File, e.Line, e.Reason)
}
