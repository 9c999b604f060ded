package parser

import "fmt"

// ParseError describes a failure to recognize a construct, positioned at the
// offending token. Every parse function returns one of these instead of a
// partial node; callers propagate it unchanged.
type ParseError struct {
	Line   int
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, col %d: %s", e.Line, e.Column, e.Msg)
}
