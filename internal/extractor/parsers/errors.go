package parsers

import "fmt"

// ParseError is a grammar or syntax failure for one source file.
type ParseError struct {
	Reason      string
	Line        int // 1-based, valid when HasPosition
	Column      int // 1-based, valid when HasPosition
	HasPosition bool
}

func (e *ParseError) Error() string {
	if e.HasPosition {
		return fmt.Sprintf("%s at line %d, column %d", e.Reason, e.Line, e.Column)
	}
	return e.Reason
}
