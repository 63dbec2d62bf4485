// File path: internal/copybook/errors.go
package copybook

import "fmt"

// SyntaxError reports a line the parser could not understand. Line is
// 1-based in the original source.
type SyntaxError struct {
	Line int
	Text string
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.Text != "" {
		return fmt.Sprintf("copybook: line %d: %s: %q", e.Line, e.Msg, e.Text)
	}
	return fmt.Sprintf("copybook: line %d: %s", e.Line, e.Msg)
}

// SemanticError reports an entry that parses but cannot be compiled,
// such as an unsupported clause or an unresolvable reference.
type SemanticError struct {
	Line int
	Name string
	Msg  string
}

func (e *SemanticError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("copybook: line %d: %s: %s", e.Line, e.Name, e.Msg)
	}
	return fmt.Sprintf("copybook: line %d: %s", e.Line, e.Msg)
}
