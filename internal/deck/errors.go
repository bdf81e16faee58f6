package deck

import "fmt"

// StructuralError reports a layout violation inside one slide: an unclosed
// layout block, a column outside columns, or a malformed directive argument.
// It is fatal for that slide only. The rest of the document still parses.
type StructuralError struct {
	Slide int // 0-based slide index
	Line  int // 1-based line number in the source document
	Msg   string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("slide %d, line %d: %s", e.Slide+1, e.Line, e.Msg)
}

func structuralErr(line int, format string, args ...any) *StructuralError {
	return &StructuralError{Line: line, Msg: fmt.Sprintf(format, args...)}
}
