package analysis

import "github.com/cfn-community/cfn-dev-tools/internal/template"

type DiagnosticLevel int

const (
	LevelError DiagnosticLevel = iota
	LevelWarning
)

func (l DiagnosticLevel) String() string {
	if l == LevelWarning {
		return "WARNING"
	}
	return "ERROR"
}

// Range is a single-line span in the source text. References never span
// multiple lines, so End shares Start's line.
type Range struct {
	Start template.Position
	End   template.Position
}

type Diagnostic struct {
	Level   DiagnosticLevel
	Message string
	Range   Range
	File    string
}

// spanAt builds the single-line range for a span of the given length starting
// at pos.
func spanAt(pos template.Position, length int) Range {
	return Range{
		Start: pos,
		End:   template.Position{Line: pos.Line, Column: pos.Column + length},
	}
}
