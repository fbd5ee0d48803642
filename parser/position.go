package parser

// Position is a location in annotation source text. Line numbers are
// 1-based, character offsets 0-based within a line, byte offsets
// 0-based in the whole string.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
	Offset    int `json:"offset"`
}

// Range is a source span from start to end position.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// PositionTracker maintains line/character/offset state while the
// parser consumes source text.
type PositionTracker struct {
	source    string
	line      int
	character int
	offset    int
}

// NewPositionTracker creates a tracker at the beginning of source.
func NewPositionTracker(source string) *PositionTracker {
	return &PositionTracker{source: source, line: 1}
}

// AdvanceBytes advances by n bytes, handling newlines.
func (pt *PositionTracker) AdvanceBytes(n int) {
	for i := 0; i < n && pt.offset < len(pt.source); i++ {
		if pt.source[pt.offset] == '\n' {
			pt.line++
			pt.character = 0
		} else {
			pt.character++
		}
		pt.offset++
	}
}

// Mark returns the current position snapshot.
func (pt *PositionTracker) Mark() Position {
	return Position{Line: pt.line, Character: pt.character, Offset: pt.offset}
}

// RangeFromPositions creates a range from two positions.
func RangeFromPositions(start, end Position) Range {
	return Range{Start: start, End: end}
}
