package parser

import (
	"strings"

	"github.com/hedtools/hedval/issues"
)

// illegalDelimiters are reserved characters with no legal place in an
// annotation string. Curly braces and brackets are reserved for sidecar
// splicing syntax, tilde and semicolon are legacy delimiters.
var illegalDelimiters = map[byte]bool{
	'{': true, '}': true,
	'[': true, ']': true,
	'~': true, ';': true,
}

// Parse builds the group tree for one annotation string.
//
// The returned error is fatal for this string: unbalanced parentheses or
// an illegal delimiter abort parsing and no tree is produced. Non-fatal
// syntactic findings (empty tags, empty groups) come back as issues
// alongside a complete tree. An empty or blank string parses to an empty
// top-level group with no issues; callers skip blank cells upstream.
func Parse(text string) (*Group, issues.Issues, error) {
	top := &Group{Depth: 0}
	stack := []*Group{top}
	var iss issues.Issues

	tracker := NewPositionTracker(text)
	spanStart := -1
	var spanStartPos Position
	pendingComma := false
	afterGroup := false

	cur := func() *Group { return stack[len(stack)-1] }

	// flushSpan closes the current comma-delimited slot. atComma marks a
	// flush forced by a comma, where an empty slot is always a finding.
	flushSpan := func(end int, endPos Position, atComma bool) {
		raw := ""
		if spanStart >= 0 {
			raw = text[spanStart:end]
		}
		trimmed := strings.TrimSpace(raw)
		switch {
		case trimmed == "":
			if (atComma && !afterGroup) || (!atComma && pendingComma) {
				iss = issues.Append(iss, issues.New(issues.CodeTagEmpty,
					"empty tag").
					WithParam("offset", endPos.Offset).
					At(issues.Context{Row: issues.NoRow, GroupDepth: len(stack) - 1}))
			}
		default:
			if afterGroup {
				iss = issues.Append(iss, issues.New(issues.CodeCommaMissing,
					"missing comma after group before %q", trimmed).
					At(issues.Context{Row: issues.NoRow, Tag: trimmed, GroupDepth: len(stack) - 1}))
			}
			cur().Children = append(cur().Children, &Tag{
				Text: trimmed,
				Span: RangeFromPositions(spanStartPos, endPos),
			})
			pendingComma = false
		}
		spanStart = -1
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]
		pos := tracker.Mark()

		if illegalDelimiters[ch] {
			return nil, nil, NewParseError(KindDelimiter,
				"illegal character %q in annotation string", string(ch)).
				WithPosition(pos.Offset).
				WithToken(string(ch)).
				WithSuggestion("remove the reserved character or quote it inside a value")
		}

		switch ch {
		case '(':
			if spanStart >= 0 && strings.TrimSpace(text[spanStart:i]) != "" {
				iss = issues.Append(iss, issues.New(issues.CodeCommaMissing,
					"missing comma before group").
					At(issues.Context{Row: issues.NoRow, GroupDepth: len(stack) - 1}))
				flushSpan(i, pos, false)
			} else if afterGroup {
				iss = issues.Append(iss, issues.New(issues.CodeCommaMissing,
					"missing comma between groups").
					At(issues.Context{Row: issues.NoRow, GroupDepth: len(stack) - 1}))
			}
			spanStart = -1
			stack = append(stack, &Group{
				Depth: len(stack),
				Span:  Range{Start: pos},
			})
			afterGroup = false
			pendingComma = false
		case ')':
			if len(stack) == 1 {
				return nil, nil, NewParseError(KindUnbalanced,
					"closing parenthesis without a matching open").
					WithPosition(pos.Offset)
			}
			flushSpan(i, pos, false)
			closed := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			closed.Span.End = pos
			if closed.IsEmpty() {
				iss = issues.Append(iss, issues.New(issues.CodeTagGroupEmpty,
					"empty tag group").
					At(issues.Context{Row: issues.NoRow, GroupDepth: closed.Depth}))
			}
			cur().Children = append(cur().Children, closed)
			afterGroup = true
			pendingComma = false
		case ',':
			flushSpan(i, pos, true)
			pendingComma = true
			afterGroup = false
		default:
			if spanStart < 0 && ch != ' ' && ch != '\t' && ch != '\n' {
				spanStart = i
				spanStartPos = pos
			}
		}
		tracker.AdvanceBytes(1)
	}

	endPos := tracker.Mark()
	if len(stack) > 1 {
		open := stack[len(stack)-1]
		return nil, nil, NewParseError(KindUnbalanced,
			"unterminated parenthesis").
			WithPosition(open.Span.Start.Offset).
			WithSuggestion("close the group opened here")
	}
	flushSpan(len(text), endPos, false)
	top.Span = RangeFromPositions(Position{Line: 1}, endPos)
	return top, iss, nil
}
