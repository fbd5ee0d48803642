package parser

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/hedtools/hedval/errors"
)

// ErrorKind categorizes parse errors for programmatic handling.
type ErrorKind string

const (
	// KindUnbalanced marks unterminated or surplus parentheses.
	KindUnbalanced ErrorKind = "unbalanced"
	// KindDelimiter marks a reserved character outside any legal context.
	KindDelimiter ErrorKind = "delimiter"
)

// ErrorContext indicates where a parse error will be displayed.
type ErrorContext string

const (
	// ErrorContextTerminal renders with ANSI colors for interactive use.
	ErrorContextTerminal ErrorContext = "terminal"
	// ErrorContextPlain renders without ANSI codes for logs and APIs.
	ErrorContextPlain ErrorContext = "plain"
)

// ParseError is a fatal structural failure of one annotation string. No
// partial tree is produced; other strings in a batch are unaffected.
type ParseError struct {
	Kind        ErrorKind
	Message     string
	Position    int // byte offset into the string, -1 when unknown
	Token       string
	Suggestions []string
}

// Error implements error with the plain rendering.
func (e *ParseError) Error() string {
	return e.FormatError(ErrorContextPlain)
}

// FormatError generates a context-appropriate message.
func (e *ParseError) FormatError(ctx ErrorContext) string {
	if ctx == ErrorContextTerminal {
		return e.formatTerminal()
	}
	return e.formatPlain()
}

func (e *ParseError) formatPlain() string {
	msg := e.Message
	if e.Position >= 0 {
		msg += fmt.Sprintf(" (at offset %d)", e.Position)
	}
	if e.Token != "" {
		msg += fmt.Sprintf(" near %q", e.Token)
	}
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(". Suggestions: %s", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e *ParseError) formatTerminal() string {
	msg := pterm.Red(e.Message)
	if e.Position >= 0 {
		msg += pterm.Gray(fmt.Sprintf(" (at offset %d)", e.Position))
	}
	if e.Token != "" {
		msg += pterm.Gray(fmt.Sprintf(" near %q", e.Token))
	}
	for _, s := range e.Suggestions {
		msg += "\n  " + pterm.Green(s)
	}
	return msg
}

// Unwrap maps the kind onto the module's sentinel errors so callers can
// use errors.Is without knowing about this type.
func (e *ParseError) Unwrap() error {
	if e.Kind == KindUnbalanced {
		return errors.ErrUnbalancedString
	}
	return nil
}

// NewParseError creates a ParseError with the given kind and message.
func NewParseError(kind ErrorKind, format string, args ...any) *ParseError {
	return &ParseError{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Position: -1,
	}
}

// WithPosition sets the byte offset where the error occurred.
func (e *ParseError) WithPosition(pos int) *ParseError {
	e.Position = pos
	return e
}

// WithToken sets the offending text.
func (e *ParseError) WithToken(token string) *ParseError {
	e.Token = token
	return e
}

// WithSuggestion adds a possible fix.
func (e *ParseError) WithSuggestion(s string) *ParseError {
	e.Suggestions = append(e.Suggestions, s)
	return e
}
