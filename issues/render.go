package issues

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
)

// RenderContext selects the output environment for rendered issues.
type RenderContext string

const (
	// RenderTerminal produces ANSI-colored output for interactive use.
	RenderTerminal RenderContext = "terminal"
	// RenderPlain produces uncolored output for logs and machine capture.
	RenderPlain RenderContext = "plain"
)

// Render formats a single issue for the given environment.
func Render(i Issue, rc RenderContext) string {
	head := fmt.Sprintf("[%s] %s", i.Code, i.Message)
	if rc == RenderTerminal {
		switch i.Severity {
		case SeverityWarning:
			head = pterm.Yellow(head)
		default:
			head = pterm.Red(head)
		}
	}

	trail := renderTrail(i.Context)
	if trail == "" {
		return head
	}
	if rc == RenderTerminal {
		trail = pterm.Gray(trail)
	}
	return head + " " + trail
}

// RenderAll formats every issue, one per line.
func RenderAll(iss Issues, rc RenderContext) string {
	lines := make([]string, 0, len(iss))
	for _, i := range iss {
		lines = append(lines, Render(i, rc))
	}
	return strings.Join(lines, "\n")
}

// renderTrail flattens the context stack outermost-first:
// (row 3, column "trial_type", tag "Delay/0.5", depth 2).
func renderTrail(ctx []Context) string {
	if len(ctx) == 0 {
		return ""
	}
	parts := []string{}
	for _, c := range ctx {
		if c.Row != NoRow {
			parts = append(parts, fmt.Sprintf("row %d", c.Row))
		}
		if c.Column != "" {
			parts = append(parts, fmt.Sprintf("column %q", c.Column))
		}
		if c.Tag != "" {
			parts = append(parts, fmt.Sprintf("tag %q", c.Tag))
		}
		if c.GroupDepth > 0 {
			parts = append(parts, fmt.Sprintf("depth %d", c.GroupDepth))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
