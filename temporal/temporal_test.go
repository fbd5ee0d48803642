package temporal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hedtools/hedval/definition"
	"github.com/hedtools/hedval/internal/schematest"
	"github.com/hedtools/hedval/issues"
	"github.com/hedtools/hedval/parser"
	"github.com/hedtools/hedval/schema"
	"github.com/hedtools/hedval/temporal"
)

func trackRows(t *testing.T, tracker *temporal.Tracker, rows []string) issues.Issues {
	t.Helper()
	var iss issues.Issues
	for i, text := range rows {
		tree, parseIss, err := parser.Parse(text)
		require.NoError(t, err)
		require.Empty(t, parseIss)
		iss = issues.Append(iss, tracker.ProcessRow(i, "events", tree)...)
	}
	return issues.Append(iss, tracker.Finish()...)
}

func newTracker(t *testing.T, opts ...temporal.Option) *temporal.Tracker {
	t.Helper()
	set := schematest.LoadSet(t)
	table := definition.NewTable()
	table.Add(&definition.Entry{Name: "A", Arity: 0})
	table.Add(&definition.Entry{Name: "B", Arity: 0})
	return temporal.NewTracker(set, table, opts...)
}

func TestOnsetInsetOffsetLifecycle(t *testing.T) {
	iss := trackRows(t, newTracker(t), []string{
		"(Onset, Def/A)",
		"(Inset, Def/A)",
		"(Offset, Def/A)",
	})
	assert.Empty(t, iss)
}

func TestReopenWithoutClose(t *testing.T) {
	iss := trackRows(t, newTracker(t), []string{
		"(Onset, Def/A)",
		"(Onset, Def/A)",
		"(Offset, Def/A)",
	})
	require.Len(t, iss, 1)
	assert.Equal(t, issues.CodeTemporalScopeReopened, iss[0].Code)
	assert.Equal(t, 1, iss[0].Row())
}

func TestUnmatchedOffset(t *testing.T) {
	iss := trackRows(t, newTracker(t), []string{
		"(Offset, Def/A)",
	})
	require.Len(t, iss, 1)
	assert.Equal(t, issues.CodeTemporalUnmatchedOffset, iss[0].Code)
}

func TestUnmatchedInset(t *testing.T) {
	iss := trackRows(t, newTracker(t), []string{
		"(Inset, Def/A)",
	})
	require.Len(t, iss, 1)
	assert.Equal(t, issues.CodeTemporalUnmatchedInset, iss[0].Code)
}

func TestUnclosedScopeAtEndOfBatch(t *testing.T) {
	iss := trackRows(t, newTracker(t), []string{
		"(Onset, Def/A)",
	})
	require.Len(t, iss, 1)
	assert.Equal(t, issues.CodeTemporalScopeUnclosed, iss[0].Code)
	assert.Equal(t, issues.SeverityWarning, iss[0].Severity)
}

func TestUnclosedScopeSeverityConfigurable(t *testing.T) {
	tracker := newTracker(t, temporal.WithUnclosedSeverity(issues.SeverityError))
	iss := trackRows(t, tracker, []string{"(Onset, Def/A)"})
	require.Len(t, iss, 1)
	assert.True(t, iss[0].IsError())
}

func TestIndependentNamesAndValues(t *testing.T) {
	table := definition.NewTable()
	table.Add(&definition.Entry{Name: "A", Arity: 0})
	table.Add(&definition.Entry{Name: "Wait", Arity: 1})
	tracker := temporal.NewTracker(schematest.LoadSet(t), table)

	iss := trackRows(t, tracker, []string{
		"(Onset, Def/A), (Onset, Def/Wait/1)",
		"(Onset, Def/Wait/2)",
		"(Offset, Def/A)",
		"(Offset, Def/Wait/1), (Offset, Def/Wait/2)",
	})
	assert.Empty(t, iss, "scopes are keyed by name and value")
}

func TestValueMismatchedInset(t *testing.T) {
	table := definition.NewTable()
	table.Add(&definition.Entry{Name: "Wait", Arity: 1})
	tracker := temporal.NewTracker(schematest.LoadSet(t), table)

	iss := trackRows(t, tracker, []string{
		"(Onset, Def/Wait/1)",
		"(Inset, Def/Wait/2)",
		"(Offset, Def/Wait/1)",
	})
	require.Len(t, iss, 1)
	assert.Equal(t, issues.CodeTemporalUnmatchedInset, iss[0].Code)
}

func TestUnregisteredAnchorNotTracked(t *testing.T) {
	// Definition checking already reports unknown anchors; the tracker
	// must not pile an unclosed-scope finding on top of them.
	iss := trackRows(t, newTracker(t), []string{
		"(Onset, Def/Missing)",
	})
	assert.Empty(t, iss)
}

func TestOverlapAllowedByAttribute(t *testing.T) {
	// A schema whose Onset node allows overlapping scopes suppresses the
	// re-open finding.
	src := `{
	  "version": "8.3.0",
	  "nodes": [
	    {"name": "Def", "attributes": {"takesValue": "", "reserved": ""}},
	    {"name": "Onset", "attributes": {"reserved": "", "topLevelTagGroup": "", "allowsOverlap": ""}},
	    {"name": "Offset", "attributes": {"reserved": "", "topLevelTagGroup": ""}}
	  ]
	}`
	model, err := schema.LoadBytes([]byte(src), schema.FormatJSON)
	require.NoError(t, err)
	set, err := schema.NewSet(model)
	require.NoError(t, err)

	table := definition.NewTable()
	table.Add(&definition.Entry{Name: "A", Arity: 0})
	tracker := temporal.NewTracker(set, table)

	iss := trackRows(t, tracker, []string{
		"(Onset, Def/A)",
		"(Onset, Def/A)",
		"(Offset, Def/A)",
	})
	assert.Empty(t, iss)
}

func TestOpenScopesSnapshot(t *testing.T) {
	tracker := newTracker(t)
	_ = trackRows(t, tracker, nil)

	tree, _, err := parser.Parse("(Onset, Def/B), (Onset, Def/A)")
	require.NoError(t, err)
	tracker.ProcessRow(0, "events", tree)

	open := tracker.OpenScopes()
	require.Len(t, open, 2)
	assert.Equal(t, "A", open[0].Name)
	assert.Equal(t, "B", open[1].Name)
}
