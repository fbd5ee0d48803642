package definition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hedtools/hedval/definition"
	"github.com/hedtools/hedval/internal/schematest"
	"github.com/hedtools/hedval/issues"
	"github.com/hedtools/hedval/parser"
)

func mustParse(t *testing.T, text string) *parser.Group {
	t.Helper()
	tree, iss, err := parser.Parse(text)
	require.NoError(t, err)
	require.Empty(t, iss)
	return tree
}

func ctxRow(row int) issues.Context {
	return issues.Context{Row: row, Column: "events"}
}

func TestCollectDefinition(t *testing.T) {
	set := schematest.LoadSet(t)
	c := definition.NewCollector(set)
	table := definition.NewTable()

	tree := mustParse(t, "(Definition/Blink, (Red, Label/eye))")
	iss := c.Collect(table, tree, ctxRow(0))
	assert.Empty(t, iss)

	entry := table.Get("Blink")
	require.NotNil(t, entry)
	assert.Equal(t, "Blink", entry.Name)
	assert.Equal(t, 0, entry.Arity)
	require.NotNil(t, entry.Template)
	assert.Equal(t, "(Red, Label/eye)", entry.Template.Format())

	// Lookup is case-insensitive.
	assert.NotNil(t, table.Get("blink"))
}

func TestCollectPlaceholderDefinition(t *testing.T) {
	set := schematest.LoadSet(t)
	c := definition.NewCollector(set)
	table := definition.NewTable()

	tree := mustParse(t, "(Definition/Wait/#, (Delay/#))")
	iss := c.Collect(table, tree, ctxRow(0))
	assert.Empty(t, iss)

	entry := table.Get("Wait")
	require.NotNil(t, entry)
	assert.Equal(t, 1, entry.Arity)
}

func TestCollectStructuralFailures(t *testing.T) {
	set := schematest.LoadSet(t)

	tests := []struct {
		name string
		src  string
		code issues.Code
	}{
		{"no name", "(Definition/, (Red))", issues.CodeDefinitionInvalid},
		{"two templates", "(Definition/Bad, (Red), (Blue))", issues.CodeDefinitionInvalid},
		{"extra tag", "(Definition/Bad, Green, (Red))", issues.CodeDefinitionInvalid},
		{"reserved in template", "(Definition/Bad, (Onset, Red))", issues.CodeDefinitionInvalid},
		{"placeholder count mismatch", "(Definition/Bad/#, (Red))", issues.CodeDefinitionInvalid},
		{"placeholder without arity", "(Definition/Bad, (Delay/#))", issues.CodeDefinitionInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := definition.NewCollector(set)
			table := definition.NewTable()
			iss := c.Collect(table, mustParse(t, tt.src), ctxRow(0))
			require.NotEmpty(t, iss)
			assert.NotEmpty(t, iss.ByCode(tt.code))
			assert.Nil(t, table.Get("Bad"))
		})
	}
}

func TestCollectDuplicates(t *testing.T) {
	set := schematest.LoadSet(t)
	c := definition.NewCollector(set)
	table := definition.NewTable()

	require.Empty(t, c.Collect(table, mustParse(t, "(Definition/Blink, (Red))"), ctxRow(0)))

	// Identical redeclaration: warning only.
	iss := c.Collect(table, mustParse(t, "(Definition/Blink, (Red))"), ctxRow(1))
	require.Len(t, iss, 1)
	assert.Equal(t, issues.CodeDefDuplicate, iss[0].Code)
	assert.Equal(t, issues.SeverityWarning, iss[0].Severity)

	// Conflicting template: error.
	iss = c.Collect(table, mustParse(t, "(Definition/Blink, (Blue))"), ctxRow(2))
	require.Len(t, iss, 1)
	assert.Equal(t, issues.CodeDefDuplicate, iss[0].Code)
	assert.True(t, iss[0].IsError())
}

func TestValidateUse(t *testing.T) {
	set := schematest.LoadSet(t)
	c := definition.NewCollector(set)
	table := definition.NewTable()
	require.Empty(t, c.Collect(table, mustParse(t, "(Definition/Blink, (Red))"), ctxRow(0)))
	require.Empty(t, c.Collect(table, mustParse(t, "(Definition/Wait/#, (Delay/#))"), ctxRow(1)))

	tests := []struct {
		name      string
		src       string
		wantCode  issues.Code
		wantCount int
	}{
		{"zero arity clean", "Def/Blink", "", 0},
		{"one arity clean", "Def/Wait/0.5", "", 0},
		{"unknown name", "Def/Missing", issues.CodeDefUnknown, 1},
		{"value on zero arity", "Def/Blink/5", issues.CodeDefArity, 1},
		{"missing value", "Def/Wait", issues.CodeDefArity, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iss := c.ValidateUse(table, mustParse(t, tt.src), ctxRow(3))
			if tt.wantCode == "" {
				assert.Empty(t, iss)
				return
			}
			assert.Len(t, iss.ByCode(tt.wantCode), tt.wantCount)
		})
	}
}

func TestValidateDefExpand(t *testing.T) {
	set := schematest.LoadSet(t)
	c := definition.NewCollector(set)
	table := definition.NewTable()
	require.Empty(t, c.Collect(table, mustParse(t, "(Definition/Wait/#, (Delay/#))"), ctxRow(0)))

	clean := mustParse(t, "(Def-expand/Wait/0.5, (Delay/0.5))")
	assert.Empty(t, c.ValidateUse(table, clean, ctxRow(1)))

	wrong := mustParse(t, "(Def-expand/Wait/0.5, (Delay/0.7))")
	iss := c.ValidateUse(table, wrong, ctxRow(2))
	require.Len(t, iss, 1)
	assert.Equal(t, issues.CodeDefExpansionInvalid, iss[0].Code)
}

func TestExternalDefinitions(t *testing.T) {
	set := schematest.LoadSet(t)
	c := definition.NewCollector(set)
	table := definition.NewTable()

	// A sidecar's definitions arrive pre-collected.
	table.Add(&definition.Entry{Name: "FromSidecar", Arity: 0})

	iss := c.ValidateUse(table, mustParse(t, "Def/FromSidecar"), ctxRow(0))
	assert.Empty(t, iss)
}

func TestExpand(t *testing.T) {
	set := schematest.LoadSet(t)
	c := definition.NewCollector(set)
	table := definition.NewTable()
	require.Empty(t, c.Collect(table, mustParse(t, "(Definition/Wait/#, (Delay/#, Red))"), ctxRow(0)))

	e := definition.NewExpander(c, table)
	src := mustParse(t, "Green, Def/Wait/0.5")
	before := src.Format()

	out, iss := e.Expand(src, ctxRow(1))
	assert.Empty(t, iss)
	assert.Equal(t, "Green, (Delay/0.5, Red)", out.Format())
	assert.Equal(t, before, src.Format(), "expansion must not mutate the input tree")
}

func TestExpandUnknownLeftInPlace(t *testing.T) {
	set := schematest.LoadSet(t)
	c := definition.NewCollector(set)
	e := definition.NewExpander(c, definition.NewTable())

	src := mustParse(t, "Def/Ghost")
	out, iss := e.Expand(src, ctxRow(0))
	require.Len(t, iss.ByCode(issues.CodeDefUnknown), 1)
	assert.Equal(t, "Def/Ghost", out.Format())
}

func TestExpandOneNestedLevel(t *testing.T) {
	set := schematest.LoadSet(t)
	c := definition.NewCollector(set)
	table := definition.NewTable()
	require.Empty(t, c.Collect(table, mustParse(t, "(Definition/Inner, (Red))"), ctxRow(0)))
	require.Empty(t, c.Collect(table, mustParse(t, "(Definition/Outer, (Def/Inner, Blue))"), ctxRow(1)))

	e := definition.NewExpander(c, table)
	out, iss := e.Expand(mustParse(t, "Def/Outer"), ctxRow(2))
	assert.Empty(t, iss)
	assert.Equal(t, "((Red), Blue)", out.Format())
}

func TestExpandTooDeepReported(t *testing.T) {
	set := schematest.LoadSet(t)
	c := definition.NewCollector(set)
	table := definition.NewTable()
	require.Empty(t, c.Collect(table, mustParse(t, "(Definition/A, (Red))"), ctxRow(0)))
	require.Empty(t, c.Collect(table, mustParse(t, "(Definition/B, (Def/A))"), ctxRow(1)))
	require.Empty(t, c.Collect(table, mustParse(t, "(Definition/C, (Def/B))"), ctxRow(2)))

	e := definition.NewExpander(c, table)
	out, iss := e.Expand(mustParse(t, "Def/C"), ctxRow(3))
	require.NotEmpty(t, iss.ByCode(issues.CodeDefExpansionInvalid))
	assert.Contains(t, out.Format(), "Def/A", "too-deep reference stays unexpanded")
}

func TestExpandCycleReported(t *testing.T) {
	set := schematest.LoadSet(t)
	c := definition.NewCollector(set)
	table := definition.NewTable()
	// A cycle cannot be declared through Collect (it would need both
	// entries first), so build the entries directly the way external
	// definitions arrive.
	table.Add(&definition.Entry{Name: "Ping", Arity: 0, Template: mustParse(t, "(Def/Pong)").Groups()[0]})
	table.Add(&definition.Entry{Name: "Pong", Arity: 0, Template: mustParse(t, "(Def/Ping)").Groups()[0]})

	e := definition.NewExpander(c, table)
	_, iss := e.Expand(mustParse(t, "Def/Ping"), ctxRow(0))
	assert.NotEmpty(t, iss.ByCode(issues.CodeDefExpansionInvalid))
}

func TestReValidatingExpandedTreeParses(t *testing.T) {
	set := schematest.LoadSet(t)
	c := definition.NewCollector(set)
	table := definition.NewTable()
	require.Empty(t, c.Collect(table, mustParse(t, "(Definition/Wait/#, (Delay/#))"), ctxRow(0)))

	e := definition.NewExpander(c, table)
	out, iss := e.Expand(mustParse(t, "(Red, Def/Wait/2)"), ctxRow(1))
	require.Empty(t, iss)

	// Rendering and re-parsing the expanded tree introduces no parse
	// errors.
	reparsed, reIss, err := parser.Parse(out.Format())
	require.NoError(t, err)
	assert.Empty(t, reIss)
	assert.Equal(t, out.Format(), reparsed.Format())
}
