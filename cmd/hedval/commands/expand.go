package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hedtools/hedval/definition"
	"github.com/hedtools/hedval/errors"
	"github.com/hedtools/hedval/issues"
	"github.com/hedtools/hedval/parser"
)

// ExpandCmd expands Def references into their definition templates.
var ExpandCmd = &cobra.Command{
	Use:   "expand [strings...]",
	Short: "Expand Def references into their definition templates",
	Long: `Expand Def references in annotation strings.

Definitions declared in any of the given strings are collected first,
then every string is printed with its Def references replaced by the
definition template content. Validation findings from the collection
pass go to stderr; the expanded strings go to stdout in input order.

Example:
  hedval expand -s standard-8.3.0.json "(Definition/Fix, (Red))" "Def/Fix, Blue"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExpand,
}

func init() {
	addSchemaFlags(ExpandCmd)
	ExpandCmd.SilenceUsage = true
}

func runExpand(cmd *cobra.Command, args []string) error {
	set, err := buildSet(cmd)
	if err != nil {
		return err
	}

	trees := make([]*parser.Group, len(args))
	for i, text := range args {
		tree, _, err := parser.Parse(text)
		if err != nil {
			return errors.Wrapf(err, "parsing string %d", i)
		}
		trees[i] = tree
	}

	table := definition.NewTable()
	collector := definition.NewCollector(set)
	var all issues.Issues
	for i, tree := range trees {
		all = issues.Append(all, collector.Collect(table, tree, issues.Context{Row: i})...)
	}

	expander := definition.NewExpander(collector, table)
	for i, tree := range trees {
		expanded, iss := expander.Expand(tree, issues.Context{Row: i})
		all = issues.Append(all, iss...)
		fmt.Fprintln(cmd.OutOrStdout(), expanded.Format())
	}

	if len(all) > 0 {
		fmt.Fprint(cmd.ErrOrStderr(), issues.RenderAll(all, issues.RenderTerminal))
	}
	if all.HasErrors() {
		return errors.Newf("expansion reported %d error(s)", len(all.Errors()))
	}
	return nil
}
