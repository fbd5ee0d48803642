package validator

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hedtools/hedval/definition"
	"github.com/hedtools/hedval/issues"
	"github.com/hedtools/hedval/logger"
	"github.com/hedtools/hedval/parser"
	"github.com/hedtools/hedval/temporal"
)

// Row is one annotation string with its dataset position. Index is the
// dataset row order the temporal pass depends on; Column names the
// source column for issue context.
type Row struct {
	Index  int
	Column string
	Text   string
}

// Result is the outcome for one row. Tree is nil when the row failed to
// parse; its issues carry the structural finding.
type Result struct {
	Row    Row
	Tree   *parser.Group
	Issues issues.Issues
}

// ValidateBatch validates an ordered batch of rows. Parsing and
// per-tree checks run concurrently over the immutable schema set; the
// definition passes and the temporal tracker then run sequentially in
// slice order, which must be dataset row order. Issues collected before
// a context cancellation remain valid.
func (v *Validator) ValidateBatch(ctx context.Context, rows []Row) ([]Result, issues.Issues, error) {
	session := uuid.NewString()
	logger.Debugw("starting batch validation",
		"session", session,
		"rows", len(rows),
		"workers", v.workers,
	)

	results := make([]Result, len(rows))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(v.workers)
	for i, row := range rows {
		i, row := i, row
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			rctx := issues.Context{Row: row.Index, Column: row.Column}
			tree, iss := v.ValidateString(row.Text, rctx)
			results[i] = Result{Row: row, Tree: tree, Issues: iss}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		logger.Warnw("batch validation aborted", "session", session, "error", err)
		return results, mergeIssues(results, nil), err
	}

	table := definition.NewTable()
	for _, e := range v.external {
		table.Add(e)
	}
	collector := definition.NewCollector(v.set)
	for i := range results {
		if results[i].Tree == nil {
			continue
		}
		rctx := issues.Context{Row: results[i].Row.Index, Column: results[i].Row.Column}
		results[i].Issues = issues.Append(results[i].Issues,
			collector.Collect(table, results[i].Tree, rctx)...)
	}

	tracker := temporal.NewTracker(v.set, table, temporal.WithUnclosedSeverity(v.unclosedSev))
	for i := range results {
		if results[i].Tree == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			logger.Warnw("batch validation aborted", "session", session, "error", err)
			return results, mergeIssues(results, nil), err
		}
		rctx := issues.Context{Row: results[i].Row.Index, Column: results[i].Row.Column}
		results[i].Issues = issues.Append(results[i].Issues,
			collector.ValidateUse(table, results[i].Tree, rctx)...)
		results[i].Issues = issues.Append(results[i].Issues,
			tracker.ProcessRow(results[i].Row.Index, results[i].Row.Column, results[i].Tree)...)
	}

	all := mergeIssues(results, tracker.Finish())
	logger.Infow("batch validation finished",
		"session", session,
		"rows", len(rows),
		"definitions", table.Len(),
		"issues", len(all),
		"errors", len(all.Errors()),
	)
	return results, all, nil
}

func mergeIssues(results []Result, tail issues.Issues) issues.Issues {
	var all issues.Issues
	for _, r := range results {
		all = issues.Append(all, r.Issues...)
	}
	return issues.Append(all, tail...)
}
