package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/hedtools/hedval/errors"
	"github.com/hedtools/hedval/issues"
	"github.com/hedtools/hedval/validator"
)

// ValidateCmd validates annotation strings against a schema.
var ValidateCmd = &cobra.Command{
	Use:   "validate [strings...]",
	Short: "Validate HED annotation strings against a schema",
	Long: `Validate one or more HED annotation strings against a schema.

Strings come from the command line, from --input (one string per line,
row order preserved), or from stdin when neither is given. Definitions
declared anywhere in the batch are visible to every row, and temporal
onset/offset scopes are checked across rows in order.

Examples:
  hedval validate -s standard-8.3.0.json "(Red, Delay/0.5)"
  hedval validate -s standard-8.3.0.json --input events.txt
  cat events.txt | hedval validate -s standard-8.3.0.json --json`,
	RunE: runValidate,
}

func init() {
	addSchemaFlags(ValidateCmd)
	ValidateCmd.Flags().StringP("input", "i", "", "Read annotation strings from a file, one per line")
	ValidateCmd.Flags().String("column", "events", "Column name attached to issue context")
	ValidateCmd.Flags().BoolP("json", "j", false, "Output issues as JSON")
	ValidateCmd.Flags().BoolP("warnings", "w", false, "Also report style warnings")
	ValidateCmd.Flags().Int("workers", 0, "Concurrent validation workers (0 = one per CPU)")
	ValidateCmd.SilenceUsage = true
}

func runValidate(cmd *cobra.Command, args []string) error {
	set, err := buildSet(cmd)
	if err != nil {
		return err
	}

	column, _ := cmd.Flags().GetString("column")
	rows, err := collectRows(cmd, args, column)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return errors.New("no annotation strings to validate")
	}

	opts := cfg().ValidatorOptions()
	if warn, _ := cmd.Flags().GetBool("warnings"); warn {
		opts = append(opts, validator.WithWarnings())
	}
	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		opts = append(opts, validator.WithWorkers(workers))
	}

	v := validator.New(set, opts...)
	_, all, err := v.ValidateBatch(cmd.Context(), rows)
	if err != nil {
		return err
	}
	all.SortByRow()

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		out, err := json.MarshalIndent(all, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encoding issues")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	} else if len(all) == 0 {
		pterm.Success.Printfln("%d string(s) validated, no issues", len(rows))
	} else {
		fmt.Fprint(cmd.OutOrStdout(), issues.RenderAll(all, issues.RenderTerminal))
	}

	if n := len(all.Errors()); n > 0 {
		return errors.Newf("validation failed with %d error(s)", n)
	}
	return nil
}

// collectRows gathers the batch in dataset order: explicit args win,
// then --input, then stdin.
func collectRows(cmd *cobra.Command, args []string, column string) ([]validator.Row, error) {
	if len(args) > 0 {
		rows := make([]validator.Row, 0, len(args))
		for i, text := range args {
			rows = append(rows, validator.Row{Index: i, Column: column, Text: text})
		}
		return rows, nil
	}

	if path, _ := cmd.Flags().GetString("input"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "opening input file %s", path)
		}
		defer f.Close()
		return readRows(f, column)
	}

	return readRows(cmd.InOrStdin(), column)
}

func readRows(r io.Reader, column string) ([]validator.Row, error) {
	var rows []validator.Row
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	index := 0
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			index++
			continue
		}
		rows = append(rows, validator.Row{Index: index, Column: column, Text: text})
		index++
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading annotation strings")
	}
	return rows, nil
}
