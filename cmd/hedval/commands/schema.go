package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// SchemaCmd groups schema inspection subcommands.
var SchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect HED schemas",
}

var schemaInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show schema version, namespaces, and vocabulary size",
	RunE:  runSchemaInfo,
}

func init() {
	addSchemaFlags(schemaInfoCmd)
	schemaInfoCmd.SilenceUsage = true
	SchemaCmd.AddCommand(schemaInfoCmd)
}

func runSchemaInfo(cmd *cobra.Command, args []string) error {
	set, err := buildSet(cmd)
	if err != nil {
		return err
	}

	base := set.Base()
	pterm.DefaultSection.Println("Base schema")
	pterm.Printfln("  version:      %s", base.Version())
	pterm.Printfln("  terms:        %d", base.NodeCount())
	pterm.Printfln("  unit classes: %d", base.UnitClassCount())

	prefixes := set.Prefixes()
	if len(prefixes) == 0 {
		return nil
	}
	pterm.DefaultSection.Println("Libraries")
	for _, prefix := range prefixes {
		lib := set.Library(prefix)
		pterm.Printfln("  %s: %s %s (%d terms)", prefix, lib.Library(), lib.Version(), lib.NodeCount())
	}
	return nil
}
