package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hedtools/hedval/cmd/hedval/commands"
	"github.com/hedtools/hedval/config"
	"github.com/hedtools/hedval/logger"
)

var rootCmd = &cobra.Command{
	Use:   "hedval",
	Short: "hedval - HED annotation validation",
	Long: `hedval validates HED annotation strings against a schema.

Available commands:
  validate - Validate annotation strings or files against a schema
  expand   - Expand Def references into their definition templates
  schema   - Inspect a loaded schema
  version  - Show version information

Examples:
  hedval validate --schema standard-8.3.0.json "(Red, Delay/0.5)"
  hedval validate --schema standard-8.3.0.json --input events.txt
  hedval expand --schema standard-8.3.0.json "(Definition/Fix, (Red)), Def/Fix"
  hedval schema info --schema standard-8.3.0.json`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := logger.Initialize(cfg.Log.JSON); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		commands.SetConfig(cfg)
		return nil
	},
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a hedval.toml config file")

	rootCmd.AddCommand(commands.ValidateCmd)
	rootCmd.AddCommand(commands.ExpandCmd)
	rootCmd.AddCommand(commands.SchemaCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
