// Package commands implements the hedval CLI subcommands.
package commands

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hedtools/hedval/config"
	"github.com/hedtools/hedval/errors"
	"github.com/hedtools/hedval/schema"
)

var activeConfig *config.Config

// SetConfig installs the loaded runtime configuration for all
// subcommands. Called by the root command before any subcommand runs.
func SetConfig(cfg *config.Config) {
	activeConfig = cfg
}

func cfg() *config.Config {
	if activeConfig == nil {
		return &config.Config{}
	}
	return activeConfig
}

// addSchemaFlags registers the schema-source flags shared by every
// schema-consuming subcommand.
func addSchemaFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("schema", "s", "", "Path to the base schema file (json or yaml)")
	cmd.Flags().StringArray("library", nil, "Library schema as prefix=path (repeatable)")
	cmd.Flags().StringArray("partnered", nil, "Partnered library schema path (repeatable)")
}

// buildSet loads the base schema plus any configured or flagged
// libraries into one resolvable set.
func buildSet(cmd *cobra.Command) (*schema.Set, error) {
	c := cfg()

	path, _ := cmd.Flags().GetString("schema")
	if path == "" {
		path = c.Schema.Path
	}
	if path == "" {
		return nil, errors.New("no schema file given (use --schema or schema.path in hedval.toml)")
	}

	base, err := loadModel(path, c.Schema.Format)
	if err != nil {
		return nil, err
	}

	var opts []schema.SetOption
	for prefix, libPath := range c.Schema.Libraries {
		m, err := loadModel(libPath, c.Schema.Format)
		if err != nil {
			return nil, err
		}
		opts = append(opts, schema.WithLibrary(prefix, m))
	}
	for _, p := range c.Schema.Partnered {
		m, err := loadModel(p, c.Schema.Format)
		if err != nil {
			return nil, err
		}
		opts = append(opts, schema.WithPartnered(m))
	}

	libFlags, _ := cmd.Flags().GetStringArray("library")
	for _, spec := range libFlags {
		prefix, libPath, ok := strings.Cut(spec, "=")
		if !ok || prefix == "" || libPath == "" {
			return nil, errors.Newf("malformed --library %q, want prefix=path", spec)
		}
		m, err := loadModel(libPath, c.Schema.Format)
		if err != nil {
			return nil, err
		}
		opts = append(opts, schema.WithLibrary(prefix, m))
	}
	partneredFlags, _ := cmd.Flags().GetStringArray("partnered")
	for _, p := range partneredFlags {
		m, err := loadModel(p, c.Schema.Format)
		if err != nil {
			return nil, err
		}
		opts = append(opts, schema.WithPartnered(m))
	}

	if c.Schema.BareLibraryLookup {
		opts = append(opts, schema.WithBareLibraryLookup())
	}

	return schema.NewSet(base, opts...)
}

// loadModel reads one schema file. An empty format infers json or yaml
// from the file extension.
func loadModel(path, format string) (*schema.Model, error) {
	f := schema.FormatJSON
	if format == "yaml" || (format == "" &&
		(strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml"))) {
		f = schema.FormatYAML
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading schema file %s", path)
	}
	m, err := schema.LoadBytes(raw, f)
	if err != nil {
		return nil, errors.Wrapf(err, "loading schema %s", path)
	}
	return m, nil
}
