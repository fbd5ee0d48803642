// Package config holds the hedval runtime configuration: schema
// sources, validation behavior, and logging. Values come from a TOML
// file, HEDVAL_* environment variables, and built-in defaults, in that
// precedence order.
package config

import (
	"github.com/hedtools/hedval/issues"
	"github.com/hedtools/hedval/validator"
)

// Config is the root hedval configuration.
type Config struct {
	Schema     SchemaConfig     `mapstructure:"schema"`
	Validation ValidationConfig `mapstructure:"validation"`
	Log        LogConfig        `mapstructure:"log"`
}

// SchemaConfig names the schema files a session loads.
type SchemaConfig struct {
	Path   string `mapstructure:"path"`   // base schema file
	Format string `mapstructure:"format"` // json or yaml; empty infers from the extension

	// Libraries maps library prefixes to schema files, e.g.
	// score = "score-1.1.0.json".
	Libraries map[string]string `mapstructure:"libraries"`

	// Partnered lists partnered library files merged into the
	// unprefixed namespace.
	Partnered []string `mapstructure:"partnered"`

	// BareLibraryLookup lets unprefixed terms match library schemas.
	// Terms found in more than one namespace then become errors.
	BareLibraryLookup bool `mapstructure:"bare_library_lookup"`
}

// ValidationConfig tunes the validator.
type ValidationConfig struct {
	Workers               int    `mapstructure:"workers"`                 // batch parallelism, 0 = one per CPU
	MaxGroupDepth         int    `mapstructure:"max_group_depth"`         // 0 disables the nesting check
	CheckForWarnings      bool   `mapstructure:"check_for_warnings"`      // include style findings
	UnclosedScopeSeverity string `mapstructure:"unclosed_scope_severity"` // "warning" or "error"
}

// LogConfig configures the global logger.
type LogConfig struct {
	JSON bool `mapstructure:"json"` // machine-readable output instead of console encoding
}

// UnclosedSeverity maps the configured severity string onto the issue
// model. Validate guarantees the value is one of the known names.
func (c *ValidationConfig) UnclosedSeverity() issues.Severity {
	if c.UnclosedScopeSeverity == "error" {
		return issues.SeverityError
	}
	return issues.SeverityWarning
}

// ValidatorOptions translates the validation section into validator
// options.
func (c *Config) ValidatorOptions() []validator.Option {
	opts := []validator.Option{
		validator.WithMaxGroupDepth(c.Validation.MaxGroupDepth),
		validator.WithUnclosedSeverity(c.Validation.UnclosedSeverity()),
	}
	if c.Validation.Workers > 0 {
		opts = append(opts, validator.WithWorkers(c.Validation.Workers))
	}
	if c.Validation.CheckForWarnings {
		opts = append(opts, validator.WithWarnings())
	}
	return opts
}
