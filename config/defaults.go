package config

import (
	"github.com/spf13/viper"

	"github.com/hedtools/hedval/validator"
)

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	// Schema defaults
	v.SetDefault("schema.format", "") // infer from the file extension
	v.SetDefault("schema.bare_library_lookup", false)

	// Validation defaults
	v.SetDefault("validation.workers", 0) // one per CPU
	v.SetDefault("validation.max_group_depth", validator.DefaultMaxGroupDepth)
	v.SetDefault("validation.check_for_warnings", false)
	v.SetDefault("validation.unclosed_scope_severity", "warning")

	// Logging defaults
	v.SetDefault("log.json", false)
}
