package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/hedtools/hedval/errors"
)

// Load reads the hedval configuration: defaults, then the nearest
// hedval.toml up the directory tree, then HEDVAL_* environment
// variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HEDVAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if path := findProjectConfig(); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", path)
		}
	}

	return unmarshal(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "reading config file %s", configPath)
	}
	return unmarshal(v)
}

// LoadWithViper loads configuration from a caller-provided Viper
// instance. Defaults must already be set on it.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// findProjectConfig walks up from the working directory looking for
// hedval.toml. Returns "" when none is found.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(dir, "hedval.toml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	switch c.Schema.Format {
	case "", "json", "yaml":
	default:
		return errors.Newf("schema.format must be json or yaml, got %q", c.Schema.Format)
	}

	for prefix := range c.Schema.Libraries {
		if strings.TrimSpace(prefix) == "" {
			return errors.New("schema.libraries keys must be non-empty prefixes")
		}
	}

	if c.Validation.Workers < 0 {
		return errors.Newf("validation.workers must be >= 0, got %d", c.Validation.Workers)
	}
	if c.Validation.MaxGroupDepth < 0 {
		return errors.Newf("validation.max_group_depth must be >= 0, got %d", c.Validation.MaxGroupDepth)
	}

	switch c.Validation.UnclosedScopeSeverity {
	case "", "warning", "error":
	default:
		return errors.Newf("validation.unclosed_scope_severity must be warning or error, got %q",
			c.Validation.UnclosedScopeSeverity)
	}
	return nil
}
