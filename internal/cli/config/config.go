// Package config loads drgen settings from drgen.yaml, DRGEN_* environment
// variables and command line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/syssam/dynrepo/compiler/gen"
)

// Config represents the drgen configuration
type Config struct {
	Schema  string `mapstructure:"schema"`
	Target  string `mapstructure:"target"`
	Header  string `mapstructure:"header"`
	Workers int    `mapstructure:"workers"`
	Watch   bool   `mapstructure:"watch"`
	Verbose bool   `mapstructure:"verbose"`
}

// DefaultSchema is the declaration path used when none is configured.
const DefaultSchema = "drgen"

// Load reads the configuration. When file is empty, drgen.yaml (or .yml) in
// the working directory is used if it exists. Flags that were set on the
// command line override both the file and the environment.
func Load(file string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("schema", DefaultSchema)
	v.SetDefault("target", "")
	v.SetDefault("header", gen.DefaultHeader)
	v.SetDefault("workers", 0)
	v.SetDefault("watch", false)
	v.SetDefault("verbose", false)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("drgen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("drgen")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for _, key := range []string{"schema", "target", "header", "workers", "watch", "verbose"} {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", key, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// TargetDir returns the output directory: Target if set, otherwise the
// schema directory, or the directory of the schema file.
func (c *Config) TargetDir(schemaIsDir bool) string {
	if c.Target != "" {
		return c.Target
	}
	if schemaIsDir {
		return c.Schema
	}
	return filepath.Dir(c.Schema)
}

func validateConfig(c *Config) error {
	if c.Schema == "" {
		return errors.New("schema path cannot be empty")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}
