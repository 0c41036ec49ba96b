// Package config provides configuration management for mimeo using Viper.
package config

import (
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/thoreinstein/mimeo/internal/errors"
	"github.com/thoreinstein/mimeo/internal/paths"
)

// EnvPrefix prefixes every environment variable mimeo reads.
const EnvPrefix = "MIMEO"

// ConfigDirEnv overrides the directory searched for config.yaml.
const ConfigDirEnv = EnvPrefix + "_CONFIG_DIR"

// CurrentVersion is the only supported config file version.
const CurrentVersion = 1

// Config represents the top-level configuration structure.
type Config struct {
	Version int `mapstructure:"version" yaml:"version"`

	// RulesFile is used when no rules file is given on the command line.
	RulesFile string `mapstructure:"rules_file" yaml:"rules_file"`

	// LogDir receives one JSON log file per day. Empty disables file logging.
	LogDir string `mapstructure:"log_dir" yaml:"log_dir"`

	// RuleSpacing is the pause between consecutive rules.
	RuleSpacing time.Duration `mapstructure:"rule_spacing" yaml:"rule_spacing"`

	// HashAlgorithm is sha256 or md5.
	HashAlgorithm string `mapstructure:"hash_algorithm" yaml:"hash_algorithm"`
}

// Init resets Viper and installs mimeo's search paths, environment binding
// and defaults. Call it once at startup before Load.
func Init() {
	viper.Reset()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".")
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		viper.AddConfigPath(dir)
	} else {
		viper.AddConfigPath(paths.ConfigDir())
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	viper.SetDefault("version", CurrentVersion)
	viper.SetDefault("rules_file", "rules.json")
	viper.SetDefault("log_dir", paths.LogDir())
	viper.SetDefault("rule_spacing", "1s")
	viper.SetDefault("hash_algorithm", "sha256")
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations and falls back to
// defaults when no file is found. The result is validated.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// Implicit load: defaults are fine.
		case errors.As(err, &notFound), errors.Is(err, os.ErrNotExist):
			return nil, errors.Mark(errors.Wrapf(err, "config file not found at %s", path), errors.ErrNotFound)
		default:
			return nil, errors.Mark(errors.Wrap(err, "reading config file"), errors.ErrInvalidConfig)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "unmarshaling config"), errors.ErrInvalidConfig)
	}

	cfg.RulesFile = paths.ExpandHome(cfg.RulesFile)
	cfg.LogDir = paths.ExpandHome(cfg.LogDir)

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Mark(errors.Wrap(errors.Join(errs...), "validating config"), errors.ErrInvalidConfig)
	}

	return &cfg, nil
}

// FileUsed returns the config file Load read, or "" if defaults were used.
func FileUsed() string {
	return viper.ConfigFileUsed()
}
