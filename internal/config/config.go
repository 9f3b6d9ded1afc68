// Package config loads runtime settings from defaults, an optional YAML file
// and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/spf13/viper"
)

type Config struct {
	// TableName is the DynamoDB awards table.
	TableName string `mapstructure:"table_name"`
	// Region overrides the SDK default region chain when set.
	Region string `mapstructure:"region"`
	// ParamPrefix enables SSM-backed runtime flags under this path.
	ParamPrefix string `mapstructure:"param_prefix"`
	// ApplyMinFilter returns the min-filtered collection instead of the full one.
	ApplyMinFilter bool `mapstructure:"apply_min_filter" default:"false"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" default:"info"`
	// LocalDBPath selects the LevelDB store instead of DynamoDB.
	LocalDBPath string `mapstructure:"local_db_path"`
	Serve       Serve  `mapstructure:"serve"`
}

type Serve struct {
	Addr    string        `mapstructure:"addr" default:":8080"`
	Timeout time.Duration `mapstructure:"timeout" default:"5s"`
}

var envBindings = map[string]string{
	"table_name":       "TABLE_NAME",
	"region":           "REGION",
	"param_prefix":     "PARAM_PREFIX",
	"apply_min_filter": "APPLY_MIN_FILTER",
	"log_level":        "LOG_LEVEL",
	"local_db_path":    "LOCAL_DB_PATH",
	"serve.addr":       "SERVE_ADDR",
	"serve.timeout":    "SERVE_TIMEOUT",
}

// Load builds a Config. A missing file at path is ignored.
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", env, err)
		}
	}

	if path != "" {
		fstat, err := os.Stat(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: stat %s: %w", path, err)
		case fstat.IsDir():
			return nil, fmt.Errorf("config: configuration file %s is a directory", path)
		default:
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("config: defaults: %w", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.TableName = strings.TrimSpace(cfg.TableName)
	cfg.ParamPrefix = strings.TrimSpace(cfg.ParamPrefix)
	return &cfg, nil
}

// Validate checks the settings needed to serve lookups.
func (c *Config) Validate() error {
	if c.TableName == "" && c.LocalDBPath == "" {
		return errors.New("config: table_name (TABLE_NAME) is required unless local_db_path is set")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}
