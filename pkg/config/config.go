package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-kpi/components/metrics"
	"github.com/goliatone/go-kpi/pkg/telemetry"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides, e.g. KPI_RETENTION_WINDOW.
const EnvPrefix = "KPI_"

// Config is the runtime configuration of the kpi tooling.
type Config struct {
	Retention RetentionConfig `koanf:"retention"`
	Bands     BandsConfig     `koanf:"bands"`
	Log       LogConfig       `koanf:"log"`
}

// RetentionConfig mirrors metrics.RetentionOptions.
type RetentionConfig struct {
	Window        int     `koanf:"window"`
	HighThreshold float64 `koanf:"high_threshold"`
	LowThreshold  float64 `koanf:"low_threshold"`
}

// BandsConfig points at an optional band manifest merged over the defaults.
type BandsConfig struct {
	Path string `koanf:"path"`
}

// LogConfig selects the logger level and output format.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	retention := metrics.DefaultRetentionOptions()
	return Config{
		Retention: RetentionConfig{
			Window:        retention.Window,
			HighThreshold: retention.HighThreshold,
			LowThreshold:  retention.LowThreshold,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load layers defaults, the optional YAML file at path and KPI_ environment
// variables, in increasing precedence, then validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps KPI_RETENTION_HIGH_THRESHOLD to retention.high_threshold: the
// first segment names the section, the rest is the field.
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	section, field, ok := strings.Cut(key, "_")
	if !ok {
		return key
	}
	return section + "." + field
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Retention.Window < 0 {
		errs = append(errs, fmt.Errorf("config: retention.window must be >= 0, got %d", c.Retention.Window))
	}
	if err := c.RetentionOptions().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("config: retention: %w", err))
	}
	if _, err := telemetry.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("config: log.level: %w", err))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("config: log.format must be json or console, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// RetentionOptions converts the retention section for the cohort tracker.
func (c *Config) RetentionOptions() metrics.RetentionOptions {
	return metrics.RetentionOptions{
		Window:        c.Retention.Window,
		HighThreshold: c.Retention.HighThreshold,
		LowThreshold:  c.Retention.LowThreshold,
	}
}

// LoggerConfig converts the log section for telemetry.New.
func (c *Config) LoggerConfig() telemetry.Config {
	return telemetry.Config{Level: c.Log.Level, Format: c.Log.Format}
}
