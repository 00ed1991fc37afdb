// Package config loads spectra settings from defaults, an optional YAML
// file, SPECTRA_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/spectra/internal/colour"
	"github.com/jmylchreest/spectra/internal/extract"
)

// EnvPrefix is prepended to environment variable names, e.g. SPECTRA_COLOURS.
const EnvPrefix = "SPECTRA"

// Keys shared between viper, flags and the config file.
const (
	KeyColours           = "colours"
	KeyMethod            = "method"
	KeyAlgorithm         = "algorithm"
	KeySaturation        = "saturation"
	KeyBrightness        = "brightness"
	KeySampleTarget      = "sample-target"
	KeyQuantStep         = "quant-step"
	KeyWorkers           = "workers"
	KeyMaxDimension      = "max-dimension"
	KeyAutoOrient        = "auto-orient"
	KeyFormat            = "format"
	KeyPreview           = "preview"
	KeyLogLevel          = "log-level"
	KeyCache             = "cache"
	KeyCacheDir          = "cache-dir"
	KeyAllowPrivateHosts = "allow-private-hosts"
	KeyDebounce          = "debounce"
)

// Preview modes.
const (
	PreviewAuto   = "auto"
	PreviewAlways = "always"
	PreviewNever  = "never"
)

// Output formats understood by the extract command.
var Formats = []string{"hex", "rgb", "hsv", "json", "yaml", "table"}

// Config is the effective configuration.
type Config struct {
	Colours      int     `mapstructure:"colours" yaml:"colours"`
	Method       string  `mapstructure:"method" yaml:"method"`
	Algorithm    string  `mapstructure:"algorithm" yaml:"algorithm"`
	Saturation   string  `mapstructure:"saturation" yaml:"saturation"`
	Brightness   string  `mapstructure:"brightness" yaml:"brightness"`
	SampleTarget int     `mapstructure:"sample-target" yaml:"sample-target"`
	QuantStep    float64 `mapstructure:"quant-step" yaml:"quant-step"`
	Workers      int     `mapstructure:"workers" yaml:"workers"`

	MaxDimension      int    `mapstructure:"max-dimension" yaml:"max-dimension"`
	AutoOrient        bool   `mapstructure:"auto-orient" yaml:"auto-orient"`
	Cache             bool   `mapstructure:"cache" yaml:"cache"`
	CacheDir          string `mapstructure:"cache-dir" yaml:"cache-dir,omitempty"`
	AllowPrivateHosts bool   `mapstructure:"allow-private-hosts" yaml:"allow-private-hosts"`

	Format   string        `mapstructure:"format" yaml:"format"`
	Preview  string        `mapstructure:"preview" yaml:"preview"`
	LogLevel string        `mapstructure:"log-level" yaml:"log-level"`
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyColours, extract.DefaultColours)
	v.SetDefault(KeyMethod, string(extract.MethodDominant))
	v.SetDefault(KeyAlgorithm, string(extract.AlgorithmFarthest))
	v.SetDefault(KeySaturation, "100")
	v.SetDefault(KeyBrightness, "100")
	v.SetDefault(KeySampleTarget, extract.DefaultSampleTarget)
	v.SetDefault(KeyQuantStep, extract.DefaultQuantStep)
	v.SetDefault(KeyWorkers, 0)
	v.SetDefault(KeyMaxDimension, 0)
	v.SetDefault(KeyAutoOrient, true)
	v.SetDefault(KeyFormat, "hex")
	v.SetDefault(KeyPreview, PreviewAuto)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyCache, false)
	v.SetDefault(KeyCacheDir, "")
	v.SetDefault(KeyAllowPrivateHosts, false)
	v.SetDefault(KeyDebounce, 250*time.Millisecond)
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// DefaultPath returns $XDG_CONFIG_HOME/spectra/config.yaml, or an empty
// string when no config directory can be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "spectra", "config.yaml")
}

// ReadFile merges the YAML file at path into v. A missing file is only an
// error when required is set.
func ReadFile(v *viper.Viper, path string, required bool) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("failed to access config file: %w", err)
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// Load decodes and validates the effective configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks every setting.
func (c Config) Validate() error {
	if c.Colours < 0 {
		return fmt.Errorf("%w: colours must not be negative, got %d", colour.ErrInvalidInput, c.Colours)
	}
	if _, err := extract.ParseMethod(c.Method); err != nil {
		return err
	}
	if !extract.IsValidAlgorithm(extract.Algorithm(c.Algorithm)) {
		return fmt.Errorf("%w: %q (valid algorithms: %v)", extract.ErrUnknownAlgorithm, c.Algorithm, extract.ValidAlgorithms())
	}
	if _, err := ParsePercent(c.Saturation); err != nil {
		return fmt.Errorf("saturation: %w", err)
	}
	if _, err := ParsePercent(c.Brightness); err != nil {
		return fmt.Errorf("brightness: %w", err)
	}

	for _, check := range []struct {
		name  string
		value float64
	}{
		{KeySampleTarget, float64(c.SampleTarget)},
		{KeyQuantStep, c.QuantStep},
		{KeyWorkers, float64(c.Workers)},
		{KeyMaxDimension, float64(c.MaxDimension)},
		{KeyDebounce, float64(c.Debounce)},
	} {
		if check.value < 0 || math.IsNaN(check.value) {
			return fmt.Errorf("%w: %s must not be negative", colour.ErrOutOfRange, check.name)
		}
	}

	if !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("%w: unsupported format %q (supported: %s)", colour.ErrInvalidInput, c.Format, strings.Join(Formats, ", "))
	}
	switch c.Preview {
	case PreviewAuto, PreviewAlways, PreviewNever:
	default:
		return fmt.Errorf("%w: preview must be auto, always or never, got %q", colour.ErrInvalidInput, c.Preview)
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		return fmt.Errorf("%w: unknown log level %q", colour.ErrInvalidInput, c.LogLevel)
	}
	return nil
}

// ExtractOptions maps the configuration onto pipeline options.
func (c Config) ExtractOptions(logger hclog.Logger) (extract.Options, error) {
	method, err := extract.ParseMethod(c.Method)
	if err != nil {
		return extract.Options{}, err
	}
	saturation, err := ParsePercent(c.Saturation)
	if err != nil {
		return extract.Options{}, fmt.Errorf("saturation: %w", err)
	}
	brightness, err := ParsePercent(c.Brightness)
	if err != nil {
		return extract.Options{}, fmt.Errorf("brightness: %w", err)
	}

	return extract.Options{
		Colours:      c.Colours,
		Method:       method,
		Saturation:   saturation,
		Brightness:   brightness,
		SampleTarget: c.SampleTarget,
		QuantStep:    c.QuantStep,
		Workers:      c.Workers,
		Logger:       logger,
	}, nil
}

// YAML renders the configuration as a YAML document.
func (c Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return out, nil
}

// ParsePercent parses a percentage written as "150" or "150%". Malformed
// or non-finite text is reported as ErrOutOfRange.
func ParsePercent(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	f64, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a percentage", colour.ErrOutOfRange, s)
	}
	if math.IsNaN(f64) || math.IsInf(f64, 0) {
		return 0, fmt.Errorf("%w: %q is not a finite percentage", colour.ErrOutOfRange, s)
	}
	return f64, nil
}
