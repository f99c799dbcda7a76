package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/cqlcell/internal/deserialize"
	"github.com/danmuck/cqlcell/internal/logging"
	"github.com/danmuck/cqlcell/internal/protocol/frame"
)

// Config drives cellctl.
type Config struct {
	Logging  LoggingConfig  `toml:"logging"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Bindings BindingsConfig `toml:"bindings"`
	Frame    FrameConfig    `toml:"frame"`
}

type LoggingConfig struct {
	Level     string `toml:"level"`
	Timestamp bool   `toml:"timestamp"`
	NoColor   bool   `toml:"no_color"`
}

type MetricsConfig struct {
	Enabled   bool   `toml:"enabled"`
	Namespace string `toml:"namespace"`
}

// BindingsConfig selects the Go representation of types that have more
// than one.
type BindingsConfig struct {
	Varint  string `toml:"varint"`
	Decimal string `toml:"decimal"`
	Blob    string `toml:"blob"`
	Text    string `toml:"text"`
}

type FrameConfig struct {
	Compression  string `toml:"compression"`
	MaxBodyBytes int    `toml:"max_body_bytes"`
	MaxCellBytes int    `toml:"max_cell_bytes"`
}

func Default() Config {
	limits := frame.DefaultLimits()
	return Config{
		Logging: LoggingConfig{
			Level:     "info",
			Timestamp: true,
		},
		Metrics: MetricsConfig{
			Namespace: "cqlcell",
		},
		Bindings: BindingsConfig{
			Varint:  string(deserialize.VarintModeNative),
			Decimal: string(deserialize.DecimalModeNative),
			Blob:    string(deserialize.BlobModeOwned),
			Text:    string(deserialize.TextModeOwned),
		},
		Frame: FrameConfig{
			Compression:  string(frame.CompressionNone),
			MaxBodyBytes: limits.MaxBodyBytes,
			MaxCellBytes: limits.MaxCellBytes,
		},
	}
}

// Load overlays the keys present in the TOML file at path onto Default and
// validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw Config
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config (%s): unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("logging", "level") {
		cfg.Logging.Level = strings.TrimSpace(raw.Logging.Level)
	}
	if meta.IsDefined("logging", "timestamp") {
		cfg.Logging.Timestamp = raw.Logging.Timestamp
	}
	if meta.IsDefined("logging", "no_color") {
		cfg.Logging.NoColor = raw.Logging.NoColor
	}

	if meta.IsDefined("metrics", "enabled") {
		cfg.Metrics.Enabled = raw.Metrics.Enabled
	}
	if meta.IsDefined("metrics", "namespace") {
		cfg.Metrics.Namespace = strings.TrimSpace(raw.Metrics.Namespace)
	}

	if meta.IsDefined("bindings", "varint") {
		cfg.Bindings.Varint = normalize(raw.Bindings.Varint)
	}
	if meta.IsDefined("bindings", "decimal") {
		cfg.Bindings.Decimal = normalize(raw.Bindings.Decimal)
	}
	if meta.IsDefined("bindings", "blob") {
		cfg.Bindings.Blob = normalize(raw.Bindings.Blob)
	}
	if meta.IsDefined("bindings", "text") {
		cfg.Bindings.Text = normalize(raw.Bindings.Text)
	}

	if meta.IsDefined("frame", "compression") {
		cfg.Frame.Compression = normalize(raw.Frame.Compression)
	}
	if meta.IsDefined("frame", "max_body_bytes") {
		cfg.Frame.MaxBodyBytes = raw.Frame.MaxBodyBytes
	}
	if meta.IsDefined("frame", "max_cell_bytes") {
		cfg.Frame.MaxCellBytes = raw.Frame.MaxCellBytes
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s invalid: %w", path, err)
	}
	return cfg, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (c Config) Validate() error {
	if c.Logging.Level != "" {
		if _, ok := logging.ParseLevel(c.Logging.Level); !ok {
			return fmt.Errorf("logging.level %q is not a level", c.Logging.Level)
		}
	}
	if c.Metrics.Enabled && strings.TrimSpace(c.Metrics.Namespace) == "" {
		return fmt.Errorf("metrics.namespace is required when metrics are enabled")
	}
	if _, err := frame.ParseCompression(c.Frame.Compression); err != nil {
		return fmt.Errorf("frame.compression: %w", err)
	}
	if c.Frame.MaxBodyBytes <= 0 {
		return fmt.Errorf("frame.max_body_bytes must be positive")
	}
	if c.Frame.MaxCellBytes < 0 {
		return fmt.Errorf("frame.max_cell_bytes must not be negative")
	}
	if _, err := deserialize.NewRegistry(c.RegistryOptions(nil)); err != nil {
		return fmt.Errorf("bindings: %w", err)
	}
	return nil
}

// RegistryOptions maps the bindings section onto deserialize.Options.
func (c Config) RegistryOptions(obs deserialize.Observer) deserialize.Options {
	return deserialize.Options{
		Varint:   deserialize.VarintMode(c.Bindings.Varint),
		Decimal:  deserialize.DecimalMode(c.Bindings.Decimal),
		Blob:     deserialize.BlobMode(c.Bindings.Blob),
		Text:     deserialize.TextMode(c.Bindings.Text),
		Observer: obs,
	}
}

func (c Config) FrameLimits() frame.Limits {
	return frame.Limits{
		MaxBodyBytes: c.Frame.MaxBodyBytes,
		MaxCellBytes: c.Frame.MaxCellBytes,
	}
}

// LoggerConfig returns the logger setup. Environment overrides still apply
// on top of it.
func (c Config) LoggerConfig() logging.Config {
	out := logging.DefaultConfig(logging.ProfileRuntime)
	if lvl, ok := logging.ParseLevel(c.Logging.Level); ok {
		out.Level = lvl
	}
	out.Timestamp = c.Logging.Timestamp
	out.NoColor = c.Logging.NoColor
	logging.ApplyEnvOverrides(&out)
	return out
}
