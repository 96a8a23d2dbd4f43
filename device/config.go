package device

import (
	"log/slog"
)

// Config holds the settings for constructing a Session.
type Config struct {
	// Registry provides the device grammars. Required.
	Registry Registry
	// DeviceID selects the grammar to use. Required.
	DeviceID string
	// Overrides are transport settings applied over the grammar's serial
	// section, keyed by setting name (e.g. "port", "baudrate").
	Overrides map[string]any
	// Dialer opens the transport. Required.
	Dialer Dialer
	// Logger receives the session's diagnostics. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

func (c *Config) validate() error {
	if c.Registry == nil {
		return ErrNoRegistry
	}
	if c.DeviceID == "" {
		return ErrNoDeviceID
	}
	if c.Dialer == nil {
		return ErrNoDialer
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// ConfigBuilder assembles a Config fluently.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder returns a builder with an empty Config.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

// WithRegistry sets the grammar registry.
func (b *ConfigBuilder) WithRegistry(reg Registry) *ConfigBuilder {
	b.config.Registry = reg
	return b
}

// WithDeviceID selects the device grammar.
func (b *ConfigBuilder) WithDeviceID(deviceID string) *ConfigBuilder {
	b.config.DeviceID = deviceID
	return b
}

// WithOverrides sets the caller's transport setting overrides.
func (b *ConfigBuilder) WithOverrides(overrides map[string]any) *ConfigBuilder {
	b.config.Overrides = overrides
	return b
}

// WithDialer sets the transport dialer.
func (b *ConfigBuilder) WithDialer(dialer Dialer) *ConfigBuilder {
	b.config.Dialer = dialer
	return b
}

// WithLogger sets the session logger.
func (b *ConfigBuilder) WithLogger(logger *slog.Logger) *ConfigBuilder {
	b.config.Logger = logger
	return b
}

// Build validates the assembled Config and returns it.
func (b *ConfigBuilder) Build() (Config, error) {
	if err := b.config.validate(); err != nil {
		return Config{}, err
	}
	b.config.setDefaults()
	return b.config, nil
}
