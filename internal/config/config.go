package config

import (
	"time"
)

// Default values.
const (
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
	DefaultLogOutput       = "stderr"
	DefaultKeySetPath      = "/etc/jwkset/jwks.json"
	DefaultDebounce        = 200 * time.Millisecond
	DefaultMetricsAddress  = ":9090"
	DefaultMetricsPath     = "/metrics"
	DefaultNamespace       = "jwkset"
	DefaultServiceName     = "jwkset"
	DefaultSamplingRate    = 1.0
	DefaultShutdownTimeout = 10 * time.Second
)

// Config is the root configuration.
type Config struct {
	Log     LogConfig     `yaml:"log" json:"log"`
	KeySet  KeySetConfig  `yaml:"keySet" json:"keySet"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
	Tracing TracingConfig `yaml:"tracing" json:"tracing"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level  string `yaml:"level,omitempty" json:"level,omitempty"`
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
	Output string `yaml:"output,omitempty" json:"output,omitempty"`
}

// KeySetConfig locates the JWK set document and controls reloading.
type KeySetConfig struct {
	Path     string   `yaml:"path" json:"path"`
	Watch    bool     `yaml:"watch" json:"watch"`
	Debounce Duration `yaml:"debounce,omitempty" json:"debounce,omitempty"`
}

// MetricsConfig represents metrics configuration.
type MetricsConfig struct {
	Enabled         bool     `yaml:"enabled" json:"enabled"`
	Address         string   `yaml:"address,omitempty" json:"address,omitempty"`
	Path            string   `yaml:"path,omitempty" json:"path,omitempty"`
	Namespace       string   `yaml:"namespace,omitempty" json:"namespace,omitempty"`
	ShutdownTimeout Duration `yaml:"shutdownTimeout,omitempty" json:"shutdownTimeout,omitempty"`
}

// TracingConfig represents tracing configuration.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	SamplingRate float64 `yaml:"samplingRate,omitempty" json:"samplingRate,omitempty"`
	OTLPEndpoint string  `yaml:"otlpEndpoint,omitempty" json:"otlpEndpoint,omitempty"`
	ServiceName  string  `yaml:"serviceName,omitempty" json:"serviceName,omitempty"`
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
			Output: DefaultLogOutput,
		},
		KeySet: KeySetConfig{
			Path:     DefaultKeySetPath,
			Watch:    true,
			Debounce: Duration(DefaultDebounce),
		},
		Metrics: MetricsConfig{
			Enabled:         true,
			Address:         DefaultMetricsAddress,
			Path:            DefaultMetricsPath,
			Namespace:       DefaultNamespace,
			ShutdownTimeout: Duration(DefaultShutdownTimeout),
		},
		Tracing: TracingConfig{
			Enabled:      false,
			SamplingRate: DefaultSamplingRate,
			ServiceName:  DefaultServiceName,
		},
	}
}

// applyDefaults fills zero-valued optional fields that YAML may have cleared.
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Log.Output == "" {
		c.Log.Output = DefaultLogOutput
	}
	if c.KeySet.Debounce == 0 {
		c.KeySet.Debounce = Duration(DefaultDebounce)
	}
	if c.Metrics.Address == "" {
		c.Metrics.Address = DefaultMetricsAddress
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Metrics.ShutdownTimeout == 0 {
		c.Metrics.ShutdownTimeout = Duration(DefaultShutdownTimeout)
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = DefaultServiceName
	}
}
