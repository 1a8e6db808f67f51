package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kbukum/convpipe/errors"
	"github.com/kbukum/convpipe/logger"
	"github.com/kbukum/convpipe/validation"
)

// ServiceConfig contains the fields every convpipe process needs.
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string        `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// Config is the complete convpipe configuration.
//
//	name: convpipe
//	engine:
//	  cache_size: 256
//	scripts:
//	  lua:
//	    file: ./scripts/lib.lua
//	    limits:
//	      timeout: 4s
//	      max_memory: 32MB
//	paths:
//	  globals:
//	    tenant: {id: 7}
type Config struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Engine  EngineConfig  `yaml:"engine" mapstructure:"engine"`
	Scripts ScriptsConfig `yaml:"scripts" mapstructure:"scripts"`
	Paths   PathsConfig   `yaml:"paths" mapstructure:"paths"`
	Mapping MappingConfig `yaml:"mapping" mapstructure:"mapping"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
}

// EngineConfig tunes the pipeline engine.
type EngineConfig struct {
	// CacheSize is the number of parsed expressions kept; 0 disables the cache.
	CacheSize int `yaml:"cache_size" mapstructure:"cache_size" validate:"gte=0"`
}

// ScriptsConfig holds one entry per embedded language.
type ScriptsConfig struct {
	Lua ScriptConfig `yaml:"lua" mapstructure:"lua"`
	JS  ScriptConfig `yaml:"js" mapstructure:"js"`
}

// ScriptConfig configures one script provider. The provider is enabled when
// Source or File is set.
type ScriptConfig struct {
	Source     string       `yaml:"source" mapstructure:"source" validate:"excluded_with=File"`
	File       string       `yaml:"file" mapstructure:"file"`
	ModulesDir string       `yaml:"modules_dir" mapstructure:"modules_dir" validate:"omitempty,dir"`
	Limits     LimitsConfig `yaml:"limits" mapstructure:"limits"`
}

// LimitsConfig bounds every script invocation.
type LimitsConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	MaxMemory    string        `yaml:"max_memory" mapstructure:"max_memory"`
	MaxCallDepth int           `yaml:"max_call_depth" mapstructure:"max_call_depth" validate:"gte=0"`
}

// PathsConfig configures the ByPath provider.
type PathsConfig struct {
	// Globals are named roots addressable as $name in paths. The provider is
	// enabled when at least one global is set.
	Globals map[string]any `yaml:"globals" mapstructure:"globals"`
}

// MappingConfig points at a record mapping file.
type MappingConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port" validate:"gte=0,lte=65535"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	MaxBodySize  string        `yaml:"max_body_size" mapstructure:"max_body_size"`

	// RateLimit is the accepted requests per second; 0 disables the limit.
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit" validate:"gte=0"`
	RateBurst int     `yaml:"rate_burst" mapstructure:"rate_burst" validate:"gte=0"`
	// MaxConcurrent caps in-flight requests; 0 disables the cap. Requests
	// over the cap wait up to MaxWait.
	MaxConcurrent int           `yaml:"max_concurrent" mapstructure:"max_concurrent" validate:"gte=0"`
	MaxWait       time.Duration `yaml:"max_wait" mapstructure:"max_wait" validate:"gte=0"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint        string        `yaml:"endpoint" mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Insecure        bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate      float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	MetricsInterval time.Duration `yaml:"metrics_interval" mapstructure:"metrics_interval"`
}

// Enabled reports whether a script source was configured.
func (c *ScriptConfig) Enabled() bool {
	return c.Source != "" || c.File != ""
}

// LoadSource returns the inline source or the content of File.
func (c *ScriptConfig) LoadSource() (string, error) {
	if c.Source != "" || c.File == "" {
		return c.Source, nil
	}
	data, err := os.ReadFile(c.File)
	if err != nil {
		return "", fmt.Errorf("reading script %s: %w", c.File, err)
	}
	return string(data), nil
}

// ApplyDefaults applies default values to the base configuration.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "convpipe"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	c.Logging.ApplyDefaults()
}

// ApplyDefaults fills every unset field.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()

	if c.Engine.CacheSize == 0 {
		c.Engine.CacheSize = 256
	}
	c.Scripts.Lua.Limits.applyDefaults()
	c.Scripts.JS.Limits.applyDefaults()

	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.MaxBodySize == "" {
		c.Server.MaxBodySize = "1MB"
	}

	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = 1.0
	}
	if c.Tracing.MetricsInterval == 0 {
		c.Tracing.MetricsInterval = 15 * time.Second
	}
}

func (c *LimitsConfig) applyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 4 * time.Second
	}
	if c.MaxMemory == "" {
		c.MaxMemory = "32MB"
	}
	if c.MaxCallDepth == 0 {
		c.MaxCallDepth = 256
	}
}

// Validate checks struct tags and the logging section.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return errors.InvalidConfig("invalid configuration").WithCause(err)
	}
	if err := c.Logging.Validate(); err != nil {
		return errors.InvalidConfig("invalid logging configuration").WithCause(err)
	}
	return nil
}
