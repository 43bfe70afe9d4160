package config

import (
	"github.com/hashicorp/go-hclog"
)

const (
	// DefaultBindPrefix marks a property binding attribute, bind-value="expr".
	DefaultBindPrefix = "bind-"
	// DefaultEventPrefix marks an event listener attribute, on-click="expr".
	DefaultEventPrefix = "on-"
	// DefaultAnchorText is the data of the comment replacing a template
	// directive's element.
	DefaultAnchorText = "template"
)

// Config represents the template compiler configuration
type Config struct {
	BindPrefix  string
	EventPrefix string
	AnchorText  string
	LogLevel    hclog.Level
}

// Default returns the default configuration.
func Default() *Config {
	return New()
}

// New creates a new Config with optional parameters
func New(opts ...Option) *Config {
	config := &Config{
		BindPrefix:  DefaultBindPrefix,
		EventPrefix: DefaultEventPrefix,
		AnchorText:  DefaultAnchorText,
		LogLevel:    hclog.Info,
	}

	for _, opt := range opts {
		opt(config)
	}

	return config
}

// Option is a function that modifies Config
type Option func(*Config)

// WithBindPrefix sets the property binding attribute prefix
func WithBindPrefix(prefix string) Option {
	return func(c *Config) {
		c.BindPrefix = prefix
	}
}

// WithEventPrefix sets the event attribute prefix
func WithEventPrefix(prefix string) Option {
	return func(c *Config) {
		c.EventPrefix = prefix
	}
}

// WithAnchorText sets the data of template anchors
func WithAnchorText(text string) Option {
	return func(c *Config) {
		c.AnchorText = text
	}
}

// WithLogLevel sets the log level from its name. Unknown names leave the
// level unchanged.
func WithLogLevel(level string) Option {
	return func(c *Config) {
		if l := hclog.LevelFromString(level); l != hclog.NoLevel {
			c.LogLevel = l
		}
	}
}

// Logger returns a logger named name at the configured level.
func (c *Config) Logger(name string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  name,
		Level: c.LogLevel,
	})
}
