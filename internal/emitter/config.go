package emitter

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/golang/glog"

	"github.com/rmacdonaldsmith/scopebus/internal/scheduler"
)

var (
	// ErrEmptyName is returned when the emitter name is empty
	ErrEmptyName = errors.New("emitter name cannot be empty")
)

// DefaultName is used when no name is configured.
const DefaultName = "scopebus"

// Config represents configuration for an InMemoryEmitter
type Config struct {
	// Name identifies the emitter in log lines
	Name string

	// RecoverPanics recovers listeners that panic during deferred delivery.
	// Recovered panics are logged and passed to PanicHandler if set.
	RecoverPanics bool

	// PanicHandler receives recovered deferred listener panics.
	// Setting it implies RecoverPanics.
	PanicHandler scheduler.PanicHandler
}

// envConfig holds the settings that can come from the environment.
type envConfig struct {
	Name          string `env:"SCOPEBUS_NAME" envDefault:"scopebus"`
	RecoverPanics bool   `env:"SCOPEBUS_RECOVER_PANICS" envDefault:"false"`
}

// NewConfig creates a new emitter configuration with safe defaults
func NewConfig(name string) *Config {
	return &Config{
		Name:          name,
		RecoverPanics: false,
	}
}

// ConfigFromEnv loads the configuration from SCOPEBUS_* environment variables
func ConfigFromEnv() (*Config, error) {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return NewConfig(ec.Name).WithRecoverPanics(ec.RecoverPanics), nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c.Name == "" {
		return ErrEmptyName
	}
	return nil
}

// WithRecoverPanics enables or disables panic recovery for deferred listeners
func (c *Config) WithRecoverPanics(recoverPanics bool) *Config {
	c.RecoverPanics = recoverPanics
	return c
}

// WithPanicHandler sets the handler for recovered deferred listener panics
func (c *Config) WithPanicHandler(h scheduler.PanicHandler) *Config {
	c.PanicHandler = h
	return c
}

// schedulerOptions translates the configuration into scheduler options
func (c *Config) schedulerOptions() []scheduler.Option {
	opts := []scheduler.Option{scheduler.WithName(c.Name)}

	switch {
	case c.PanicHandler != nil:
		opts = append(opts, scheduler.WithPanicHandler(c.PanicHandler))
	case c.RecoverPanics:
		name := c.Name
		opts = append(opts, scheduler.WithPanicHandler(func(recovered any, stack []byte) {
			glog.Errorf("%s: listener panic: %v\n%s", name, recovered, stack)
		}))
	}
	return opts
}
