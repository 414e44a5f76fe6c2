package kernelsim

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/kernelsim/runtime/kernel"
	"github.com/viant/kernelsim/service/meta"
)

// Config is a serialisable representation of the simulator configuration.
// Sections omitted from a loaded document keep their defaults.
type Config struct {
	Kernel  kernel.Config `json:"kernel" yaml:"kernel"`
	Events  EventsConfig  `json:"events" yaml:"events"`
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`
}

// EventsConfig controls publication of transition and delivery events.
type EventsConfig struct {
	Enabled    bool `json:"enabled" yaml:"enabled"`
	MaxRetries int  `json:"maxRetries" yaml:"maxRetries"`
}

// TracingConfig controls the stdout OpenTelemetry exporter.
type TracingConfig struct {
	Enabled        bool   `json:"enabled" yaml:"enabled"`
	ServiceName    string `json:"serviceName" yaml:"serviceName"`
	ServiceVersion string `json:"serviceVersion" yaml:"serviceVersion"`
	// Output is a file path; empty writes to stdout.
	Output string `json:"output" yaml:"output"`
}

// DefaultConfig returns a Config populated with the package defaults.
// Callers may modify the returned struct before passing it to NewFromConfig.
func DefaultConfig() *Config {
	return &Config{
		Kernel: kernel.DefaultConfig(),
		Events: EventsConfig{MaxRetries: 3},
		Tracing: TracingConfig{
			ServiceName:    "kernelsim",
			ServiceVersion: "0.1.0",
		},
	}
}

// Validate returns an error describing the first invalid setting or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if err := c.Kernel.Validate(); err != nil {
		return err
	}
	if c.Events.MaxRetries < 0 {
		return fmt.Errorf("events.maxRetries must be >= 0")
	}
	if c.Tracing.Enabled && c.Tracing.ServiceName == "" {
		return fmt.Errorf("tracing.serviceName was empty")
	}
	return nil
}

// LoadConfig reads a YAML configuration from any afs-supported URL on top of
// DefaultConfig. ${env.KEY} expressions are expanded.
func LoadConfig(ctx context.Context, URL string, options ...storage.Option) (*Config, error) {
	ret := DefaultConfig()
	if err := meta.New(afs.New(), "", options...).Load(ctx, URL, ret); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", URL, err)
	}
	if err := ret.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", URL, err)
	}
	return ret, nil
}
