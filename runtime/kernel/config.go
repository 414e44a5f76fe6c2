package kernel

import "fmt"

// Config represents kernel configuration.
type Config struct {
	// MaxPayload is the maximum message payload length in bytes.
	MaxPayload int `json:"maxPayload" yaml:"maxPayload"`

	// MaxProcesses is the process table capacity; zero means unbounded.
	MaxProcesses int `json:"maxProcesses" yaml:"maxProcesses"`

	// PreemptIdle dispatches as soon as a process becomes ready while the idle
	// process is running.
	PreemptIdle bool `json:"preemptIdle" yaml:"preemptIdle"`
}

// DefaultConfig returns the default kernel configuration.
func DefaultConfig() Config {
	return Config{
		MaxPayload:   40,
		MaxProcesses: 1024,
	}
}

// Validate checks configuration bounds.
func (c Config) Validate() error {
	if c.MaxPayload <= 0 {
		return fmt.Errorf("kernel.maxPayload must be > 0")
	}
	if c.MaxProcesses < 0 {
		return fmt.Errorf("kernel.maxProcesses must be >= 0")
	}
	return nil
}
