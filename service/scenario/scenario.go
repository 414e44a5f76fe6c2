// Package scenario loads scripted kernel sessions: an ordered list of
// external events, each with optional expectations about the outcome.
package scenario

import (
	"fmt"

	"github.com/viant/kernelsim/runtime/kernel"
)

// Scenario is a named sequence of steps run against a fresh kernel.
type Scenario struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	URL         string         `json:"url,omitempty" yaml:"-"`
	Config      *kernel.Config `json:"config,omitempty" yaml:"config,omitempty"`
	Steps       []*Step        `json:"steps" yaml:"steps"`
}

// Validate checks the kernel overrides and every step.
func (s *Scenario) Validate() error {
	if s.Config != nil {
		if err := s.Config.Validate(); err != nil {
			return err
		}
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario %v has no steps", s.Name)
	}
	for i, step := range s.Steps {
		if err := step.Validate(); err != nil {
			return fmt.Errorf("scenario %v step %d: %w", s.Name, i+1, err)
		}
	}
	return nil
}
