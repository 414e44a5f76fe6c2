package event

import (
	"github.com/viant/kernelsim/service/messaging/memory"
)

type Option func(s *Service)

// WithNewMemoryQueueConfig sets the new memory queue configuration
func WithNewMemoryQueueConfig(newQueue func(name string) memory.Config) Option {
	return func(s *Service) {
		s.memNewQueueConfig = newQueue
	}
}
