package kernelsim

import (
	"context"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/kernelsim/runtime/kernel"
	"github.com/viant/kernelsim/runtime/process"
	"github.com/viant/kernelsim/service/dao"
	"github.com/viant/kernelsim/service/event"
	"github.com/viant/kernelsim/service/messaging"
	"github.com/viant/kernelsim/service/messaging/memory"
	"github.com/viant/kernelsim/service/meta"
	"github.com/viant/kernelsim/service/scenario"
	"github.com/viant/kernelsim/stats"
	"github.com/viant/kernelsim/tracing"
)

// Service wires the kernel with its supporting services.
type Service struct {
	config        *Config
	runtime       *Runtime
	metaService   *meta.Service
	scenarios     *scenario.Service
	eventService  *event.Service
	listeners     []kernel.Listener
	processDAO    dao.Service[int, process.Process]
	tracer        *tracing.Tracer
	metaBaseURL   string
	metaFsOptions []storage.Option
	err           error
}

// Runtime returns the runtime
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Config returns the effective configuration
func (s *Service) Config() *Config {
	return s.config
}

// Events returns the event service, or nil when events are disabled.
func (s *Service) Events() *event.Service {
	return s.eventService
}

// LoadScenario loads a scenario relative to the meta base URL.
func (s *Service) LoadScenario(ctx context.Context, URL string) (*scenario.Scenario, error) {
	return s.scenarios.Load(ctx, URL)
}

// RunScenario replays aScenario on a fresh runtime that applies the
// scenario's kernel overrides. The fresh runtime shares the service tracer,
// listeners and event service.
func (s *Service) RunScenario(ctx context.Context, aScenario *scenario.Scenario) ([]*StepResult, error) {
	config := s.config.Kernel
	if aScenario.Config != nil {
		config = *aScenario.Config
	}
	runtime, err := s.newRuntime(config, nil)
	if err != nil {
		return nil, err
	}
	return runtime.RunScenario(ctx, aScenario)
}

// Close stops event listeners.
func (s *Service) Close() {
	if s.eventService != nil {
		s.eventService.Close()
	}
}

func (s *Service) ensureBaseSetup() error {
	if s.metaService == nil {
		s.metaService = meta.New(afs.New(), s.metaBaseURL, s.metaFsOptions...)
	}
	s.scenarios = scenario.New(s.metaService)
	if s.tracer == nil {
		s.tracer = tracing.NewTracer(nil)
	}
	if s.eventService == nil && s.config.Events.Enabled {
		maxRetries := s.config.Events.MaxRetries
		service, err := event.New(messaging.VendorMemory, event.WithNewMemoryQueueConfig(func(string) memory.Config {
			config := memory.DefaultConfig()
			config.MaxRetries = maxRetries
			return config
		}))
		if err != nil {
			return err
		}
		s.eventService = service
	}
	return nil
}

func (s *Service) newRuntime(config kernel.Config, processDAO dao.Service[int, process.Process]) (*Runtime, error) {
	ret := &Runtime{
		stats:     stats.New(),
		tracer:    s.tracer,
		scenarios: s.scenarios,
		events:    s.eventService,
	}
	if s.eventService != nil {
		var err error
		if ret.transitions, err = event.PublisherOf[event.Transition](s.eventService); err != nil {
			return nil, err
		}
		if ret.deliveries, err = event.PublisherOf[event.Delivery](s.eventService); err != nil {
			return nil, err
		}
	}
	listeners := append([]kernel.Listener{ret.stats.Observe, ret.publish}, s.listeners...)
	options := []kernel.Option{kernel.WithConfig(config), kernel.WithListener(listeners...)}
	if processDAO != nil {
		options = append(options, kernel.WithProcessDAO(processDAO))
	}
	var err error
	if ret.kernel, err = kernel.New(options...); err != nil {
		return nil, err
	}
	return ret, nil
}

// New creates a simulator service.
func New(options ...Option) (*Service, error) {
	ret := &Service{config: DefaultConfig()}
	for _, option := range options {
		option(ret)
	}
	if ret.err != nil {
		return nil, ret.err
	}
	if err := ret.config.Validate(); err != nil {
		return nil, err
	}
	if err := ret.ensureBaseSetup(); err != nil {
		return nil, err
	}
	var err error
	if ret.runtime, err = ret.newRuntime(ret.config.Kernel, ret.processDAO); err != nil {
		return nil, err
	}
	return ret, nil
}

// NewFromConfig creates a service from config; tracing is initialised when
// enabled. Additional options are applied after the config.
func NewFromConfig(config *Config, options ...Option) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	opts := []Option{WithConfig(config)}
	if config.Tracing.Enabled {
		opts = append(opts, WithTracing(config.Tracing.ServiceName, config.Tracing.ServiceVersion, config.Tracing.Output))
	}
	return New(append(opts, options...)...)
}
