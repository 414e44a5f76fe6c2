package kernelsim

import (
	"github.com/viant/afs/storage"
	"github.com/viant/kernelsim/runtime/kernel"
	"github.com/viant/kernelsim/runtime/process"
	"github.com/viant/kernelsim/service/dao"
	"github.com/viant/kernelsim/service/event"
	"github.com/viant/kernelsim/service/meta"
	"github.com/viant/kernelsim/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option configures a Service.
type Option func(s *Service)

// WithConfig sets the configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithEventService sets the event service; it enables event publication.
func WithEventService(service *event.Service) Option {
	return func(s *Service) {
		s.eventService = service
	}
}

// WithListener registers kernel listeners notified after every operation.
func WithListener(listeners ...kernel.Listener) Option {
	return func(s *Service) {
		s.listeners = append(s.listeners, listeners...)
	}
}

// WithProcessDAO sets the process arena used by the runtime kernel.
func WithProcessDAO(dao dao.Service[int, process.Process]) Option {
	return func(s *Service) {
		s.processDAO = dao
	}
}

// WithMetaService sets the meta service
func WithMetaService(service *meta.Service) Option {
	return func(s *Service) {
		s.metaService = service
	}
}

// WithMetaBaseURL sets the base URL relative scenario locations resolve against.
func WithMetaBaseURL(url string) Option {
	return func(s *Service) {
		s.metaBaseURL = url
	}
}

// WithMetaFsOptions with meta file system options
func WithMetaFsOptions(options ...storage.Option) Option {
	return func(s *Service) {
		s.metaFsOptions = options
	}
}

// WithTracing configures the global OpenTelemetry provider with the stdout
// exporter. If outputFile is empty traces go to stdout. The first successful
// initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		if err := tracing.Init(serviceName, serviceVersion, outputFile); err != nil && s.err == nil {
			s.err = err
		}
	}
}

// WithTracingExporter traces this service only, using the supplied exporter.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		provider, err := tracing.NewProvider(serviceName, serviceVersion, exporter)
		if err != nil {
			if s.err == nil {
				s.err = err
			}
			return
		}
		s.tracer = tracing.NewTracer(provider)
	}
}
