package event

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/viant/kernelsim/service/messaging"
	"github.com/viant/kernelsim/service/messaging/memory"
)

// Service routes events through one queue per payload type. Every typed event
// is also mirrored to the untyped queue while a SetListener handler runs. A
// queue only retains events while a listener drains it.
type Service struct {
	publisher         *Publisher[any]
	listener          *Listener[any]
	typedPublishers   map[reflect.Type]any
	typedListener     map[reflect.Type]stopper
	mux               *sync.RWMutex
	queueVendor       messaging.Vendor
	memNewQueueConfig func(name string) memory.Config
}

type stopper interface{ Stop() }

// SetListener consumes every event regardless of its payload type.
func (s *Service) SetListener(handler Handler[any]) {
	s.mux.Lock()
	previous := s.listener
	listener := NewListener[any](s.publisher, handler)
	s.listener = listener
	s.mux.Unlock()
	listener.Start()
	if previous != nil {
		previous.Stop()
	}
}

// Close stops every listener.
func (s *Service) Close() {
	s.mux.Lock()
	var listeners []stopper
	if s.listener != nil {
		listeners = append(listeners, s.listener)
		s.listener = nil
	}
	for key, listener := range s.typedListener {
		listeners = append(listeners, listener)
		delete(s.typedListener, key)
	}
	s.mux.Unlock()
	for _, listener := range listeners {
		listener.Stop()
	}
}

func New(queueVendor messaging.Vendor, opts ...Option) (*Service, error) {
	ret := &Service{
		queueVendor:     queueVendor,
		typedPublishers: make(map[reflect.Type]any),
		typedListener:   make(map[reflect.Type]stopper),
		mux:             &sync.RWMutex{},
	}
	for _, opt := range opts {
		opt(ret)
	}

	switch queueVendor {
	case messaging.VendorMemory:
		if ret.memNewQueueConfig == nil {
			ret.memNewQueueConfig = func(string) memory.Config { return memory.DefaultConfig() }
		}
	default:
		return nil, fmt.Errorf("unsupported queue vendor: %s", queueVendor)
	}

	queue, err := QueueOf[Event[any]](ret, "any")
	if err != nil {
		return nil, err
	}
	ret.publisher = NewPublisher[any](queue)
	return ret, nil
}

func QueueOf[T any](s *Service, name string) (messaging.Queue[T], error) {
	switch s.queueVendor {
	case messaging.VendorMemory:
		return memory.NewQueue[T](s.memNewQueueConfig(name)), nil
	}
	return nil, fmt.Errorf("unsupported queue vendor: %s", s.queueVendor)
}

func keyOf[T any]() reflect.Type {
	rType := reflect.TypeOf((*T)(nil)).Elem()
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	return rType
}

// SetListenerOf consumes events with payload type T, replacing any previous
// listener of that type.
func SetListenerOf[T any](s *Service, handler Handler[T]) error {
	publisher, err := PublisherOf[T](s)
	if err != nil {
		return err
	}
	key := keyOf[T]()
	listener := NewListener[T](publisher, handler)
	s.mux.Lock()
	previous, ok := s.typedListener[key]
	s.typedListener[key] = listener
	s.mux.Unlock()
	listener.Start()
	if ok {
		previous.Stop()
	}
	return nil
}

// PublisherOf returns a publisher for the provided type
func PublisherOf[T any](s *Service) (*Publisher[T], error) {
	key := keyOf[T]()
	s.mux.RLock()
	ret, ok := s.typedPublishers[key]
	s.mux.RUnlock()
	if ok {
		return ret.(*Publisher[T]), nil
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if ret, ok = s.typedPublishers[key]; ok {
		return ret.(*Publisher[T]), nil
	}
	queue, err := QueueOf[Event[T]](s, key.String())
	if err != nil {
		return nil, err
	}
	publisher := NewPublisher[T](queue)
	publisher.mirrorTo(s.publisher)
	s.typedPublishers[key] = publisher
	return publisher, nil
}
