package event

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/viant/kernelsim/internal/clock"
	"github.com/viant/kernelsim/service/messaging"
)

// Publisher queues events of one payload type. Events are queued only while
// a listener consumes them; otherwise they are dropped.
type Publisher[T any] struct {
	queue     messaging.Queue[Event[T]]
	consumers atomic.Int32
	mu        sync.RWMutex
	mirror    *Publisher[any]
}

func NewPublisher[T any](queue messaging.Queue[Event[T]]) *Publisher[T] {
	return &Publisher[T]{
		queue: queue,
	}
}

// mirrorTo copies every published event to publisher as Event[any].
func (p *Publisher[T]) mirrorTo(publisher *Publisher[any]) {
	p.mu.Lock()
	p.mirror = publisher
	p.mu.Unlock()
}

// HasConsumer reports whether a started listener drains the queue.
func (p *Publisher[T]) HasConsumer() bool {
	return p.consumers.Load() > 0
}

func (p *Publisher[T]) Publish(ctx context.Context, event *Event[T]) error {
	event.CreatedAt = clock.Now()
	p.mu.RLock()
	mirror := p.mirror
	p.mu.RUnlock()
	if mirror != nil && mirror.HasConsumer() {
		if err := mirror.queue.Publish(ctx, &Event[any]{
			ID:        event.ID,
			Context:   event.Context,
			CreatedAt: event.CreatedAt,
			Metadata:  event.Metadata,
			Data:      event.Data,
		}); err != nil {
			return err
		}
	}
	if !p.HasConsumer() {
		return nil
	}
	return p.queue.Publish(ctx, event)
}

// next waits for the oldest queued event; the caller acks or nacks it.
func (p *Publisher[T]) next(ctx context.Context) (messaging.Message[Event[T]], error) {
	return p.queue.Consume(ctx)
}
