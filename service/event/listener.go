package event

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
)

// Handler processes one event. A returned error nacks the event so that the
// queue redelivers it until its retries are exhausted.
type Handler[T any] func(*Event[T]) error

// Listener consumes events of one type on its own goroutine until stopped.
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   Handler[T]
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	started   atomic.Bool
	stopOnce  sync.Once
}

func NewListener[T any](publisher *Publisher[T], handler Handler[T]) *Listener[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Stop cancels the consumer and waits for the in-flight handler to return.
func (l *Listener[T]) Stop() {
	l.stopOnce.Do(func() {
		l.cancel()
		if l.started.Load() {
			<-l.done
			l.publisher.consumers.Add(-1)
		}
	})
}

// Start registers the listener as a consumer and drains the queue.
func (l *Listener[T]) Start() {
	if l.ctx.Err() != nil || !l.started.CompareAndSwap(false, true) {
		return
	}
	l.publisher.consumers.Add(1)
	go func() {
		defer close(l.done)
		for {
			msg, err := l.publisher.next(l.ctx)
			if err != nil {
				if l.ctx.Err() != nil {
					return
				}
				log.Printf("Error consuming event: %v", err)
				continue
			}
			if msg == nil {
				continue
			}
			if err = l.handle(msg.T()); err != nil {
				log.Printf("event %v failed: %v", msg.T().ID, err)
				err = msg.Nack(err)
			} else {
				err = msg.Ack()
			}
			if err != nil {
				log.Printf("Error acknowledging event: %v", err)
			}
		}
	}()
}

func (l *Listener[T]) handle(event *Event[T]) error {
	if event == nil {
		return nil
	}
	return l.handler(event)
}
