package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viant/kernelsim/internal/fifo"
	"github.com/viant/kernelsim/internal/idgen"
	"github.com/viant/kernelsim/service/messaging"
)

// Config for memory queue implementation
type Config struct {
	MaxRetries int
	RetryDelay time.Duration
	DeadLetter bool
}

// DefaultConfig returns a standard configuration for memory queue
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		RetryDelay: 100 * time.Millisecond,
		DeadLetter: true,
	}
}

// Message implements messaging.Message for the in-memory queue
type Message[T any] struct {
	id         string
	payload    T
	queue      *Queue[T]
	retryCount int
	mu         sync.Mutex
	processed  bool
	createdAt  time.Time
}

// ID returns the message identifier, stable across retries.
func (m *Message[T]) ID() string {
	return m.id
}

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.payload
}

// Ack acknowledges the message as processed successfully
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message %v already processed", m.id)
	}
	m.processed = true
	return nil
}

// Nack indicates a failure in processing the message. The message is
// re-queued after RetryDelay until MaxRetries is exceeded.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message %v already processed", m.id)
	}
	m.processed = true
	m.retryCount++

	if m.retryCount <= m.queue.config.MaxRetries {
		retry := &Message[T]{
			id:         m.id,
			payload:    m.payload,
			queue:      m.queue,
			retryCount: m.retryCount,
			createdAt:  time.Now(),
		}
		m.queue.pending.Add(1)
		time.AfterFunc(m.queue.config.RetryDelay, func() {
			m.queue.pending.Add(-1)
			m.queue.push(retry)
		})
		return nil
	}
	if m.queue.config.DeadLetter {
		m.queue.mu.Lock()
		m.queue.dlq = append(m.queue.dlq, m)
		m.queue.mu.Unlock()
	}
	return nil
}

// Queue implements an unbounded in-memory messaging.Queue; Publish never
// blocks.
type Queue[T any] struct {
	mu       sync.Mutex
	messages fifo.Queue[*Message[T]]
	dlq      []*Message[T]
	signal   chan struct{}
	pending  atomic.Int64
	config   Config
}

// NewQueue creates a new in-memory queue
func NewQueue[T any](config Config) *Queue[T] {
	return &Queue[T]{
		signal: make(chan struct{}, 1),
		config: config,
	}
}

// Publish adds a new item to the queue
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("payload was nil")
	}
	q.push(&Message[T]{
		id:        idgen.WithPrefix("queue"),
		payload:   *t,
		queue:     q,
		createdAt: time.Now(),
	})
	return nil
}

func (q *Queue[T]) push(msg *Message[T]) {
	q.mu.Lock()
	q.messages.Push(msg)
	q.mu.Unlock()
	q.notify()
}

func (q *Queue[T]) notify() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Consume retrieves the oldest item, waiting until one is published or ctx
// is done.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	for {
		q.mu.Lock()
		msg, ok := q.messages.Pop()
		remaining := q.messages.Len()
		q.mu.Unlock()
		if ok {
			if remaining > 0 {
				q.notify()
			}
			return msg, nil
		}
		select {
		case <-q.signal:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Size returns the current number of messages in the queue
func (q *Queue[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.messages.Len()
}

// Retrying returns the number of nacked messages waiting for their retry delay.
func (q *Queue[T]) Retrying() int {
	return int(q.pending.Load())
}

// DLQSize returns the number of messages in the dead letter queue
func (q *Queue[T]) DLQSize() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.dlq)
}

// ensure Queue implements messaging.Queue interface
var _ messaging.Queue[any] = (*Queue[any])(nil)
