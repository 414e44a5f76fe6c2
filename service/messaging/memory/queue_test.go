package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/kernelsim/internal/idgen"
)

type TestPayload struct {
	ID      string
	Message string
	Count   int
}

func TestQueue(t *testing.T) {
	config := DefaultConfig()
	config.RetryDelay = 10 * time.Millisecond
	queue := NewQueue[TestPayload](config)

	ctx := context.Background()
	payload := TestPayload{
		ID:      "test-1",
		Message: "Hello, world!",
		Count:   1,
	}

	err := queue.Publish(ctx, &payload)
	assert.NoError(t, err)
	assert.Equal(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	assert.NoError(t, err)
	require.NotNil(t, message)
	assert.Equal(t, 0, queue.Size())

	msgData := message.T()
	assert.Equal(t, payload, *msgData)

	err = message.Ack()
	assert.NoError(t, err)
	err = message.Ack()
	assert.Error(t, err)
	assert.Error(t, message.Nack(nil))
}

func TestQueueMessageID(t *testing.T) {
	prev := idgen.NewFunc
	idgen.NewFunc = func() string { return "fixed" }
	defer func() { idgen.NewFunc = prev }()

	queue := NewQueue[TestPayload](DefaultConfig())
	ctx := context.Background()
	require.NoError(t, queue.Publish(ctx, &TestPayload{ID: "a"}))
	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "queue-fixed", message.(*Message[TestPayload]).ID())
}

func TestQueueUnbounded(t *testing.T) {
	queue := NewQueue[TestPayload](DefaultConfig())
	ctx := context.Background()
	for i := 0; i < 5000; i++ {
		require.NoError(t, queue.Publish(ctx, &TestPayload{Count: i}))
	}
	assert.Equal(t, 5000, queue.Size())
	for i := 0; i < 5000; i++ {
		message, err := queue.Consume(ctx)
		require.NoError(t, err)
		assert.Equal(t, i, message.T().Count)
	}
}

func TestQueueRetries(t *testing.T) {
	config := DefaultConfig()
	config.MaxRetries = 2
	config.RetryDelay = 10 * time.Millisecond
	queue := NewQueue[TestPayload](config)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	payload := TestPayload{
		ID:      "retry-test",
		Message: "Test retries",
		Count:   1,
	}
	require.NoError(t, queue.Publish(ctx, &payload))

	var ids []string
	for attempt := 0; attempt < 3; attempt++ {
		message, err := queue.Consume(ctx)
		require.NoError(t, err, attempt)
		ids = append(ids, message.(*Message[TestPayload]).ID())
		assert.Equal(t, payload, *message.T())
		assert.NoError(t, message.Nack(fmt.Errorf("attempt %d failed", attempt)))
	}
	assert.Equal(t, ids[0], ids[1])
	assert.Equal(t, ids[0], ids[2])

	assert.Equal(t, 0, queue.Size())
	assert.Equal(t, 0, queue.Retrying())
	assert.Equal(t, 1, queue.DLQSize())
}

func TestQueueConcurrency(t *testing.T) {
	queue := NewQueue[TestPayload](DefaultConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	concurrency := 10
	messagesPerProducer := 10

	var wg sync.WaitGroup
	wg.Add(concurrency * 2)

	var consumedCount int
	var consumedMu sync.Mutex

	for i := 0; i < concurrency; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < messagesPerProducer; j++ {
				message, err := queue.Consume(ctx)
				if err != nil {
					t.Errorf("Error consuming: %v", err)
					return
				}
				assert.NoError(t, message.Ack())
				consumedMu.Lock()
				consumedCount++
				consumedMu.Unlock()
			}
		}()
	}

	for i := 0; i < concurrency; i++ {
		go func(producerID int) {
			defer wg.Done()
			for j := 0; j < messagesPerProducer; j++ {
				payload := TestPayload{
					ID:      fmt.Sprintf("p%d-m%d", producerID, j),
					Message: fmt.Sprintf("Message %d from producer %d", j, producerID),
					Count:   j,
				}
				if err := queue.Publish(ctx, &payload); err != nil {
					t.Errorf("Error publishing: %v", err)
				}
			}
		}(i)
	}

	wg.Wait()
	assert.Equal(t, concurrency*messagesPerProducer, consumedCount)
	assert.Equal(t, 0, queue.Size())
}

func TestQueueContextCancellation(t *testing.T) {
	queue := NewQueue[TestPayload](DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	payload := TestPayload{ID: "test"}
	err := queue.Publish(ctx, &payload)
	assert.Error(t, err)

	ctxWithTimeout, cancelTimeout := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancelTimeout()
	_, err = queue.Consume(ctxWithTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	emptyCtx := context.Background()
	err = queue.Publish(emptyCtx, &payload)
	assert.NoError(t, err)

	message, err := queue.Consume(emptyCtx)
	assert.NoError(t, err)
	assert.NotNil(t, message)
}
