package kernelsim_test

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "github.com/viant/afs/embed"
	"github.com/viant/kernelsim"
	"github.com/viant/kernelsim/runtime/kernel"
	"github.com/viant/kernelsim/runtime/process"
	pmemory "github.com/viant/kernelsim/service/dao/process/memory"
	"github.com/viant/kernelsim/service/event"
	"github.com/viant/kernelsim/service/scenario"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

//go:embed testdata/*
var embedFS embed.FS

func newService(t *testing.T, options ...kernelsim.Option) *kernelsim.Service {
	options = append([]kernelsim.Option{
		kernelsim.WithMetaFsOptions(&embedFS),
		kernelsim.WithMetaBaseURL("embed:///testdata"),
	}, options...)
	srv, err := kernelsim.New(options...)
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	return srv
}

func TestService(t *testing.T) {
	srv := newService(t)
	ctx := context.Background()

	aScenario, err := srv.LoadScenario(ctx, "priority.yaml")
	require.NoError(t, err)
	require.Len(t, aScenario.Steps, 9)

	results, err := srv.RunScenario(ctx, aScenario)
	require.NoError(t, err)
	require.Len(t, results, 9)
	for _, result := range results {
		assert.True(t, result.Passed(), "%v: %v", result.Step, result.Failures)
	}
	assert.Equal(t, kernel.CodeOperationNotPermitted, results[8].ErrorCode)

	// the scenario ran on its own kernel
	assert.Equal(t, 0, srv.Runtime().Kernel().Size())
	assert.Equal(t, process.IdlePID, srv.Runtime().Running().PID)
}

func TestNew(t *testing.T) {
	var testCases = []struct {
		description string
		config      *kernelsim.Config
		expectErr   bool
	}{
		{description: "defaults", config: kernelsim.DefaultConfig()},
		{
			description: "zero payload",
			config: func() *kernelsim.Config {
				config := kernelsim.DefaultConfig()
				config.Kernel.MaxPayload = 0
				return config
			}(),
			expectErr: true,
		},
		{
			description: "negative retries",
			config: func() *kernelsim.Config {
				config := kernelsim.DefaultConfig()
				config.Events.MaxRetries = -1
				return config
			}(),
			expectErr: true,
		},
		{
			description: "events enabled",
			config: func() *kernelsim.Config {
				config := kernelsim.DefaultConfig()
				config.Events.Enabled = true
				return config
			}(),
		},
	}
	for _, testCase := range testCases {
		srv, err := kernelsim.NewFromConfig(testCase.config)
		if testCase.expectErr {
			assert.Error(t, err, testCase.description)
			continue
		}
		require.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.config.Events.Enabled, srv.Events() != nil, testCase.description)
		srv.Close()
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("KERNELSIM_MAX_PROCESSES", "16")
	URL, err := filepath.Abs(filepath.Join("testdata", "config.yaml"))
	require.NoError(t, err)

	config, err := kernelsim.LoadConfig(context.Background(), "file://"+URL)
	require.NoError(t, err)
	assert.Equal(t, 8, config.Kernel.MaxPayload)
	assert.Equal(t, 16, config.Kernel.MaxProcesses)
	assert.True(t, config.Events.Enabled)
	assert.Equal(t, 3, config.Events.MaxRetries)
	assert.Equal(t, "kernelsim", config.Tracing.ServiceName)

	_, err = kernelsim.LoadConfig(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRuntime_Operations(t *testing.T) {
	srv := newService(t)
	runtime := srv.Runtime()
	ctx := context.Background()

	first, err := runtime.Create(ctx, process.PriorityHigh)
	require.NoError(t, err)
	second, err := runtime.Create(ctx, process.PriorityHigh)
	require.NoError(t, err)
	running, err := runtime.QuantumExpire(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.PID, running.PID)

	msg, err := runtime.Send(ctx, second.PID, "ping")
	require.NoError(t, err)
	assert.Equal(t, first.PID, msg.Sender)
	assert.Equal(t, second.PID, runtime.Running().PID)

	receipt, err := runtime.Receive(ctx)
	require.NoError(t, err)
	assert.True(t, receipt.Acknowledged)
	assert.Equal(t, "ping", receipt.Message.Payload)

	info, err := runtime.ProcInfo(ctx, first.PID)
	require.NoError(t, err)
	assert.Equal(t, process.StateReady, info.State)

	_, err = runtime.Send(ctx, second.PID+10, "lost")
	assert.True(t, errors.Is(err, kernel.ErrProcessNotFound))

	snapshot, err := runtime.Snapshot(ctx)
	require.NoError(t, err)
	assert.NoError(t, snapshot.Verify())
	assert.Equal(t, []int{first.PID}, snapshot.Ready[process.PriorityHigh])

	stats := runtime.Stats()
	assert.Equal(t, 2, stats.Created)
	assert.Equal(t, 1, stats.Sent)
	assert.Equal(t, 1, stats.Received)
	assert.Equal(t, 1, stats.Blocks)
	assert.Equal(t, 1, stats.Wakes)
}

func TestRuntime_Stats(t *testing.T) {
	srv := newService(t)
	runtime := srv.Runtime()
	ctx := context.Background()

	_, err := runtime.Create(ctx, process.PriorityLow)
	require.NoError(t, err)
	_, err = runtime.QuantumExpire(ctx)
	require.NoError(t, err)
	_, err = runtime.Exit(ctx)
	require.NoError(t, err)

	stats := runtime.Stats()
	assert.Equal(t, 1, stats.Created)
	assert.Equal(t, 1, stats.Exited)
	assert.Equal(t, 2, stats.Dispatches)
	assert.Equal(t, 2, stats.ContextSwitches)
	assert.False(t, stats.StartedAt.IsZero())
}

func TestRuntime_Tracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	srv := newService(t, kernelsim.WithTracingExporter("kernelsim", "test", exporter))
	runtime := srv.Runtime()
	ctx := context.Background()

	p, err := runtime.Create(ctx, process.PriorityNormal)
	require.NoError(t, err)
	_, err = runtime.Send(ctx, p.PID, "hello")
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "kernel.create", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assert.Contains(t, spans[0].Attributes, attribute.String("operation", "create"))
	assert.Contains(t, spans[0].Attributes, attribute.Int("running", process.IdlePID))

	assert.Equal(t, "kernel.send", spans[1].Name)
	assert.Equal(t, codes.Error, spans[1].Status.Code)
	assert.Contains(t, spans[1].Attributes, attribute.Int("pid", p.PID))
	assert.Contains(t, spans[1].Attributes, attribute.String("error.code", kernel.CodeOperationNotPermitted))
}

func TestService_Events(t *testing.T) {
	config := kernelsim.DefaultConfig()
	config.Events.Enabled = true
	srv, err := kernelsim.NewFromConfig(config)
	require.NoError(t, err)
	defer srv.Close()

	var mu sync.Mutex
	var transitions []event.Transition
	var deliveries []*event.Event[event.Delivery]
	require.NoError(t, event.SetListenerOf[event.Transition](srv.Events(), func(e *event.Event[event.Transition]) error {
		mu.Lock()
		defer mu.Unlock()
		transitions = append(transitions, e.Data)
		return nil
	}))
	require.NoError(t, event.SetListenerOf[event.Delivery](srv.Events(), func(e *event.Event[event.Delivery]) error {
		mu.Lock()
		defer mu.Unlock()
		deliveries = append(deliveries, e)
		return nil
	}))

	runtime := srv.Runtime()
	ctx := context.Background()
	sender, err := runtime.Create(ctx, process.PriorityHigh)
	require.NoError(t, err)
	receiver, err := runtime.Create(ctx, process.PriorityHigh)
	require.NoError(t, err)
	_, err = runtime.QuantumExpire(ctx)
	require.NoError(t, err)
	_, err = runtime.Send(ctx, receiver.PID, "hi")
	require.NoError(t, err)
	_, err = runtime.Receive(ctx)
	require.NoError(t, err)

	// created x2, quantum x2, send x2, receive x1
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(transitions) == 7 && len(deliveries) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	delivery := deliveries[0]
	assert.Equal(t, event.TypeDelivery, delivery.Context.EventType)
	assert.Equal(t, receiver.PID, delivery.Context.PID)
	assert.Equal(t, sender.PID, delivery.Data.Sender)
	assert.Equal(t, "hi", delivery.Data.Payload)
	assert.True(t, delivery.Data.Acknowledged)
}

func TestService_EventRetries(t *testing.T) {
	config := kernelsim.DefaultConfig()
	config.Events.Enabled = true
	config.Events.MaxRetries = 1
	srv, err := kernelsim.NewFromConfig(config)
	require.NoError(t, err)
	defer srv.Close()

	var mu sync.Mutex
	attempts := 0
	require.NoError(t, event.SetListenerOf[event.Delivery](srv.Events(), func(e *event.Event[event.Delivery]) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		return fmt.Errorf("delivery %v rejected", e.ID)
	}))

	runtime := srv.Runtime()
	ctx := context.Background()
	_, err = runtime.Create(ctx, process.PriorityHigh)
	require.NoError(t, err)
	receiver, err := runtime.Create(ctx, process.PriorityHigh)
	require.NoError(t, err)
	_, err = runtime.QuantumExpire(ctx)
	require.NoError(t, err)
	_, err = runtime.Send(ctx, receiver.PID, "hi")
	require.NoError(t, err)
	_, err = runtime.Receive(ctx)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return attempts == 2
	}, 2*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, attempts, "one delivery plus one retry")
}

func TestRuntime_RunScenario(t *testing.T) {
	intPtr := func(v int) *int { return &v }
	var testCases = []struct {
		description   string
		config        *kernel.Config
		steps         []*scenario.Step
		expectErr     error
		expectResults int
		expectFailed  []int
	}{
		{
			description: "all steps pass",
			steps: []*scenario.Step{
				{Op: kernel.OpCreate, Priority: 1, Expect: &scenario.Expect{PID: intPtr(0)}},
				{Op: kernel.OpQuantum, Expect: &scenario.Expect{Running: intPtr(0)}},
				{Op: kernel.OpSnapshot},
				{Op: kernel.OpList, States: []process.State{process.StateRunning}, Expect: &scenario.Expect{PIDs: []int{0}}},
			},
			expectResults: 4,
		},
		{
			description: "failed expectations continue",
			steps: []*scenario.Step{
				{Op: kernel.OpCreate, Priority: 1, Expect: &scenario.Expect{PID: intPtr(5)}},
				{Op: kernel.OpKill, PID: 7},
				{Op: kernel.OpKill, PID: 7, Expect: &scenario.Expect{Error: kernel.CodeProcessNotFound}},
				{Op: kernel.OpList, Expect: &scenario.Expect{PIDs: []int{}}},
			},
			expectErr:     kernelsim.ErrScenarioFailed,
			expectResults: 4,
			expectFailed:  []int{0, 1, 3},
		},
		{
			description: "allocation failure stops",
			config:      &kernel.Config{MaxPayload: 40, MaxProcesses: 1},
			steps: []*scenario.Step{
				{Op: kernel.OpCreate, Priority: 0},
				{Op: kernel.OpCreate, Priority: 0},
				{Op: kernel.OpQuantum},
			},
			expectErr:     kernel.ErrAllocationFailure,
			expectResults: 2,
			expectFailed:  []int{1},
		},
	}
	for _, testCase := range testCases {
		srv := newService(t)
		results, err := srv.RunScenario(context.Background(), &scenario.Scenario{
			Name:   testCase.description,
			Config: testCase.config,
			Steps:  testCase.steps,
		})
		if testCase.expectErr == nil {
			assert.NoError(t, err, testCase.description)
		} else {
			assert.True(t, errors.Is(err, testCase.expectErr), "%v: %v", testCase.description, err)
		}
		require.Len(t, results, testCase.expectResults, testCase.description)
		var failed []int
		for i, result := range results {
			if !result.Passed() {
				failed = append(failed, i)
			}
		}
		assert.Equal(t, testCase.expectFailed, failed, testCase.description)
	}
}

func TestRuntime_Apply(t *testing.T) {
	srv := newService(t)
	runtime := srv.Runtime()
	ctx := context.Background()

	_, err := runtime.Apply(ctx, &scenario.Step{Op: "reboot"})
	assert.Error(t, err)

	result, err := runtime.Apply(ctx, &scenario.Step{Op: kernel.OpCreate, Priority: 9})
	assert.True(t, errors.Is(err, kernel.ErrInvalidPriority))
	require.NotNil(t, result)
	assert.Equal(t, kernel.CodeInvalidPriority, result.ErrorCode)
	assert.Equal(t, process.IdlePID, result.Running)

	result, err = runtime.Apply(ctx, &scenario.Step{Op: kernel.OpCreate, Priority: 0})
	require.NoError(t, err)
	require.NotNil(t, result.Process)
	assert.Equal(t, 0, result.Process.PID)

	result, err = runtime.Apply(ctx, &scenario.Step{Op: kernel.OpProcInfo, PID: 0})
	require.NoError(t, err)
	assert.Equal(t, process.StateReady, result.Process.State)
}

func TestStdoutListener(t *testing.T) {
	srv := newService(t, kernelsim.WithListener(kernelsim.StdoutListener))
	_, err := srv.Runtime().Create(context.Background(), process.PriorityLow)
	assert.NoError(t, err)
}

func TestWithProcessDAO(t *testing.T) {
	arena := pmemory.New()
	srv := newService(t, kernelsim.WithProcessDAO(arena))
	ctx := context.Background()

	p, err := srv.Runtime().Create(ctx, process.PriorityNormal)
	require.NoError(t, err)
	stored, err := arena.Load(ctx, p.PID)
	require.NoError(t, err)
	assert.Equal(t, process.StateReady, stored.State)
}
