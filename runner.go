package kernelsim

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/kernelsim/runtime/kernel"
	"github.com/viant/kernelsim/runtime/process"
	"github.com/viant/kernelsim/service/scenario"
	"github.com/viant/kernelsim/stats"
)

// ErrScenarioFailed is returned when a step does not meet its expectation.
var ErrScenarioFailed = errors.New("scenario failed")

// StepResult is the outcome of one applied step.
type StepResult struct {
	Step *scenario.Step `json:"step"`
	// Process is the created, forked, terminated or inspected process, or the
	// process running after a quantum.
	Process  *process.Process `json:"process,omitempty"`
	Message  *process.Message `json:"message,omitempty"`
	Receipt  *kernel.Receipt  `json:"receipt,omitempty"`
	Snapshot *kernel.Snapshot `json:"snapshot,omitempty"`
	// Processes are the processes a list step selected.
	Processes []*process.Process `json:"processes,omitempty"`
	Running   int                `json:"running"`
	Error     error              `json:"-"`
	// ErrorCode is the kernel error code of Error.
	ErrorCode string   `json:"errorCode,omitempty"`
	Failures  []string `json:"failures,omitempty"`
	// Stats counts what the step alone changed.
	Stats *stats.Stats `json:"stats,omitempty"`
}

// Passed reports whether the step met its expectation.
func (r *StepResult) Passed() bool {
	return len(r.Failures) == 0
}

// Apply runs one step. Kernel errors are both recorded on the result and
// returned.
func (r *Runtime) Apply(ctx context.Context, step *scenario.Step) (*StepResult, error) {
	if err := step.Validate(); err != nil {
		return nil, err
	}
	result := &StepResult{Step: step}
	ctx, result.Stats = stats.WithNewTracker(ctx, nil)
	var err error
	switch step.Op {
	case kernel.OpCreate:
		result.Process, err = r.Create(ctx, step.Priority)
	case kernel.OpFork:
		result.Process, err = r.Fork(ctx)
	case kernel.OpQuantum:
		result.Process, err = r.QuantumExpire(ctx)
	case kernel.OpExit:
		result.Process, err = r.Exit(ctx)
	case kernel.OpKill:
		result.Process, err = r.Kill(ctx, step.PID)
	case kernel.OpSend:
		result.Message, err = r.Send(ctx, step.PID, step.Payload)
	case kernel.OpReceive:
		result.Receipt, err = r.Receive(ctx)
	case kernel.OpSnapshot:
		result.Snapshot, err = r.Snapshot(ctx)
	case kernel.OpProcInfo:
		result.Process, err = r.ProcInfo(ctx, step.PID)
	case kernel.OpList:
		result.Processes, err = r.List(ctx, step.States...)
	}
	result.Error = err
	result.ErrorCode = kernel.ErrorCode(err)
	result.Running = r.kernel.Running().PID
	return result, err
}

// RunScenario applies every step in order and checks its expectation. It
// stops at an allocation failure; other failures are collected and reported
// as ErrScenarioFailed.
func (r *Runtime) RunScenario(ctx context.Context, aScenario *scenario.Scenario) ([]*StepResult, error) {
	var results []*StepResult
	failed := 0
	for i, step := range aScenario.Steps {
		result, err := r.Apply(ctx, step)
		if result == nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		results = append(results, result)
		if result.Failures, err = r.check(ctx, step.Expect, result); err != nil {
			return results, err
		}
		if !result.Passed() {
			failed++
		}
		if errors.Is(result.Error, kernel.ErrAllocationFailure) {
			return results, fmt.Errorf("step %d: %w", i+1, result.Error)
		}
	}
	if failed > 0 {
		return results, fmt.Errorf("%w: %v: %d of %d steps", ErrScenarioFailed, aScenario.Name, failed, len(aScenario.Steps))
	}
	return results, nil
}

func (r *Runtime) check(ctx context.Context, expect *scenario.Expect, result *StepResult) ([]string, error) {
	var failures []string
	failf := func(format string, args ...interface{}) {
		failures = append(failures, fmt.Sprintf(format, args...))
	}
	if expect == nil || expect.Error == "" {
		if result.Error != nil {
			failf("unexpected error: %v", result.Error)
		}
	} else if expected := kernel.ErrorOf(expect.Error); !errors.Is(result.Error, expected) {
		failf("expected error %v, but had: %v", expect.Error, result.Error)
	}
	if expect == nil {
		return failures, nil
	}
	if expect.Running != nil && *expect.Running != result.Running {
		failf("expected running %d, but had %d", *expect.Running, result.Running)
	}
	if expect.PID != nil {
		switch {
		case result.Process == nil:
			failf("expected pid %d, but had no process", *expect.PID)
		case result.Process.PID != *expect.PID:
			failf("expected pid %d, but had %d", *expect.PID, result.Process.PID)
		}
	}
	if expect.Payload != nil || expect.Sender != nil {
		var msg *process.Message
		if result.Receipt != nil {
			msg = result.Receipt.Message
		} else {
			msg = result.Message
		}
		switch {
		case msg == nil:
			failf("expected a message, but had none")
		default:
			if expect.Payload != nil && msg.Payload != *expect.Payload {
				failf("expected payload %q, but had %q", *expect.Payload, msg.Payload)
			}
			if expect.Sender != nil && msg.Sender != *expect.Sender {
				failf("expected sender %d, but had %d", *expect.Sender, msg.Sender)
			}
		}
	}
	if expect.PIDs != nil {
		pids := make([]int, 0, len(result.Processes))
		for _, p := range result.Processes {
			pids = append(pids, p.PID)
		}
		if !equalPIDs(expect.PIDs, pids) {
			failf("expected pids %v, but had %v", expect.PIDs, pids)
		}
	}
	if expect.Blocked != nil {
		blocked := result.Receipt != nil && result.Receipt.Blocked
		if blocked != *expect.Blocked {
			failf("expected blocked %v, but had %v", *expect.Blocked, blocked)
		}
	}
	if len(expect.State) > 0 {
		snapshot, err := r.kernel.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		for pid, state := range expect.State {
			p := snapshot.Process(pid)
			switch {
			case p == nil:
				failf("expected pid %d to be %v, but it does not exist", pid, state)
			case p.State != state:
				failf("expected pid %d to be %v, but had %v", pid, state, p.State)
			}
		}
	}
	return failures, nil
}

func equalPIDs(expect, actual []int) bool {
	if len(expect) != len(actual) {
		return false
	}
	for i := range expect {
		if expect[i] != actual[i] {
			return false
		}
	}
	return true
}
