package kernelsim

import (
	"context"
	"log"

	"github.com/viant/kernelsim/runtime/kernel"
	"github.com/viant/kernelsim/runtime/process"
	"github.com/viant/kernelsim/service/event"
	"github.com/viant/kernelsim/service/scenario"
	"github.com/viant/kernelsim/stats"
	"github.com/viant/kernelsim/tracing"
)

// noPID marks operations without a target process.
const noPID = -2

// Runtime runs kernel operations, each in its own span, keeping statistics
// and publishing events for every change.
type Runtime struct {
	kernel      *kernel.Kernel
	stats       *stats.Stats
	tracer      *tracing.Tracer
	scenarios   *scenario.Service
	events      *event.Service
	transitions *event.Publisher[event.Transition]
	deliveries  *event.Publisher[event.Delivery]
}

// Kernel returns the underlying kernel
func (r *Runtime) Kernel() *kernel.Kernel {
	return r.kernel
}

// Stats returns a copy of the scheduling counters
func (r *Runtime) Stats() stats.Stats {
	return r.stats.Snapshot()
}

// Events returns the event service, or nil when events are disabled.
func (r *Runtime) Events() *event.Service {
	return r.events
}

// Running returns a copy of the running process
func (r *Runtime) Running() *process.Process {
	return r.kernel.Running()
}

// Create admits a READY process with the supplied priority.
func (r *Runtime) Create(ctx context.Context, priority int) (p *process.Process, err error) {
	err = r.run(ctx, kernel.OpCreate, noPID, func(ctx context.Context) error {
		p, err = r.kernel.Create(ctx, priority)
		return err
	})
	return p, err
}

// Fork creates a child of the running process.
func (r *Runtime) Fork(ctx context.Context) (p *process.Process, err error) {
	err = r.run(ctx, kernel.OpFork, noPID, func(ctx context.Context) error {
		p, err = r.kernel.Fork(ctx)
		return err
	})
	return p, err
}

// QuantumExpire preempts the running process and returns the next one.
func (r *Runtime) QuantumExpire(ctx context.Context) (p *process.Process, err error) {
	err = r.run(ctx, kernel.OpQuantum, noPID, func(ctx context.Context) error {
		p, err = r.kernel.QuantumExpire(ctx)
		return err
	})
	return p, err
}

// Exit terminates the running process.
func (r *Runtime) Exit(ctx context.Context) (p *process.Process, err error) {
	err = r.run(ctx, kernel.OpExit, noPID, func(ctx context.Context) error {
		p, err = r.kernel.Exit(ctx)
		return err
	})
	return p, err
}

// Kill terminates the process with the supplied PID.
func (r *Runtime) Kill(ctx context.Context, pid int) (p *process.Process, err error) {
	err = r.run(ctx, kernel.OpKill, pid, func(ctx context.Context) error {
		p, err = r.kernel.Kill(ctx, pid)
		return err
	})
	return p, err
}

// Send sends payload from the running process to pid.
func (r *Runtime) Send(ctx context.Context, pid int, payload string) (msg *process.Message, err error) {
	err = r.run(ctx, kernel.OpSend, pid, func(ctx context.Context) error {
		msg, err = r.kernel.Send(ctx, pid, payload)
		return err
	})
	return msg, err
}

// Receive consumes the next message of the running process or blocks it.
func (r *Runtime) Receive(ctx context.Context) (receipt *kernel.Receipt, err error) {
	err = r.run(ctx, kernel.OpReceive, noPID, func(ctx context.Context) error {
		receipt, err = r.kernel.Receive(ctx)
		return err
	})
	return receipt, err
}

// Snapshot returns every queue and the process table.
func (r *Runtime) Snapshot(ctx context.Context) (snapshot *kernel.Snapshot, err error) {
	err = r.run(ctx, kernel.OpSnapshot, noPID, func(ctx context.Context) error {
		snapshot, err = r.kernel.Snapshot(ctx)
		return err
	})
	return snapshot, err
}

// ProcInfo returns the process with the supplied PID.
func (r *Runtime) ProcInfo(ctx context.Context, pid int) (p *process.Process, err error) {
	err = r.run(ctx, kernel.OpProcInfo, pid, func(ctx context.Context) error {
		p, err = r.kernel.ProcInfo(ctx, pid)
		return err
	})
	return p, err
}

// List returns the live processes in any of states.
func (r *Runtime) List(ctx context.Context, states ...process.State) (processes []*process.Process, err error) {
	err = r.run(ctx, kernel.OpList, noPID, func(ctx context.Context) error {
		processes, err = r.kernel.List(ctx, states...)
		return err
	})
	return processes, err
}

// LoadScenario loads a scenario
func (r *Runtime) LoadScenario(ctx context.Context, URL string) (*scenario.Scenario, error) {
	return r.scenarios.Load(ctx, URL)
}

func (r *Runtime) run(ctx context.Context, op kernel.Operation, pid int, fn func(ctx context.Context) error) error {
	ctx, span := r.tracer.Start(ctx, "kernel."+string(op), "INTERNAL")
	span.WithAttributes(map[string]string{"operation": string(op)})
	if pid != noPID {
		span.WithInt("pid", pid)
	}
	err := fn(ctx)
	if err != nil {
		span.WithAttributes(map[string]string{"error.code": kernel.ErrorCode(err)})
	}
	span.WithInt("running", r.kernel.Running().PID)
	tracing.EndSpan(span, err)
	return err
}

// publish turns kernel changes into transition and delivery events.
func (r *Runtime) publish(ctx context.Context, changes []*kernel.Change) {
	if r.transitions == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for i, change := range changes {
		eventContext := &event.Context{PID: change.PID, Operation: string(change.Operation)}
		var err error
		switch change.Kind {
		case kernel.ChangeCreated, kernel.ChangeState, kernel.ChangeTerminated:
			eventContext.EventType = event.TypeTransition
			err = r.transitions.Publish(ctx, event.NewEvent(eventContext, event.Transition{
				PID:      change.PID,
				Priority: change.Priority,
				From:     change.From,
				To:       change.To,
			}))
		case kernel.ChangeReceived:
			eventContext.EventType = event.TypeDelivery
			msg := change.Message
			err = r.deliveries.Publish(ctx, event.NewEvent(eventContext, event.Delivery{
				MessageID:    msg.ID,
				Sender:       msg.Sender,
				Receiver:     msg.Receiver,
				Payload:      msg.Payload,
				Acknowledged: acknowledged(msg.Sender, changes[i+1:]),
			}))
		}
		if err != nil {
			log.Printf("failed to publish %v event for pid %d: %v", change.Kind, change.PID, err)
		}
	}
}

func acknowledged(sender int, changes []*kernel.Change) bool {
	for _, change := range changes {
		if change.Kind == kernel.ChangeState && change.PID == sender && change.From == process.StateBlockedSender {
			return true
		}
	}
	return false
}
