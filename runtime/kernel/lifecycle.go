package kernel

import (
	"context"
	"fmt"

	"github.com/viant/kernelsim/runtime/process"
)

// Create admits a new READY process with the supplied priority.
func (k *Kernel) Create(ctx context.Context, priority int) (*process.Process, error) {
	var result *process.Process
	err := k.apply(ctx, func() error {
		p, err := k.table.create(ctx, priority)
		if err != nil {
			return err
		}
		result, err = k.admit(ctx, p, OpCreate)
		return err
	})
	return result, err
}

// Fork creates a READY child of the running process with the same priority
// and an empty mailbox.
func (k *Kernel) Fork(ctx context.Context) (*process.Process, error) {
	var result *process.Process
	err := k.apply(ctx, func() error {
		parent := k.running
		if parent.IsIdle() {
			return fmt.Errorf("%w: cannot fork the idle process", ErrOperationNotPermitted)
		}
		child, err := k.table.create(ctx, parent.Priority)
		if err != nil {
			return err
		}
		child.ParentPID = parent.PID
		result, err = k.admit(ctx, child, OpFork)
		return err
	})
	return result, err
}

func (k *Kernel) admit(ctx context.Context, p *process.Process, op Operation) (*process.Process, error) {
	k.record(&Change{Kind: ChangeCreated, Operation: op, PID: p.PID, Priority: p.Priority, To: p.State})
	k.ready.enqueue(p)
	if k.config.PreemptIdle && k.running.IsIdle() {
		if err := k.yieldIdle(ctx, op); err != nil {
			return nil, err
		}
	}
	return p.Clone(), nil
}

// Exit terminates the running process and dispatches the next one. It
// returns the terminated process.
func (k *Kernel) Exit(ctx context.Context) (*process.Process, error) {
	var result *process.Process
	err := k.apply(ctx, func() error {
		var err error
		result, err = k.exitRunning(ctx, OpExit)
		return err
	})
	return result, err
}

func (k *Kernel) exitRunning(ctx context.Context, op Operation) (*process.Process, error) {
	victim := k.running
	if victim.IsIdle() {
		return nil, fmt.Errorf("%w: the idle process cannot exit", ErrOperationNotPermitted)
	}
	if err := k.terminate(ctx, victim, op); err != nil {
		return nil, err
	}
	if err := k.dispatch(ctx, op); err != nil {
		return nil, err
	}
	return victim.Clone(), nil
}

// Kill terminates the process with the supplied PID. Killing the running
// process behaves as Exit. A blocked victim is removed from its blocked queue
// without waking any counterpart. It returns the terminated process.
func (k *Kernel) Kill(ctx context.Context, pid int) (*process.Process, error) {
	var result *process.Process
	err := k.apply(ctx, func() error {
		if pid == process.IdlePID {
			return fmt.Errorf("%w: %w: the idle process cannot be killed", ErrOperationNotPermitted, ErrProcessNotFound)
		}
		if pid == k.running.PID {
			var err error
			result, err = k.exitRunning(ctx, OpKill)
			return err
		}
		victim, err := k.table.lookup(ctx, pid)
		if err != nil {
			return err
		}
		switch victim.State {
		case process.StateReady:
			k.ready.remove(victim)
		case process.StateBlockedSender:
			k.blockedSenders.Remove(victim.PID)
		case process.StateBlockedReceiver:
			k.blockedReceivers.Remove(victim.PID)
		}
		if err = k.terminate(ctx, victim, OpKill); err != nil {
			return err
		}
		result = victim.Clone()
		return nil
	})
	return result, err
}

// terminate removes p from the table and discards its mailbox. Queue
// membership is the caller's concern.
func (k *Kernel) terminate(ctx context.Context, p *process.Process, op Operation) error {
	if err := k.table.remove(ctx, p.PID); err != nil {
		return err
	}
	k.record(&Change{Kind: ChangeTerminated, Operation: op, PID: p.PID, Priority: p.Priority, From: p.State})
	p.DiscardMailbox()
	p.Awaiting = ""
	return nil
}
