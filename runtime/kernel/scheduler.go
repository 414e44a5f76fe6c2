package kernel

import (
	"context"

	"github.com/viant/kernelsim/runtime/process"
)

// dispatch gives the CPU to the oldest process of the highest non-empty ready
// level, or to the idle process when every level is empty. The previous
// running process must already have left RUNNING.
func (k *Kernel) dispatch(ctx context.Context, op Operation) error {
	next := k.idle
	if pid, ok := k.ready.dequeueHighest(); ok {
		p, err := k.table.lookup(ctx, pid)
		if err != nil {
			return err
		}
		next = p
	}
	k.setState(next, process.StateRunning, op)
	k.running = next
	return nil
}

// makeReady enqueues p at the tail of its priority level.
func (k *Kernel) makeReady(ctx context.Context, p *process.Process, op Operation) error {
	k.setState(p, process.StateReady, op)
	k.ready.enqueue(p)
	if k.config.PreemptIdle && k.running.IsIdle() {
		return k.yieldIdle(ctx, op)
	}
	return nil
}

// yieldIdle hands the CPU from the idle process to the next ready process.
func (k *Kernel) yieldIdle(ctx context.Context, op Operation) error {
	if k.ready.len() == 0 {
		return nil
	}
	k.setState(k.idle, process.StateReady, op)
	return k.dispatch(ctx, op)
}

// QuantumExpire preempts the running process: it goes to the tail of its
// ready level and the dispatcher picks the next process. When the idle
// process is running it only yields to a ready process. It returns the
// process running afterwards.
func (k *Kernel) QuantumExpire(ctx context.Context) (*process.Process, error) {
	var result *process.Process
	err := k.apply(ctx, func() error {
		if k.running.IsIdle() {
			if err := k.yieldIdle(ctx, OpQuantum); err != nil {
				return err
			}
			result = k.running.Clone()
			return nil
		}
		preempted := k.running
		k.setState(preempted, process.StateReady, OpQuantum)
		k.ready.enqueue(preempted)
		if err := k.dispatch(ctx, OpQuantum); err != nil {
			return err
		}
		result = k.running.Clone()
		return nil
	})
	return result, err
}
