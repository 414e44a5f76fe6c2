// Package kernel implements the simulated kernel core: the process table,
// the three-level ready queues, the dispatcher and the send/receive
// rendezvous. A Kernel processes one operation at a time; all state lives in
// the Kernel value so independent simulations can run side by side.
package kernel

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/kernelsim/internal/fifo"
	"github.com/viant/kernelsim/runtime/process"
	pmemory "github.com/viant/kernelsim/service/dao/process/memory"
)

// Kernel holds the process table and every scheduling queue.
type Kernel struct {
	config           Config
	mu               sync.Mutex
	table            table
	ready            readyQueues
	blockedSenders   fifo.Queue[int]
	blockedReceivers fifo.Queue[int]
	idle             *process.Process
	running          *process.Process
	listeners        []Listener
	changes          []*Change
}

// New creates a kernel with only the idle process running.
func New(options ...Option) (*Kernel, error) {
	k := &Kernel{config: DefaultConfig()}
	for _, opt := range options {
		opt(k)
	}
	if err := k.config.Validate(); err != nil {
		return nil, err
	}
	if k.table.store == nil {
		k.table.store = pmemory.New()
	}
	k.table.capacity = k.config.MaxProcesses
	k.idle = process.NewIdle()
	k.running = k.idle
	return k, nil
}

// Config returns the kernel configuration.
func (k *Kernel) Config() Config {
	return k.config
}

// Running returns a copy of the running process.
func (k *Kernel) Running() *process.Process {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.running.Clone()
}

// ProcInfo returns a copy of the process with the supplied PID; IdlePID
// returns the idle process.
func (k *Kernel) ProcInfo(ctx context.Context, pid int) (*process.Process, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if pid == process.IdlePID {
		return k.idle.Clone(), nil
	}
	p, err := k.table.lookup(ctx, pid)
	if err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// Size returns the number of live user processes.
func (k *Kernel) Size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.table.size
}

// apply runs fn under the kernel lock and notifies listeners afterwards.
func (k *Kernel) apply(ctx context.Context, fn func() error) error {
	k.mu.Lock()
	err := fn()
	changes := k.changes
	k.changes = nil
	k.mu.Unlock()
	if len(changes) > 0 {
		for _, l := range k.listeners {
			l(ctx, changes)
		}
	}
	return err
}

func (k *Kernel) record(change *Change) {
	k.changes = append(k.changes, change)
}

// setState moves p to state, recording the change.
func (k *Kernel) setState(p *process.Process, state process.State, op Operation) {
	if p.State == state {
		return
	}
	if !process.CanTransition(p.State, state) {
		panic(fmt.Sprintf("kernel: invalid transition %v -> %v for pid %d", p.State, state, p.PID))
	}
	k.record(&Change{Kind: ChangeState, Operation: op, PID: p.PID, Priority: p.Priority, From: p.State, To: state})
	p.State = state
}
