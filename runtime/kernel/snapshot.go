package kernel

import (
	"context"
	"fmt"

	"github.com/viant/kernelsim/runtime/process"
	"github.com/viant/kernelsim/service/dao"
)

// Snapshot is a read-only copy of the kernel state.
type Snapshot struct {
	Running          int                   `json:"running"`
	Ready            [process.Levels][]int `json:"ready"`
	BlockedSenders   []int                 `json:"blockedSenders"`
	BlockedReceivers []int                 `json:"blockedReceivers"`
	Idle             *process.Process      `json:"idle"`
	Processes        []*process.Process    `json:"processes"`
	NextPID          int                   `json:"nextPid"`
}

// Process returns the process with pid from the snapshot, or nil.
func (s *Snapshot) Process(pid int) *process.Process {
	if pid == process.IdlePID {
		return s.Idle
	}
	for _, p := range s.Processes {
		if p.PID == pid {
			return p
		}
	}
	return nil
}

// Snapshot copies the table and every queue.
func (k *Kernel) Snapshot(ctx context.Context) (*Snapshot, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.snapshot(ctx)
}

func (k *Kernel) snapshot(ctx context.Context) (*Snapshot, error) {
	processes, err := k.table.list(ctx)
	if err != nil {
		return nil, err
	}
	ret := &Snapshot{
		Running:          k.running.PID,
		Ready:            k.ready.items(),
		BlockedSenders:   k.blockedSenders.Items(),
		BlockedReceivers: k.blockedReceivers.Items(),
		Idle:             k.idle.Clone(),
		Processes:        make([]*process.Process, 0, len(processes)),
		NextPID:          k.table.nextPID,
	}
	for _, p := range processes {
		ret.Processes = append(ret.Processes, p.Clone())
	}
	return ret, nil
}

// List returns copies of the live processes in any of states, ordered by
// PID; no states lists every live process. The idle process is never listed.
func (k *Kernel) List(ctx context.Context, states ...process.State) ([]*process.Process, error) {
	var parameters []*dao.Parameter
	if len(states) > 0 {
		names := make([]string, len(states))
		for i, state := range states {
			names[i] = string(state)
		}
		parameters = append(parameters, dao.WithState(names...))
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	processes, err := k.table.list(ctx, parameters...)
	if err != nil {
		return nil, err
	}
	ret := make([]*process.Process, len(processes))
	for i, p := range processes {
		ret[i] = p.Clone()
	}
	return ret, nil
}

// CheckInvariants verifies that exactly one process runs and that every
// other live process sits in exactly the queue matching its state.
func (k *Kernel) CheckInvariants(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	snapshot, err := k.snapshot(ctx)
	if err != nil {
		return err
	}
	return snapshot.Verify()
}

// Verify checks the snapshot against the kernel invariants.
func (s *Snapshot) Verify() error {
	membership := map[int]int{}
	count := func(pids []int) {
		for _, pid := range pids {
			membership[pid]++
		}
	}
	for level := range s.Ready {
		count(s.Ready[level])
	}
	count(s.BlockedSenders)
	count(s.BlockedReceivers)

	running := 0
	if s.Idle.State == process.StateRunning {
		running++
		if s.Running != process.IdlePID {
			return fmt.Errorf("idle is running but running pid is %d", s.Running)
		}
	}
	live := map[int]bool{}
	for _, p := range s.Processes {
		live[p.PID] = true
		if p.State == process.StateRunning {
			running++
			if s.Running != p.PID {
				return fmt.Errorf("pid %d is running but running pid is %d", p.PID, s.Running)
			}
			if membership[p.PID] != 0 {
				return fmt.Errorf("running pid %d is queued", p.PID)
			}
			continue
		}
		if membership[p.PID] != 1 {
			return fmt.Errorf("pid %d (%v) is in %d queues", p.PID, p.State, membership[p.PID])
		}
		var queue []int
		switch p.State {
		case process.StateReady:
			queue = s.Ready[p.Priority]
		case process.StateBlockedSender:
			queue = s.BlockedSenders
		case process.StateBlockedReceiver:
			queue = s.BlockedReceivers
		}
		if !contains(queue, p.PID) {
			return fmt.Errorf("pid %d (%v) is not in its state queue", p.PID, p.State)
		}
	}
	if running != 1 {
		return fmt.Errorf("expected exactly one running process, found %d", running)
	}
	for pid := range membership {
		if !live[pid] {
			return fmt.Errorf("queued pid %d is not alive", pid)
		}
	}
	return nil
}

func contains(pids []int, pid int) bool {
	for _, candidate := range pids {
		if candidate == pid {
			return true
		}
	}
	return false
}
