package kernel

import (
	"github.com/viant/kernelsim/internal/fifo"
	"github.com/viant/kernelsim/runtime/process"
)

// readyQueues holds one FIFO of PIDs per priority level.
type readyQueues [process.Levels]fifo.Queue[int]

func (r *readyQueues) enqueue(p *process.Process) {
	r[p.Priority].Push(p.PID)
}

// dequeueHighest pops the oldest PID of the highest non-empty level.
func (r *readyQueues) dequeueHighest() (int, bool) {
	for level := range r {
		if pid, ok := r[level].Pop(); ok {
			return pid, true
		}
	}
	return process.IdlePID, false
}

func (r *readyQueues) remove(p *process.Process) bool {
	return r[p.Priority].Remove(p.PID)
}

func (r *readyQueues) len() int {
	total := 0
	for level := range r {
		total += r[level].Len()
	}
	return total
}

func (r *readyQueues) items() [process.Levels][]int {
	var out [process.Levels][]int
	for level := range r {
		out[level] = r[level].Items()
	}
	return out
}
