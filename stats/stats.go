package stats

import (
	"context"
	"sync"
	"time"

	"github.com/viant/kernelsim/internal/clock"
	"github.com/viant/kernelsim/runtime/kernel"
	"github.com/viant/kernelsim/runtime/process"
)

// Delta represents an incremental counter change.
type Delta struct {
	Created         int
	Forked          int
	Exited          int
	Killed          int
	Dispatches      int
	ContextSwitches int
	Sent            int
	Received        int
	Blocks          int
	Wakes           int
}

// IsZero reports whether d changes nothing.
func (d Delta) IsZero() bool {
	return d == Delta{}
}

// DeltaOf derives counters from the changes of one kernel operation. A
// dispatch counts as a context switch when it hands the CPU to a process
// other than the one that left it in the same operation.
func DeltaOf(changes []*kernel.Change) Delta {
	var d Delta
	left, hasLeft := 0, false
	for _, change := range changes {
		switch change.Kind {
		case kernel.ChangeCreated:
			if change.Operation == kernel.OpFork {
				d.Forked++
			} else {
				d.Created++
			}
		case kernel.ChangeTerminated:
			if change.Operation == kernel.OpKill {
				d.Killed++
			} else {
				d.Exited++
			}
			if change.From == process.StateRunning {
				left, hasLeft = change.PID, true
			}
		case kernel.ChangeSent:
			d.Sent++
		case kernel.ChangeReceived:
			d.Received++
		case kernel.ChangeState:
			switch {
			case change.To == process.StateRunning:
				d.Dispatches++
				if hasLeft && left != change.PID {
					d.ContextSwitches++
				}
				hasLeft = false
			case change.From == process.StateRunning:
				left, hasLeft = change.PID, true
			}
			if change.To.IsBlocked() {
				d.Blocks++
			}
			if change.From.IsBlocked() {
				d.Wakes++
			}
		}
	}
	return d
}

// Stats keeps aggregated counters of one simulation run. It is safe for
// concurrent use.
type Stats struct {
	StartedAt time.Time

	Created         int
	Forked          int
	Exited          int
	Killed          int
	Dispatches      int
	ContextSwitches int
	Sent            int
	Received        int
	Blocks          int
	Wakes           int

	sync.Mutex
	onChange func(Stats)
}

// New creates a tracker started now.
func New() *Stats {
	return &Stats{StartedAt: clock.Now()}
}

// Update applies the supplied delta. The onChange callback, if any, runs
// outside the critical section with a copy of the counters.
func (s *Stats) Update(d Delta) {
	if s == nil || d.IsZero() {
		return
	}
	s.Lock()
	s.Created += d.Created
	s.Forked += d.Forked
	s.Exited += d.Exited
	s.Killed += d.Killed
	s.Dispatches += d.Dispatches
	s.ContextSwitches += d.ContextSwitches
	s.Sent += d.Sent
	s.Received += d.Received
	s.Blocks += d.Blocks
	s.Wakes += d.Wakes
	snapshot := s.clone()
	cb := s.onChange
	s.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Observe is a kernel.Listener feeding the tracker and the tracker carried by
// ctx, if any.
func (s *Stats) Observe(ctx context.Context, changes []*kernel.Change) {
	d := DeltaOf(changes)
	s.Update(d)
	if tr, ok := FromContext(ctx); ok && tr != s {
		tr.Update(d)
	}
}

// Snapshot returns a copy of the counters.
func (s *Stats) Snapshot() Stats {
	if s == nil {
		return Stats{}
	}
	s.Lock()
	defer s.Unlock()
	return s.clone()
}

func (s *Stats) clone() Stats {
	return Stats{
		StartedAt:       s.StartedAt,
		Created:         s.Created,
		Forked:          s.Forked,
		Exited:          s.Exited,
		Killed:          s.Killed,
		Dispatches:      s.Dispatches,
		ContextSwitches: s.ContextSwitches,
		Sent:            s.Sent,
		Received:        s.Received,
		Blocks:          s.Blocks,
		Wakes:           s.Wakes,
	}
}

// OnChange registers a callback invoked after every Update. Passing nil
// disables it.
func (s *Stats) OnChange(cb func(Stats)) {
	if s == nil {
		return
	}
	s.Lock()
	s.onChange = cb
	s.Unlock()
}

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithNewTracker creates a tracker, embeds it in a derived context and
// returns both.
func WithNewTracker(ctx context.Context, onChange func(Stats)) (context.Context, *Stats) {
	if ctx == nil {
		ctx = context.Background()
	}
	tr := New()
	tr.onChange = onChange
	return context.WithValue(ctx, trackerKey, tr), tr
}

// FromContext extracts the tracker from ctx.
func FromContext(ctx context.Context) (*Stats, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Stats)
	return tr, ok
}
