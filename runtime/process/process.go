package process

import (
	"github.com/viant/kernelsim/internal/fifo"
)

// IdlePID is the reserved PID of the idle process. User PIDs are never negative.
const IdlePID = -1

// Priority levels, 0 being the highest.
const (
	PriorityHigh = iota
	PriorityNormal
	PriorityLow

	// Levels is the number of priority levels.
	Levels
)

// ValidPriority reports whether priority is one of the supported levels.
func ValidPriority(priority int) bool {
	return priority >= PriorityHigh && priority < Levels
}

// Process is the process control block of a simulated process.
// A Process is owned by the kernel; it is not safe for concurrent use.
type Process struct {
	PID       int   `json:"pid"`
	ParentPID int   `json:"parentPid"`
	Priority  int   `json:"priority"`
	State     State `json:"state"`
	// Awaiting is the ID of the message a blocked sender waits to be consumed.
	Awaiting string `json:"awaiting,omitempty"`
	mailbox  fifo.Queue[*Message]
}

// New creates a READY process with an empty mailbox.
func New(pid, priority int) *Process {
	return &Process{
		PID:       pid,
		ParentPID: IdlePID,
		Priority:  priority,
		State:     StateReady,
	}
}

// NewIdle creates the idle process in RUNNING state.
func NewIdle() *Process {
	return &Process{
		PID:       IdlePID,
		ParentPID: IdlePID,
		Priority:  Levels,
		State:     StateRunning,
	}
}

// IsIdle reports whether p is the idle process.
func (p *Process) IsIdle() bool {
	return p.PID == IdlePID
}

// Deliver appends msg to the mailbox.
func (p *Process) Deliver(msg *Message) {
	p.mailbox.Push(msg)
}

// NextMessage removes and returns the oldest pending message.
func (p *Process) NextMessage() (*Message, bool) {
	return p.mailbox.Pop()
}

// Pending returns the number of messages in the mailbox.
func (p *Process) Pending() int {
	return p.mailbox.Len()
}

// Mailbox returns the pending messages, oldest first.
func (p *Process) Mailbox() []*Message {
	return p.mailbox.Items()
}

// DiscardMailbox drops every pending message.
func (p *Process) DiscardMailbox() {
	p.mailbox.Clear()
}

// Clone returns a copy safe to hand out of the kernel. Messages are copied.
func (p *Process) Clone() *Process {
	if p == nil {
		return nil
	}
	out := &Process{
		PID:       p.PID,
		ParentPID: p.ParentPID,
		Priority:  p.Priority,
		State:     p.State,
		Awaiting:  p.Awaiting,
	}
	for _, msg := range p.mailbox.Items() {
		clone := *msg
		out.mailbox.Push(&clone)
	}
	return out
}
