package kernel

import (
	"context"

	"github.com/viant/kernelsim/runtime/process"
)

// ChangeKind classifies a kernel change.
type ChangeKind string

const (
	ChangeCreated    ChangeKind = "created"
	ChangeState      ChangeKind = "state"
	ChangeSent       ChangeKind = "sent"
	ChangeReceived   ChangeKind = "received"
	ChangeTerminated ChangeKind = "terminated"
)

// Operation names the external event that caused a change.
type Operation string

const (
	OpCreate   Operation = "create"
	OpFork     Operation = "fork"
	OpQuantum  Operation = "quantum"
	OpExit     Operation = "exit"
	OpKill     Operation = "kill"
	OpSend     Operation = "send"
	OpReceive  Operation = "receive"
	OpSnapshot Operation = "snapshot"
	OpProcInfo Operation = "procinfo"
	OpList     Operation = "list"
)

// Change describes one observable effect of an operation.
type Change struct {
	Kind      ChangeKind       `json:"kind"`
	Operation Operation        `json:"operation"`
	PID       int              `json:"pid"`
	Priority  int              `json:"priority"`
	From      process.State    `json:"from,omitempty"`
	To        process.State    `json:"to,omitempty"`
	Message   *process.Message `json:"message,omitempty"`
}

// Listener is invoked with the context and the changes of a completed
// operation. It runs outside the kernel lock and may call read-only kernel
// methods.
type Listener func(ctx context.Context, changes []*Change)
