package scenario

import (
	"fmt"

	"github.com/viant/kernelsim/runtime/kernel"
	"github.com/viant/kernelsim/runtime/process"
)

// Operations a step may run.
var operations = map[kernel.Operation]bool{
	kernel.OpCreate:   true,
	kernel.OpFork:     true,
	kernel.OpQuantum:  true,
	kernel.OpExit:     true,
	kernel.OpKill:     true,
	kernel.OpSend:     true,
	kernel.OpReceive:  true,
	kernel.OpSnapshot: true,
	kernel.OpProcInfo: true,
	kernel.OpList:     true,
}

// Step is one external event applied to the kernel.
type Step struct {
	Op       kernel.Operation `json:"op" yaml:"op"`
	Priority int              `json:"priority,omitempty" yaml:"priority,omitempty"`
	PID      int              `json:"pid,omitempty" yaml:"pid,omitempty"`
	Payload  string           `json:"payload,omitempty" yaml:"payload,omitempty"`
	// States filters a list step; empty lists every live process.
	States []process.State `json:"states,omitempty" yaml:"states,omitempty"`
	Expect   *Expect          `json:"expect,omitempty" yaml:"expect,omitempty"`
	Line     int              `json:"-" yaml:"-"`
}

// Expect describes the outcome a step must produce. Nil fields are not checked.
type Expect struct {
	// Error is a kernel error code such as ProcessNotFound; empty means success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
	// Running is the PID running after the step.
	Running *int `json:"running,omitempty" yaml:"running,omitempty"`
	// PID is the PID the step created or terminated.
	PID *int `json:"pid,omitempty" yaml:"pid,omitempty"`
	// Payload and Sender describe the message a receive consumed.
	Payload *string `json:"payload,omitempty" yaml:"payload,omitempty"`
	Sender  *int    `json:"sender,omitempty" yaml:"sender,omitempty"`
	// PIDs are the processes a list step must select, in PID order.
	PIDs []int `json:"pids,omitempty" yaml:"pids,omitempty"`
	// Blocked reports that a receive blocked.
	Blocked *bool `json:"blocked,omitempty" yaml:"blocked,omitempty"`
	// State maps PIDs to the state they must be in after the step.
	State map[int]process.State `json:"state,omitempty" yaml:"state,omitempty"`
}

// Validate checks that the step names a known operation and a known error.
func (s *Step) Validate() error {
	if s == nil {
		return fmt.Errorf("step was nil")
	}
	if !operations[s.Op] {
		return fmt.Errorf("line %d: unsupported op: %q", s.Line, s.Op)
	}
	for _, state := range s.States {
		if !state.IsValid() {
			return fmt.Errorf("line %d: unknown state: %q", s.Line, state)
		}
	}
	if s.Expect == nil {
		return nil
	}
	if s.Expect.Error != "" && kernel.ErrorOf(s.Expect.Error) == nil {
		return fmt.Errorf("line %d: unknown error code: %q", s.Line, s.Expect.Error)
	}
	for pid, state := range s.Expect.State {
		if !state.IsValid() {
			return fmt.Errorf("line %d: pid %d: unknown state: %q", s.Line, pid, state)
		}
	}
	return nil
}

// String renders the step as an operator command.
func (s *Step) String() string {
	switch s.Op {
	case kernel.OpCreate:
		return fmt.Sprintf("%v %d", s.Op, s.Priority)
	case kernel.OpKill, kernel.OpProcInfo:
		return fmt.Sprintf("%v %d", s.Op, s.PID)
	case kernel.OpSend:
		return fmt.Sprintf("%v %d %q", s.Op, s.PID, s.Payload)
	case kernel.OpList:
		ret := string(s.Op)
		for _, state := range s.States {
			ret += " " + string(state)
		}
		return ret
	}
	return string(s.Op)
}
