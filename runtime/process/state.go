package process

// State represents the scheduling state of a simulated process.
type State string

const (
	StateRunning         State = "running"
	StateReady           State = "ready"
	StateBlockedSender   State = "blockedSender"   //waiting for its message to be received
	StateBlockedReceiver State = "blockedReceiver" //waiting for a message to arrive
)

// IsBlocked reports whether the state is one of the blocked states.
func (s State) IsBlocked() bool {
	return s == StateBlockedSender || s == StateBlockedReceiver
}

// IsValid reports whether s is a known state.
func (s State) IsValid() bool {
	switch s {
	case StateRunning, StateReady, StateBlockedSender, StateBlockedReceiver:
		return true
	}
	return false
}

// Transition is an allowed move between two states.
type Transition struct {
	From State
	To   State
}

// Transitions lists every state change the kernel performs.
var Transitions = []Transition{
	// dispatch
	{From: StateReady, To: StateRunning},
	// quantum expired
	{From: StateRunning, To: StateReady},
	// send
	{From: StateRunning, To: StateBlockedSender},
	// receive on empty mailbox
	{From: StateRunning, To: StateBlockedReceiver},
	// message consumed
	{From: StateBlockedSender, To: StateReady},
	// message arrived
	{From: StateBlockedReceiver, To: StateReady},
}

// CanTransition reports whether from -> to is an allowed state change.
func CanTransition(from, to State) bool {
	for _, t := range Transitions {
		if t.From == from && t.To == to {
			return true
		}
	}
	return false
}
