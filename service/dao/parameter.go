package dao

// StateParameter filters entities by scheduling state.
const StateParameter = "State"

// Parameter is a List filter. Value is a string or a []string of
// alternatives.
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter creates a filter matching any of values.
func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}

// WithState matches processes in any of states.
func WithState(states ...string) *Parameter {
	return NewParameter(StateParameter, states...)
}
