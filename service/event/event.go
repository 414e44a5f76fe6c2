package event

import (
	"time"

	"github.com/viant/kernelsim/internal/clock"
	"github.com/viant/kernelsim/internal/idgen"
	"github.com/viant/kernelsim/runtime/process"
)

// Event types
const (
	TypeTransition = "transition"
	TypeDelivery   = "delivery"
)

type Context struct {
	PID       int    `json:"pid"`
	EventType string `json:"eventType"`
	Operation string `json:"operation"`
}

type Event[T any] struct {
	ID        string                 `json:"id"`
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata"`
	Data      T                      `json:"data"`
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		ID:        idgen.WithPrefix("evt"),
		Context:   context,
		CreatedAt: clock.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}

// Transition describes a process state change. From is empty for a created
// process and To is empty for a terminated one.
type Transition struct {
	PID      int           `json:"pid"`
	Priority int           `json:"priority"`
	From     process.State `json:"from,omitempty"`
	To       process.State `json:"to,omitempty"`
}

// Delivery describes a consumed message.
type Delivery struct {
	MessageID    string `json:"messageId"`
	Sender       int    `json:"sender"`
	Receiver     int    `json:"receiver"`
	Payload      string `json:"payload"`
	Acknowledged bool   `json:"acknowledged"`
}
