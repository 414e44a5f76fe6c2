package process

import "github.com/viant/kernelsim/internal/idgen"

// Message is a payload sent from one process to another.
type Message struct {
	ID       string `json:"id" yaml:"id"`
	Sender   int    `json:"sender" yaml:"sender"`
	Receiver int    `json:"receiver" yaml:"receiver"`
	Payload  string `json:"payload" yaml:"payload"`
}

// NewMessage creates a message with a fresh identifier.
func NewMessage(sender, receiver int, payload string) *Message {
	return &Message{
		ID:       idgen.WithPrefix("msg"),
		Sender:   sender,
		Receiver: receiver,
		Payload:  payload,
	}
}
