package kernel

import (
	"context"
	"fmt"

	"github.com/viant/kernelsim/runtime/process"
)

// Receipt is the outcome of a Receive.
type Receipt struct {
	// PID is the receiving process.
	PID int `json:"pid"`
	// Message is the consumed message; nil when the receiver blocked.
	Message *process.Message `json:"message,omitempty"`
	// Blocked reports that the mailbox was empty and the receiver now waits.
	Blocked bool `json:"blocked"`
	// Acknowledged reports that the blocked sender of Message was released.
	Acknowledged bool `json:"acknowledged"`
	// Running is the PID running after the operation.
	Running int `json:"running"`
}

// Send appends payload to the mailbox of target, wakes target if it waits
// for a message and blocks the running process until the message is
// received. It returns the queued message.
func (k *Kernel) Send(ctx context.Context, target int, payload string) (*process.Message, error) {
	var result *process.Message
	err := k.apply(ctx, func() error {
		sender := k.running
		if sender.IsIdle() {
			return fmt.Errorf("%w: idle process cannot send", ErrOperationNotPermitted)
		}
		if len(payload) > k.config.MaxPayload {
			return fmt.Errorf("%w: %d > %d", ErrPayloadTooLong, len(payload), k.config.MaxPayload)
		}
		if target == sender.PID {
			return fmt.Errorf("%w: pid %d cannot send to itself", ErrOperationNotPermitted, target)
		}
		receiver, err := k.table.lookup(ctx, target)
		if err != nil {
			return err
		}

		msg := process.NewMessage(sender.PID, receiver.PID, payload)
		receiver.Deliver(msg)
		k.record(&Change{Kind: ChangeSent, Operation: OpSend, PID: sender.PID, Priority: sender.Priority, Message: msg})
		if k.blockedReceivers.Remove(receiver.PID) {
			if err = k.makeReady(ctx, receiver, OpSend); err != nil {
				return err
			}
		}

		k.setState(sender, process.StateBlockedSender, OpSend)
		sender.Awaiting = msg.ID
		k.blockedSenders.Push(sender.PID)
		if err = k.dispatch(ctx, OpSend); err != nil {
			return err
		}
		clone := *msg
		result = &clone
		return nil
	})
	return result, err
}

// Receive consumes the oldest message of the running process and releases
// its blocked sender. With an empty mailbox the running process blocks until
// a message arrives; it then has to Receive again once dispatched.
func (k *Kernel) Receive(ctx context.Context) (*Receipt, error) {
	var result *Receipt
	err := k.apply(ctx, func() error {
		receiver := k.running
		if receiver.IsIdle() {
			return fmt.Errorf("%w: idle process cannot receive", ErrOperationNotPermitted)
		}
		receipt := &Receipt{PID: receiver.PID}
		msg, ok := receiver.NextMessage()
		if !ok {
			k.setState(receiver, process.StateBlockedReceiver, OpReceive)
			k.blockedReceivers.Push(receiver.PID)
			if err := k.dispatch(ctx, OpReceive); err != nil {
				return err
			}
			receipt.Blocked = true
			receipt.Running = k.running.PID
			result = receipt
			return nil
		}

		k.record(&Change{Kind: ChangeReceived, Operation: OpReceive, PID: receiver.PID, Priority: receiver.Priority, Message: msg})
		receipt.Message = msg
		if k.blockedSenders.Contains(msg.Sender) {
			sender, err := k.table.lookup(ctx, msg.Sender)
			if err != nil {
				return err
			}
			if sender.Awaiting == msg.ID {
				k.blockedSenders.Remove(sender.PID)
				sender.Awaiting = ""
				if err = k.makeReady(ctx, sender, OpReceive); err != nil {
					return err
				}
				receipt.Acknowledged = true
			}
		}
		receipt.Running = k.running.PID
		result = receipt
		return nil
	})
	return result, err
}
