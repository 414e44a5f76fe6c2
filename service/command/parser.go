// Package command parses operator command lines into scenario steps so that
// interactive input and scripted scenarios share one execution path.
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/viant/kernelsim/runtime/kernel"
	"github.com/viant/kernelsim/runtime/process"
	"github.com/viant/kernelsim/service/scenario"
	"github.com/viant/parsly"
)

// ErrQuit is returned for a request to leave the command loop.
var ErrQuit = errors.New("quit")

// Usage lists the accepted commands.
const Usage = `C <priority>     create a process (priority 0..2)
F                fork the running process
K <pid>          kill a process
E                exit the running process
Q                expire the running quantum
S <pid> <text>   send text to a process and block until it is received
R                receive the oldest message or block
I <pid|idle>     show one process
T                show every queue
L [state...]     list processes, e.g. L ready blocked
quit             leave`

var commands = map[string]kernel.Operation{
	"c": kernel.OpCreate, "create": kernel.OpCreate,
	"f": kernel.OpFork, "fork": kernel.OpFork,
	"k": kernel.OpKill, "kill": kernel.OpKill,
	"e": kernel.OpExit, "exit": kernel.OpExit,
	"q": kernel.OpQuantum, "quantum": kernel.OpQuantum,
	"s": kernel.OpSend, "send": kernel.OpSend,
	"r": kernel.OpReceive, "receive": kernel.OpReceive,
	"i": kernel.OpProcInfo, "procinfo": kernel.OpProcInfo,
	"l": kernel.OpList, "list": kernel.OpList,
	"t": kernel.OpSnapshot, "snapshot": kernel.OpSnapshot,
}

// Parse parses one command line, e.g. "S 3 hello".
func Parse(line string) (*scenario.Step, error) {
	cursor := parsly.NewCursor("", []byte(strings.TrimSpace(line)), 0)
	matched := cursor.MatchAfterOptional(whitespaceToken, wordToken)
	if matched.Code != wordCode {
		return nil, cursor.NewError(wordToken)
	}
	name := strings.ToLower(matched.Text(cursor))
	if name == "quit" || name == "bye" {
		return nil, ErrQuit
	}
	op, ok := commands[name]
	if !ok {
		return nil, fmt.Errorf("unknown command: %q", name)
	}

	step := &scenario.Step{Op: op}
	var err error
	switch op {
	case kernel.OpCreate:
		step.Priority, err = parseNumber(cursor)
	case kernel.OpKill, kernel.OpProcInfo:
		step.PID, err = parsePID(cursor)
	case kernel.OpSend:
		if step.PID, err = parsePID(cursor); err == nil {
			step.Payload, err = parsePayload(cursor)
		}
	case kernel.OpList:
		step.States, err = parseStates(cursor)
	}
	if err != nil {
		return nil, fmt.Errorf("%v: %w", name, err)
	}
	cursor.MatchOne(whitespaceToken)
	if cursor.HasMore() {
		return nil, fmt.Errorf("%v: unexpected input at %d: %q", name, cursor.Pos, cursor.Input[cursor.Pos:])
	}
	return step, step.Validate()
}

func parseNumber(cursor *parsly.Cursor) (int, error) {
	matched := cursor.MatchAfterOptional(whitespaceToken, numberToken)
	if matched.Code != numberCode {
		return 0, cursor.NewError(numberToken)
	}
	return strconv.Atoi(matched.Text(cursor))
}

func parsePID(cursor *parsly.Cursor) (int, error) {
	matched := cursor.MatchAfterOptional(whitespaceToken, numberToken, wordToken)
	switch matched.Code {
	case numberCode:
		return strconv.Atoi(matched.Text(cursor))
	case wordCode:
		if text := matched.Text(cursor); strings.EqualFold(text, "idle") {
			return process.IdlePID, nil
		}
	}
	return 0, cursor.NewError(numberToken)
}

var stateNames = map[string][]process.State{
	"running":         {process.StateRunning},
	"ready":           {process.StateReady},
	"blockedsender":   {process.StateBlockedSender},
	"blockedreceiver": {process.StateBlockedReceiver},
	"blocked":         {process.StateBlockedSender, process.StateBlockedReceiver},
}

func parseStates(cursor *parsly.Cursor) ([]process.State, error) {
	var states []process.State
	for {
		matched := cursor.MatchAfterOptional(whitespaceToken, wordToken)
		if matched.Code != wordCode {
			return states, nil
		}
		name := matched.Text(cursor)
		named, ok := stateNames[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown state: %q", name)
		}
		states = append(states, named...)
	}
}

// parsePayload reads the rest of the line; a double-quoted payload is
// unquoted so it may carry surrounding spaces.
func parsePayload(cursor *parsly.Cursor) (string, error) {
	matched := cursor.MatchAfterOptional(whitespaceToken, textToken)
	if matched.Code != textCode {
		return "", nil
	}
	text := strings.TrimSpace(matched.Text(cursor))
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		return strconv.Unquote(text)
	}
	return text, nil
}
