package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/viant/kernelsim"
	"github.com/viant/kernelsim/runtime/kernel"
	"github.com/viant/kernelsim/service/command"
	"github.com/viant/kernelsim/service/report"
)

const prompt = "> "

// shell reads operator commands and prints their outcome.
type shell struct {
	runtime *kernelsim.Runtime
	in      io.Reader
	out     io.Writer
	diff    bool
	stats   bool
}

func newShell(runtime *kernelsim.Runtime, in io.Reader, out io.Writer) *shell {
	return &shell{runtime: runtime, in: in, out: out}
}

// Run executes commands until quit or end of input. Only an allocation
// failure is returned; other errors are printed.
func (s *shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, command.Usage)
	scanner := bufio.NewScanner(s.in)
	for {
		fmt.Fprint(s.out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		if err := s.execute(ctx, scanner.Text()); err != nil {
			if errors.Is(err, command.ErrQuit) {
				return nil
			}
			return err
		}
	}
}

func (s *shell) execute(ctx context.Context, line string) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	step, err := command.Parse(line)
	if err != nil {
		if errors.Is(err, command.ErrQuit) {
			return err
		}
		fmt.Fprintf(s.out, "error: %v\n", err)
		return nil
	}
	var before *kernel.Snapshot
	if s.diff {
		if before, err = s.runtime.Kernel().Snapshot(ctx); err != nil {
			return err
		}
	}
	result, err := s.runtime.Apply(ctx, step)
	if err != nil {
		if errors.Is(err, kernel.ErrAllocationFailure) {
			return err
		}
		fmt.Fprintf(s.out, "error: %v\n", err)
		return nil
	}
	s.print(result)
	if s.stats {
		c := result.Stats.Snapshot()
		fmt.Fprintf(s.out, "dispatches=%d switches=%d blocks=%d wakes=%d\n", c.Dispatches, c.ContextSwitches, c.Blocks, c.Wakes)
	}
	if s.diff {
		after, err := s.runtime.Kernel().Snapshot(ctx)
		if err != nil {
			return err
		}
		text, _, err := report.Diff(before, after, 0)
		if err != nil {
			return err
		}
		fmt.Fprint(s.out, text)
	}
	return nil
}

func (s *shell) print(result *kernelsim.StepResult) {
	switch result.Step.Op {
	case kernel.OpSnapshot:
		fmt.Fprint(s.out, report.Format(result.Snapshot))
	case kernel.OpProcInfo:
		fmt.Fprint(s.out, report.FormatProcess(result.Process))
	case kernel.OpList:
		fmt.Fprint(s.out, report.FormatList(result.Processes))
	case kernel.OpSend:
		fmt.Fprintf(s.out, "sent %v to %d, running %s\n", result.Message.ID, result.Message.Receiver, report.PIDText(result.Running))
	case kernel.OpReceive:
		if result.Receipt.Blocked {
			fmt.Fprintf(s.out, "pid %d blocked, running %s\n", result.Receipt.PID, report.PIDText(result.Running))
			return
		}
		msg := result.Receipt.Message
		fmt.Fprintf(s.out, "pid %d received %q from %d, running %s\n", result.Receipt.PID, msg.Payload, msg.Sender, report.PIDText(result.Running))
	default:
		fmt.Fprintf(s.out, "%v pid %s, running %s\n", result.Step.Op, report.PIDText(result.Process.PID), report.PIDText(result.Running))
	}
}
