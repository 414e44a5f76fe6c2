// Package report renders kernel snapshots for operators.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/viant/kernelsim/runtime/kernel"
	"github.com/viant/kernelsim/runtime/process"
)

// Format renders every queue followed by the process table.
func Format(snapshot *kernel.Snapshot) string {
	var b strings.Builder
	b.WriteString("Running: " + PIDText(snapshot.Running) + "\n")
	for level, pids := range snapshot.Ready {
		fmt.Fprintf(&b, "Priority %d: %s\n", level, pidList(pids))
	}
	b.WriteString("Blocked senders: " + pidList(snapshot.BlockedSenders) + "\n")
	b.WriteString("Blocked receivers: " + pidList(snapshot.BlockedReceivers) + "\n")
	b.WriteString("Processes:\n")
	if len(snapshot.Processes) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, p := range snapshot.Processes {
		b.WriteString("  " + summary(p) + "\n")
	}
	return b.String()
}

// FormatProcess renders one process including its pending messages.
func FormatProcess(p *process.Process) string {
	var b strings.Builder
	b.WriteString(summary(p) + "\n")
	for _, msg := range p.Mailbox() {
		fmt.Fprintf(&b, "  from %s: %q\n", PIDText(msg.Sender), msg.Payload)
	}
	return b.String()
}

// FormatList renders one summary line per process.
func FormatList(processes []*process.Process) string {
	if len(processes) == 0 {
		return "(none)\n"
	}
	var b strings.Builder
	for _, p := range processes {
		b.WriteString(summary(p) + "\n")
	}
	return b.String()
}

func summary(p *process.Process) string {
	ret := fmt.Sprintf("pid=%s priority=%d state=%v", PIDText(p.PID), p.Priority, p.State)
	if !p.IsIdle() {
		ret += " parent=" + PIDText(p.ParentPID)
	}
	ret += fmt.Sprintf(" mailbox=%d", p.Pending())
	return ret
}

// PIDText renders pid, naming the idle process.
func PIDText(pid int) string {
	if pid == process.IdlePID {
		return "idle"
	}
	return strconv.Itoa(pid)
}

func pidList(pids []int) string {
	if len(pids) == 0 {
		return "(empty)"
	}
	texts := make([]string, len(pids))
	for i, pid := range pids {
		texts[i] = PIDText(pid)
	}
	return strings.Join(texts, " ")
}

// DiffStats captures the number of changed lines of a Diff.
type DiffStats struct {
	Added   int
	Removed int
}

// Diff returns a unified diff between the rendered snapshots; identical
// snapshots produce an empty diff.
func Diff(before, after *kernel.Snapshot, contextLines int) (string, DiffStats, error) {
	if contextLines <= 0 {
		contextLines = 1
	}
	beforeText, afterText := Format(before), Format(after)
	if beforeText == afterText {
		return "", DiffStats{}, nil
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(beforeText),
		B:        difflib.SplitLines(afterText),
		FromFile: "before",
		ToFile:   "after",
		Context:  contextLines,
	}
	patch, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", DiffStats{}, err
	}
	var stats DiffStats
	for _, line := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			stats.Added++
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			stats.Removed++
		}
	}
	return patch, stats, nil
}
