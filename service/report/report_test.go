package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/kernelsim/runtime/kernel"
	"github.com/viant/kernelsim/runtime/process"
)

func TestFormatAndDiff(t *testing.T) {
	ctx := context.Background()
	k, err := kernel.New()
	require.NoError(t, err)

	empty, err := k.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, `Running: idle
Priority 0: (empty)
Priority 1: (empty)
Priority 2: (empty)
Blocked senders: (empty)
Blocked receivers: (empty)
Processes:
  (none)
`, Format(empty))

	_, err = k.Create(ctx, 0)
	require.NoError(t, err)
	_, err = k.Create(ctx, 1)
	require.NoError(t, err)
	_, err = k.QuantumExpire(ctx)
	require.NoError(t, err)
	before, err := k.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, `Running: 0
Priority 0: (empty)
Priority 1: 1
Priority 2: (empty)
Blocked senders: (empty)
Blocked receivers: (empty)
Processes:
  pid=0 priority=0 state=running parent=idle mailbox=0
  pid=1 priority=1 state=ready parent=idle mailbox=0
`, Format(before))

	_, err = k.Send(ctx, 1, "hi")
	require.NoError(t, err)
	after, err := k.Snapshot(ctx)
	require.NoError(t, err)

	patch, stats, err := Diff(before, after, 0)
	require.NoError(t, err)
	assert.Equal(t, DiffStats{Added: 5, Removed: 5}, stats)
	assert.Contains(t, patch, "--- before")
	assert.Contains(t, patch, "+++ after")
	assert.Contains(t, patch, "+Blocked senders: 0")
	assert.Contains(t, patch, "+  pid=1 priority=1 state=running parent=idle mailbox=1")

	patch, stats, err = Diff(after, after, 3)
	require.NoError(t, err)
	assert.Empty(t, patch)
	assert.Equal(t, DiffStats{}, stats)

	receiver, err := k.ProcInfo(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "pid=1 priority=1 state=running parent=idle mailbox=1\n  from 0: \"hi\"\n", FormatProcess(receiver))

	blocked, err := k.List(ctx, process.StateBlockedSender)
	require.NoError(t, err)
	assert.Equal(t, "pid=0 priority=0 state=blockedSender parent=idle mailbox=0\n", FormatList(blocked))
	assert.Equal(t, "(none)\n", FormatList(nil))

	idle, err := k.ProcInfo(ctx, -1)
	require.NoError(t, err)
	assert.Equal(t, "pid=idle priority=3 state=ready mailbox=0\n", FormatProcess(idle))
}
