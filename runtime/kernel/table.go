package kernel

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/viant/kernelsim/runtime/process"
	"github.com/viant/kernelsim/service/dao"
)

// table owns every live user process and allocates PIDs.
type table struct {
	store    dao.Service[int, process.Process]
	nextPID  int
	size     int
	capacity int
}

// create allocates a READY process. A rejected creation does not consume a PID.
func (t *table) create(ctx context.Context, priority int) (*process.Process, error) {
	if !process.ValidPriority(priority) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPriority, priority)
	}
	if t.capacity > 0 && t.size >= t.capacity {
		return nil, fmt.Errorf("%w: process table full (%d)", ErrAllocationFailure, t.capacity)
	}
	if t.nextPID == math.MaxInt {
		return nil, fmt.Errorf("%w: pid space exhausted", ErrAllocationFailure)
	}
	p := process.New(t.nextPID, priority)
	if err := t.store.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAllocationFailure, err)
	}
	t.nextPID++
	t.size++
	return p, nil
}

func (t *table) lookup(ctx context.Context, pid int) (*process.Process, error) {
	p, err := t.store.Load(ctx, pid)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) || errors.Is(err, dao.ErrInvalidID) {
			return nil, fmt.Errorf("%w: %d", ErrProcessNotFound, pid)
		}
		return nil, err
	}
	return p, nil
}

func (t *table) remove(ctx context.Context, pid int) error {
	if err := t.store.Delete(ctx, pid); err != nil {
		if errors.Is(err, dao.ErrNotFound) || errors.Is(err, dao.ErrInvalidID) {
			return fmt.Errorf("%w: %d", ErrProcessNotFound, pid)
		}
		return err
	}
	t.size--
	return nil
}

func (t *table) list(ctx context.Context, parameters ...*dao.Parameter) ([]*process.Process, error) {
	return t.store.List(ctx, parameters...)
}
