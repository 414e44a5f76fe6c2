package memory

import (
	"context"
	"sort"

	"github.com/viant/kernelsim/runtime/process"
	"github.com/viant/kernelsim/service/dao"
	"github.com/viant/kernelsim/service/dao/criteria"
	"github.com/viant/kernelsim/service/dao/store"
)

// Service is the in-memory process arena keyed by PID.
type Service struct {
	*store.MemoryStore[int, process.Process]
}

var _ dao.Service[int, process.Process] = (*Service)(nil)

// Save stores p under its PID.
func (s *Service) Save(ctx context.Context, p *process.Process) error {
	if p == nil {
		return dao.ErrNilEntity
	}
	if p.PID < 0 {
		return dao.ErrInvalidID
	}
	return s.MemoryStore.Save(ctx, p)
}

// Load returns the process with the supplied PID.
func (s *Service) Load(ctx context.Context, pid int) (*process.Process, error) {
	if pid < 0 {
		return nil, dao.ErrInvalidID
	}
	return s.MemoryStore.Load(ctx, pid)
}

// Delete removes the process with the supplied PID.
func (s *Service) Delete(ctx context.Context, pid int) error {
	if pid < 0 {
		return dao.ErrInvalidID
	}
	return s.MemoryStore.Delete(ctx, pid)
}

// List returns processes ordered by PID, optionally filtered by state.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*process.Process, error) {
	all, err := s.MemoryStore.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*process.Process, 0, len(all))
	for _, p := range all {
		if !criteria.FilterByState(string(p.State), parameters) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out, nil
}

// New creates an empty process arena.
func New() *Service {
	return &Service{MemoryStore: store.NewMemoryStore[int, process.Process](func(p *process.Process) int {
		return p.PID
	})}
}
