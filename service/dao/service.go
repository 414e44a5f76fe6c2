package dao

import "context"

// Service stores entities keyed by K. The kernel keeps its process arena
// behind this interface so that the table never holds process pointers in
// its queues.
type Service[K comparable, T any] interface {
	// Save inserts or replaces t.
	Save(ctx context.Context, t *T) error
	// Load returns ErrNotFound for an unknown id.
	Load(ctx context.Context, id K) (*T, error)
	Delete(ctx context.Context, id K) error
	// List returns the entities matching every parameter.
	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
