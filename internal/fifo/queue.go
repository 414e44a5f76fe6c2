// Package fifo provides the ordered queue used for ready queues, blocked
// queues and mailboxes. Elements are kept in insertion order; Pop always
// returns the oldest element.
package fifo

// Queue is a first-in first-out collection of comparable items. The zero
// value is an empty queue ready to use. Queue is not safe for concurrent use;
// callers serialise access.
type Queue[T comparable] struct {
	items []T
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int { return len(q.items) }

// Push appends item at the tail.
func (q *Queue[T]) Push(item T) {
	q.items = append(q.items, item)
}

// Pop removes and returns the head item.
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	item := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return item, true
}

// Contains reports whether item is queued.
func (q *Queue[T]) Contains(item T) bool {
	return q.index(item) >= 0
}

// Remove deletes the first occurrence of item, preserving the order of the
// remaining elements. It reports whether item was found.
func (q *Queue[T]) Remove(item T) bool {
	idx := q.index(item)
	if idx < 0 {
		return false
	}
	q.items = append(q.items[:idx], q.items[idx+1:]...)
	return true
}

// Items returns a copy of the queued items, head first.
func (q *Queue[T]) Items() []T {
	return append([]T(nil), q.items...)
}

// Clear drops every item.
func (q *Queue[T]) Clear() {
	q.items = nil
}

func (q *Queue[T]) index(item T) int {
	for i, candidate := range q.items {
		if candidate == item {
			return i
		}
	}
	return -1
}
