package idgen

import "github.com/google/uuid"

// NewFunc returns a new globally unique identifier. Override in tests for
// deterministic output.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new identifier.
func New() string { return NewFunc() }

// WithPrefix returns a new identifier qualified by kind, e.g. "msg-<uuid>".
func WithPrefix(kind string) string {
	if kind == "" {
		return New()
	}
	return kind + "-" + New()
}
