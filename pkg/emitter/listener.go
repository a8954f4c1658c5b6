package emitter

import (
	"github.com/google/uuid"
)

// Listener is a callback registered on an emitter.
// Listeners are compared by pointer: the same *Listener must be passed to
// Unsubscribe that was passed to Subscribe.
type Listener struct {
	id   string
	name string
	fn   func(args ...any)
}

// NewListener wraps fn in a new listener with a generated ID
func NewListener(fn func(args ...any)) *Listener {
	id := uuid.NewString()
	return &Listener{id: id, name: id, fn: fn}
}

// NewNamedListener wraps fn in a new listener with a human readable name
func NewNamedListener(name string, fn func(args ...any)) *Listener {
	l := NewListener(fn)
	if name != "" {
		l.name = name
	}
	return l
}

// ID returns the unique identifier for this listener
func (l *Listener) ID() string {
	return l.id
}

// Name returns the listener name, which defaults to its ID
func (l *Listener) Name() string {
	return l.name
}

// Valid reports whether the listener can be invoked
func (l *Listener) Valid() bool {
	return l != nil && l.fn != nil
}

// Call invokes the listener with args
func (l *Listener) Call(args ...any) {
	l.fn(args...)
}

// String returns the listener name
func (l *Listener) String() string {
	return l.name
}
