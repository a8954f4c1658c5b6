package emitter

import (
	"context"
	"io"
)

// Unlimited is the budget of a subscription that never expires.
const Unlimited = 0

// Emitter dispatches emissions on topic patterns to subscribed listeners.
type Emitter interface {
	io.Closer

	// Subscribe registers l on pattern with the given invocation budget.
	// A budget of Unlimited (0) never expires; a negative budget is rejected.
	Subscribe(pattern string, budget int, l *Listener) error

	// On registers l on pattern with an unlimited budget.
	On(pattern string, l *Listener) error

	// Once registers l on pattern for a single invocation.
	Once(pattern string, l *Listener) error

	// Unsubscribe removes every registration of l reached by pattern.
	// The scope part of the pattern is validated but not used for matching.
	Unsubscribe(pattern string, l *Listener) error

	// UnsubscribeAll removes every registration reached by pattern.
	UnsubscribeAll(pattern string) error

	// Listeners returns the listeners reached by pattern without consuming
	// their budgets.
	Listeners(pattern string) ([]*Listener, error)

	// Emit schedules every matching listener for deferred invocation and
	// returns before any of them runs.
	Emit(pattern string, args ...any) error

	// EmitNow invokes every matching listener before returning.
	EmitNow(pattern string, args ...any) error

	// Flush waits until all deferred invocations, including ones scheduled
	// while flushing, have run.
	Flush(ctx context.Context) error

	// Stats returns a snapshot of the emitter counters.
	Stats() Stats
}

// Stats describes the state of an emitter.
type Stats struct {
	Subscriptions int    // Live subscriptions in the registry
	Nodes         int    // Trie nodes, root included
	Emitted       uint64 // Emit and EmitNow calls that passed validation
	Invoked       uint64 // Listener invocations performed or scheduled
	Pending       int    // Deferred invocations not yet run
}
