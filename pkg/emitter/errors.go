package emitter

import (
	"errors"

	"github.com/rmacdonaldsmith/scopebus/pkg/scope"
	"github.com/rmacdonaldsmith/scopebus/pkg/topic"
)

var (
	// ErrInvalidPattern is returned when a pattern path does not follow the path grammar
	ErrInvalidPattern = topic.ErrInvalidPattern
	// ErrInvalidScope is returned when a pattern scope does not follow the scope grammar
	ErrInvalidScope = scope.ErrInvalidScope
	// ErrInvalidListener is returned when a nil listener or a listener without a function is registered
	ErrInvalidListener = errors.New("invalid listener")
	// ErrInvalidBudget is returned when a negative invocation budget is given
	ErrInvalidBudget = errors.New("invalid budget")
	// ErrClosed is returned by Emit once the emitter has been closed
	ErrClosed = errors.New("emitter closed")
)
