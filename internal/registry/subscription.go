package registry

import (
	"github.com/rmacdonaldsmith/scopebus/pkg/emitter"
	"github.com/rmacdonaldsmith/scopebus/pkg/scope"
)

// Subscription is one listener registration at a trie node.
type Subscription struct {
	// Pattern is the raw pattern the listener subscribed with
	Pattern string

	// Path is the dotted path part of Pattern
	Path string

	// Scope is the compiled accepted scope
	Scope scope.Set

	// Listener is invoked on matching emissions
	Listener *emitter.Listener

	remaining int
	unlimited bool
}

func newSubscription(pattern, path string, accepted scope.Set, l *emitter.Listener, budget int) *Subscription {
	return &Subscription{
		Pattern:   pattern,
		Path:      path,
		Scope:     accepted,
		Listener:  l,
		remaining: budget,
		unlimited: budget == emitter.Unlimited,
	}
}

// Accepts reports whether the subscription's scope covers emitted.
func (s *Subscription) Accepts(emitted scope.Set) bool {
	return s.Scope.Covers(emitted)
}

// Remaining returns the remaining budget, or -1 when unlimited.
func (s *Subscription) Remaining() int {
	if s.unlimited {
		return -1
	}
	return s.remaining
}

// Exhausted reports whether the budget is spent.
func (s *Subscription) Exhausted() bool {
	return !s.unlimited && s.remaining <= 0
}

// consume spends one invocation and reports whether the subscription stays alive.
func (s *Subscription) consume() bool {
	if s.unlimited {
		return true
	}
	s.remaining--
	return s.remaining > 0
}

// purge zeroes the budget.
func (s *Subscription) purge() {
	s.unlimited = false
	s.remaining = 0
}
