package registry

import (
	"fmt"

	"github.com/rmacdonaldsmith/scopebus/pkg/emitter"
	"github.com/rmacdonaldsmith/scopebus/pkg/topic"
)

// Registry holds the subscriptions of one emitter in a topic trie.
// It is not safe for concurrent use; callers serialize access.
type Registry struct {
	root *node
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{root: newNode()}
}

// Add registers l at the exact path of p with the given budget.
// A budget of emitter.Unlimited never expires.
func (r *Registry) Add(p topic.Pattern, l *emitter.Listener, budget int) error {
	if !l.Valid() {
		return fmt.Errorf("%w: listener for %q must be a non-nil function", emitter.ErrInvalidListener, p.Raw)
	}
	if budget < 0 {
		return fmt.Errorf("%w: %d for %q", emitter.ErrInvalidBudget, budget, p.Raw)
	}

	n := r.root.locate(p.Segments)
	n.registered = append(n.registered, newSubscription(p.Raw, p.Path, p.Scope, l, budget))
	return nil
}

// Visit walks every node reached by segments and applies fn to its subscriptions.
func (r *Registry) Visit(segments []string, fn VisitFunc) {
	if len(segments) == 0 {
		return
	}
	r.root.visit(segments, 0, fn)
}

// Remove drops every reached registration of l, whatever its scope.
// It returns the number of registrations removed.
func (r *Registry) Remove(p topic.Pattern, l *emitter.Listener) int {
	removed := 0
	r.Visit(p.Segments, func(sub *Subscription) Action {
		if sub.Listener != l {
			return Continue
		}
		removed++
		return Purge
	})
	return removed
}

// RemoveAll drops every reached registration and returns how many were removed.
func (r *Registry) RemoveAll(p topic.Pattern) int {
	removed := 0
	r.Visit(p.Segments, func(*Subscription) Action {
		removed++
		return Purge
	})
	return removed
}

// List returns the listeners of every reached registration without touching
// budgets. If p carries a scope, only registrations accepting it are listed.
func (r *Registry) List(p topic.Pattern) []*emitter.Listener {
	var listeners []*emitter.Listener
	r.Visit(p.Segments, func(sub *Subscription) Action {
		if !p.Scoped || sub.Accepts(p.Scope) {
			listeners = append(listeners, sub.Listener)
		}
		return Continue
	})
	return listeners
}

// Dispatch consumes one invocation from every reached registration whose
// scope covers the scope of p and returns their listeners in match order.
func (r *Registry) Dispatch(p topic.Pattern) []*emitter.Listener {
	var matched []*emitter.Listener
	r.Visit(p.Segments, func(sub *Subscription) Action {
		if !sub.Accepts(p.Scope) {
			return Continue
		}
		matched = append(matched, sub.Listener)
		return Consume
	})
	return matched
}

// Subscriptions returns every live subscription in trie order.
func (r *Registry) Subscriptions() []*Subscription {
	return r.root.collect(nil)
}

// Len returns the number of live subscriptions.
func (r *Registry) Len() int {
	return r.root.countSubscriptions()
}

// NodeCount returns the number of trie nodes, root included.
func (r *Registry) NodeCount() int {
	return r.root.countNodes()
}
