package registry

import (
	"slices"

	"github.com/rmacdonaldsmith/scopebus/pkg/topic"
)

// node is one level of the topic trie.
// Children are kept in insertion order so wildcard walks are deterministic.
type node struct {
	registered []*Subscription
	children   map[string]*node
	order      []string
}

func newNode() *node {
	return &node{
		children: make(map[string]*node),
	}
}

// isDead returns true if the node has no subscriptions and no children.
func (n *node) isDead() bool {
	return len(n.registered) == 0 && len(n.children) == 0
}

func (n *node) child(key string) *node {
	child := n.children[key]
	if child == nil {
		child = newNode()
		n.children[key] = child
		n.order = append(n.order, key)
	}
	return child
}

func (n *node) removeChild(key string) {
	delete(n.children, key)
	if i := slices.Index(n.order, key); i >= 0 {
		n.order = slices.Delete(n.order, i, i+1)
	}
}

// locate walks segments from n, creating missing nodes, and returns the last one.
// The wildcard is stored as an ordinary key.
func (n *node) locate(segments []string) *node {
	cur := n
	for _, seg := range segments {
		cur = cur.child(seg)
	}
	return cur
}

// visit walks the trie along segments and applies fn to the subscriptions of
// every terminal node reached. A literal segment follows both the matching
// child and the wildcard child; a wildcard segment follows every child. Dead
// children are dropped on the way back up. It returns whether n is dead.
func (n *node) visit(segments []string, i int, fn VisitFunc) bool {
	if i == len(segments) {
		n.apply(fn)
		return n.isDead()
	}

	seg := segments[i]
	if seg == topic.Wildcard {
		for _, key := range slices.Clone(n.order) {
			if n.children[key].visit(segments, i+1, fn) {
				n.removeChild(key)
			}
		}
		return n.isDead()
	}

	if child := n.children[seg]; child != nil {
		if child.visit(segments, i+1, fn) {
			n.removeChild(seg)
		}
	}
	if child := n.children[topic.Wildcard]; child != nil {
		if child.visit(segments, i+1, fn) {
			n.removeChild(topic.Wildcard)
		}
	}
	return n.isDead()
}

// apply runs fn over the registered subscriptions in registration order and
// compacts the slice in place, keeping the ones that survive.
func (n *node) apply(fn VisitFunc) {
	kept := n.registered[:0]
	for _, sub := range n.registered {
		if sub.Exhausted() {
			continue
		}
		switch fn(sub) {
		case Consume:
			if !sub.consume() {
				continue
			}
		case Purge:
			sub.purge()
			continue
		}
		kept = append(kept, sub)
	}

	clear(n.registered[len(kept):])
	n.registered = kept
}

// countSubscriptions returns the number of subscriptions below n, n included.
func (n *node) countSubscriptions() int {
	count := len(n.registered)
	for _, child := range n.children {
		count += child.countSubscriptions()
	}
	return count
}

// countNodes returns the number of nodes below n, n included.
func (n *node) countNodes() int {
	count := 1
	for _, child := range n.children {
		count += child.countNodes()
	}
	return count
}

// collect appends every subscription below n in trie order.
func (n *node) collect(out []*Subscription) []*Subscription {
	out = append(out, n.registered...)
	for _, key := range n.order {
		out = n.children[key].collect(out)
	}
	return out
}
