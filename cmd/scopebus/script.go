package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	internalemitter "github.com/rmacdonaldsmith/scopebus/internal/emitter"
	"github.com/rmacdonaldsmith/scopebus/pkg/emitter"
)

// Script is a sequence of emitter operations loaded from YAML:
//
//	name: orders
//	steps:
//	  - subscribe: {listener: audit, pattern: "orders.*:1-100", budget: 2}
//	  - emit: {pattern: "orders.created:42", args: [alice]}
//	  - list: {pattern: "orders.*"}
//	  - unsubscribe: {listener: audit, pattern: "orders.*"}
//	  - clear: {pattern: "orders.*"}
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step holds exactly one operation.
type Step struct {
	Subscribe   *SubscribeStep `yaml:"subscribe,omitempty"`
	Unsubscribe *ListenerStep  `yaml:"unsubscribe,omitempty"`
	Clear       *PatternStep   `yaml:"clear,omitempty"`
	List        *PatternStep   `yaml:"list,omitempty"`
	Emit        *EmitStep      `yaml:"emit,omitempty"`
}

// SubscribeStep registers a named listener. Budget 0 means unlimited.
type SubscribeStep struct {
	Listener string `yaml:"listener"`
	Pattern  string `yaml:"pattern"`
	Budget   int    `yaml:"budget"`
}

// ListenerStep names a listener and a pattern.
type ListenerStep struct {
	Listener string `yaml:"listener"`
	Pattern  string `yaml:"pattern"`
}

// PatternStep names a pattern.
type PatternStep struct {
	Pattern string `yaml:"pattern"`
}

// EmitStep emits on a pattern, deferred unless Now is set.
type EmitStep struct {
	Pattern string `yaml:"pattern"`
	Args    []any  `yaml:"args"`
	Now     bool   `yaml:"now"`
}

// ParseScript decodes a YAML script, rejecting unknown fields.
func ParseScript(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var script Script
	if err := dec.Decode(&script); err != nil {
		if err == io.EOF {
			return &script, nil
		}
		return nil, fmt.Errorf("decode script: %w", err)
	}

	for i, step := range script.Steps {
		if n := step.count(); n != 1 {
			return nil, fmt.Errorf("step %d: expected exactly one operation, got %d", i+1, n)
		}
	}
	return &script, nil
}

func (s Step) count() int {
	n := 0
	for _, set := range []bool{s.Subscribe != nil, s.Unsubscribe != nil, s.Clear != nil, s.List != nil, s.Emit != nil} {
		if set {
			n++
		}
	}
	return n
}

// Runner executes scripts against one emitter and reports to out.
type Runner struct {
	em        *internalemitter.InMemoryEmitter
	out       io.Writer
	forceSync bool
	timeout   time.Duration

	listeners map[string]*emitter.Listener

	mu    sync.Mutex
	calls []string // invocations not yet printed
}

// NewRunner creates a runner. With forceSync every emit step is immediate.
func NewRunner(em *internalemitter.InMemoryEmitter, out io.Writer, forceSync bool, timeout time.Duration) *Runner {
	return &Runner{
		em:        em,
		out:       out,
		forceSync: forceSync,
		timeout:   timeout,
		listeners: make(map[string]*emitter.Listener),
	}
}

// Run executes every step in order. Deferred emissions are flushed after
// each step so output stays in step order.
func (r *Runner) Run(script *Script) error {
	for i, step := range script.Steps {
		if err := r.runStep(step); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}

	stats := r.em.Stats()
	fmt.Fprintf(r.out, "done: %d emitted, %d invoked, %d subscriptions left\n",
		stats.Emitted, stats.Invoked, stats.Subscriptions)
	return nil
}

func (r *Runner) runStep(step Step) error {
	switch {
	case step.Subscribe != nil:
		s := step.Subscribe
		if err := r.em.Subscribe(s.Pattern, s.Budget, r.listener(s.Listener)); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "subscribe %s %s %s\n", s.Listener, s.Pattern, budgetString(s.Budget))

	case step.Unsubscribe != nil:
		s := step.Unsubscribe
		l, ok := r.listeners[s.Listener]
		if !ok {
			return fmt.Errorf("unknown listener %q", s.Listener)
		}
		if err := r.em.Unsubscribe(s.Pattern, l); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "unsubscribe %s %s\n", s.Listener, s.Pattern)

	case step.Clear != nil:
		if err := r.em.UnsubscribeAll(step.Clear.Pattern); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "clear %s\n", step.Clear.Pattern)

	case step.List != nil:
		listeners, err := r.em.Listeners(step.List.Pattern)
		if err != nil {
			return err
		}
		names := make([]string, len(listeners))
		for i, l := range listeners {
			names[i] = l.Name()
		}
		fmt.Fprintf(r.out, "list %s: [%s]\n", step.List.Pattern, strings.Join(names, " "))

	case step.Emit != nil:
		return r.emit(step.Emit)
	}
	return nil
}

func (r *Runner) emit(s *EmitStep) error {
	before := r.em.Stats().Invoked

	mode := "emit"
	if s.Now || r.forceSync {
		mode = "emit-now"
		if err := r.em.EmitNow(s.Pattern, s.Args...); err != nil {
			return err
		}
	} else {
		if err := r.em.Emit(s.Pattern, s.Args...); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.em.Flush(ctx); err != nil {
			return fmt.Errorf("flush: %w", err)
		}
	}

	invoked := r.em.Stats().Invoked - before
	fmt.Fprintf(r.out, "%s %s -> %d invocation(s)\n", mode, s.Pattern, invoked)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, call := range r.calls {
		fmt.Fprintf(r.out, "  %s\n", call)
	}
	r.calls = nil
	return nil
}

// listener returns the named listener, creating it on first use.
func (r *Runner) listener(name string) *emitter.Listener {
	if l, ok := r.listeners[name]; ok {
		return l
	}
	l := emitter.NewNamedListener(name, func(args ...any) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.calls = append(r.calls, fmt.Sprintf("%s %v", name, args))
	})
	r.listeners[name] = l
	return l
}

func budgetString(budget int) string {
	if budget == emitter.Unlimited {
		return "unlimited"
	}
	return fmt.Sprintf("budget=%d", budget)
}
