package emitter

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/rmacdonaldsmith/scopebus/internal/registry"
	"github.com/rmacdonaldsmith/scopebus/internal/scheduler"
	"github.com/rmacdonaldsmith/scopebus/pkg/emitter"
	"github.com/rmacdonaldsmith/scopebus/pkg/topic"
)

// InMemoryEmitter implements the emitter.Emitter interface over an in-memory topic trie.
// Matching and budget updates happen under one lock; listeners always run
// outside it, so they may call back into the emitter.
// It is safe for concurrent use.
type InMemoryEmitter struct {
	name string

	mu       sync.Mutex
	registry *registry.Registry
	deferred *scheduler.Scheduler

	closed  atomic.Bool
	emitted atomic.Uint64
	invoked atomic.Uint64
}

// NewInMemoryEmitter creates a new emitter. A nil config uses the defaults.
func NewInMemoryEmitter(config *Config) (*InMemoryEmitter, error) {
	if config == nil {
		config = NewConfig(DefaultName)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid emitter config: %w", err)
	}

	glog.V(1).Infof("%s: starting emitter", config.Name)

	return &InMemoryEmitter{
		name:     config.Name,
		registry: registry.New(),
		deferred: scheduler.New(config.schedulerOptions()...),
	}, nil
}

// Name returns the configured emitter name.
func (e *InMemoryEmitter) Name() string {
	return e.name
}

// Subscribe registers l on pattern with the given invocation budget.
func (e *InMemoryEmitter) Subscribe(pattern string, budget int, l *emitter.Listener) error {
	p, err := topic.Parse(pattern)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.registry.Add(p, l, budget); err != nil {
		return err
	}
	glog.V(2).Infof("%s: %s subscribed to %q budget=%d", e.name, l, pattern, budget)
	return nil
}

// On registers l on pattern until it is removed.
func (e *InMemoryEmitter) On(pattern string, l *emitter.Listener) error {
	return e.Subscribe(pattern, emitter.Unlimited, l)
}

// Once registers l on pattern for a single invocation.
func (e *InMemoryEmitter) Once(pattern string, l *emitter.Listener) error {
	return e.Subscribe(pattern, 1, l)
}

// Unsubscribe removes every registration of l reached by pattern.
func (e *InMemoryEmitter) Unsubscribe(pattern string, l *emitter.Listener) error {
	p, err := topic.Parse(pattern)
	if err != nil {
		return err
	}

	e.mu.Lock()
	removed := e.registry.Remove(p, l)
	e.mu.Unlock()

	glog.V(2).Infof("%s: %s unsubscribed from %q (%d removed)", e.name, l, pattern, removed)
	return nil
}

// UnsubscribeAll removes every registration reached by pattern.
func (e *InMemoryEmitter) UnsubscribeAll(pattern string) error {
	p, err := topic.Parse(pattern)
	if err != nil {
		return err
	}

	e.mu.Lock()
	removed := e.registry.RemoveAll(p)
	e.mu.Unlock()

	glog.V(2).Infof("%s: cleared %q (%d removed)", e.name, pattern, removed)
	return nil
}

// Listeners returns the listeners reached by pattern.
func (e *InMemoryEmitter) Listeners(pattern string) ([]*emitter.Listener, error) {
	p, err := topic.Parse(pattern)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.List(p), nil
}

// Emit schedules every matching listener and returns before any of them runs.
// Listeners of one emission run in match order, after the listeners of every
// earlier Emit.
func (e *InMemoryEmitter) Emit(pattern string, args ...any) error {
	p, err := topic.Parse(pattern)
	if err != nil {
		return err
	}
	if e.closed.Load() {
		return emitter.ErrClosed
	}

	args = slices.Clone(args)

	// Scheduling under the lock keeps queue order equal to budget order
	// when several goroutines emit at once.
	e.mu.Lock()
	defer e.mu.Unlock()

	matched := e.registry.Dispatch(p)
	e.emitted.Add(1)
	glog.V(2).Infof("%s: emit %q matched %d listeners", e.name, pattern, len(matched))

	for _, l := range matched {
		if err := e.deferred.Schedule(func() { l.Call(args...) }); err != nil {
			return fmt.Errorf("%w: %v", emitter.ErrClosed, err)
		}
		e.invoked.Add(1)
	}
	return nil
}

// EmitNow invokes every matching listener in match order before returning.
// A listener that emits again runs that emission to completion before the
// next listener of the outer emission is called. Listener panics propagate.
func (e *InMemoryEmitter) EmitNow(pattern string, args ...any) error {
	p, err := topic.Parse(pattern)
	if err != nil {
		return err
	}

	e.mu.Lock()
	matched := e.registry.Dispatch(p)
	e.mu.Unlock()

	e.emitted.Add(1)
	glog.V(2).Infof("%s: emit-now %q matched %d listeners", e.name, pattern, len(matched))

	for _, l := range matched {
		e.invoked.Add(1)
		l.Call(args...)
	}
	return nil
}

// Flush waits until every deferred invocation has run.
func (e *InMemoryEmitter) Flush(ctx context.Context) error {
	return e.deferred.Flush(ctx)
}

// Stats returns a snapshot of the emitter counters.
func (e *InMemoryEmitter) Stats() emitter.Stats {
	e.mu.Lock()
	subscriptions := e.registry.Len()
	nodes := e.registry.NodeCount()
	e.mu.Unlock()

	return emitter.Stats{
		Subscriptions: subscriptions,
		Nodes:         nodes,
		Emitted:       e.emitted.Load(),
		Invoked:       e.invoked.Load(),
		Pending:       e.deferred.Pending(),
	}
}

// Shutdown stops deferred delivery and waits for queued invocations to run
// or for ctx to end. Subscriptions and EmitNow keep working afterwards.
func (e *InMemoryEmitter) Shutdown(ctx context.Context) error {
	if !e.closed.Swap(true) {
		glog.V(1).Infof("%s: shutting down", e.name)
	}
	return e.deferred.Close(ctx)
}

// Close stops deferred delivery and waits for queued invocations to run.
// Calling Close more than once is safe.
func (e *InMemoryEmitter) Close() error {
	return e.Shutdown(context.Background())
}

// Verify that InMemoryEmitter implements the Emitter interface at compile time
var _ emitter.Emitter = (*InMemoryEmitter)(nil)
