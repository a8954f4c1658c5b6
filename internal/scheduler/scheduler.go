// Package scheduler runs deferred calls one at a time, in the order they were
// scheduled, on a single worker goroutine.
package scheduler

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"

	"github.com/golang/glog"
)

var (
	// ErrClosed is returned when scheduling on a closed scheduler
	ErrClosed = errors.New("scheduler closed")
)

// PanicHandler receives the value recovered from a panicking task and its stack.
type PanicHandler func(recovered any, stack []byte)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithPanicHandler recovers panicking tasks and reports them to h.
// Without a handler a panicking task is not recovered.
func WithPanicHandler(h PanicHandler) Option {
	return func(s *Scheduler) {
		s.panicHandler = h
	}
}

// WithName sets the name used in log lines.
func WithName(name string) Option {
	return func(s *Scheduler) {
		if name != "" {
			s.name = name
		}
	}
}

// Scheduler is an unbounded FIFO of deferred calls drained by one worker.
// Schedule never blocks. It is safe for concurrent use.
type Scheduler struct {
	name         string
	panicHandler PanicHandler

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	pending int // queued plus running
	closed  bool
	done    chan struct{}
}

// New creates a scheduler and starts its worker.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		name: "scheduler",
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cond = sync.NewCond(&s.mu)

	go s.run()
	return s
}

// Schedule queues fn to run after every previously scheduled call.
func (s *Scheduler) Schedule(fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.queue = append(s.queue, fn)
	s.pending++
	s.cond.Broadcast()
	return nil
}

// Pending returns the number of calls queued or running.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Flush waits until no call is queued or running. Calls scheduled by running
// calls are waited for too.
func (s *Scheduler) Flush(ctx context.Context) error {
	idle := make(chan struct{})
	go func() {
		s.mu.Lock()
		for s.pending > 0 {
			s.cond.Wait()
		}
		s.mu.Unlock()
		close(idle)
	}()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting calls, lets the worker drain the queue and waits for it.
// Calling Close more than once is safe.
func (s *Scheduler) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		s.cond.Broadcast()
		glog.V(1).Infof("%s: closing with %d pending calls", s.name, s.pending)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) run() {
	defer close(s.done)

	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.queue) == 0 {
			// closed and drained
			s.mu.Unlock()
			return
		}
		task := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.mu.Unlock()

		s.execute(task)

		s.mu.Lock()
		s.pending--
		if s.pending == 0 {
			s.cond.Broadcast()
		}
		s.mu.Unlock()
	}
}

func (s *Scheduler) execute(task func()) {
	if s.panicHandler == nil {
		task()
		return
	}

	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			glog.Errorf("%s: recovered panic in deferred call: %v", s.name, r)
			s.panicHandler(r, stack)
		}
	}()
	task()
}
