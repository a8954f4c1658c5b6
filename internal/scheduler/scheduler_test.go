package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestScheduler_RunsInOrder(t *testing.T) {
	s := New()
	defer s.Close(testContext(t))

	var mu sync.Mutex
	var got []int
	for i := 0; i <= 10; i++ {
		require.NoError(t, s.Schedule(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		}))
	}

	require.NoError(t, s.Flush(testContext(t)))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, got)
}

func TestScheduler_ScheduleDoesNotBlock(t *testing.T) {
	s := New()
	defer s.Close(testContext(t))

	release := make(chan struct{})
	require.NoError(t, s.Schedule(func() { <-release }))

	// The worker is busy; more calls still queue up immediately
	for i := 0; i < 100; i++ {
		require.NoError(t, s.Schedule(func() {}))
	}
	assert.Equal(t, 101, s.Pending())

	close(release)
	require.NoError(t, s.Flush(testContext(t)))
	assert.Equal(t, 0, s.Pending())
}

func TestScheduler_FlushWaitsForNestedCalls(t *testing.T) {
	s := New()
	defer s.Close(testContext(t))

	var mu sync.Mutex
	var got []string
	record := func(v string) {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
	}

	require.NoError(t, s.Schedule(func() {
		record("outer")
		assert.NoError(t, s.Schedule(func() { record("inner") }))
	}))

	require.NoError(t, s.Flush(testContext(t)))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"outer", "inner"}, got)
}

func TestScheduler_FlushHonorsContext(t *testing.T) {
	s := New()
	release := make(chan struct{})
	require.NoError(t, s.Schedule(func() { <-release }))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Flush(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, s.Close(testContext(t)))
}

func TestScheduler_CloseDrainsQueue(t *testing.T) {
	s := New()

	count := 0
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Schedule(func() { count++ }))
	}

	require.NoError(t, s.Close(testContext(t)))
	assert.Equal(t, 5, count)

	assert.ErrorIs(t, s.Schedule(func() {}), ErrClosed)

	// Idempotent
	require.NoError(t, s.Close(testContext(t)))
}

func TestScheduler_PanicHandler(t *testing.T) {
	var recovered any
	var stack []byte
	s := New(WithName("test"), WithPanicHandler(func(r any, st []byte) {
		recovered = r
		stack = st
	}))

	ran := false
	require.NoError(t, s.Schedule(func() { panic("boom") }))
	require.NoError(t, s.Schedule(func() { ran = true }))
	require.NoError(t, s.Close(testContext(t)))

	assert.Equal(t, "boom", recovered)
	assert.NotEmpty(t, stack)
	assert.True(t, ran, "a panicking call must not stop later calls")
}
