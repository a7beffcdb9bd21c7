package loop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualRunsTasksInTimeOrder(t *testing.T) {
	m := NewManual()
	var order []string
	m.After(2*time.Second, func() { order = append(order, "b") })
	m.After(time.Second, func() { order = append(order, "a") })
	m.After(2*time.Second, func() { order = append(order, "c") })

	m.Advance(1500 * time.Millisecond)
	assert.Equal(t, []string{"a"}, order)
	m.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 0, m.Pending())
}

func TestManualCancelledTaskNeverRuns(t *testing.T) {
	m := NewManual()
	ran := false
	h := m.After(time.Second, func() { ran = true })
	h.Cancel()
	h.Cancel()
	m.Advance(time.Minute)
	assert.False(t, ran)
}

func TestManualChainedTasks(t *testing.T) {
	m := NewManual()
	ticks := 0
	var tick func()
	tick = func() {
		ticks++
		if ticks < 5 {
			m.After(time.Second, tick)
		}
	}
	m.After(time.Second, tick)
	m.Advance(3 * time.Second)
	assert.Equal(t, 3, ticks)
	m.Advance(10 * time.Second)
	assert.Equal(t, 5, ticks)
}

func TestManualFrames(t *testing.T) {
	m := NewManual()
	frames := 0
	var frame func(time.Time)
	frame = func(time.Time) {
		frames++
		m.Frame(frame)
	}
	m.Frame(frame)
	m.Frames(4)
	assert.Equal(t, 4, frames)
}

func TestLoopRunsPostedCallbacksInOrder(t *testing.T) {
	var hooks atomic.Int32
	l := New(WithAfterEach(func() { hooks.Add(1) }))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	var got []int
	for i := 0; i < 3; i++ {
		i := i
		require.True(t, l.Post(func() { got = append(got, i) }))
	}
	require.True(t, l.Call(func() {}))
	assert.Equal(t, []int{0, 1, 2}, got)
	require.True(t, l.Call(func() {}))
	assert.GreaterOrEqual(t, hooks.Load(), int32(4))
}

func TestLoopAfterAndCancel(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	fired := make(chan struct{}, 1)
	l.After(5*time.Millisecond, func() { fired <- struct{}{} })

	var cancelledRan atomic.Bool
	var h Handle
	require.True(t, l.Call(func() {
		h = l.After(5*time.Millisecond, func() { cancelledRan.Store(true) })
	}))
	require.True(t, l.Call(func() { h.Cancel() }))

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer callback did not run")
	}
	time.Sleep(20 * time.Millisecond)
	require.True(t, l.Call(func() {}))
	assert.False(t, cancelledRan.Load())
}

func TestLoopClose(t *testing.T) {
	l := New()
	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	l.Close()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
	assert.True(t, l.Closed())
	assert.False(t, l.Post(func() {}))
	assert.False(t, l.Call(func() {}))
}
