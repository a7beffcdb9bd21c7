package loop

import (
	"sort"
	"time"
)

// Manual is a Scheduler driven by an explicit clock. Nothing runs until
// Advance is called, which makes timer and frame driven animations
// deterministic in tests and in print preview.
type Manual struct {
	now           time.Time
	seq           int
	pending       []*manualTask
	frameInterval time.Duration
}

type manualTask struct {
	at        time.Time
	seq       int
	fn        func()
	cancelled bool
}

func (t *manualTask) Cancel() { t.cancelled = true }

// NewManual returns a manual scheduler starting at the zero time.
func NewManual() *Manual {
	return &Manual{frameInterval: DefaultFrameInterval}
}

// Now returns the manual clock.
func (m *Manual) Now() time.Time { return m.now }

// After schedules fn at now+d.
func (m *Manual) After(d time.Duration, fn func()) Handle {
	m.seq++
	t := &manualTask{at: m.now.Add(d), seq: m.seq, fn: fn}
	m.pending = append(m.pending, t)
	return t
}

// Frame schedules fn one frame interval from now.
func (m *Manual) Frame(fn func(now time.Time)) Handle {
	return m.After(m.frameInterval, func() { fn(m.now) })
}

// Pending counts scheduled, uncancelled tasks.
func (m *Manual) Pending() int {
	n := 0
	for _, t := range m.pending {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, running every task that falls due,
// including tasks scheduled by the tasks it runs.
func (m *Manual) Advance(d time.Duration) {
	end := m.now.Add(d)
	for {
		t := m.next(end)
		if t == nil {
			break
		}
		m.now = t.at
		t.fn()
	}
	m.now = end
}

// Frames advances the clock by n frame intervals.
func (m *Manual) Frames(n int) {
	for i := 0; i < n; i++ {
		m.Advance(m.frameInterval)
	}
}

func (m *Manual) next(end time.Time) *manualTask {
	live := m.pending[:0]
	for _, t := range m.pending {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	m.pending = live
	if len(live) == 0 {
		return nil
	}
	sort.Slice(live, func(i, j int) bool {
		if live[i].at.Equal(live[j].at) {
			return live[i].seq < live[j].seq
		}
		return live[i].at.Before(live[j].at)
	})
	t := live[0]
	if t.at.After(end) {
		return nil
	}
	m.pending = live[1:]
	return t
}
