package animation

import (
	"errors"
	"strconv"
	"time"

	"golang.org/x/net/html"

	"github.com/livetemplate/wrap/internal/dom"
	"github.com/livetemplate/wrap/internal/keys"
	"github.com/livetemplate/wrap/internal/loop"
)

const (
	countdownFrom = 10
	countdownTick = time.Second
)

// Countdown counts a .counter element down from 10 to 0, once a second.
// A forward key resumes a paused count or skips to zero; a backward key
// pauses, then resets to 10.
type Countdown struct {
	env     Env
	counter *html.Node
	time    int
	timer   loop.Handle
}

func (c *Countdown) Init(root *html.Node, _ *Surface) error {
	c.counter = dom.First(root, ".counter")
	if c.counter == nil {
		return errors.New("countdown: no .counter element")
	}
	c.timer = nil
	c.time = countdownFrom
	return nil
}

func (c *Countdown) Start() {
	c.set(countdownFrom)
	c.startTimer()
}

func (c *Countdown) Stop() {
	c.stopTimer()
}

func (c *Countdown) End() {
	c.set(0)
	c.stopTimer()
}

func (c *Countdown) Key(key string, _, _ bool) bool {
	switch {
	case keys.IsForward(key):
		if c.timer == nil && c.time == 0 {
			return false
		}
		if c.timer == nil {
			c.startTimer()
		} else {
			c.End()
		}
		return true
	case keys.IsBackward(key):
		if c.timer == nil && c.time == countdownFrom {
			return false
		}
		if c.timer != nil {
			c.stopTimer()
		} else {
			c.set(countdownFrom)
		}
		return true
	}
	return false
}

// Remaining reports the counter value.
func (c *Countdown) Remaining() int { return c.time }

// Running reports whether a tick is pending.
func (c *Countdown) Running() bool { return c.timer != nil }

func (c *Countdown) set(t int) {
	c.time = t
	dom.SetText(c.counter, strconv.Itoa(t))
}

func (c *Countdown) startTimer() {
	c.stopTimer()
	c.timer = c.env.Scheduler.After(countdownTick, c.tick)
}

func (c *Countdown) stopTimer() {
	if c.timer != nil {
		c.timer.Cancel()
		c.timer = nil
	}
}

func (c *Countdown) tick() {
	c.set(c.time - 1)
	if c.time <= 0 {
		c.timer = nil
		return
	}
	c.timer = c.env.Scheduler.After(countdownTick, c.tick)
}
