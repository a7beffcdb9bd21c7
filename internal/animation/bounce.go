package animation

import (
	"errors"
	"image"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/livetemplate/wrap/internal/dom"
	"github.com/livetemplate/wrap/internal/loop"
)

// DefaultBall is the image bounced when the slide does not name one with
// data-ball.
const DefaultBall = "ball.png"

// Bounce moves a ball image around the overlay surface once per frame.
// Until the image has loaded the ball moves but is not drawn. Any key while
// it runs stops it.
type Bounce struct {
	env     Env
	surface *Surface
	ball    image.Image
	loaded  bool
	timer   loop.Handle

	x, y, dx, dy int
	maxx, maxy   int
}

func (b *Bounce) Init(root *html.Node, surface *Surface) error {
	if surface == nil {
		return errors.New("bounce: slide has no overlay surface")
	}
	b.surface = surface
	b.loaded = false
	b.ball = nil
	b.timer = nil
	b.x, b.y = 0, 0
	b.dx, b.dy = 4, 7
	b.maxx, b.maxy = surface.Width(), surface.Height()

	src := DefaultBall
	if v := dom.Data(root, "ball"); v != "" {
		src = v
	}
	if b.env.LoadImage != nil {
		b.env.LoadImage(src, b.measure)
	}
	return nil
}

// measure records the limits of movement once the image is available.
func (b *Bounce) measure(img image.Image, err error) {
	if err != nil {
		b.env.logger().Warn("bounce: ball image unavailable", zap.Error(err))
		return
	}
	bounds := img.Bounds()
	b.ball = img
	b.loaded = true
	b.maxx = b.surface.Width() - bounds.Dx()
	b.maxy = b.surface.Height() - bounds.Dy()
}

func (b *Bounce) Start() {
	b.timer = b.env.Scheduler.Frame(b.tick)
}

func (b *Bounce) Stop() {
	if b.timer != nil {
		b.timer.Cancel()
		b.timer = nil
	}
}

func (b *Bounce) End() {
	b.Stop()
}

func (b *Bounce) Key(string, bool, bool) bool {
	if b.timer == nil {
		return false
	}
	b.Stop()
	return true
}

// Position reports the ball's top-left corner.
func (b *Bounce) Position() (int, int) { return b.x, b.y }

// Loaded reports whether the ball image has arrived.
func (b *Bounce) Loaded() bool { return b.loaded }

// Running reports whether another frame is scheduled.
func (b *Bounce) Running() bool { return b.timer != nil }

// tick treats each frame as one unit of time.
func (b *Bounce) tick(time.Time) {
	b.x += b.dx
	b.y += b.dy
	if b.x < 0 {
		b.x, b.dx = -b.x, -b.dx
	}
	if b.y < 0 {
		b.y, b.dy = -b.y, -b.dy
	}
	if b.x > b.maxx {
		b.x, b.dx = b.maxx-(b.x-b.maxx), -b.dx
	}
	if b.y > b.maxy {
		b.y, b.dy = b.maxy-(b.y-b.maxy), -b.dy
	}
	b.surface.Clear()
	if b.loaded {
		b.surface.DrawImage(b.ball, b.x, b.y)
	}
	if err := b.surface.Flush(); err != nil {
		b.env.logger().Warn("bounce: flush overlay", zap.Error(err))
	}
	b.timer = b.env.Scheduler.Frame(b.tick)
}
