package animation

import (
	"errors"
	"image/color"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/livetemplate/wrap/internal/keys"
)

const drawStages = 3

var ink = color.RGBA{A: 0xff}

// Draw builds a small diagram in stages: a box labelled A, an ellipse
// labelled B, then an arrow from A to B.
type Draw struct {
	env     Env
	surface *Surface
	stage   int
}

func (d *Draw) Init(_ *html.Node, surface *Surface) error {
	if surface == nil {
		return errors.New("draw: slide has no overlay surface")
	}
	d.surface = surface
	d.stage = 0
	return nil
}

func (d *Draw) Start() {
	d.stage = 0
	d.paint()
}

func (d *Draw) Stop() {}

func (d *Draw) End() {
	d.stage = drawStages
	d.paint()
}

func (d *Draw) Key(key string, _, _ bool) bool {
	switch {
	case keys.IsForward(key):
		if d.stage >= drawStages {
			return false
		}
		d.stage++
		d.paint()
		return true
	case keys.IsBackward(key):
		if d.stage == 0 {
			return false
		}
		d.stage--
		d.paint()
		return true
	}
	return false
}

// Stage reports how many parts of the diagram are drawn.
func (d *Draw) Stage() int { return d.stage }

func (d *Draw) paint() {
	s := d.surface
	s.Clear()
	if d.stage >= 1 {
		s.StrokeRect(300, 200, 100, 50, ink)
		s.Text(340, 235, "A", ink)
	}
	if d.stage >= 2 {
		s.Ellipse(700, 225, 60, 30, ink)
		s.Text(690, 235, "B", ink)
	}
	if d.stage >= 3 {
		s.Line(400, 225, 640, 225, ink)
		s.Line(630, 215, 640, 225, ink)
		s.Line(630, 235, 640, 225, ink)
	}
	if err := s.Flush(); err != nil {
		d.env.logger().Warn("draw: flush overlay", zap.Error(err))
	}
}
