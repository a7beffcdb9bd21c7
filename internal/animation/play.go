package animation

import (
	"errors"

	"golang.org/x/net/html"

	"github.com/livetemplate/wrap/internal/dom"
	"github.com/livetemplate/wrap/internal/keys"
)

// Play controls the first video (or audio) clip on a slide. Nothing plays
// until a forward key is pressed.
type Play struct {
	media *Media
	ended bool
}

func (p *Play) Init(root *html.Node, _ *Surface) error {
	n := dom.First(root, "video")
	if n == nil {
		n = dom.First(root, "audio")
	}
	if n == nil {
		return errors.New("play: no video or audio element")
	}
	p.media = NewMedia(n)
	p.ended = false
	return nil
}

func (p *Play) Start() {
	p.media.Pause()
	p.media.Rewind()
}

func (p *Play) Stop() {
	p.media.Pause()
}

func (p *Play) End() {
	p.ended = true
	p.media.SeekEnd()
}

// Notify tracks completion and metadata reported by the browser.
func (p *Play) Notify(ev Event) {
	switch ev.Type {
	case MediaEnded:
		p.ended = true
		p.media.Finished()
	case MediaLoaded:
		p.media.SetDuration(ev.Duration)
	}
}

func (p *Play) Key(key string, _, _ bool) bool {
	switch {
	case keys.IsForward(key):
		if p.ended {
			return false
		}
		if p.media.AtStart() || p.media.Paused() {
			p.media.Play()
		} else {
			p.media.Pause()
			p.ended = true
		}
		return true
	case keys.IsBackward(key):
		if p.media.AtStart() {
			return false
		}
		if p.media.Paused() || p.ended {
			p.media.Rewind()
			p.ended = false
		} else {
			p.media.Pause()
		}
		return true
	}
	return false
}

// Media exposes the controlled clip.
func (p *Play) Media() *Media { return p.media }

// Ended reports whether the clip counts as finished for navigation.
func (p *Play) Ended() bool { return p.ended }
