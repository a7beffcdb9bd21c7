package animation

import (
	"strconv"

	"golang.org/x/net/html"

	"github.com/livetemplate/wrap/internal/dom"
)

// Attributes through which a Media element's state reaches the browser. The
// client applies data-wrap-state on every render and performs a seek whenever
// data-wrap-seek changes revision.
const (
	MediaStateAttr = "data-wrap-state"
	MediaSeekAttr  = "data-wrap-seek"
	MediaRevAttr   = "data-wrap-rev"
)

// Media is the server-side view of a video or audio element.
type Media struct {
	node     *html.Node
	paused   bool
	atStart  bool
	duration float64
	rev      int
}

// NewMedia wraps a video or audio element, restoring any state left on it by
// a previous activation.
func NewMedia(n *html.Node) *Media {
	m := &Media{node: n, paused: true, atStart: true}
	if v, ok := dom.Attr(n, MediaRevAttr); ok {
		m.rev, _ = strconv.Atoi(v)
	}
	if v, ok := dom.Attr(n, "data-wrap-duration"); ok {
		m.duration, _ = strconv.ParseFloat(v, 64)
	}
	return m
}

func (m *Media) Node() *html.Node  { return m.node }
func (m *Media) Paused() bool      { return m.paused }
func (m *Media) AtStart() bool     { return m.atStart }
func (m *Media) Duration() float64 { return m.duration }

// Play resumes playback.
func (m *Media) Play() {
	m.paused = false
	m.atStart = false
	m.sync()
}

// Pause halts playback.
func (m *Media) Pause() {
	m.paused = true
	m.sync()
}

// Rewind seeks back to time zero.
func (m *Media) Rewind() {
	m.atStart = true
	m.seek("0")
}

// SeekEnd seeks to the end of the clip and pauses.
func (m *Media) SeekEnd() {
	m.paused = true
	m.atStart = false
	m.seek("end")
}

// Finished records that the browser reported the end of playback.
func (m *Media) Finished() {
	m.paused = true
	m.atStart = false
	m.sync()
}

// SetDuration records the clip length once the browser knows it.
func (m *Media) SetDuration(d float64) {
	m.duration = d
	dom.SetAttr(m.node, "data-wrap-duration", strconv.FormatFloat(d, 'f', -1, 64))
}

func (m *Media) seek(to string) {
	m.rev++
	dom.SetAttr(m.node, MediaSeekAttr, to)
	dom.SetAttr(m.node, MediaRevAttr, strconv.Itoa(m.rev))
	m.sync()
}

func (m *Media) sync() {
	state := "playing"
	if m.paused {
		state = "paused"
	}
	dom.SetAttr(m.node, MediaStateAttr, state)
}
