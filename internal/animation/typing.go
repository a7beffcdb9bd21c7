package animation

import (
	"errors"
	"time"

	"golang.org/x/net/html"

	"github.com/livetemplate/wrap/internal/dom"
	"github.com/livetemplate/wrap/internal/keys"
	"github.com/livetemplate/wrap/internal/loop"
)

const (
	typeInterval = 20 * time.Millisecond
	typeStop     = '$'
	// typeTextAttr keeps the full text so re-entry can restore it after a
	// partial run.
	typeTextAttr = "data-wrap-text"
)

// Typing simulates typing into a .type element. The text is blanked
// (newlines kept) and each printable key types the next character. Enter
// types on its own until the next '$'.
type Typing struct {
	env    Env
	target *html.Node
	data   []rune
	shown  []rune
	pos    int
	timer  loop.Handle
}

func (t *Typing) Init(root *html.Node, _ *Surface) error {
	t.target = dom.First(root, ".type")
	if t.target == nil {
		return errors.New("type: no .type element")
	}
	text, ok := dom.Attr(t.target, typeTextAttr)
	if !ok {
		text = dom.Text(t.target)
		dom.SetAttr(t.target, typeTextAttr, text)
	}
	t.data = []rune(text)
	t.timer = nil
	t.blank()
	dom.SetStyle(t.target, "color", "")
	return nil
}

func (t *Typing) Start() {
	t.blank()
}

func (t *Typing) Stop() {
	if t.timer != nil {
		t.timer.Cancel()
		t.timer = nil
	}
}

func (t *Typing) End() {
	t.Stop()
	t.shown = append(t.shown[:0], t.data...)
	t.pos = len(t.data)
	dom.SetText(t.target, string(t.shown))
}

func (t *Typing) Key(key string, _, ctrl bool) bool {
	if ctrl || t.pos >= len(t.data) {
		return false
	}
	if key == keys.Enter {
		if t.timer == nil {
			t.timer = t.env.Scheduler.After(typeInterval, t.output)
		}
		return true
	}
	if !keys.IsPrintable(key) {
		return false
	}
	t.typeNext()
	return true
}

// Typed returns the text currently displayed.
func (t *Typing) Typed() string { return string(t.shown) }

func (t *Typing) blank() {
	t.shown = make([]rune, len(t.data))
	for i, r := range t.data {
		if r == '\n' {
			t.shown[i] = '\n'
		} else {
			t.shown[i] = ' '
		}
	}
	t.pos = 0
	dom.SetText(t.target, string(t.shown))
}

func (t *Typing) typeNext() (rune, bool) {
	if t.pos >= len(t.data) {
		return 0, false
	}
	r := t.data[t.pos]
	t.shown[t.pos] = r
	t.pos++
	dom.SetText(t.target, string(t.shown))
	return r, true
}

func (t *Typing) output() {
	r, ok := t.typeNext()
	if !ok || r == typeStop || t.pos >= len(t.data) {
		t.timer = nil
		return
	}
	t.timer = t.env.Scheduler.After(typeInterval, t.output)
}
