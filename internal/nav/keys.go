package nav

import "github.com/livetemplate/wrap/internal/keys"

// KeyEvent is a raw keyboard event from the viewer.
type KeyEvent struct {
	Key         string
	Shift, Ctrl bool
	Alt, Meta   bool
	// Handled is set when the page already acted on the event.
	Handled bool
}

// Command is a window-level action requested by a key.
type Command int

const (
	CommandNone Command = iota
	// CommandOpenChild asks the viewer to open a mirrored child window.
	CommandOpenChild
	// CommandPreview means the deck was laid out for printing.
	CommandPreview
)

// HandleKeyEvent filters browser shortcuts out of raw key events, handles
// the accepted ones and then replays them on the child window.
//
// Function keys, ctrl+c and bare modifiers are ignored. Alt or meta
// combinations are left to the browser except alt+w, which opens a child
// window, and alt+p, which prepares print preview.
func (n *Navigator) HandleKeyEvent(ev KeyEvent) Command {
	if ev.Handled || keys.IsFunction(ev.Key) {
		return CommandNone
	}
	if ev.Ctrl && ev.Key == "c" {
		return CommandNone
	}
	if ev.Alt || ev.Meta {
		switch ev.Key {
		case "w":
			return CommandOpenChild
		case "p":
			n.Preview()
			return CommandPreview
		}
		return CommandNone
	}
	if keys.IsModifier(ev.Key) {
		return CommandNone
	}
	n.DoKey(ev.Key, ev.Shift, ev.Ctrl)
	n.mirror.Forward(ev.Key, ev.Shift, ev.Ctrl)
	return CommandNone
}
