// Package mirror replays key presses from a primary deck session onto a
// child window showing the same deck.
package mirror

import "sync"

// Target is the child's key entry point.
type Target interface {
	DoKey(key string, shift, ctrl bool)
	// Closed reports whether the child has gone away.
	Closed() bool
}

// Mirror holds at most one child. It does not own the child: a closed child
// is dropped on the next forward.
type Mirror struct {
	mu    sync.Mutex
	child Target
}

// Attach makes t the child, replacing any previous one.
func (m *Mirror) Attach(t Target) {
	m.mu.Lock()
	m.child = t
	m.mu.Unlock()
}

// Detach forgets t if it is the current child.
func (m *Mirror) Detach(t Target) {
	m.mu.Lock()
	if m.child == t {
		m.child = nil
	}
	m.mu.Unlock()
}

// Attached reports whether a live child is present.
func (m *Mirror) Attached() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.child != nil && !m.child.Closed()
}

// Forward replays a key on the child. Callers invoke it only after the
// primary has finished processing the key.
func (m *Mirror) Forward(key string, shift, ctrl bool) {
	m.mu.Lock()
	child := m.child
	if child != nil && child.Closed() {
		m.child, child = nil, nil
	}
	m.mu.Unlock()
	if child != nil {
		child.DoKey(key, shift, ctrl)
	}
}
