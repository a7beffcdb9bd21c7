// Package bookmark remembers the last slide shown for each deck address and
// resolves the slide to start from when a deck is opened.
package bookmark

import (
	"strconv"
	"strings"
)

// Suffix is appended to the canonical address to form the storage key.
const Suffix = "#slide"

const ticketParam = "?ticket="

// Canonical strips the query and fragment from an address.
func Canonical(addr string) string {
	if i := strings.IndexByte(addr, '?'); i >= 0 {
		addr = addr[:i]
	}
	if i := strings.IndexByte(addr, '#'); i >= 0 {
		addr = addr[:i]
	}
	return addr
}

// Key is the storage key for an address.
func Key(addr string) string {
	return Canonical(addr) + Suffix
}

// Fragment returns the part of an address after the first '#', with any
// query trailing the fragment dropped.
func Fragment(addr string) (string, bool) {
	i := strings.IndexByte(addr, '#')
	if i < 0 {
		return "", false
	}
	frag := addr[i+1:]
	if j := strings.IndexByte(frag, '?'); j >= 0 {
		frag = frag[:j]
	}
	return frag, true
}

// StripTicket removes a single-sign-on ticket parameter, and everything
// after it, from an address. The bool reports whether the browser history
// entry needs replacing.
func StripTicket(addr string) (string, bool) {
	i := strings.Index(addr, ticketParam)
	if i < 0 {
		return addr, false
	}
	return addr[:i], true
}

// Permalink is the bookmarkable address of a slide.
func Permalink(addr string, id int) string {
	return Canonical(addr) + "#" + strconv.Itoa(id)
}
