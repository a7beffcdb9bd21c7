package bookmark

import (
	"context"
	"strconv"
)

// Deck is the part of a slide table the resolver needs.
type Deck interface {
	// Shows reports whether key names a section or aside.
	Shows(key string) bool
}

// Title is the fallback start key.
const Title = "title"

// Resolve chooses the key of the slide to open first: a fragment naming a
// displayable slide wins, then the stored bookmark, then the title. Storage
// errors are returned alongside the fallback so callers can log them.
func Resolve(ctx context.Context, deck Deck, store Store, addr string) (string, error) {
	if frag, ok := Fragment(addr); ok && deck.Shows(frag) {
		return frag, nil
	}
	if store == nil {
		return Title, nil
	}
	v, ok, err := store.Get(ctx, Key(addr))
	if err != nil {
		return Title, err
	}
	if ok && deck.Shows(v) {
		return v, nil
	}
	return Title, nil
}

// Save records id as the bookmark for addr.
func Save(ctx context.Context, store Store, addr string, id int) error {
	if store == nil {
		return nil
	}
	return store.Set(ctx, Key(addr), strconv.Itoa(id))
}
