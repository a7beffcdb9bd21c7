package wrap

import (
	"fmt"
	"strings"
)

// DeckError describes a deck that could not be loaded, with enough context
// to fix it.
type DeckError struct {
	File    string // Source file path
	Message string // What went wrong
	Hint    string // Helpful suggestion
	Err     error  // Underlying cause
}

// NewDeckError creates a DeckError for file.
func NewDeckError(file, message string) *DeckError {
	return &DeckError{File: file, Message: message}
}

// Error implements the error interface.
func (e *DeckError) Error() string {
	return e.Format()
}

// Unwrap exposes the underlying cause.
func (e *DeckError) Unwrap() error { return e.Err }

// Format returns the message with file context and hint.
func (e *DeckError) Format() string {
	var b strings.Builder
	file := e.File
	if file == "" {
		file = "deck"
	}
	b.WriteString(fmt.Sprintf("❌ Error in %s\n\n", file))
	b.WriteString(e.Message + "\n")
	if e.Err != nil {
		b.WriteString(fmt.Sprintf("\nCause: %v\n", e.Err))
	}
	if e.Hint != "" {
		b.WriteString(fmt.Sprintf("\n💡 Tip: %s\n", e.Hint))
	}
	return b.String()
}

// WithHint adds a helpful hint to the error.
func (e *DeckError) WithHint(hint string) *DeckError {
	e.Hint = hint
	return e
}

// WithCause records the underlying error.
func (e *DeckError) WithCause(err error) *DeckError {
	e.Err = err
	return e
}
