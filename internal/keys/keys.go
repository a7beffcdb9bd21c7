// Package keys classifies the key names delivered by the browser.
package keys

import "strings"

// Navigation key names.
const (
	PageDown   = "PageDown"
	PageUp     = "PageUp"
	ArrowRight = "ArrowRight"
	ArrowLeft  = "ArrowLeft"
	ArrowDown  = "ArrowDown"
	ArrowUp    = "ArrowUp"
	Enter      = "Enter"
)

// IsForward reports whether key advances (page-down, right, down).
func IsForward(key string) bool {
	return key == PageDown || key == ArrowRight || key == ArrowDown
}

// IsBackward reports whether key goes back (page-up, left, up).
func IsBackward(key string) bool {
	return key == PageUp || key == ArrowLeft || key == ArrowUp
}

// IsFunction reports whether key is a function key such as F5 or F12.
func IsFunction(key string) bool {
	return len(key) > 1 && key[0] == 'F' && strings.Trim(key[1:], "0123456789") == ""
}

// IsModifier reports whether key is a bare modifier key event.
func IsModifier(key string) bool {
	switch key {
	case "Shift", "Control", "Alt", "Meta", "AltGraph", "CapsLock":
		return true
	}
	return false
}

// IsPrintable reports whether key produces a single character.
func IsPrintable(key string) bool {
	return len([]rune(key)) == 1
}
