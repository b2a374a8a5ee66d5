package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// overlayStack holds the open overlays; the last one has focus. Progress
// overlays stay open underneath prompts that a tracker raises later.
type overlayStack struct {
	entries []overlay
}

// push activates o on top of the current overlays.
func (s *overlayStack) push(o overlay) {
	s.entries = append(s.entries, o)
}

// top returns the focused overlay, or nil.
func (s *overlayStack) top() overlay {
	if len(s.entries) == 0 {
		return nil
	}
	return s.entries[len(s.entries)-1]
}

// pop closes the focused overlay.
func (s *overlayStack) pop() {
	if len(s.entries) > 0 {
		s.entries = s.entries[:len(s.entries)-1]
	}
}

// find returns the open overlay with id.
func (s *overlayStack) find(id string) overlay {
	for _, o := range s.entries {
		if o.id() == id {
			return o
		}
	}
	return nil
}

// remove closes the overlay with id wherever it is in the stack.
func (s *overlayStack) remove(id string) bool {
	for i, o := range s.entries {
		if o.id() == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (s *overlayStack) isActive() bool {
	return len(s.entries) > 0
}

func (s *overlayStack) len() int {
	return len(s.entries)
}

// renderOverlay renders an overlay centered on a clean background
func renderOverlay(o overlay, width, height int) string {
	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		o.view(min(width-4, overlayWidth)),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("0")),
	)
}
