// Package host describes the page the panel is injected into. The binder
// consumes it; the in-memory document, the browser driver and the terminal
// UI implement it.
package host

import "github.com/entrhq/titlepanel/pkg/panel"

// Page is the observed host page.
type Page interface {
	// Address returns the current page address.
	Address() string

	// FindAnchor returns the first element matching selectors, tried in
	// order.
	FindAnchor(selectors []string) (Anchor, bool)

	// Mutations signals host DOM changes. Signals may be coalesced.
	Mutations() <-chan struct{}

	// Clicks delivers user clicks on injected controls.
	Clicks() <-chan Click
}

// Anchor is the element the panel's controls are injected into.
type Anchor interface {
	panel.Surface

	// Key identifies the element. A host that replaces the element
	// yields a new key.
	Key() string

	// HasControls reports whether the injected controls are still in
	// place.
	HasControls() bool

	// Clear removes the injected controls.
	Clear()
}

// Click is a user click on an injected control.
type Click struct {
	ItemID int
	Action panel.Action
}
