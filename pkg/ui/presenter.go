// Package ui defines the overlay surface the panel, the trackers and the
// update gate talk to. Hosts (the terminal UI, the browser page, tests)
// implement Presenter; the engine never draws anything itself.
package ui

import "github.com/entrhq/titlepanel/pkg/backend"

// Presenter shows modal overlays. Implementations must be safe for
// concurrent use and must not block on user input: answers come back
// through the callbacks, which may run on any goroutine.
type Presenter interface {
	// ShowProgress opens a progress overlay and returns a handle to it.
	ShowProgress(title, body string) Progress

	// Confirm shows a two-choice prompt. Exactly one of the callbacks is
	// invoked, at most once. Either may be nil.
	Confirm(prompt Prompt, onConfirm, onCancel func())

	// Info shows a plain informational overlay.
	Info(title, body string)

	// PromptCredentials asks for a username and password.
	PromptCredentials(title, body string, onSubmit func(username, password string), onCancel func())
}

// Progress is a handle to an open progress overlay.
type Progress interface {
	// Update renders one poll observation.
	Update(status backend.OperationStatus)

	// SetText replaces the body text and hides the bar.
	SetText(body string)

	// Close dismisses the overlay.
	Close()
}

// Prompt describes a Confirm dialog.
type Prompt struct {
	Title        string
	Body         string
	ConfirmLabel string
	CancelLabel  string
}

// Labels returns the button labels with defaults applied.
func (p Prompt) Labels() (confirm, cancel string) {
	confirm, cancel = p.ConfirmLabel, p.CancelLabel
	if confirm == "" {
		confirm = "OK"
	}
	if cancel == "" {
		cancel = "Cancel"
	}
	return confirm, cancel
}
