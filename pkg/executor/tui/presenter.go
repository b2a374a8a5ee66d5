package tui

import (
	"fmt"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/titlepanel/pkg/backend"
	"github.com/entrhq/titlepanel/pkg/ui"
)

// sender delivers messages to the running program.
type sender interface {
	Send(msg tea.Msg)
}

// Presenter turns overlay requests from the engine into program
// messages. Callbacks run as commands, never on the event loop.
type Presenter struct {
	program sender
	next    atomic.Int64
}

var _ ui.Presenter = (*Presenter)(nil)

// NewPresenter creates a Presenter for program.
func NewPresenter(program sender) *Presenter {
	return &Presenter{program: program}
}

func (p *Presenter) newID() string {
	return fmt.Sprintf("overlay-%d", p.next.Add(1))
}

// ShowProgress opens a progress overlay.
func (p *Presenter) ShowProgress(title, body string) ui.Progress {
	id := p.newID()
	p.program.Send(openOverlayMsg{overlay: newProgressOverlay(id, title, body)})
	return &progressHandle{program: p.program, id: id}
}

// Confirm opens a two-choice prompt.
func (p *Presenter) Confirm(prompt ui.Prompt, onConfirm, onCancel func()) {
	p.program.Send(openOverlayMsg{overlay: &confirmOverlay{
		key:       p.newID(),
		prompt:    prompt,
		onConfirm: onConfirm,
		onCancel:  onCancel,
	}})
}

// Info opens a message overlay.
func (p *Presenter) Info(title, body string) {
	p.program.Send(openOverlayMsg{overlay: &infoOverlay{key: p.newID(), title: title, body: body}})
}

// PromptCredentials opens the username and password form.
func (p *Presenter) PromptCredentials(title, body string, onSubmit func(username, password string), onCancel func()) {
	p.program.Send(openOverlayMsg{overlay: newCredentialsOverlay(p.newID(), title, body, onSubmit, onCancel)})
}

type progressHandle struct {
	program sender
	id      string
	closed  atomic.Bool
}

func (h *progressHandle) Update(status backend.OperationStatus) {
	if h.closed.Load() {
		return
	}
	h.program.Send(progressMsg{id: h.id, view: ui.ViewFor(status)})
}

func (h *progressHandle) SetText(body string) {
	if h.closed.Load() {
		return
	}
	h.program.Send(progressMsg{id: h.id, view: ui.ProgressView{Body: body}})
}

func (h *progressHandle) Close() {
	if h.closed.CompareAndSwap(false, true) {
		h.program.Send(closeOverlayMsg{id: h.id})
	}
}
