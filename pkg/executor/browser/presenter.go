package browser

import (
	"fmt"
	"sync"

	"github.com/entrhq/titlepanel/pkg/backend"
	"github.com/entrhq/titlepanel/pkg/dom"
	"github.com/entrhq/titlepanel/pkg/ui"
)

// overlayDrawer is the part of Page the presenter draws on.
type overlayDrawer interface {
	ShowOverlay(o dom.Overlay)
	CloseOverlay(id string)
}

// Presenter draws overlays into the page and routes button clicks back to
// their callbacks.
type Presenter struct {
	page overlayDrawer

	mu       sync.Mutex
	next     int
	handlers map[string]func(OverlayEvent)
}

var _ ui.Presenter = (*Presenter)(nil)

// NewPresenter creates a Presenter drawing on page.
func NewPresenter(page overlayDrawer) *Presenter {
	return &Presenter{page: page, handlers: make(map[string]func(OverlayEvent))}
}

// Handle dispatches an overlay button click. Unknown overlays are ignored.
func (p *Presenter) Handle(ev OverlayEvent) {
	p.mu.Lock()
	fn := p.handlers[ev.ID]
	p.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

func (p *Presenter) open(o dom.Overlay, handler func(OverlayEvent)) string {
	p.mu.Lock()
	p.next++
	o.ID = fmt.Sprintf("titlepanel-%d", p.next)
	p.handlers[o.ID] = handler
	p.mu.Unlock()

	p.page.ShowOverlay(o)
	return o.ID
}

// dismiss closes an overlay and reports whether it was still open.
func (p *Presenter) dismiss(id string) bool {
	p.mu.Lock()
	_, open := p.handlers[id]
	delete(p.handlers, id)
	p.mu.Unlock()

	if open {
		p.page.CloseOverlay(id)
	}
	return open
}

// ShowProgress opens a progress overlay with a close button.
func (p *Presenter) ShowProgress(title, body string) ui.Progress {
	prog := &progress{presenter: p, overlay: dom.Overlay{
		Title:   title,
		Body:    body,
		Buttons: []dom.OverlayButton{{Choice: dom.ChoiceClose, Label: "Close"}},
	}}
	prog.overlay.ID = p.open(prog.overlay, func(OverlayEvent) { prog.Close() })
	return prog
}

// Confirm shows a two-button overlay.
func (p *Presenter) Confirm(prompt ui.Prompt, onConfirm, onCancel func()) {
	confirm, cancel := prompt.Labels()
	var id string
	id = p.open(dom.Overlay{
		Title: prompt.Title,
		Body:  prompt.Body,
		Buttons: []dom.OverlayButton{
			{Choice: dom.ChoiceConfirm, Label: confirm},
			{Choice: dom.ChoiceCancel, Label: cancel},
		},
	}, func(ev OverlayEvent) {
		if !p.dismiss(id) {
			return
		}
		if ev.Choice == dom.ChoiceConfirm {
			call(onConfirm)
			return
		}
		call(onCancel)
	})
}

// Info shows a dismissable message.
func (p *Presenter) Info(title, body string) {
	var id string
	id = p.open(dom.Overlay{
		Title:   title,
		Body:    body,
		Buttons: []dom.OverlayButton{{Choice: dom.ChoiceClose, Label: "OK"}},
	}, func(OverlayEvent) { p.dismiss(id) })
}

// PromptCredentials shows a username and password form.
func (p *Presenter) PromptCredentials(title, body string, onSubmit func(username, password string), onCancel func()) {
	var id string
	id = p.open(dom.Overlay{
		Title:       title,
		Body:        body,
		Credentials: true,
		Buttons: []dom.OverlayButton{
			{Choice: dom.ChoiceSubmit, Label: "Save"},
			{Choice: dom.ChoiceCancel, Label: "Cancel"},
		},
	}, func(ev OverlayEvent) {
		if ev.Choice == dom.ChoiceSubmit && (ev.Username == "" || ev.Password == "") {
			return
		}
		if !p.dismiss(id) {
			return
		}
		if ev.Choice == dom.ChoiceSubmit {
			if onSubmit != nil {
				onSubmit(ev.Username, ev.Password)
			}
			return
		}
		call(onCancel)
	})
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

// progress is an open progress overlay.
type progress struct {
	presenter *Presenter

	mu      sync.Mutex
	overlay dom.Overlay
	closed  bool
}

func (g *progress) Update(status backend.OperationStatus) {
	view := ui.ViewFor(status)
	g.redraw(func(o *dom.Overlay) {
		o.Body = view.Body
		o.ShowBar = view.ShowBar
		o.Percent = view.Percent
	})
}

func (g *progress) SetText(body string) {
	g.redraw(func(o *dom.Overlay) {
		o.Body = body
		o.ShowBar = false
	})
}

func (g *progress) redraw(edit func(*dom.Overlay)) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	edit(&g.overlay)
	o := g.overlay
	g.mu.Unlock()

	g.presenter.page.ShowOverlay(o)
}

func (g *progress) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	id := g.overlay.ID
	g.mu.Unlock()

	g.presenter.dismiss(id)
}
