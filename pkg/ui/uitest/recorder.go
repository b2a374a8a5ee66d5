// Package uitest provides a recording ui.Presenter for tests.
package uitest

import (
	"sync"

	"github.com/entrhq/titlepanel/pkg/backend"
	"github.com/entrhq/titlepanel/pkg/ui"
)

// Recorder implements ui.Presenter by remembering every overlay it was
// asked to show. Confirm and credential prompts keep their callbacks so a
// test can answer them.
type Recorder struct {
	mu          sync.Mutex
	progress    []*Progress
	confirms    []*Confirm
	infos       []Info
	credentials []*Credentials
}

var _ ui.Presenter = (*Recorder)(nil)

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Info is one recorded informational overlay.
type Info struct {
	Title string
	Body  string
}

// ShowProgress records a new progress overlay.
func (r *Recorder) ShowProgress(title, body string) ui.Progress {
	p := &Progress{Title: title, texts: []string{body}}
	r.mu.Lock()
	r.progress = append(r.progress, p)
	r.mu.Unlock()
	return p
}

// Confirm records a prompt.
func (r *Recorder) Confirm(prompt ui.Prompt, onConfirm, onCancel func()) {
	c := &Confirm{Prompt: prompt, onConfirm: onConfirm, onCancel: onCancel}
	r.mu.Lock()
	r.confirms = append(r.confirms, c)
	r.mu.Unlock()
}

// Info records an informational overlay.
func (r *Recorder) Info(title, body string) {
	r.mu.Lock()
	r.infos = append(r.infos, Info{Title: title, Body: body})
	r.mu.Unlock()
}

// PromptCredentials records a credential prompt.
func (r *Recorder) PromptCredentials(title, body string, onSubmit func(username, password string), onCancel func()) {
	c := &Credentials{Title: title, Body: body, onSubmit: onSubmit, onCancel: onCancel}
	r.mu.Lock()
	r.credentials = append(r.credentials, c)
	r.mu.Unlock()
}

// ProgressOverlays returns the progress overlays opened so far.
func (r *Recorder) ProgressOverlays() []*Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Progress(nil), r.progress...)
}

// LastProgress returns the most recent progress overlay or nil.
func (r *Recorder) LastProgress() *Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.progress) == 0 {
		return nil
	}
	return r.progress[len(r.progress)-1]
}

// Confirms returns the recorded prompts.
func (r *Recorder) Confirms() []*Confirm {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Confirm(nil), r.confirms...)
}

// Infos returns the recorded informational overlays.
func (r *Recorder) Infos() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Info(nil), r.infos...)
}

// CredentialPrompts returns the recorded credential prompts.
func (r *Recorder) CredentialPrompts() []*Credentials {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Credentials(nil), r.credentials...)
}

// Progress is a recorded progress overlay.
type Progress struct {
	Title string

	mu       sync.Mutex
	texts    []string
	statuses []backend.OperationStatus
	closed   bool
}

// Update records a status and the text it renders to.
func (p *Progress) Update(status backend.OperationStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses = append(p.statuses, status)
	p.texts = append(p.texts, ui.ViewFor(status).Body)
}

// SetText records a body text.
func (p *Progress) SetText(body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.texts = append(p.texts, body)
}

// Close marks the overlay closed.
func (p *Progress) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

// Texts returns every body text shown, oldest first.
func (p *Progress) Texts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.texts...)
}

// Text returns the current body text.
func (p *Progress) Text() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.texts) == 0 {
		return ""
	}
	return p.texts[len(p.texts)-1]
}

// Statuses returns every status rendered, oldest first.
func (p *Progress) Statuses() []backend.OperationStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]backend.OperationStatus(nil), p.statuses...)
}

// Closed reports whether Close was called.
func (p *Progress) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Confirm is a recorded prompt.
type Confirm struct {
	Prompt ui.Prompt

	once      sync.Once
	onConfirm func()
	onCancel  func()
}

// Accept invokes the confirm callback.
func (c *Confirm) Accept() {
	c.once.Do(func() {
		if c.onConfirm != nil {
			c.onConfirm()
		}
	})
}

// Decline invokes the cancel callback.
func (c *Confirm) Decline() {
	c.once.Do(func() {
		if c.onCancel != nil {
			c.onCancel()
		}
	})
}

// Credentials is a recorded credential prompt.
type Credentials struct {
	Title string
	Body  string

	once     sync.Once
	onSubmit func(username, password string)
	onCancel func()
}

// Submit answers the prompt.
func (c *Credentials) Submit(username, password string) {
	c.once.Do(func() {
		if c.onSubmit != nil {
			c.onSubmit(username, password)
		}
	})
}

// Cancel dismisses the prompt.
func (c *Credentials) Cancel() {
	c.once.Do(func() {
		if c.onCancel != nil {
			c.onCancel()
		}
	})
}
