package tui

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/titlepanel/pkg/ui"
)

const (
	overlayWidth = 64

	keyCtrlC    = "ctrl+c"
	keyEsc      = "esc"
	keyEnter    = "enter"
	keyTab      = "tab"
	keyShiftTab = "shift+tab"
)

// overlay is a modal box. update reports done when the overlay wants to
// be closed; the returned command runs after it is gone.
type overlay interface {
	id() string
	update(msg tea.KeyMsg) (done bool, cmd tea.Cmd)
	view(width int) string
}

// callback wraps fn as a command so engine callbacks never run on the
// event loop.
func callback(fn func()) tea.Cmd {
	if fn == nil {
		return nil
	}
	return func() tea.Msg {
		fn()
		return nil
	}
}

// copiedMsg reports a clipboard copy.
type copiedMsg struct {
	err error
}

func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{err: clipboard.WriteAll(text)}
	}
}

func frame(width int, sections ...string) string {
	return overlayContainerStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// progressOverlay follows one tracked operation.
type progressOverlay struct {
	key     string
	title   string
	current ui.ProgressView
	bar     progress.Model
}

func newProgressOverlay(id, title, body string) *progressOverlay {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40
	return &progressOverlay{key: id, title: title, current: ui.ProgressView{Body: body}, bar: bar}
}

func (o *progressOverlay) id() string { return o.key }

func (o *progressOverlay) apply(v ui.ProgressView) {
	o.current = v
}

func (o *progressOverlay) update(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case keyEsc, keyEnter:
		return true, nil
	case "c":
		return false, copyCmd(o.current.Body)
	}
	return false, nil
}

func (o *progressOverlay) view(width int) string {
	sections := []string{overlayTitleStyle.Render(o.title), "", o.current.Body}
	if o.current.ShowBar {
		sections = append(sections, "", o.bar.ViewAs(float64(o.current.Percent)/100))
	}
	sections = append(sections, "", overlayHelpStyle.Render("c copy • esc hide"))
	return frame(width, sections...)
}

// infoOverlay is a dismissable message.
type infoOverlay struct {
	key   string
	title string
	body  string
}

func (o *infoOverlay) id() string { return o.key }

func (o *infoOverlay) update(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case keyEsc, keyEnter:
		return true, nil
	case "c":
		return false, copyCmd(o.body)
	}
	return false, nil
}

func (o *infoOverlay) view(width int) string {
	return frame(width,
		overlayTitleStyle.Render(o.title), "", o.body, "",
		overlayHelpStyle.Render("enter close • c copy"))
}

// confirmOverlay is a two-choice prompt. Exactly one callback runs.
type confirmOverlay struct {
	key       string
	prompt    ui.Prompt
	selected  int // 0 confirm, 1 cancel
	onConfirm func()
	onCancel  func()
}

func (o *confirmOverlay) id() string { return o.key }

func (o *confirmOverlay) update(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "left", "right", "h", "l", keyTab, keyShiftTab:
		o.selected = 1 - o.selected
	case "y":
		return true, callback(o.onConfirm)
	case "n", keyEsc:
		return true, callback(o.onCancel)
	case keyEnter:
		if o.selected == 0 {
			return true, callback(o.onConfirm)
		}
		return true, callback(o.onCancel)
	}
	return false, nil
}

func (o *confirmOverlay) view(width int) string {
	confirm, cancel := o.prompt.Labels()
	buttons := []string{confirm, cancel}
	for i, label := range buttons {
		style := controlStyle
		if i == o.selected {
			style = selectedControlStyle
		}
		buttons[i] = style.Render(label)
	}
	return frame(width,
		overlayTitleStyle.Render(o.prompt.Title), "", o.prompt.Body, "",
		lipgloss.JoinHorizontal(lipgloss.Top, buttons[0], " ", buttons[1]),
		overlayHelpStyle.Render("←/→ choose • enter select • y/n"))
}

// credentialsOverlay asks for a username and password.
type credentialsOverlay struct {
	key      string
	title    string
	body     string
	username textinput.Model
	password textinput.Model
	onSubmit func(username, password string)
	onCancel func()
}

func newCredentialsOverlay(id, title, body string, onSubmit func(string, string), onCancel func()) *credentialsOverlay {
	username := textinput.New()
	username.Placeholder = "Username"
	username.Focus()

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword

	return &credentialsOverlay{
		key:      id,
		title:    title,
		body:     body,
		username: username,
		password: password,
		onSubmit: onSubmit,
		onCancel: onCancel,
	}
}

func (o *credentialsOverlay) id() string { return o.key }

func (o *credentialsOverlay) switchFocus() {
	if o.username.Focused() {
		o.username.Blur()
		o.password.Focus()
		return
	}
	o.password.Blur()
	o.username.Focus()
}

func (o *credentialsOverlay) update(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		return true, callback(o.onCancel)
	case keyTab, keyShiftTab, "up", "down":
		o.switchFocus()
		return false, nil
	case keyEnter:
		user := strings.TrimSpace(o.username.Value())
		pass := o.password.Value()
		if o.username.Focused() || user == "" || pass == "" {
			if o.username.Focused() {
				o.switchFocus()
			}
			return false, nil
		}
		submit := o.onSubmit
		if submit == nil {
			return true, nil
		}
		return true, callback(func() { submit(user, pass) })
	}

	var cmd tea.Cmd
	if o.username.Focused() {
		o.username, cmd = o.username.Update(msg)
	} else {
		o.password, cmd = o.password.Update(msg)
	}
	return false, cmd
}

func (o *credentialsOverlay) view(width int) string {
	return frame(width,
		overlayTitleStyle.Render(o.title), "", o.body, "",
		o.username.View(), o.password.View(), "",
		overlayHelpStyle.Render("tab switch field • enter save • esc cancel"))
}
