package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/titlepanel/pkg/panel"
)

// shortcuts trigger a control directly from the panel.
var shortcuts = map[string]panel.Action{
	"a": panel.ActionAdd,
	"x": panel.ActionRemove,
	"r": panel.ActionRequest,
	"f": panel.ActionFixApply,
	"F": panel.ActionFixRemove,
	"R": panel.ActionRestart,
}

// Update handles Bubble Tea messages.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.address.Width = max(msg.Width-12, 10)
		m.ready = true
		return m, nil

	case refreshMsg:
		_, _, controls, _ := m.doc.Controls()
		m.selected = clamp(m.selected, len(controls))
		return m, refreshTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case openOverlayMsg:
		m.overlays.push(msg.overlay)
		return m, nil

	case progressMsg:
		if o, ok := m.overlays.find(msg.id).(*progressOverlay); ok {
			o.apply(msg.view)
		}
		return m, nil

	case closeOverlayMsg:
		m.overlays.remove(msg.id)
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Copy failed: %v", msg.err), true)
		} else {
			m.setStatus("Copied to clipboard", false)
		}
		return m, nil

	case statusMsg:
		m.setStatus(msg.text, msg.isErr)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == keyCtrlC {
		return m, tea.Quit
	}

	if top := m.overlays.top(); top != nil {
		done, cmd := top.update(msg)
		if done {
			m.overlays.remove(top.id())
		}
		return m, cmd
	}

	if m.focus == focusAddress {
		return m.handleAddressKey(msg)
	}
	return m.handlePanelKey(msg)
}

func (m *model) handleAddressKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEnter:
		address := strings.TrimSpace(m.address.Value())
		if address != "" {
			m.doc.Navigate(address)
			m.selected = 0
			m.setStatus("Opened "+address, false)
		}
		m.focusPanel()
		return m, nil
	case keyEsc, keyTab:
		m.address.SetValue(m.doc.Address())
		m.focusPanel()
		return m, nil
	}

	var cmd tea.Cmd
	m.address, cmd = m.address.Update(msg)
	return m, cmd
}

func (m *model) handlePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	_, _, controls, _ := m.doc.Controls()

	switch key := msg.String(); key {
	case "q":
		return m, tea.Quit
	case "/", keyTab:
		m.focus = focusAddress
		return m, m.address.Focus()
	case "left", "h":
		m.selected = clamp(m.selected-1, len(controls))
	case "right", "l":
		m.selected = clamp(m.selected+1, len(controls))
	case keyEnter, " ":
		if m.selected < len(controls) {
			return m, m.click(controls[m.selected].Action, controls[m.selected].Disabled)
		}
	default:
		if action, ok := shortcuts[key]; ok {
			for i, c := range controls {
				if c.Action == action {
					m.selected = i
					return m, m.click(c.Action, c.Disabled)
				}
			}
			m.setStatus(fmt.Sprintf("%s is not available", action), true)
		}
	}
	return m, nil
}

func (m *model) focusPanel() {
	m.focus = focusPanel
	m.address.Blur()
}

// click forwards a control click to the page off the event loop.
func (m *model) click(action panel.Action, disabled bool) tea.Cmd {
	if action == "" || disabled {
		m.setStatus("That control is disabled", true)
		return nil
	}
	doc := m.doc
	return func() tea.Msg {
		if err := doc.Click(action); err != nil {
			return statusMsg{text: err.Error(), isErr: true}
		}
		return nil
	}
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
