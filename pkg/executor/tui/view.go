package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/titlepanel/pkg/panel"
)

// View renders the address bar, the panel row and the status bar, or the
// focused overlay on top of them.
func (m *model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if top := m.overlays.top(); top != nil {
		return renderOverlay(top, m.width, m.height)
	}

	sections := []string{
		headerStyle.Render("titlepanel") + tipsStyle.Render("  host page simulator"),
		addressBoxStyle.Width(max(m.width-4, 20)).Render(m.address.View()),
		m.buildPanel(),
		m.buildStatusBar(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *model) buildPanel() string {
	itemID, mode, controls, ok := m.doc.Controls()
	if !ok {
		return panelBoxStyle.Render(tipsStyle.Render("No title on this page"))
	}

	heading := fmt.Sprintf("Title %d · %s", itemID, mode)
	if mode == panel.ModeChecking || mode == panel.ModeUnavailable {
		heading = m.spinner.View() + " " + heading
	}

	buttons := make([]string, 0, len(controls))
	var tooltip string
	for i, c := range controls {
		style := controlStyle
		switch {
		case c.Disabled || c.Action == "":
			style = disabledControlStyle
		case i == m.selected && m.focus == focusPanel:
			style = selectedControlStyle
		}
		if i == m.selected {
			tooltip = c.Tooltip
		}
		buttons = append(buttons, style.Render(c.Label))
	}

	lines := []string{tipsStyle.Render(heading), lipgloss.JoinHorizontal(lipgloss.Top, buttons...)}
	if tooltip != "" {
		lines = append(lines, tooltipStyle.Render(tooltip))
	}
	return panelBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *model) buildStatusBar() string {
	help := "←/→ select • enter click • a add • x remove • r request • f/F fix • R restart • / address • q quit"
	if m.focus == focusAddress {
		help = "enter open • esc cancel"
	}
	parts := []string{tipsStyle.Render(help)}
	if m.status != "" {
		style := tipsStyle
		if m.statusErr {
			style = errorStyle
		}
		parts = append([]string{style.Render(m.status)}, parts...)
	}
	if n := m.overlays.len(); n > 0 {
		parts = append(parts, tipsStyle.Render(fmt.Sprintf("%d overlay(s) open", n)))
	}
	return statusBarStyle.Render(strings.Join(parts, "  "))
}
