package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/titlepanel/pkg/dom"
	"github.com/entrhq/titlepanel/pkg/ui"
)

// refreshInterval is how often the page is re-read for the panel row.
const refreshInterval = 200 * time.Millisecond

// focusArea is the part of the screen receiving keys when no overlay is
// open.
type focusArea int

const (
	focusPanel focusArea = iota
	focusAddress
)

// model represents the state of the TUI application.
type model struct {
	// Bubble Tea components
	address textinput.Model
	spinner spinner.Model

	// The host page the binder injects into
	doc *dom.Document

	// UI state
	overlays  overlayStack
	focus     focusArea
	selected  int
	status    string
	statusErr bool

	// Window dimensions
	width  int
	height int
	ready  bool
}

// openOverlayMsg pushes an overlay.
type openOverlayMsg struct {
	overlay overlay
}

// progressMsg redraws an open progress overlay.
type progressMsg struct {
	id   string
	view ui.ProgressView
}

// closeOverlayMsg closes an overlay wherever it is in the stack.
type closeOverlayMsg struct {
	id string
}

// refreshMsg re-reads the page.
type refreshMsg struct{}

// statusMsg sets the status bar.
type statusMsg struct {
	text  string
	isErr bool
}

func newModel(doc *dom.Document) *model {
	address := textinput.New()
	address.Prompt = "› "
	address.Placeholder = "https://store.steampowered.com/app/730/"
	address.SetValue(doc.Address())
	address.CharLimit = 2048

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = tipsStyle

	return &model{
		address: address,
		spinner: s,
		doc:     doc,
	}
}

func refreshTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })
}

// Init starts the spinner and the page refresh loop.
func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, refreshTick())
}
