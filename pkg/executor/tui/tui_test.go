package tui

import (
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/titlepanel/pkg/backend"
	"github.com/entrhq/titlepanel/pkg/dom"
	"github.com/entrhq/titlepanel/pkg/host"
	"github.com/entrhq/titlepanel/pkg/panel"
	"github.com/entrhq/titlepanel/pkg/ui"
)

const address = "https://store.steampowered.com/app/730/"

func boolPtr(v bool) *bool { return &v }

// newTestModel returns a sized model whose page shows view for item 730.
func newTestModel(t *testing.T, state panel.State) (*model, *dom.Document) {
	t.Helper()
	doc, err := dom.Parse(address, hostPage)
	require.NoError(t, err)

	anchor, ok := doc.FindAnchor([]string{".steamdb-buttons"})
	require.True(t, ok)
	anchor.Render(730, panel.Derive(state))

	m := newModel(doc)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, doc
}

func key(s string) tea.KeyMsg {
	switch s {
	case keyEnter:
		return tea.KeyMsg{Type: tea.KeyEnter}
	case keyEsc:
		return tea.KeyMsg{Type: tea.KeyEsc}
	case keyTab:
		return tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes cmd and feeds its message back into the model.
func run(m *model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		m.Update(msg)
	}
}

func nextClick(t *testing.T, doc *dom.Document) host.Click {
	t.Helper()
	select {
	case c := <-doc.Clicks():
		return c
	default:
		t.Fatal("no click delivered")
		return host.Click{}
	}
}

func TestModel_RendersPanelFromPage(t *testing.T) {
	m, _ := newTestModel(t, panel.State{Exists: boolPtr(false), Available: boolPtr(true), Message: "on mirror-a"})

	out := m.View()
	assert.Contains(t, out, "Title 730")
	assert.Contains(t, out, panel.LabelRestart)
	assert.Contains(t, out, panel.LabelAdd)
}

func TestModel_NoTitle(t *testing.T) {
	doc, err := dom.Parse("https://store.steampowered.com/search/", hostPage)
	require.NoError(t, err)
	m := newModel(doc)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	assert.Contains(t, m.View(), "No title on this page")
}

func TestModel_SelectAndClick(t *testing.T) {
	m, doc := newTestModel(t, panel.State{Exists: boolPtr(false), Available: boolPtr(true)})

	m.Update(key("right"))
	_, cmd := m.Update(key(keyEnter))
	run(m, cmd)

	assert.Equal(t, host.Click{ItemID: 730, Action: panel.ActionAdd}, nextClick(t, doc))
}

func TestModel_Shortcut(t *testing.T) {
	m, doc := newTestModel(t, panel.State{Exists: boolPtr(true)})

	_, cmd := m.Update(key("x"))
	run(m, cmd)
	assert.Equal(t, panel.ActionRemove, nextClick(t, doc).Action)

	_, cmd = m.Update(key("a"))
	assert.Nil(t, cmd)
	assert.True(t, m.statusErr)
}

func TestModel_DisabledControlDoesNotClick(t *testing.T) {
	m, doc := newTestModel(t, panel.State{
		Exists:         boolPtr(false),
		Available:      boolPtr(false),
		Requested:      true,
		RequestMessage: "Queued",
	})

	_, cmd := m.Update(key("r"))
	assert.Nil(t, cmd)
	assert.Empty(t, doc.Clicks())
	assert.Contains(t, m.View(), "Queued")
}

func TestModel_AddressNavigates(t *testing.T) {
	m, doc := newTestModel(t, panel.State{})

	m.Update(key("/"))
	require.Equal(t, focusAddress, m.focus)
	m.address.SetValue("https://store.steampowered.com/app/440/")
	m.Update(key(keyEnter))

	assert.Equal(t, focusPanel, m.focus)
	assert.Equal(t, "https://store.steampowered.com/app/440/", doc.Address())
}

func TestModel_AddressEscRestores(t *testing.T) {
	m, doc := newTestModel(t, panel.State{})

	m.Update(key(keyTab))
	m.address.SetValue("typo")
	m.Update(key(keyEsc))

	assert.Equal(t, address, doc.Address())
	assert.Equal(t, address, m.address.Value())
}

func TestModel_ProgressOverlayLifecycle(t *testing.T) {
	m, _ := newTestModel(t, panel.State{})

	m.Update(openOverlayMsg{overlay: newProgressOverlay("p1", "Adding title", ui.TextRequesting)})
	assert.Contains(t, m.View(), ui.TextRequesting)

	m.Update(progressMsg{id: "p1", view: ui.ViewFor(backend.OperationStatus{
		Status: backend.StatusDownloading, BytesRead: 1, TotalBytes: 2,
	})})
	assert.Contains(t, m.View(), "Downloading... 50%")

	m.Update(closeOverlayMsg{id: "p1"})
	assert.False(t, m.overlays.isActive())
	assert.Contains(t, m.View(), "Title 730")
}

func TestModel_ConfirmRunsOneCallback(t *testing.T) {
	m, _ := newTestModel(t, panel.State{})

	var confirmed, cancelled int
	m.Update(openOverlayMsg{overlay: &confirmOverlay{
		key:       "c1",
		prompt:    ui.Prompt{Title: "Restart host?", ConfirmLabel: "Restart"},
		onConfirm: func() { confirmed++ },
		onCancel:  func() { cancelled++ },
	}})
	assert.Contains(t, m.View(), "Restart host?")

	// Keys go to the overlay, not the panel.
	m.Update(key("right"))
	_, cmd := m.Update(key(keyEnter))
	run(m, cmd)

	assert.Zero(t, confirmed)
	assert.Equal(t, 1, cancelled)
	assert.False(t, m.overlays.isActive())
}

func TestModel_CredentialsSubmit(t *testing.T) {
	m, _ := newTestModel(t, panel.State{})

	var user, pass string
	m.Update(openOverlayMsg{overlay: newCredentialsOverlay("k1", "Sign in", "needed",
		func(u, p string) { user, pass = u, p }, nil)})

	m.Update(key("gaben"))
	m.Update(key(keyEnter))
	_, cmd := m.Update(key(keyEnter))
	assert.Nil(t, cmd, "empty password keeps the form open")

	m.Update(key("hunter2"))
	_, cmd = m.Update(key(keyEnter))
	run(m, cmd)

	assert.Equal(t, "gaben", user)
	assert.Equal(t, "hunter2", pass)
	assert.False(t, m.overlays.isActive())
}

func TestModel_StackedOverlays(t *testing.T) {
	m, _ := newTestModel(t, panel.State{})

	m.Update(openOverlayMsg{overlay: newProgressOverlay("p1", "Applying fix", ui.TextRequesting)})
	m.Update(openOverlayMsg{overlay: &infoOverlay{key: "i1", title: "Saved", body: "Credentials saved"}})
	assert.Contains(t, m.View(), "Credentials saved")

	m.Update(key(keyEnter))
	assert.Contains(t, m.View(), "Applying fix")
	assert.Equal(t, 1, m.overlays.len())
}

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func TestPresenter_Messages(t *testing.T) {
	s := &recordingSender{}
	p := NewPresenter(s)

	prog := p.ShowProgress("Adding title", ui.TextRequesting)
	prog.Update(backend.OperationStatus{Status: backend.StatusInstalling})
	prog.SetText("Failed: disk full")
	prog.Close()
	prog.Close()
	prog.SetText("late")
	p.Info("Request failed", "Rate limited")

	require.Len(t, s.msgs, 5)
	open, ok := s.msgs[0].(openOverlayMsg)
	require.True(t, ok)
	id := open.overlay.id()

	assert.Equal(t, progressMsg{id: id, view: ui.ProgressView{Body: "Installing..."}}, s.msgs[1])
	assert.Equal(t, progressMsg{id: id, view: ui.ProgressView{Body: "Failed: disk full"}}, s.msgs[2])
	assert.Equal(t, closeOverlayMsg{id: id}, s.msgs[3])

	info, ok := s.msgs[4].(openOverlayMsg)
	require.True(t, ok)
	assert.NotEqual(t, id, info.overlay.id())
}
