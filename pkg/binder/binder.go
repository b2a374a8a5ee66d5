// Package binder keeps exactly one panel bound to the host page.
//
// On every tick and every host mutation the Manager looks for the anchor
// element and the current item id. It tears the binding down when either
// disappears and rebuilds it when the item changes, the anchor element is
// replaced or the injected controls went missing. A binding is never
// patched in place.
package binder

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/entrhq/titlepanel/pkg/backend"
	"github.com/entrhq/titlepanel/pkg/clock"
	"github.com/entrhq/titlepanel/pkg/host"
	"github.com/entrhq/titlepanel/pkg/logging"
	"github.com/entrhq/titlepanel/pkg/panel"
	"github.com/entrhq/titlepanel/pkg/ui"
)

// DefaultTickInterval is the fixed re-check period.
const DefaultTickInterval = 2 * time.Second

// DefaultSelectors are tried in order to find the anchor.
var DefaultSelectors = []string{
	".steamdb-buttons",
	"[data-steamdb-buttons]",
	".apphub_OtherSiteInfo",
}

// DefaultIDPattern extracts the item id from the page address.
const DefaultIDPattern = `app/(\d+)`

// Options configures a Manager.
type Options struct {
	Page      host.Page
	Backend   backend.Backend
	Presenter ui.Presenter
	Clock     clock.Clock
	Logger    *logging.Logger

	Selectors    []string
	Matcher      *Matcher
	TickInterval time.Duration

	AcquireInterval time.Duration
	FixInterval     time.Duration
	SettleDelay     time.Duration
}

// Manager owns the single binding.
type Manager struct {
	opts Options

	mu      sync.Mutex
	binding *binding
}

// binding ties one anchor to one item and its panel.
type binding struct {
	key    string
	itemID int
	anchor host.Anchor
	panel  *panel.Panel
}

// New creates a Manager. A nil Matcher uses DefaultIDPattern with no URL
// restriction.
func New(opts Options) (*Manager, error) {
	if opts.Page == nil || opts.Backend == nil || opts.Presenter == nil {
		return nil, errors.New("binder: page, backend and presenter are required")
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard("binder")
	}
	if len(opts.Selectors) == 0 {
		opts.Selectors = DefaultSelectors
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.Matcher == nil {
		m, err := NewMatcher(DefaultIDPattern, nil)
		if err != nil {
			return nil, err
		}
		opts.Matcher = m
	}
	return &Manager{opts: opts}, nil
}

// Run reconciles immediately, then on every tick and host mutation, and
// routes clicks to the bound panel. It tears the binding down and returns
// when ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	ticker := m.opts.Clock.NewTicker(m.opts.TickInterval)
	defer ticker.Stop()
	defer m.Close()

	m.Reconcile(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.Reconcile(ctx)
		case <-m.opts.Page.Mutations():
			m.Reconcile(ctx)
		case click := <-m.opts.Page.Clicks():
			m.Dispatch(click)
		}
	}
}

// Reconcile brings the binding in line with the page. It is idempotent and
// serialized.
func (m *Manager) Reconcile(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	anchor, found := m.opts.Page.FindAnchor(m.opts.Selectors)
	if !found {
		m.teardownLocked("anchor not found")
		return
	}

	item, ok := m.opts.Matcher.Parse(m.opts.Page.Address())
	if !ok {
		m.teardownLocked("no item on page")
		anchor.Clear()
		return
	}

	b := m.binding
	switch {
	case b == nil:
	case b.itemID != item.ID:
		m.teardownLocked("item changed")
	case b.key != anchor.Key():
		m.teardownLocked("anchor replaced")
	case !anchor.HasControls():
		m.teardownLocked("controls missing")
	default:
		return
	}

	m.bindLocked(ctx, anchor, item.ID)
}

func (m *Manager) bindLocked(ctx context.Context, anchor host.Anchor, itemID int) {
	anchor.Clear()
	p := panel.New(ctx, panel.Options{
		ItemID:          itemID,
		Backend:         m.opts.Backend,
		Surface:         anchor,
		Presenter:       m.opts.Presenter,
		Clock:           m.opts.Clock,
		Logger:          m.opts.Logger.Named("panel"),
		AcquireInterval: m.opts.AcquireInterval,
		FixInterval:     m.opts.FixInterval,
		SettleDelay:     m.opts.SettleDelay,
	})
	m.binding = &binding{key: anchor.Key(), itemID: itemID, anchor: anchor, panel: p}
	m.opts.Logger.Infof("bound item %d to anchor %s", itemID, anchor.Key())
	p.Refresh()
}

func (m *Manager) teardownLocked(reason string) {
	b := m.binding
	if b == nil {
		return
	}
	m.binding = nil
	m.opts.Logger.Infof("unbinding item %d: %s", b.itemID, reason)
	b.panel.Close()
	b.anchor.Clear()
}

// Dispatch forwards a click to the bound panel when it targets the bound
// item.
func (m *Manager) Dispatch(click host.Click) {
	m.mu.Lock()
	b := m.binding
	m.mu.Unlock()

	if b == nil || b.itemID != click.ItemID {
		m.opts.Logger.Debugf("dropping %s click for item %d", click.Action, click.ItemID)
		return
	}
	if err := b.panel.Trigger(click.Action); err != nil {
		m.opts.Logger.Warnf("item %d: %v", click.ItemID, err)
	}
}

// Current returns the bound item id.
func (m *Manager) Current() (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.binding == nil {
		return 0, false
	}
	return m.binding.itemID, true
}

// Panel returns the bound panel, or nil.
func (m *Manager) Panel() *panel.Panel {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.binding == nil {
		return nil
	}
	return m.binding.panel
}

// Close tears the binding down.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teardownLocked("closed")
}
