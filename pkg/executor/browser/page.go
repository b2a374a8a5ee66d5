package browser

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/titlepanel/pkg/dom"
	"github.com/entrhq/titlepanel/pkg/host"
	"github.com/entrhq/titlepanel/pkg/logging"
	"github.com/entrhq/titlepanel/pkg/panel"
)

// OverlayEvent is a click on an overlay button.
type OverlayEvent struct {
	ID       string
	Choice   string
	Username string
	Password string
}

// Page adapts a Playwright page to host.Page.
type Page struct {
	page   playwright.Page
	logger *logging.Logger

	mutations chan struct{}
	clicks    chan host.Click

	mu        sync.Mutex
	onOverlay func(OverlayEvent)
}

var _ host.Page = (*Page)(nil)

// NewPage installs the init script and the exposed functions on pw. It must
// run before the first navigation.
func NewPage(pw playwright.Page, logger *logging.Logger) (*Page, error) {
	if logger == nil {
		logger = logging.Discard("browser")
	}
	p := &Page{
		page:      pw,
		logger:    logger,
		mutations: make(chan struct{}, 1),
		clicks:    make(chan host.Click, 16),
	}

	// Exposed callbacks run on the driver's dispatch goroutine; anything
	// that evaluates back into the page must leave it first.
	if err := pw.ExposeFunction(bindingMutated, func(args ...interface{}) interface{} {
		p.notify()
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to expose %s: %w", bindingMutated, err)
	}
	if err := pw.ExposeFunction(bindingClick, func(args ...interface{}) interface{} {
		p.click(args)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to expose %s: %w", bindingClick, err)
	}
	if err := pw.ExposeFunction(bindingOverlay, func(args ...interface{}) interface{} {
		go p.overlay(args)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to expose %s: %w", bindingOverlay, err)
	}

	if err := pw.AddInitScript(playwright.Script{Content: playwright.String(initScript)}); err != nil {
		return nil, fmt.Errorf("failed to add init script: %w", err)
	}

	pw.OnFrameNavigated(func(frame playwright.Frame) {
		if frame == pw.MainFrame() {
			p.notify()
		}
	})
	return p, nil
}

// Address returns the page URL.
func (p *Page) Address() string {
	return p.page.URL()
}

// FindAnchor returns the first element matching selectors.
func (p *Page) FindAnchor(selectors []string) (host.Anchor, bool) {
	result, err := p.page.Evaluate(`([selectors, fresh]) => window.__titlepanel ? window.__titlepanel.find(selectors, fresh) : null`,
		[]interface{}{selectors, uuid.NewString()})
	if err != nil {
		p.logger.Debugf("anchor lookup failed: %v", err)
		return nil, false
	}
	key, ok := result.(string)
	if !ok || key == "" {
		return nil, false
	}
	return &anchor{page: p, key: key}, true
}

// Mutations signals DOM changes and navigations.
func (p *Page) Mutations() <-chan struct{} {
	return p.mutations
}

// Clicks delivers clicks on injected controls.
func (p *Page) Clicks() <-chan host.Click {
	return p.clicks
}

// OnOverlay sets the handler for overlay button clicks.
func (p *Page) OnOverlay(fn func(OverlayEvent)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onOverlay = fn
}

// ShowOverlay inserts or replaces an overlay.
func (p *Page) ShowOverlay(o dom.Overlay) {
	markup, err := dom.OverlayHTML(o)
	if err != nil {
		p.logger.Errorf("failed to build overlay %s: %v", o.ID, err)
		return
	}
	if _, err := p.page.Evaluate(`([id, markup]) => window.__titlepanel && window.__titlepanel.showOverlay(id, markup)`,
		[]interface{}{o.ID, markup}); err != nil {
		p.logger.Warnf("failed to show overlay %s: %v", o.ID, err)
	}
}

// CloseOverlay removes an overlay.
func (p *Page) CloseOverlay(id string) {
	if _, err := p.page.Evaluate(`(id) => window.__titlepanel && window.__titlepanel.closeOverlay(id)`, id); err != nil {
		p.logger.Warnf("failed to close overlay %s: %v", id, err)
	}
}

func (p *Page) notify() {
	select {
	case p.mutations <- struct{}{}:
	default:
	}
}

func (p *Page) click(args []interface{}) {
	if len(args) < 2 {
		p.logger.Warnf("malformed click: %v", args)
		return
	}
	itemID, ok := toInt(args[0])
	action, isString := args[1].(string)
	if !ok || !isString {
		p.logger.Warnf("malformed click: %v", args)
		return
	}

	select {
	case p.clicks <- host.Click{ItemID: itemID, Action: panel.Action(action)}:
	default:
		p.logger.Warnf("dropping %s click for item %d: queue full", action, itemID)
	}
}

func (p *Page) overlay(args []interface{}) {
	var fields [4]string
	for i := range fields {
		if i < len(args) {
			fields[i], _ = args[i].(string)
		}
	}

	p.mu.Lock()
	fn := p.onOverlay
	p.mu.Unlock()
	if fn == nil {
		return
	}
	fn(OverlayEvent{ID: fields[0], Choice: fields[1], Username: fields[2], Password: fields[3]})
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), n == float64(int(n))
	default:
		return 0, false
	}
}

// anchor is an element of the live page, addressed by its key.
type anchor struct {
	page *Page
	key  string
}

func (a *anchor) Key() string { return a.key }

func (a *anchor) HasControls() bool {
	result, err := a.page.page.Evaluate(`(key) => window.__titlepanel ? window.__titlepanel.hasControls(key) : false`, a.key)
	if err != nil {
		a.page.logger.Debugf("controls check failed for %s: %v", a.key, err)
		return false
	}
	has, _ := result.(bool)
	return has
}

func (a *anchor) Render(itemID int, view panel.View) {
	markup, err := dom.ControlsHTML(itemID, view)
	if err != nil {
		a.page.logger.Errorf("failed to build controls for item %d: %v", itemID, err)
		return
	}
	if _, err := a.page.page.Evaluate(`([key, markup]) => window.__titlepanel && window.__titlepanel.render(key, markup)`,
		[]interface{}{a.key, markup}); err != nil {
		a.page.logger.Warnf("failed to render item %d: %v", itemID, err)
	}
}

func (a *anchor) Clear() {
	if _, err := a.page.page.Evaluate(`(key) => window.__titlepanel && window.__titlepanel.clear(key)`, a.key); err != nil {
		a.page.logger.Debugf("failed to clear %s: %v", a.key, err)
	}
}
