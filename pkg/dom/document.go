// Package dom is an in-memory host page built on golang.org/x/net/html.
//
// A Document holds a parsed page and an address. It implements host.Page
// so the binder can run against it without a browser: anchors are found
// with a small selector engine, injected controls are real nodes, and
// every change is reported on the mutation channel. Tests and the
// terminal host drive it with Navigate, SetBody, ReplaceInner and Click.
package dom

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/entrhq/titlepanel/pkg/host"
	"github.com/entrhq/titlepanel/pkg/panel"
)

// Document is a mutable parsed page. It is safe for concurrent use.
type Document struct {
	mu      sync.Mutex
	root    *html.Node
	address string

	// keys identifies anchor nodes without touching the markup.
	keys map[*html.Node]string

	mutations chan struct{}
	clicks    chan host.Click
}

var _ host.Page = (*Document)(nil)

// Parse builds a Document from markup at address.
func Parse(address, markup string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return &Document{
		root:      root,
		address:   address,
		keys:      make(map[*html.Node]string),
		mutations: make(chan struct{}, 1),
		clicks:    make(chan host.Click, 16),
	}, nil
}

// Address returns the current address.
func (d *Document) Address() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.address
}

// Navigate changes the address.
func (d *Document) Navigate(address string) {
	d.mu.Lock()
	d.address = address
	d.mu.Unlock()
	d.notify()
}

// Mutations signals changes; signals are coalesced.
func (d *Document) Mutations() <-chan struct{} {
	return d.mutations
}

// Clicks delivers clicks made with Click.
func (d *Document) Clicks() <-chan host.Click {
	return d.clicks
}

// FindAnchor returns the first node matching any selector, in selector
// order. Invalid selectors are skipped.
func (d *Document) FindAnchor(selectors []string) (host.Anchor, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, raw := range selectors {
		sel, err := Compile(raw)
		if err != nil {
			continue
		}
		if n := sel.First(d.root); n != nil {
			return &anchor{doc: d, node: n, key: d.keyLocked(n)}, true
		}
	}
	return nil, false
}

func (d *Document) keyLocked(n *html.Node) string {
	key, ok := d.keys[n]
	if !ok {
		key = uuid.NewString()
		d.keys[n] = key
	}
	return key
}

// pruneLocked forgets keys of nodes no longer attached to the page.
func (d *Document) pruneLocked() {
	for n := range d.keys {
		if !attached(d.root, n) {
			delete(d.keys, n)
		}
	}
}

func attached(root, n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == root {
			return true
		}
	}
	return false
}

// SetBody replaces the body content, as a host page re-render would.
func (d *Document) SetBody(markup string) error {
	d.mu.Lock()
	body := MustCompile("body").First(d.root)
	if body == nil {
		d.mu.Unlock()
		return fmt.Errorf("document has no body")
	}
	err := replaceChildren(body, markup)
	d.pruneLocked()
	d.mu.Unlock()
	if err == nil {
		d.notify()
	}
	return err
}

// ReplaceInner replaces the children of the first node matching selector.
func (d *Document) ReplaceInner(selector, markup string) error {
	sel, err := Compile(selector)
	if err != nil {
		return err
	}
	d.mu.Lock()
	n := sel.First(d.root)
	if n == nil {
		d.mu.Unlock()
		return fmt.Errorf("no element matches %q", selector)
	}
	err = replaceChildren(n, markup)
	d.pruneLocked()
	d.mu.Unlock()
	if err == nil {
		d.notify()
	}
	return err
}

// Remove detaches the first node matching selector.
func (d *Document) Remove(selector string) error {
	sel, err := Compile(selector)
	if err != nil {
		return err
	}
	d.mu.Lock()
	n := sel.First(d.root)
	if n == nil {
		d.mu.Unlock()
		return fmt.Errorf("no element matches %q", selector)
	}
	n.Parent.RemoveChild(n)
	d.pruneLocked()
	d.mu.Unlock()
	d.notify()
	return nil
}

// Text returns the text content of the first node matching selector.
func (d *Document) Text(selector string) string {
	sel, err := Compile(selector)
	if err != nil {
		return ""
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if n := sel.First(d.root); n != nil {
		return textContent(n)
	}
	return ""
}

// Exists reports whether selector matches.
func (d *Document) Exists(selector string) bool {
	sel, err := Compile(selector)
	if err != nil {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return sel.First(d.root) != nil
}

// Click simulates a click on the injected control bound to action. It
// fails when the control is missing or disabled.
func (d *Document) Click(action panel.Action) error {
	sel := MustCompile(fmt.Sprintf("div.%s [%s=%s]", ContainerClass, AttrAction, action))

	d.mu.Lock()
	n := sel.First(d.root)
	if n == nil {
		d.mu.Unlock()
		return fmt.Errorf("no %s control on the page", action)
	}
	if attr(n, "aria-disabled") == "true" {
		d.mu.Unlock()
		return fmt.Errorf("%s control is disabled", action)
	}
	itemID, err := strconv.Atoi(attr(n.Parent, AttrItem))
	d.mu.Unlock()
	if err != nil {
		return fmt.Errorf("control has no item id: %w", err)
	}

	d.clicks <- host.Click{ItemID: itemID, Action: action}
	return nil
}

// HTML renders the whole document.
func (d *Document) HTML() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return ""
	}
	return buf.String()
}

func (d *Document) notify() {
	select {
	case d.mutations <- struct{}{}:
	default:
	}
}

func replaceChildren(n *html.Node, markup string) error {
	parent := &html.Node{Type: html.ElementNode, DataAtom: n.DataAtom, Data: n.Data}
	if parent.DataAtom == 0 {
		parent.DataAtom = atom.Div
		parent.Data = "div"
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), parent)
	if err != nil {
		return fmt.Errorf("failed to parse fragment: %w", err)
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}

// anchor is a host.Anchor over one node of a Document.
type anchor struct {
	doc  *Document
	node *html.Node
	key  string
}

func (a *anchor) Key() string { return a.key }

func (a *anchor) HasControls() bool {
	a.doc.mu.Lock()
	defer a.doc.mu.Unlock()
	container := ContainerSelector.First(a.node)
	if container == nil {
		return false
	}
	restart := MustCompile(fmt.Sprintf("[%s=%s]", AttrAction, panel.ActionRestart))
	return restart.First(container) != nil
}

// Render replaces the injected container with one built from view.
func (a *anchor) Render(itemID int, view panel.View) {
	a.doc.mu.Lock()
	removeContainers(a.node)
	a.node.AppendChild(BuildControls(itemID, view))
	a.doc.mu.Unlock()
	a.doc.notify()
}

func (a *anchor) Clear() {
	a.doc.mu.Lock()
	removed := removeContainers(a.node)
	a.doc.mu.Unlock()
	if removed {
		a.doc.notify()
	}
}

func removeContainers(n *html.Node) bool {
	removed := false
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if ContainerSelector.Match(c) {
			n.RemoveChild(c)
			removed = true
		}
		c = next
	}
	return removed
}

// RenderedControl is an injected control read back from the page.
type RenderedControl struct {
	Action   panel.Action
	Label    string
	Tooltip  string
	Disabled bool
}

// Controls reads the injected container back. ok is false when no
// controls are on the page.
func (d *Document) Controls() (itemID int, mode panel.Mode, controls []RenderedControl, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	container := ContainerSelector.First(d.root)
	if container == nil {
		return 0, "", nil, false
	}
	itemID, err := strconv.Atoi(attr(container, AttrItem))
	if err != nil {
		return 0, "", nil, false
	}
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		controls = append(controls, RenderedControl{
			Action:   panel.Action(attr(c, AttrAction)),
			Label:    textContent(c),
			Tooltip:  attr(c, "title"),
			Disabled: attr(c, "aria-disabled") == "true",
		})
	}
	return itemID, panel.Mode(attr(container, "data-titlepanel-mode")), controls, true
}
