package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Selector is a small subset of CSS: compound selectors made of a tag,
// #id, .class and [attr] or [attr=value] parts, joined by descendant
// combinators (whitespace).
type Selector struct {
	parts []compound
}

type compound struct {
	tag     string
	id      string
	classes []string
	attrs   []attrMatch
}

type attrMatch struct {
	key      string
	value    string
	hasValue bool
}

// Compile parses a selector.
func Compile(sel string) (*Selector, error) {
	fields := strings.Fields(sel)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty selector")
	}
	s := &Selector{}
	for _, field := range fields {
		c, err := parseCompound(field)
		if err != nil {
			return nil, fmt.Errorf("selector %q: %w", sel, err)
		}
		s.parts = append(s.parts, c)
	}
	return s, nil
}

// MustCompile is Compile that panics on error.
func MustCompile(sel string) *Selector {
	s, err := Compile(sel)
	if err != nil {
		panic(err)
	}
	return s
}

func parseCompound(field string) (compound, error) {
	var c compound
	i := 0
	readName := func() string {
		start := i
		for i < len(field) && !strings.ContainsRune(".#[", rune(field[i])) {
			i++
		}
		return field[start:i]
	}

	c.tag = strings.ToLower(readName())
	for i < len(field) {
		switch field[i] {
		case '.':
			i++
			name := readName()
			if name == "" {
				return c, fmt.Errorf("empty class name")
			}
			c.classes = append(c.classes, name)
		case '#':
			i++
			name := readName()
			if name == "" {
				return c, fmt.Errorf("empty id")
			}
			c.id = name
		case '[':
			end := strings.IndexByte(field[i:], ']')
			if end < 0 {
				return c, fmt.Errorf("unterminated attribute selector")
			}
			body := field[i+1 : i+end]
			i += end + 1
			m, err := parseAttr(body)
			if err != nil {
				return c, err
			}
			c.attrs = append(c.attrs, m)
		}
	}
	return c, nil
}

func parseAttr(body string) (attrMatch, error) {
	key, value, hasValue := strings.Cut(body, "=")
	key = strings.TrimSpace(key)
	if key == "" {
		return attrMatch{}, fmt.Errorf("empty attribute name")
	}
	value = strings.Trim(strings.TrimSpace(value), `"'`)
	return attrMatch{key: key, value: value, hasValue: hasValue}, nil
}

// Match reports whether n matches the selector.
func (s *Selector) Match(n *html.Node) bool {
	last := len(s.parts) - 1
	if !s.parts[last].match(n) {
		return false
	}
	// Remaining parts must match ancestors, right to left.
	i := last - 1
	for p := n.Parent; p != nil && i >= 0; p = p.Parent {
		if s.parts[i].match(p) {
			i--
		}
	}
	return i < 0
}

// First returns the first matching node under root in document order.
func (s *Selector) First(root *html.Node) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if s.Match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

func (c compound) match(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if c.tag != "" && c.tag != "*" && n.Data != c.tag {
		return false
	}
	if c.id != "" && attr(n, "id") != c.id {
		return false
	}
	if len(c.classes) > 0 {
		have := strings.Fields(attr(n, "class"))
		for _, want := range c.classes {
			if !contains(have, want) {
				return false
			}
		}
	}
	for _, a := range c.attrs {
		v, ok := lookupAttr(n, a.key)
		if !ok || (a.hasValue && v != a.value) {
			return false
		}
	}
	return true
}

// walk visits nodes depth first until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func attr(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
