package binder

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/gobwas/glob"
)

// ItemContext is the item the host page currently shows.
type ItemContext struct {
	ID int
}

// Matcher extracts the item context from a page address. Addresses must
// match one of the URL globs (any address when there are none) and contain
// the id pattern's first capture group as an integer.
type Matcher struct {
	idPattern *regexp.Regexp
	urls      []glob.Glob
}

// NewMatcher compiles idPattern and the URL globs. Globs use '/' as the
// separator, so "*" stays within one path segment and "**" spans several.
func NewMatcher(idPattern string, urlPatterns []string) (*Matcher, error) {
	re, err := regexp.Compile(idPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid id pattern: %w", err)
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("id pattern %q has no capture group", idPattern)
	}

	m := &Matcher{idPattern: re}
	for _, pattern := range urlPatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid url pattern %q: %w", pattern, err)
		}
		m.urls = append(m.urls, g)
	}
	return m, nil
}

// Allowed reports whether address passes the URL globs.
func (m *Matcher) Allowed(address string) bool {
	if len(m.urls) == 0 {
		return true
	}
	for _, g := range m.urls {
		if g.Match(address) {
			return true
		}
	}
	return false
}

// Parse returns the item context of address, if any.
func (m *Matcher) Parse(address string) (ItemContext, bool) {
	if !m.Allowed(address) {
		return ItemContext{}, false
	}
	match := m.idPattern.FindStringSubmatch(address)
	if len(match) < 2 {
		return ItemContext{}, false
	}
	id, err := strconv.Atoi(match[1])
	if err != nil {
		return ItemContext{}, false
	}
	return ItemContext{ID: id}, true
}
