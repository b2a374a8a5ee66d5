package config

import (
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/gobwas/glob"
)

const (
	// SectionIDBinder is the identifier for the page binder section
	SectionIDBinder = "binder"

	defaultIDPattern    = `app/(\d+)`
	defaultTickInterval = 2 * time.Second
)

var (
	defaultAnchorSelectors = []string{
		".steamdb-buttons",
		"[data-steamdb-buttons]",
		".apphub_OtherSiteInfo",
	}
	defaultURLPatterns = []string{
		"https://store.steampowered.com/app/**",
		"https://steamcommunity.com/app/**",
	}
)

// BinderSection configures how the panel finds its anchor and the current
// item on the host page.
type BinderSection struct {
	AnchorSelectors []string      `json:"anchor_selectors"`
	IDPattern       string        `json:"id_pattern"`
	URLPatterns     []string      `json:"url_patterns"`
	TickInterval    time.Duration `json:"tick_interval"`
	mu              sync.RWMutex
}

// NewBinderSection creates a binder section with defaults.
func NewBinderSection() *BinderSection {
	s := &BinderSection{}
	s.resetLocked()
	return s
}

func (s *BinderSection) ID() string    { return SectionIDBinder }
func (s *BinderSection) Title() string { return "Page Binder" }
func (s *BinderSection) Description() string {
	return "Anchor selectors tried in order, the pattern extracting the item id from the page address, the address allow-list and the re-check interval."
}

// Data returns the current configuration data.
func (s *BinderSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"anchor_selectors": toAnyList(s.AnchorSelectors),
		"id_pattern":       s.IDPattern,
		"url_patterns":     toAnyList(s.URLPatterns),
		"tick_interval":    s.TickInterval.String(),
	}
}

// SetData updates the configuration from the provided data.
func (s *BinderSection) SetData(data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		var err error
		switch key {
		case "anchor_selectors":
			s.AnchorSelectors, err = parseStringList(key, value)
		case "id_pattern":
			s.IDPattern, err = parseString(key, value)
		case "url_patterns":
			s.URLPatterns, err = parseStringList(key, value)
		case "tick_interval":
			s.TickInterval, err = parseDuration(key, value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate checks that the selectors are present, the id pattern has a
// capture group and every URL pattern compiles.
func (s *BinderSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.AnchorSelectors) == 0 {
		return fmt.Errorf("anchor_selectors must not be empty")
	}
	for i, sel := range s.AnchorSelectors {
		if sel == "" {
			return fmt.Errorf("anchor_selectors[%d] is empty", i)
		}
	}

	re, err := regexp.Compile(s.IDPattern)
	if err != nil {
		return fmt.Errorf("invalid id_pattern: %w", err)
	}
	if re.NumSubexp() < 1 {
		return fmt.Errorf("id_pattern %q needs a capture group for the id", s.IDPattern)
	}

	for _, pattern := range s.URLPatterns {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return fmt.Errorf("invalid url pattern %q: %w", pattern, err)
		}
	}

	if s.TickInterval < 100*time.Millisecond || s.TickInterval > time.Minute {
		return fmt.Errorf("tick_interval must be between 100ms and 1m, got %v", s.TickInterval)
	}
	return nil
}

// Reset restores defaults.
func (s *BinderSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *BinderSection) resetLocked() {
	s.AnchorSelectors = append([]string(nil), defaultAnchorSelectors...)
	s.IDPattern = defaultIDPattern
	s.URLPatterns = append([]string(nil), defaultURLPatterns...)
	s.TickInterval = defaultTickInterval
}

// Snapshot returns copies of the current values.
func (s *BinderSection) Snapshot() (selectors []string, idPattern string, urlPatterns []string, tick time.Duration) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.AnchorSelectors...),
		s.IDPattern,
		append([]string(nil), s.URLPatterns...),
		s.TickInterval
}
