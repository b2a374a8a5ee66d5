package config

import (
	"fmt"
	"sync"
	"time"
)

const (
	// SectionIDUpdate is the identifier for the update check section
	SectionIDUpdate = "update"

	defaultStartupDelay = 3 * time.Second
)

// UpdateSection controls the startup update check. LastChecked is written
// back after every active check.
type UpdateSection struct {
	Enabled          bool          `json:"enabled"`
	StartupDelay     time.Duration `json:"startup_delay"`
	MinCheckInterval time.Duration `json:"min_check_interval"`
	LastCheckedAt    time.Time     `json:"last_checked"`
	mu               sync.RWMutex
}

// NewUpdateSection creates an update section with defaults. A zero
// MinCheckInterval actively checks on every session.
func NewUpdateSection() *UpdateSection {
	return &UpdateSection{Enabled: true, StartupDelay: defaultStartupDelay}
}

func (s *UpdateSection) ID() string    { return SectionIDUpdate }
func (s *UpdateSection) Title() string { return "Updates" }
func (s *UpdateSection) Description() string {
	return "Whether to check for updates at startup, how long to wait first and how often to ask the backend for a fresh check."
}

// Data returns the current configuration data.
func (s *UpdateSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data := map[string]any{
		"enabled":            s.Enabled,
		"startup_delay":      s.StartupDelay.String(),
		"min_check_interval": s.MinCheckInterval.String(),
	}
	if !s.LastCheckedAt.IsZero() {
		data["last_checked"] = s.LastCheckedAt.UTC().Format(time.RFC3339)
	}
	return data
}

// SetData updates the configuration from the provided data.
func (s *UpdateSection) SetData(data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		var err error
		switch key {
		case "enabled":
			s.Enabled, err = parseBool(key, value)
		case "startup_delay":
			s.StartupDelay, err = parseDuration(key, value)
		case "min_check_interval":
			s.MinCheckInterval, err = parseDuration(key, value)
		case "last_checked":
			var raw string
			if raw, err = parseString(key, value); err == nil {
				s.LastCheckedAt, err = time.Parse(time.RFC3339, raw)
				if err != nil {
					err = fmt.Errorf("invalid last_checked: %w", err)
				}
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate rejects negative durations.
func (s *UpdateSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.StartupDelay < 0 {
		return fmt.Errorf("startup_delay must not be negative, got %v", s.StartupDelay)
	}
	if s.MinCheckInterval < 0 {
		return fmt.Errorf("min_check_interval must not be negative, got %v", s.MinCheckInterval)
	}
	return nil
}

// Reset restores defaults and forgets the last check.
func (s *UpdateSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Enabled = true
	s.StartupDelay = defaultStartupDelay
	s.MinCheckInterval = 0
	s.LastCheckedAt = time.Time{}
}

// Settings returns (enabled, startup delay, minimum check interval).
func (s *UpdateSection) Settings() (bool, time.Duration, time.Duration) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Enabled, s.StartupDelay, s.MinCheckInterval
}

// LastChecked returns the time of the last active check.
func (s *UpdateSection) LastChecked() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastCheckedAt
}

// SetLastChecked records an active check.
func (s *UpdateSection) SetLastChecked(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastCheckedAt = t
}

// CheckHistory persists the update section's last check through a Manager.
type CheckHistory struct {
	Manager *Manager
	Section *UpdateSection
}

// LastChecked returns the time of the last active check.
func (h CheckHistory) LastChecked() time.Time {
	return h.Section.LastChecked()
}

// RecordCheck stores t and saves the update section.
func (h CheckHistory) RecordCheck(t time.Time) error {
	h.Section.SetLastChecked(t)
	return h.Manager.SaveSection(SectionIDUpdate)
}
