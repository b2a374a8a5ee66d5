package config

import (
	"fmt"
	"sync"
	"time"
)

const (
	// SectionIDTracker is the identifier for the operation tracker section
	SectionIDTracker = "tracker"

	defaultAcquireInterval = 600 * time.Millisecond
	defaultFixInterval     = 1500 * time.Millisecond
	defaultSettleDelay     = 1 * time.Second
)

// TrackerSection holds the poll intervals and the delay before a removal
// is re-probed.
type TrackerSection struct {
	AcquireInterval time.Duration `json:"acquire_interval"`
	FixInterval     time.Duration `json:"fix_interval"`
	SettleDelay     time.Duration `json:"settle_delay"`
	mu              sync.RWMutex
}

// NewTrackerSection creates a tracker section with defaults.
func NewTrackerSection() *TrackerSection {
	return &TrackerSection{
		AcquireInterval: defaultAcquireInterval,
		FixInterval:     defaultFixInterval,
		SettleDelay:     defaultSettleDelay,
	}
}

func (s *TrackerSection) ID() string    { return SectionIDTracker }
func (s *TrackerSection) Title() string { return "Operation Tracking" }
func (s *TrackerSection) Description() string {
	return "Poll intervals for add and fix jobs, and the settle delay after a removal."
}

// Data returns the current configuration data.
func (s *TrackerSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"acquire_interval": s.AcquireInterval.String(),
		"fix_interval":     s.FixInterval.String(),
		"settle_delay":     s.SettleDelay.String(),
	}
}

// SetData updates the configuration from the provided data.
func (s *TrackerSection) SetData(data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		var target *time.Duration
		switch key {
		case "acquire_interval":
			target = &s.AcquireInterval
		case "fix_interval":
			target = &s.FixInterval
		case "settle_delay":
			target = &s.SettleDelay
		default:
			continue
		}
		d, err := parseDuration(key, value)
		if err != nil {
			return err
		}
		*target = d
	}
	return nil
}

// Validate keeps every timing between 100ms and one minute.
func (s *TrackerSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for name, d := range map[string]time.Duration{
		"acquire_interval": s.AcquireInterval,
		"fix_interval":     s.FixInterval,
		"settle_delay":     s.SettleDelay,
	} {
		if d < 100*time.Millisecond || d > time.Minute {
			return fmt.Errorf("%s must be between 100ms and 1m, got %v", name, d)
		}
	}
	return nil
}

// Reset restores defaults.
func (s *TrackerSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AcquireInterval = defaultAcquireInterval
	s.FixInterval = defaultFixInterval
	s.SettleDelay = defaultSettleDelay
}

// Timings returns (acquire interval, fix interval, settle delay).
func (s *TrackerSection) Timings() (time.Duration, time.Duration, time.Duration) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.AcquireInterval, s.FixInterval, s.SettleDelay
}
