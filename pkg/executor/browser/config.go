package browser

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for a browser run.
const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 900
	DefaultTimeout        = 30 * time.Second
	DefaultWaitUntil      = "domcontentloaded"
)

// RunFile describes one browser session.
type RunFile struct {
	// URL is the first page to open.
	URL string `yaml:"url"`

	Headless  bool          `yaml:"headless"`
	Viewport  Viewport      `yaml:"viewport"`
	Timeout   time.Duration `yaml:"timeout"`
	WaitUntil string        `yaml:"wait_until"`

	// BackendURL overrides the configured backend base URL.
	BackendURL string `yaml:"backend_url,omitempty"`

	// SkipInstall assumes the Playwright driver and browsers are present.
	SkipInstall bool `yaml:"skip_install"`
}

// Viewport is the browser window size.
type Viewport struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// DefaultRunFile returns a run file with defaults applied.
func DefaultRunFile() *RunFile {
	return &RunFile{
		Viewport:  Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight},
		Timeout:   DefaultTimeout,
		WaitUntil: DefaultWaitUntil,
	}
}

// LoadRunFile reads a YAML run file. Missing fields keep their defaults.
func LoadRunFile(path string) (*RunFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}
	return ParseRunFile(data)
}

// ParseRunFile decodes and validates YAML run file content.
func ParseRunFile(data []byte) (*RunFile, error) {
	run := DefaultRunFile()
	if err := yaml.Unmarshal(data, run); err != nil {
		return nil, fmt.Errorf("failed to parse run file: %w", err)
	}
	if err := run.Validate(); err != nil {
		return nil, err
	}
	return run, nil
}

// Validate checks the run file.
func (r *RunFile) Validate() error {
	if r.URL == "" {
		return fmt.Errorf("url is required")
	}
	if u, err := url.Parse(r.URL); err != nil || u.Scheme == "" {
		return fmt.Errorf("invalid url: %q", r.URL)
	}
	if r.BackendURL != "" {
		if u, err := url.Parse(r.BackendURL); err != nil || u.Host == "" {
			return fmt.Errorf("invalid backend_url: %q", r.BackendURL)
		}
	}
	if r.Viewport.Width <= 0 || r.Viewport.Height <= 0 {
		return fmt.Errorf("viewport must be positive, got %dx%d", r.Viewport.Width, r.Viewport.Height)
	}
	if r.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}

	switch r.WaitUntil {
	case "":
		r.WaitUntil = DefaultWaitUntil
	case "load", "domcontentloaded", "networkidle", "commit":
	default:
		return fmt.Errorf("invalid wait_until: %s (must be 'load', 'domcontentloaded', 'networkidle' or 'commit')", r.WaitUntil)
	}
	return nil
}
