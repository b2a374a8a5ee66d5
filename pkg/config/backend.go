package config

import (
	"fmt"
	"net/url"
	"sync"
)

const (
	// SectionIDBackend is the identifier for the backend section
	SectionIDBackend = "backend"

	defaultBaseURL = "http://127.0.0.1:8765"
	defaultPlugin  = "titlepanel"
)

// BackendSection locates the RPC backend.
type BackendSection struct {
	BaseURL string `json:"base_url"`
	Plugin  string `json:"plugin"`
	mu      sync.RWMutex
}

// NewBackendSection creates a backend section with defaults.
func NewBackendSection() *BackendSection {
	return &BackendSection{BaseURL: defaultBaseURL, Plugin: defaultPlugin}
}

func (s *BackendSection) ID() string    { return SectionIDBackend }
func (s *BackendSection) Title() string { return "Backend" }
func (s *BackendSection) Description() string {
	return "Address and plugin namespace of the backend that manages titles."
}

// Data returns the current configuration data.
func (s *BackendSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"base_url": s.BaseURL,
		"plugin":   s.Plugin,
	}
}

// SetData updates the configuration from the provided data.
func (s *BackendSection) SetData(data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		var err error
		switch key {
		case "base_url":
			s.BaseURL, err = parseString(key, value)
		case "plugin":
			s.Plugin, err = parseString(key, value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate requires an absolute http(s) URL and a plugin name.
func (s *BackendSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must use http or https, got %q", s.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url must include a host, got %q", s.BaseURL)
	}
	if s.Plugin == "" {
		return fmt.Errorf("plugin must not be empty")
	}
	return nil
}

// Reset restores defaults.
func (s *BackendSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BaseURL = defaultBaseURL
	s.Plugin = defaultPlugin
}

// Endpoint returns the base URL and plugin.
func (s *BackendSection) Endpoint() (baseURL, plugin string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.BaseURL, s.Plugin
}

// SetBaseURL overrides the base URL.
func (s *BackendSection) SetBaseURL(baseURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BaseURL = baseURL
}
