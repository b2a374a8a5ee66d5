package config

import (
	"sync"
)

var (
	// globalManager is the singleton configuration manager instance
	globalManager *Manager
	globalMu      sync.Mutex
)

// Initialize creates the global manager at configPath (DefaultPath when
// empty), registers every section and loads stored values.
func Initialize(configPath string) error {
	manager, err := Open(configPath)
	if err != nil {
		return err
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	globalManager = manager
	return nil
}

// Open builds a standalone manager with every section registered and
// loaded.
func Open(configPath string) (*Manager, error) {
	store, err := NewFileStore(configPath)
	if err != nil {
		return nil, err
	}

	manager := NewManager(store)
	for _, section := range []Section{
		NewBackendSection(),
		NewBinderSection(),
		NewTrackerSection(),
		NewUpdateSection(),
	} {
		if err := manager.RegisterSection(section); err != nil {
			return nil, err
		}
	}

	if err := manager.LoadAll(); err != nil {
		return nil, err
	}
	return manager, nil
}

// Global returns the global configuration manager.
// Panics if Initialize has not been called.
func Global() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		panic("config not initialized: call config.Initialize first")
	}

	return globalManager
}

// IsInitialized returns true if the global configuration has been initialized.
func IsInitialized() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalManager != nil
}

func globalSection[T Section](id string) T {
	var zero T
	if !IsInitialized() {
		return zero
	}
	section, ok := Global().GetSection(id)
	if !ok {
		return zero
	}
	typed, ok := section.(T)
	if !ok {
		return zero
	}
	return typed
}

// GetBackend returns the backend section, or nil before Initialize.
func GetBackend() *BackendSection {
	return globalSection[*BackendSection](SectionIDBackend)
}

// GetBinder returns the binder section, or nil before Initialize.
func GetBinder() *BinderSection {
	return globalSection[*BinderSection](SectionIDBinder)
}

// GetTracker returns the tracker section, or nil before Initialize.
func GetTracker() *TrackerSection {
	return globalSection[*TrackerSection](SectionIDTracker)
}

// GetUpdate returns the update section, or nil before Initialize.
func GetUpdate() *UpdateSection {
	return globalSection[*UpdateSection](SectionIDUpdate)
}
