// Package backendtest provides a scriptable in-memory backend.Backend for
// tests of the panel, trackers, binder and update gate.
package backendtest

import (
	"context"
	"sync"

	"github.com/entrhq/titlepanel/pkg/backend"
)

// Fake implements backend.Backend. Each method delegates to the matching
// func field when set and otherwise answers success with zero values.
// Func fields must be assigned before the fake is shared with running
// goroutines; use closures with their own synchronization to vary answers
// over time.
type Fake struct {
	mu    sync.Mutex
	calls map[string]int
	items map[string][]int

	HasItemForIDFunc             func(ctx context.Context, itemID int) (backend.ExistsResult, error)
	CheckAvailabilityFunc        func(ctx context.Context, itemID int) (backend.AvailabilityResult, error)
	CheckSecondaryCapabilityFunc func(ctx context.Context, itemID int) (backend.CapabilityResult, error)
	IsSecondaryFixAppliedFunc    func(ctx context.Context, itemID int) (backend.FixAppliedResult, error)
	StartAcquireFunc             func(ctx context.Context, itemID int) (backend.StartResult, error)
	GetAcquireStatusFunc         func(ctx context.Context, itemID int) (backend.StatusResult, error)
	RemoveItemFunc               func(ctx context.Context, itemID int) (backend.MessageResult, error)
	RequestItemFunc              func(ctx context.Context, itemID int) (backend.MessageResult, error)
	PrefetchDLCsFunc             func(ctx context.Context, itemID int) (backend.MessageResult, error)
	StartSecondaryFixFunc        func(ctx context.Context, itemID int) (backend.StartResult, error)
	GetSecondaryFixStatusFunc    func(ctx context.Context, itemID int) (backend.StatusResult, error)
	RemoveSecondaryFixFunc       func(ctx context.Context, itemID int) (backend.MessageResult, error)
	SaveCredentialsFunc          func(ctx context.Context, username, password string) (backend.Envelope, error)
	IsUpdateDismissedFunc        func(ctx context.Context) (backend.UpdateResult, error)
	GetUpdateMessageFunc         func(ctx context.Context) (backend.UpdateResult, error)
	CheckForUpdatesNowFunc       func(ctx context.Context) (backend.UpdateResult, error)
	DownloadAndApplyUpdateFunc   func(ctx context.Context) (backend.MessageResult, error)
	DismissUpdateFunc            func(ctx context.Context) (backend.Envelope, error)
	RestartHostProcessFunc       func(ctx context.Context) error
}

var _ backend.Backend = (*Fake)(nil)

// New returns an empty Fake.
func New() *Fake {
	return &Fake{
		calls: make(map[string]int),
		items: make(map[string][]int),
	}
}

var ok = backend.Envelope{Success: true}

func (f *Fake) record(method string, itemID int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	f.items[method] = append(f.items[method], itemID)
}

// Calls returns how many times method was called.
func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// ItemIDs returns the item ids method was called with, in call order.
func (f *Fake) ItemIDs(method string) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.items[method]...)
}

// TotalCalls returns the number of calls across all methods.
func (f *Fake) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *Fake) HasItemForID(ctx context.Context, itemID int) (backend.ExistsResult, error) {
	f.record(backend.MethodHasItemForID, itemID)
	if f.HasItemForIDFunc != nil {
		return f.HasItemForIDFunc(ctx, itemID)
	}
	return backend.ExistsResult{Envelope: ok}, nil
}

func (f *Fake) CheckAvailability(ctx context.Context, itemID int) (backend.AvailabilityResult, error) {
	f.record(backend.MethodCheckAvailability, itemID)
	if f.CheckAvailabilityFunc != nil {
		return f.CheckAvailabilityFunc(ctx, itemID)
	}
	return backend.AvailabilityResult{Envelope: ok}, nil
}

func (f *Fake) CheckSecondaryCapability(ctx context.Context, itemID int) (backend.CapabilityResult, error) {
	f.record(backend.MethodCheckSecondaryCapability, itemID)
	if f.CheckSecondaryCapabilityFunc != nil {
		return f.CheckSecondaryCapabilityFunc(ctx, itemID)
	}
	return backend.CapabilityResult{Envelope: ok}, nil
}

func (f *Fake) IsSecondaryFixApplied(ctx context.Context, itemID int) (backend.FixAppliedResult, error) {
	f.record(backend.MethodIsSecondaryFixApplied, itemID)
	if f.IsSecondaryFixAppliedFunc != nil {
		return f.IsSecondaryFixAppliedFunc(ctx, itemID)
	}
	return backend.FixAppliedResult{Envelope: ok}, nil
}

func (f *Fake) StartAcquire(ctx context.Context, itemID int) (backend.StartResult, error) {
	f.record(backend.MethodStartAcquire, itemID)
	if f.StartAcquireFunc != nil {
		return f.StartAcquireFunc(ctx, itemID)
	}
	return backend.StartResult{Envelope: ok}, nil
}

func (f *Fake) GetAcquireStatus(ctx context.Context, itemID int) (backend.StatusResult, error) {
	f.record(backend.MethodGetAcquireStatus, itemID)
	if f.GetAcquireStatusFunc != nil {
		return f.GetAcquireStatusFunc(ctx, itemID)
	}
	return backend.StatusResult{Envelope: ok, State: backend.OperationStatus{Status: backend.StatusQueued}}, nil
}

func (f *Fake) RemoveItem(ctx context.Context, itemID int) (backend.MessageResult, error) {
	f.record(backend.MethodRemoveItem, itemID)
	if f.RemoveItemFunc != nil {
		return f.RemoveItemFunc(ctx, itemID)
	}
	return backend.MessageResult{Envelope: ok}, nil
}

func (f *Fake) RequestItem(ctx context.Context, itemID int) (backend.MessageResult, error) {
	f.record(backend.MethodRequestItem, itemID)
	if f.RequestItemFunc != nil {
		return f.RequestItemFunc(ctx, itemID)
	}
	return backend.MessageResult{Envelope: ok}, nil
}

func (f *Fake) PrefetchDLCs(ctx context.Context, itemID int) (backend.MessageResult, error) {
	f.record(backend.MethodPrefetchDLCs, itemID)
	if f.PrefetchDLCsFunc != nil {
		return f.PrefetchDLCsFunc(ctx, itemID)
	}
	return backend.MessageResult{Envelope: ok}, nil
}

func (f *Fake) StartSecondaryFix(ctx context.Context, itemID int) (backend.StartResult, error) {
	f.record(backend.MethodStartSecondaryFix, itemID)
	if f.StartSecondaryFixFunc != nil {
		return f.StartSecondaryFixFunc(ctx, itemID)
	}
	return backend.StartResult{Envelope: ok}, nil
}

func (f *Fake) GetSecondaryFixStatus(ctx context.Context, itemID int) (backend.StatusResult, error) {
	f.record(backend.MethodGetSecondaryFixStatus, itemID)
	if f.GetSecondaryFixStatusFunc != nil {
		return f.GetSecondaryFixStatusFunc(ctx, itemID)
	}
	return backend.StatusResult{Envelope: ok, State: backend.OperationStatus{Status: backend.StatusQueued}}, nil
}

func (f *Fake) RemoveSecondaryFix(ctx context.Context, itemID int) (backend.MessageResult, error) {
	f.record(backend.MethodRemoveSecondaryFix, itemID)
	if f.RemoveSecondaryFixFunc != nil {
		return f.RemoveSecondaryFixFunc(ctx, itemID)
	}
	return backend.MessageResult{Envelope: ok}, nil
}

func (f *Fake) SaveCredentials(ctx context.Context, username, password string) (backend.Envelope, error) {
	f.record(backend.MethodSaveCredentials, 0)
	if f.SaveCredentialsFunc != nil {
		return f.SaveCredentialsFunc(ctx, username, password)
	}
	return ok, nil
}

func (f *Fake) IsUpdateDismissed(ctx context.Context) (backend.UpdateResult, error) {
	f.record(backend.MethodIsUpdateDismissed, 0)
	if f.IsUpdateDismissedFunc != nil {
		return f.IsUpdateDismissedFunc(ctx)
	}
	return backend.UpdateResult{Envelope: ok}, nil
}

func (f *Fake) GetUpdateMessage(ctx context.Context) (backend.UpdateResult, error) {
	f.record(backend.MethodGetUpdateMessage, 0)
	if f.GetUpdateMessageFunc != nil {
		return f.GetUpdateMessageFunc(ctx)
	}
	return backend.UpdateResult{Envelope: ok}, nil
}

func (f *Fake) CheckForUpdatesNow(ctx context.Context) (backend.UpdateResult, error) {
	f.record(backend.MethodCheckForUpdatesNow, 0)
	if f.CheckForUpdatesNowFunc != nil {
		return f.CheckForUpdatesNowFunc(ctx)
	}
	return backend.UpdateResult{Envelope: ok}, nil
}

func (f *Fake) DownloadAndApplyUpdate(ctx context.Context) (backend.MessageResult, error) {
	f.record(backend.MethodDownloadAndApplyUpdate, 0)
	if f.DownloadAndApplyUpdateFunc != nil {
		return f.DownloadAndApplyUpdateFunc(ctx)
	}
	return backend.MessageResult{Envelope: ok}, nil
}

func (f *Fake) DismissUpdate(ctx context.Context) (backend.Envelope, error) {
	f.record(backend.MethodDismissUpdate, 0)
	if f.DismissUpdateFunc != nil {
		return f.DismissUpdateFunc(ctx)
	}
	return ok, nil
}

func (f *Fake) RestartHostProcess(ctx context.Context) error {
	f.record(backend.MethodRestartHostProcess, 0)
	if f.RestartHostProcessFunc != nil {
		return f.RestartHostProcessFunc(ctx)
	}
	return nil
}
