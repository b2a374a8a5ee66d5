// Package backend is the client side of the remote title backend: the RPC
// contract, its result types and an HTTP implementation.
//
// Every call returns a typed result and an error. The error is non-nil only
// for a TransportError or a ProtocolError; a backend that answered with
// success=false returns a nil error and a result whose Err method yields a
// *DomainError.
package backend

import "context"

// Backend is the RPC surface consumed by the panel, the trackers and the
// update gate.
type Backend interface {
	HasItemForID(ctx context.Context, itemID int) (ExistsResult, error)
	CheckAvailability(ctx context.Context, itemID int) (AvailabilityResult, error)
	CheckSecondaryCapability(ctx context.Context, itemID int) (CapabilityResult, error)
	IsSecondaryFixApplied(ctx context.Context, itemID int) (FixAppliedResult, error)

	StartAcquire(ctx context.Context, itemID int) (StartResult, error)
	GetAcquireStatus(ctx context.Context, itemID int) (StatusResult, error)
	RemoveItem(ctx context.Context, itemID int) (MessageResult, error)
	RequestItem(ctx context.Context, itemID int) (MessageResult, error)

	// PrefetchDLCs asks the backend to warm its DLC list for itemID. The
	// backend answers immediately and fetches in the background.
	PrefetchDLCs(ctx context.Context, itemID int) (MessageResult, error)

	StartSecondaryFix(ctx context.Context, itemID int) (StartResult, error)
	GetSecondaryFixStatus(ctx context.Context, itemID int) (StatusResult, error)
	RemoveSecondaryFix(ctx context.Context, itemID int) (MessageResult, error)
	SaveCredentials(ctx context.Context, username, password string) (Envelope, error)

	IsUpdateDismissed(ctx context.Context) (UpdateResult, error)
	GetUpdateMessage(ctx context.Context) (UpdateResult, error)
	CheckForUpdatesNow(ctx context.Context) (UpdateResult, error)
	DownloadAndApplyUpdate(ctx context.Context) (MessageResult, error)
	DismissUpdate(ctx context.Context) (Envelope, error)

	// RestartHostProcess is fire-and-forget; only transport errors are
	// reported.
	RestartHostProcess(ctx context.Context) error
}

// Method names as they appear on the wire.
const (
	MethodHasItemForID             = "HasItemForId"
	MethodCheckAvailability        = "CheckAvailability"
	MethodCheckSecondaryCapability = "CheckSecondaryCapability"
	MethodIsSecondaryFixApplied    = "IsSecondaryFixApplied"
	MethodStartAcquire             = "StartAcquire"
	MethodGetAcquireStatus         = "GetAcquireStatus"
	MethodRemoveItem               = "RemoveItem"
	MethodRequestItem              = "RequestItem"
	MethodPrefetchDLCs             = "PrefetchDLCsForApp"
	MethodStartSecondaryFix        = "StartSecondaryFix"
	MethodGetSecondaryFixStatus    = "GetSecondaryFixStatus"
	MethodRemoveSecondaryFix       = "RemoveSecondaryFix"
	MethodSaveCredentials          = "SaveCredentials"
	MethodIsUpdateDismissed        = "IsUpdateDismissed"
	MethodGetUpdateMessage         = "GetUpdateMessage"
	MethodCheckForUpdatesNow       = "CheckForUpdatesNow"
	MethodDownloadAndApplyUpdate   = "DownloadAndApplyUpdate"
	MethodDismissUpdate            = "DismissUpdate"
	MethodRestartHostProcess       = "RestartHostProcess"
)
