package backend

import (
	"encoding/json"
	"strings"
)

// Envelope carries the success flag and error text every payload shares.
type Envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Err returns a *DomainError when the backend reported success=false.
func (e Envelope) Err() error {
	if e.Success {
		return nil
	}
	return &DomainError{Message: e.Error}
}

// ExistsResult answers HasItemForId.
type ExistsResult struct {
	Envelope
	Exists bool `json:"exists"`
}

// AvailabilityResult answers CheckAvailability.
type AvailabilityResult struct {
	Envelope
	Available     bool   `json:"available"`
	Indeterminate bool   `json:"indeterminate"`
	Repository    string `json:"repository,omitempty"`
	Message       string `json:"message,omitempty"`
	ISPBlocked    bool   `json:"isp_blocked"`
	Cached        bool   `json:"cached,omitempty"`
}

// CapabilityResult answers CheckSecondaryCapability.
type CapabilityResult struct {
	Envelope
	HasCapability bool `json:"has_multiplayer"`
}

// FixAppliedResult answers IsSecondaryFixApplied.
type FixAppliedResult struct {
	Envelope
	IsApplied bool `json:"is_applied"`
}

// StartResult answers StartAcquire and StartSecondaryFix.
type StartResult struct {
	Envelope
	NeedCredentials bool `json:"need_credentials"`
}

// StatusResult answers GetAcquireStatus and GetSecondaryFixStatus.
type StatusResult struct {
	Envelope
	State OperationStatus `json:"state"`
}

// MessageResult answers calls that return an optional human message.
type MessageResult struct {
	Envelope
	Message string `json:"message,omitempty"`
}

// UpdateResult answers the update gate calls.
type UpdateResult struct {
	Envelope
	Dismissed bool   `json:"dismissed"`
	Message   string `json:"message,omitempty"`
}

// Status is the state of a long-running backend job.
type Status string

const (
	StatusQueued         Status = "queued"
	StatusStarting       Status = "starting"
	StatusSearching      Status = "searching"
	StatusAuthenticating Status = "authenticating"
	StatusLocating       Status = "locating"
	StatusDownloading    Status = "downloading"
	StatusExtracting     Status = "extracting"
	StatusInstalling     Status = "installing"
	StatusProcessing     Status = "processing"
	StatusDone           Status = "done"
	StatusFailed         Status = "failed"
	StatusLoginRequired  Status = "login_required"
)

// statusAliases maps spellings emitted by older backends.
var statusAliases = map[string]Status{
	"checking":         StatusSearching,
	"logging_in":       StatusAuthenticating,
	"finding_download": StatusLocating,
}

var statusRank = map[Status]int{
	StatusQueued:         0,
	StatusStarting:       1,
	StatusSearching:      2,
	StatusAuthenticating: 3,
	StatusLocating:       4,
	StatusDownloading:    5,
	StatusExtracting:     6,
	StatusInstalling:     7,
	StatusProcessing:     8,
	StatusDone:           9,
	StatusFailed:         9,
	StatusLoginRequired:  9,
}

// ParseStatus normalizes a wire status. Unknown values are kept verbatim.
func ParseStatus(raw string) Status {
	s := strings.ToLower(strings.TrimSpace(raw))
	if alias, ok := statusAliases[s]; ok {
		return alias
	}
	return Status(s)
}

// UnmarshalJSON normalizes aliases while decoding.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParseStatus(raw)
	return nil
}

// Terminal reports whether polling must stop after this status.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed || s == StatusLoginRequired
}

// Rank orders statuses along the job lifecycle. Unknown statuses rank -1.
func (s Status) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return -1
}

// OperationStatus is one poll observation of a job.
type OperationStatus struct {
	Status     Status `json:"status"`
	BytesRead  int64  `json:"bytesRead,omitempty"`
	TotalBytes int64  `json:"totalBytes,omitempty"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Percent is floor(bytesRead/totalBytes*100), or 0 without a total.
func (o OperationStatus) Percent() int {
	if o.TotalBytes <= 0 {
		return 0
	}
	pct := int(o.BytesRead * 100 / o.TotalBytes)
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}
