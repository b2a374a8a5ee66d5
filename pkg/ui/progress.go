package ui

import (
	"fmt"

	"github.com/entrhq/titlepanel/pkg/backend"
)

// ProgressView is what a host draws for one status observation.
type ProgressView struct {
	Body    string
	Percent int
	ShowBar bool
}

// Default overlay texts.
const (
	TextRequesting = "Requesting..."
	TextPreparing  = "Preparing download..."
	TextDone       = "Done! Restart the host to load changes."
	TextUnknownErr = "Unknown error"
)

// ViewFor maps a status to overlay text. Only downloading shows the bar.
func ViewFor(s backend.OperationStatus) ProgressView {
	switch s.Status {
	case backend.StatusDownloading:
		pct := s.Percent()
		return ProgressView{Body: fmt.Sprintf("Downloading... %d%%", pct), Percent: pct, ShowBar: true}
	case backend.StatusSearching:
		return ProgressView{Body: "Searching..."}
	case backend.StatusAuthenticating:
		return ProgressView{Body: "Signing in..."}
	case backend.StatusLocating:
		return ProgressView{Body: "Locating download..."}
	case backend.StatusExtracting:
		return ProgressView{Body: "Extracting..."}
	case backend.StatusInstalling, backend.StatusProcessing:
		return ProgressView{Body: "Installing..."}
	case backend.StatusDone:
		return ProgressView{Body: TextDone, Percent: 100}
	case backend.StatusFailed:
		msg := s.Error
		if msg == "" {
			msg = TextUnknownErr
		}
		return ProgressView{Body: "Failed: " + msg}
	case backend.StatusLoginRequired:
		return ProgressView{Body: "Sign-in required"}
	default:
		return ProgressView{Body: TextPreparing}
	}
}
