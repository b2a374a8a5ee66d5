package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/entrhq/titlepanel/pkg/backend"
)

func TestViewFor(t *testing.T) {
	tests := []struct {
		name   string
		status backend.OperationStatus
		want   ProgressView
	}{
		{
			name:   "queued prepares",
			status: backend.OperationStatus{Status: backend.StatusQueued},
			want:   ProgressView{Body: TextPreparing},
		},
		{
			name:   "unknown status prepares",
			status: backend.OperationStatus{Status: "warming_up"},
			want:   ProgressView{Body: TextPreparing},
		},
		{
			name:   "downloading half way",
			status: backend.OperationStatus{Status: backend.StatusDownloading, BytesRead: 50, TotalBytes: 100},
			want:   ProgressView{Body: "Downloading... 50%", Percent: 50, ShowBar: true},
		},
		{
			name:   "downloading without total",
			status: backend.OperationStatus{Status: backend.StatusDownloading, BytesRead: 50},
			want:   ProgressView{Body: "Downloading... 0%", ShowBar: true},
		},
		{
			name:   "processing installs",
			status: backend.OperationStatus{Status: backend.StatusProcessing},
			want:   ProgressView{Body: "Installing..."},
		},
		{
			name:   "done",
			status: backend.OperationStatus{Status: backend.StatusDone},
			want:   ProgressView{Body: TextDone, Percent: 100},
		},
		{
			name:   "failed with error",
			status: backend.OperationStatus{Status: backend.StatusFailed, Error: "disk full"},
			want:   ProgressView{Body: "Failed: disk full"},
		},
		{
			name:   "failed without error",
			status: backend.OperationStatus{Status: backend.StatusFailed},
			want:   ProgressView{Body: "Failed: Unknown error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ViewFor(tt.status))
		})
	}
}

func TestPromptLabels(t *testing.T) {
	confirm, cancel := Prompt{}.Labels()
	assert.Equal(t, "OK", confirm)
	assert.Equal(t, "Cancel", cancel)

	confirm, cancel = Prompt{ConfirmLabel: "Update now", CancelLabel: "Later"}.Labels()
	assert.Equal(t, "Update now", confirm)
	assert.Equal(t, "Later", cancel)
}
