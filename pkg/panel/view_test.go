package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }

func TestDerive(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		mode     Mode
		controls []Control
	}{
		{
			name:     "all unknown",
			state:    State{},
			mode:     ModeChecking,
			controls: []Control{{Label: LabelCheckingStatus, Disabled: true}},
		},
		{
			name:     "exists wins over availability error",
			state:    State{Exists: boolPtr(true), AvailabilityError: "boom"},
			mode:     ModeExists,
			controls: []Control{{Action: ActionRemove, Label: LabelRemove}},
		},
		{
			name:  "exists with fix not applied",
			state: State{Exists: boolPtr(true), HasSecondaryCapability: boolPtr(true)},
			mode:  ModeExists,
			controls: []Control{
				{Action: ActionRemove, Label: LabelRemove},
				{Action: ActionFixApply, Label: LabelFixApply},
			},
		},
		{
			name:  "exists with fix applied",
			state: State{Exists: boolPtr(true), HasSecondaryCapability: boolPtr(true), SecondaryFixApplied: true},
			mode:  ModeExists,
			controls: []Control{
				{Action: ActionRemove, Label: LabelRemove},
				{Action: ActionFixRemove, Label: LabelFixRemove},
			},
		},
		{
			name:     "existence unknown hides availability",
			state:    State{Available: boolPtr(true)},
			mode:     ModeChecking,
			controls: []Control{{Label: LabelCheckingStatus, Disabled: true}},
		},
		{
			name:     "availability error",
			state:    State{Exists: boolPtr(false), AvailabilityError: "rate limited"},
			mode:     ModeError,
			controls: []Control{{Label: "rate limited", Disabled: true}},
		},
		{
			name:     "isp blocked",
			state:    State{Exists: boolPtr(false), Available: boolPtr(false), ISPBlocked: true},
			mode:     ModeError,
			controls: []Control{{Label: TextISPBlocked, Disabled: true}},
		},
		{
			name:     "available",
			state:    State{Exists: boolPtr(false), Available: boolPtr(true), Message: "from mirror"},
			mode:     ModeAvailable,
			controls: []Control{{Action: ActionAdd, Label: LabelAdd, Tooltip: "from mirror"}},
		},
		{
			name:     "indeterminate",
			state:    State{Exists: boolPtr(false), Indeterminate: true},
			mode:     ModeAvailable,
			controls: []Control{{Action: ActionAdd, Label: LabelTry, Tooltip: TooltipIndeterminate}},
		},
		{
			name:     "requestable",
			state:    State{Exists: boolPtr(false), Available: boolPtr(false)},
			mode:     ModeRequestable,
			controls: []Control{{Action: ActionRequest, Label: LabelRequest}},
		},
		{
			name:     "requested with message",
			state:    State{Exists: boolPtr(false), Available: boolPtr(false), Requested: true, RequestMessage: "Queued"},
			mode:     ModeRequestable,
			controls: []Control{{Action: ActionRequest, Label: "Queued", Disabled: true}},
		},
		{
			name:     "requested without message",
			state:    State{Exists: boolPtr(false), Available: boolPtr(false), Requested: true},
			mode:     ModeRequestable,
			controls: []Control{{Action: ActionRequest, Label: LabelRequested, Disabled: true}},
		},
		{
			name:     "availability unknown",
			state:    State{Exists: boolPtr(false)},
			mode:     ModeUnavailable,
			controls: []Control{{Label: LabelCheckingAvail, Disabled: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := Derive(tt.state)
			assert.Equal(t, tt.mode, view.Mode)
			want := append([]Control{{Action: ActionRestart, Label: LabelRestart}}, tt.controls...)
			assert.Equal(t, want, view.Controls)
		})
	}
}

// TestDerive_ExactlyOneMode walks every combination of the fields that
// influence the mode.
func TestDerive_ExactlyOneMode(t *testing.T) {
	tristate := []*bool{nil, boolPtr(true), boolPtr(false)}
	flags := []bool{false, true}
	errs := []string{"", "unreachable"}
	valid := map[Mode]bool{
		ModeChecking: true, ModeError: true, ModeExists: true,
		ModeAvailable: true, ModeRequestable: true, ModeUnavailable: true,
	}

	count := 0
	for _, exists := range tristate {
		for _, available := range tristate {
			for _, capability := range tristate {
				for _, indeterminate := range flags {
					for _, isp := range flags {
						for _, applied := range flags {
							for _, requested := range flags {
								for _, availErr := range errs {
									s := State{
										Exists:                 exists,
										Available:              available,
										HasSecondaryCapability: capability,
										Indeterminate:          indeterminate,
										ISPBlocked:             isp,
										SecondaryFixApplied:    applied,
										Requested:              requested,
										AvailabilityError:      availErr,
									}
									view := Derive(s)
									require.True(t, valid[view.Mode], "state %+v gave mode %q", s, view.Mode)
									require.Equal(t, view, Derive(s))
									require.NotEmpty(t, view.Controls)
									require.Equal(t, ActionRestart, view.Controls[0].Action)
									count++
								}
							}
						}
					}
				}
			}
		}
	}
	assert.Equal(t, 3*3*3*2*2*2*2*2, count)
}

func TestViewAllows(t *testing.T) {
	view := Derive(State{Exists: boolPtr(false), Available: boolPtr(false), Requested: true})
	assert.True(t, view.Allows(ActionRestart))
	assert.False(t, view.Allows(ActionRequest))
	assert.False(t, view.Allows(ActionAdd))

	_, ok := view.Control(ActionRequest)
	assert.True(t, ok)
}
