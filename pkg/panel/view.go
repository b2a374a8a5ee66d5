package panel

// State is the merged result of the probes for one item. Nil pointers are
// facts not known yet.
type State struct {
	Exists            *bool
	Available         *bool
	Indeterminate     bool
	AvailabilityError string
	ISPBlocked        bool
	Message           string
	Repository        string
	Cached            bool

	HasSecondaryCapability *bool
	SecondaryFixApplied    bool

	// Requested and RequestMessage survive Refresh.
	Requested      bool
	RequestMessage string
}

// Mode is the single render mode derived from a State.
type Mode string

const (
	ModeChecking    Mode = "checking"
	ModeError       Mode = "error"
	ModeExists      Mode = "exists"
	ModeAvailable   Mode = "available"
	ModeRequestable Mode = "requestable"
	ModeUnavailable Mode = "unavailable"
)

// Action is a user command bound to a control.
type Action string

const (
	ActionAdd       Action = "add"
	ActionRemove    Action = "remove"
	ActionRequest   Action = "request"
	ActionFixApply  Action = "fix-apply"
	ActionFixRemove Action = "fix-remove"
	ActionRestart   Action = "restart"
)

// Control labels and tooltips.
const (
	LabelRestart         = "Restart host"
	LabelAdd             = "Add to library"
	LabelTry             = "Try adding to library"
	LabelRemove          = "Remove from library"
	LabelRequest         = "Request title"
	LabelRequested       = "Requested"
	LabelFixApply        = "Apply online fix"
	LabelFixRemove       = "Remove online fix"
	LabelCheckingStatus  = "Checking status..."
	LabelCheckingAvail   = "Checking availability..."
	TextAvailCheckFailed = "Availability check failed"
	TextISPBlocked       = "Blocked by your network provider. Try a VPN or another DNS server."
	TooltipIndeterminate = "Availability could not be confirmed, you can still try to download."
)

// Control is one button of the panel. A control without an Action is a
// placeholder and is always disabled.
type Control struct {
	Action   Action
	Label    string
	Tooltip  string
	Disabled bool
}

// Enabled reports whether clicking the control does something.
func (c Control) Enabled() bool {
	return c.Action != "" && !c.Disabled
}

// View is what a Surface draws. The restart control always comes first.
type View struct {
	Mode     Mode
	Controls []Control
}

// Control returns the control bound to action.
func (v View) Control(action Action) (Control, bool) {
	for _, c := range v.Controls {
		if c.Action == action {
			return c, true
		}
	}
	return Control{}, false
}

// Allows reports whether action is bound to an enabled control.
func (v View) Allows(action Action) bool {
	c, ok := v.Control(action)
	return ok && c.Enabled()
}

// Derive maps a State to exactly one View. It is pure: the same State
// always yields the same View.
func Derive(s State) View {
	restart := Control{Action: ActionRestart, Label: LabelRestart}

	switch {
	case s.Exists != nil && *s.Exists:
		controls := []Control{restart, {Action: ActionRemove, Label: LabelRemove}}
		if s.HasSecondaryCapability != nil && *s.HasSecondaryCapability {
			if s.SecondaryFixApplied {
				controls = append(controls, Control{Action: ActionFixRemove, Label: LabelFixRemove})
			} else {
				controls = append(controls, Control{Action: ActionFixApply, Label: LabelFixApply})
			}
		}
		return View{Mode: ModeExists, Controls: controls}

	case s.Exists == nil:
		return View{Mode: ModeChecking, Controls: []Control{restart, placeholder(LabelCheckingStatus)}}

	case s.AvailabilityError != "" || s.ISPBlocked:
		text := s.AvailabilityError
		if text == "" {
			text = TextISPBlocked
		}
		return View{Mode: ModeError, Controls: []Control{restart, placeholder(text)}}

	case (s.Available != nil && *s.Available) || s.Indeterminate:
		add := Control{Action: ActionAdd, Label: LabelAdd, Tooltip: s.Message}
		if s.Indeterminate {
			add.Label = LabelTry
			if add.Tooltip == "" {
				add.Tooltip = TooltipIndeterminate
			}
		}
		return View{Mode: ModeAvailable, Controls: []Control{restart, add}}

	case s.Available != nil && !*s.Available:
		req := Control{Action: ActionRequest, Label: LabelRequest}
		if s.Requested {
			req.Disabled = true
			req.Label = s.RequestMessage
			if req.Label == "" {
				req.Label = LabelRequested
			}
		}
		return View{Mode: ModeRequestable, Controls: []Control{restart, req}}

	default:
		return View{Mode: ModeUnavailable, Controls: []Control{restart, placeholder(LabelCheckingAvail)}}
	}
}

func placeholder(label string) Control {
	return Control{Label: label, Disabled: true}
}
