// Package panel keeps the state of the control panel for one item.
//
// A Panel issues the existence and availability probes concurrently, merges
// each answer into its State and renders the derived View through a
// Surface after every change. Refresh starts a new probe generation;
// answers belonging to an older generation, or arriving after Close, are
// dropped.
package panel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/entrhq/titlepanel/pkg/backend"
	"github.com/entrhq/titlepanel/pkg/clock"
	"github.com/entrhq/titlepanel/pkg/logging"
	"github.com/entrhq/titlepanel/pkg/tracker"
	"github.com/entrhq/titlepanel/pkg/ui"
)

// ErrActionUnavailable is returned by Trigger when the current view has no
// enabled control for the action.
var ErrActionUnavailable = errors.New("action not available")

// ErrClosed is returned by Trigger after Close.
var ErrClosed = errors.New("panel closed")

// Overlay texts.
const (
	TitleRestart    = "Restart"
	TextRestart     = "Restart the host now?"
	TitleRequest    = "Request"
	TextRequestFail = "Request failed"
	TitleRemove     = "Remove"
)

// Surface draws views. Render is called with the panel lock held and must
// not call back into the Panel.
type Surface interface {
	Render(itemID int, view View)
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func(itemID int, view View)

// Render calls f.
func (f SurfaceFunc) Render(itemID int, view View) { f(itemID, view) }

// Options configures a Panel.
type Options struct {
	ItemID    int
	Backend   backend.Backend
	Surface   Surface
	Presenter ui.Presenter
	Clock     clock.Clock
	Logger    *logging.Logger

	AcquireInterval time.Duration
	FixInterval     time.Duration
	SettleDelay     time.Duration
}

// Panel is the state machine of one bound item.
type Panel struct {
	opts   Options
	ctx    context.Context
	cancel context.CancelFunc

	acquire     *tracker.Tracker
	fix         *tracker.Tracker
	itemRemover *tracker.Remover
	fixRemover  *tracker.Remover

	mu         sync.Mutex
	state      State
	generation uint64
	requesting bool
	closed     bool
}

// New creates a Panel for opts.ItemID. Nothing is probed or rendered until
// Refresh is called.
func New(ctx context.Context, opts Options) *Panel {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard("panel")
	}
	ctx, cancel := context.WithCancel(ctx)

	p := &Panel{opts: opts, ctx: ctx, cancel: cancel}

	trackerOpts := tracker.Options{
		Presenter: opts.Presenter,
		Clock:     opts.Clock,
		Logger:    opts.Logger.Named("tracker"),
		OnSettled: p.Refresh,
	}
	acquireOpts := trackerOpts
	acquireOpts.Interval = opts.AcquireInterval
	p.acquire = tracker.NewAcquire(opts.Backend, acquireOpts)

	fixOpts := trackerOpts
	fixOpts.Interval = opts.FixInterval
	p.fix = tracker.NewFix(opts.Backend, fixOpts)

	p.itemRemover = tracker.NewRemover(tracker.RemoverOptions{
		Name:      "remove-item",
		Title:     TitleRemove,
		Remove:    opts.Backend.RemoveItem,
		Settle:    opts.SettleDelay,
		Presenter: opts.Presenter,
		Clock:     opts.Clock,
		Logger:    opts.Logger.Named("remover"),
		OnSettled: p.Refresh,
	})
	p.fixRemover = tracker.NewRemover(tracker.RemoverOptions{
		Name:      "remove-fix",
		Title:     TitleRemove,
		Remove:    opts.Backend.RemoveSecondaryFix,
		Settle:    opts.SettleDelay,
		Presenter: opts.Presenter,
		Clock:     opts.Clock,
		Logger:    opts.Logger.Named("remover"),
		OnSettled: p.Refresh,
	})
	return p
}

// ItemID returns the bound item.
func (p *Panel) ItemID() int {
	return p.opts.ItemID
}

// State returns a copy of the current state.
func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// View returns the view of the current state.
func (p *Panel) View() View {
	return Derive(p.State())
}

// Closed reports whether Close was called.
func (p *Panel) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Refresh forgets every probed fact and probes again. The request fields
// are kept.
func (p *Panel) Refresh() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.generation++
	gen := p.generation
	p.state = State{
		Requested:      p.state.Requested,
		RequestMessage: p.state.RequestMessage,
	}
	p.renderLocked()
	p.mu.Unlock()

	go p.prefetch()
	go p.probeExistence(gen)
	go p.probeAvailability(gen)
}

// prefetch warms the backend's DLC list. Its answer never touches State.
func (p *Panel) prefetch() {
	id := p.opts.ItemID
	res, err := p.opts.Backend.PrefetchDLCs(p.ctx, id)
	if err == nil {
		err = res.Err()
	}
	if err != nil {
		p.opts.Logger.Debugf("item %d: dlc prefetch failed: %v", id, err)
	}
}

// Close stops both trackers, cancels pending settle timers and drops every
// answer still in flight.
func (p *Panel) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.acquire.Stop()
	p.fix.Stop()
	p.itemRemover.Stop()
	p.fixRemover.Stop()
	p.cancel()
}

// Trigger runs the command bound to action. It fails when the current view
// has no enabled control for it.
func (p *Panel) Trigger(action Action) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if !Derive(p.state).Allows(action) {
		p.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrActionUnavailable, action)
	}
	if action == ActionRequest {
		if p.requesting {
			p.mu.Unlock()
			return fmt.Errorf("%w: request in flight", ErrActionUnavailable)
		}
		p.requesting = true
	}
	p.mu.Unlock()

	id := p.opts.ItemID
	p.opts.Logger.Infof("item %d: %s", id, action)

	switch action {
	case ActionAdd:
		p.acquire.Start(p.ctx, id)
	case ActionFixApply:
		p.fix.Start(p.ctx, id)
	case ActionRemove:
		go p.itemRemover.Remove(p.ctx, id)
	case ActionFixRemove:
		go p.fixRemover.Remove(p.ctx, id)
	case ActionRequest:
		go p.request(id)
	case ActionRestart:
		p.confirmRestart()
	}
	return nil
}

// apply merges one probe answer if gen is still current.
func (p *Panel) apply(gen uint64, fn func(*State)) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || gen != p.generation {
		return false
	}
	fn(&p.state)
	p.renderLocked()
	return true
}

func (p *Panel) renderLocked() {
	if p.opts.Surface != nil {
		p.opts.Surface.Render(p.opts.ItemID, Derive(p.state))
	}
}

func (p *Panel) probeExistence(gen uint64) {
	id := p.opts.ItemID
	res, err := p.opts.Backend.HasItemForID(p.ctx, id)
	if err != nil {
		p.opts.Logger.Warnf("item %d: existence probe failed: %v", id, err)
	}
	exists := err == nil && res.Success && res.Exists

	if !p.apply(gen, func(s *State) { s.Exists = &exists }) || !exists {
		return
	}
	go p.probeCapability(gen)
	go p.probeFixApplied(gen)
}

func (p *Panel) probeAvailability(gen uint64) {
	id := p.opts.ItemID
	res, err := p.opts.Backend.CheckAvailability(p.ctx, id)
	if err != nil {
		p.opts.Logger.Warnf("item %d: availability probe failed: %v", id, err)
		text := backend.Describe(err, TextAvailCheckFailed)
		p.apply(gen, func(s *State) {
			s.Available = nil
			s.AvailabilityError = text
		})
		return
	}
	if derr := res.Err(); derr != nil {
		text := res.Error
		if text == "" {
			text = TextAvailCheckFailed
		}
		p.apply(gen, func(s *State) {
			s.Available = nil
			s.AvailabilityError = text
		})
		return
	}

	p.apply(gen, func(s *State) {
		available := res.Available
		s.Available = &available
		s.Indeterminate = res.Indeterminate
		s.Repository = res.Repository
		s.Message = res.Message
		s.Cached = res.Cached
		s.ISPBlocked = res.ISPBlocked
		s.AvailabilityError = ""
		if res.ISPBlocked {
			s.AvailabilityError = TextISPBlocked
		}
	})
}

func (p *Panel) probeCapability(gen uint64) {
	id := p.opts.ItemID
	res, err := p.opts.Backend.CheckSecondaryCapability(p.ctx, id)
	if err != nil {
		p.opts.Logger.Warnf("item %d: capability probe failed: %v", id, err)
	}
	has := err == nil && res.Success && res.HasCapability
	p.apply(gen, func(s *State) { s.HasSecondaryCapability = &has })
}

func (p *Panel) probeFixApplied(gen uint64) {
	id := p.opts.ItemID
	res, err := p.opts.Backend.IsSecondaryFixApplied(p.ctx, id)
	if err != nil {
		p.opts.Logger.Warnf("item %d: fix probe failed: %v", id, err)
	}
	applied := err == nil && res.Success && res.IsApplied
	p.apply(gen, func(s *State) { s.SecondaryFixApplied = applied })
}

func (p *Panel) request(id int) {
	res, err := p.opts.Backend.RequestItem(p.ctx, id)
	if err == nil {
		err = res.Err()
	}

	p.mu.Lock()
	p.requesting = false
	if p.closed {
		p.mu.Unlock()
		return
	}
	if err == nil {
		p.state.Requested = true
		p.state.RequestMessage = res.Message
		p.renderLocked()
	}
	p.mu.Unlock()

	if err != nil {
		p.opts.Logger.Warnf("item %d: request failed: %v", id, err)
		p.opts.Presenter.Info(TitleRequest, backend.Describe(err, TextRequestFail))
	}
}

func (p *Panel) confirmRestart() {
	ctx := context.WithoutCancel(p.ctx)
	p.opts.Presenter.Confirm(ui.Prompt{
		Title:        TitleRestart,
		Body:         TextRestart,
		ConfirmLabel: "Restart",
		CancelLabel:  "Cancel",
	}, func() {
		go func() {
			if err := p.opts.Backend.RestartHostProcess(ctx); err != nil {
				p.opts.Logger.Warnf("restart failed: %v", err)
			}
		}()
	}, nil)
}
