// Package tracker starts long-running backend jobs and follows them to a
// terminal status.
//
// A Tracker owns at most one poll loop. Start cancels any loop already
// running, opens a progress overlay, issues the start call and then polls
// the status call on a fixed interval. When the job reaches done or failed
// the loop is cancelled exactly once and OnSettled runs exactly once.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/entrhq/titlepanel/pkg/backend"
	"github.com/entrhq/titlepanel/pkg/clock"
	"github.com/entrhq/titlepanel/pkg/logging"
	"github.com/entrhq/titlepanel/pkg/ui"
)

// Default poll intervals.
const (
	DefaultAcquireInterval = 600 * time.Millisecond
	DefaultFixInterval     = 1500 * time.Millisecond
)

// Texts shown by the tracker.
const (
	TextStartFailed       = "Failed to start"
	TextCredentialsTitle  = "Sign-in required"
	TextCredentialsBody   = "Enter the account credentials used for this operation."
	TextCredentialsFailed = "Could not save credentials"
)

// StartFunc issues the start call of a job.
type StartFunc func(ctx context.Context, itemID int) (backend.StartResult, error)

// StatusFunc polls the status of a job.
type StatusFunc func(ctx context.Context, itemID int) (backend.StatusResult, error)

// SaveCredentialsFunc stores credentials before a job is retried.
type SaveCredentialsFunc func(ctx context.Context, username, password string) (backend.Envelope, error)

// Options configures a Tracker.
type Options struct {
	// Name identifies the tracker in logs.
	Name string
	// Title is the progress overlay title.
	Title    string
	Interval time.Duration

	Start  StartFunc
	Status StatusFunc

	// SaveCredentials enables the credential redirect. When nil, a
	// login_required status is treated as a failure.
	SaveCredentials SaveCredentialsFunc

	Presenter ui.Presenter
	Clock     clock.Clock
	Logger    *logging.Logger

	// OnSettled runs once per job after done or failed.
	OnSettled func()
}

// Tracker follows one job at a time.
type Tracker struct {
	opts Options

	mu     sync.Mutex
	active *poll
}

// poll is the handle of one running job.
type poll struct {
	itemID   int
	ctx      context.Context
	cancel   context.CancelFunc
	progress ui.Progress
	settle   sync.Once

	highest int
}

// New creates a Tracker. Start and Status are required.
func New(opts Options) *Tracker {
	if opts.Interval <= 0 {
		opts.Interval = DefaultAcquireInterval
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard("tracker")
	}
	if opts.Name == "" {
		opts.Name = "job"
	}
	return &Tracker{opts: opts}
}

// NewAcquire returns the tracker for the add flow.
func NewAcquire(b backend.Backend, opts Options) *Tracker {
	opts.Name = "acquire"
	if opts.Title == "" {
		opts.Title = "Adding title"
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultAcquireInterval
	}
	opts.Start = b.StartAcquire
	opts.Status = b.GetAcquireStatus
	opts.SaveCredentials = nil
	return New(opts)
}

// NewFix returns the tracker for the secondary-fix flow. It redirects
// credential failures into a credential prompt.
func NewFix(b backend.Backend, opts Options) *Tracker {
	opts.Name = "fix"
	if opts.Title == "" {
		opts.Title = "Applying fix"
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultFixInterval
	}
	opts.Start = b.StartSecondaryFix
	opts.Status = b.GetSecondaryFixStatus
	opts.SaveCredentials = b.SaveCredentials
	return New(opts)
}

// Start cancels any running job and starts a new one for itemID. The
// start call and the poll loop run on their own goroutine; ctx bounds
// both.
func (t *Tracker) Start(ctx context.Context, itemID int) {
	pollCtx, cancel := context.WithCancel(ctx)
	p := &poll{
		itemID:   itemID,
		ctx:      pollCtx,
		cancel:   cancel,
		progress: t.opts.Presenter.ShowProgress(t.opts.Title, ui.TextRequesting),
		highest:  -1,
	}

	t.mu.Lock()
	old := t.active
	t.active = p
	t.mu.Unlock()
	if old != nil {
		old.cancel()
	}

	t.opts.Logger.Infof("%s: starting for item %d", t.opts.Name, itemID)
	go t.run(ctx, p)
}

// Stop cancels the running poll loop, if any. OnSettled is not called.
func (t *Tracker) Stop() {
	t.mu.Lock()
	p := t.active
	t.active = nil
	t.mu.Unlock()

	if p != nil {
		p.cancel()
	}
}

// Active reports whether a job is being followed.
func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active != nil
}

// release forgets p if it is still the active job.
func (t *Tracker) release(p *poll) {
	t.mu.Lock()
	if t.active == p {
		t.active = nil
	}
	t.mu.Unlock()
	p.cancel()
}

func (t *Tracker) run(parent context.Context, p *poll) {
	res, err := t.opts.Start(p.ctx, p.itemID)
	if p.ctx.Err() != nil {
		return
	}
	if err != nil {
		t.opts.Logger.Errorf("%s: start failed for item %d: %v", t.opts.Name, p.itemID, err)
		p.progress.SetText(backend.Describe(err, TextStartFailed))
		t.release(p)
		return
	}
	if res.NeedCredentials && t.credentialsEnabled() {
		t.redirect(parent, p)
		return
	}
	if derr := res.Err(); derr != nil {
		if t.credentialsEnabled() && IsCredentialFailure(res.Error) {
			t.redirect(parent, p)
			return
		}
		t.opts.Logger.Warnf("%s: start rejected for item %d: %v", t.opts.Name, p.itemID, derr)
		p.progress.SetText(backend.Describe(derr, TextStartFailed))
		t.release(p)
		return
	}

	ticker := t.opts.Clock.NewTicker(t.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			if p.ctx.Err() != nil {
				return
			}
			if t.pollOnce(parent, p) {
				return
			}
		}
	}
}

// pollOnce performs one status call and reports whether the loop must end.
func (t *Tracker) pollOnce(parent context.Context, p *poll) bool {
	res, err := t.opts.Status(p.ctx, p.itemID)
	if p.ctx.Err() != nil {
		return true
	}
	if err != nil {
		t.opts.Logger.Warnf("%s: status poll failed for item %d: %v", t.opts.Name, p.itemID, err)
		return false
	}
	if derr := res.Err(); derr != nil {
		t.opts.Logger.Warnf("%s: status poll rejected for item %d: %v", t.opts.Name, p.itemID, derr)
		return false
	}

	state := res.State
	rank := state.Status.Rank()
	if !state.Status.Terminal() && rank < p.highest {
		t.opts.Logger.Debugf("%s: ignoring %s after rank %d", t.opts.Name, state.Status, p.highest)
		return false
	}
	if rank > p.highest {
		p.highest = rank
	}

	if t.credentialsEnabled() && isCredentialStatus(state) {
		t.redirect(parent, p)
		return true
	}

	p.progress.Update(state)

	switch state.Status {
	case backend.StatusDone, backend.StatusFailed, backend.StatusLoginRequired:
		t.opts.Logger.Infof("%s: item %d settled with %s", t.opts.Name, p.itemID, state.Status)
		t.settle(p)
		return true
	}
	return false
}

// settle cancels the loop and notifies OnSettled, once per job.
func (t *Tracker) settle(p *poll) {
	p.settle.Do(func() {
		t.release(p)
		if t.opts.OnSettled != nil {
			t.opts.OnSettled()
		}
	})
}

func (t *Tracker) credentialsEnabled() bool {
	return t.opts.SaveCredentials != nil
}

func isCredentialStatus(state backend.OperationStatus) bool {
	if state.Status == backend.StatusLoginRequired {
		return true
	}
	return state.Status == backend.StatusFailed && IsCredentialFailure(state.Error)
}

// redirect ends the job and asks for credentials. Saving them restarts the
// job from Start.
func (t *Tracker) redirect(parent context.Context, p *poll) {
	t.opts.Logger.Infof("%s: credentials needed for item %d", t.opts.Name, p.itemID)
	p.progress.Close()
	t.release(p)

	itemID := p.itemID
	t.opts.Presenter.PromptCredentials(TextCredentialsTitle, TextCredentialsBody,
		func(username, password string) {
			go t.saveAndRestart(parent, itemID, username, password)
		},
		func() {
			t.opts.Logger.Infof("%s: credential prompt cancelled for item %d", t.opts.Name, itemID)
		},
	)
}

func (t *Tracker) saveAndRestart(ctx context.Context, itemID int, username, password string) {
	if ctx.Err() != nil {
		return
	}
	env, err := t.opts.SaveCredentials(ctx, username, password)
	if err == nil {
		err = env.Err()
	}
	if err != nil {
		t.opts.Logger.Errorf("%s: saving credentials failed: %v", t.opts.Name, err)
		t.opts.Presenter.Info(TextCredentialsTitle, backend.Describe(err, TextCredentialsFailed))
		return
	}
	if ctx.Err() != nil {
		return
	}
	t.Start(ctx, itemID)
}
