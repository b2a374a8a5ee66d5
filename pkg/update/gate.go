// Package update runs the once-per-session update check.
//
// The backend's dismissal flag always wins: a dismissed update is never
// shown again this session, and a pending message from an earlier check is
// shown before any new check is triggered.
package update

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/entrhq/titlepanel/pkg/backend"
	"github.com/entrhq/titlepanel/pkg/clock"
	"github.com/entrhq/titlepanel/pkg/logging"
	"github.com/entrhq/titlepanel/pkg/ui"
)

// DefaultStartupDelay is how long Schedule waits before checking.
const DefaultStartupDelay = 3 * time.Second

// Texts shown by the gate.
const (
	Title           = "Update"
	LabelApply      = "Update now"
	LabelLater      = "Later"
	TextApplied     = "Update applied. Restarting..."
	TextApplyFailed = "Update failed"
)

var updateKeywords = []string{"update", "available", "restart"}

// History remembers when the backend was last asked to check actively.
type History interface {
	LastChecked() time.Time
	RecordCheck(t time.Time) error
}

// Options configures a Gate.
type Options struct {
	Backend   backend.Backend
	Presenter ui.Presenter
	Clock     clock.Clock
	Logger    *logging.Logger

	StartupDelay time.Duration

	// History and MinCheckInterval let the gate skip the active check
	// when one ran recently. Pending messages are always shown.
	History          History
	MinCheckInterval time.Duration
}

// Gate shows at most one update notification per session.
type Gate struct {
	opts    Options
	checked atomic.Bool
}

// New creates a Gate.
func New(opts Options) *Gate {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard("update")
	}
	if opts.StartupDelay <= 0 {
		opts.StartupDelay = DefaultStartupDelay
	}
	return &Gate{opts: opts}
}

// Checked reports whether Check has run this session.
func (g *Gate) Checked() bool {
	return g.checked.Load()
}

// Schedule runs Check once the startup delay has passed. Stop the returned
// timer to cancel it.
func (g *Gate) Schedule(ctx context.Context) *clock.Timer {
	return g.opts.Clock.AfterFunc(g.opts.StartupDelay, func() {
		go g.Check(ctx)
	})
}

// Check runs the update sequence. Only the first call in a session does
// anything; the flag is set before any backend call.
func (g *Gate) Check(ctx context.Context) {
	if !g.checked.CompareAndSwap(false, true) {
		return
	}
	log := g.opts.Logger
	b := g.opts.Backend

	dismissed, err := b.IsUpdateDismissed(ctx)
	switch {
	case err != nil:
		log.Warnf("dismissal check failed: %v", err)
	case dismissed.Dismissed:
		log.Infof("update dismissed for this session")
		return
	}

	pending, err := b.GetUpdateMessage(ctx)
	if err != nil {
		log.Warnf("pending update message failed: %v", err)
	} else if pending.Success && !pending.Dismissed && pending.Message != "" {
		g.present(ctx, pending.Message)
		return
	}

	if g.recentlyChecked() {
		log.Debugf("skipping active update check, last at %s", g.opts.History.LastChecked().Format(time.RFC3339))
		return
	}
	if g.opts.History != nil {
		if err := g.opts.History.RecordCheck(g.opts.Clock.Now()); err != nil {
			log.Warnf("failed to record update check: %v", err)
		}
	}

	fresh, err := b.CheckForUpdatesNow(ctx)
	if err != nil {
		log.Warnf("active update check failed: %v", err)
		return
	}
	if fresh.Success && !fresh.Dismissed && fresh.Message != "" {
		g.present(ctx, fresh.Message)
	}
}

func (g *Gate) recentlyChecked() bool {
	if g.opts.History == nil || g.opts.MinCheckInterval <= 0 {
		return false
	}
	last := g.opts.History.LastChecked()
	if last.IsZero() {
		return false
	}
	return g.opts.Clock.Now().Sub(last) < g.opts.MinCheckInterval
}

// IsUpdateMessage reports whether a backend message offers an update.
func IsUpdateMessage(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range updateKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func (g *Gate) present(ctx context.Context, message string) {
	if !IsUpdateMessage(message) {
		g.opts.Presenter.Info(Title, message)
		return
	}

	g.opts.Presenter.Confirm(ui.Prompt{
		Title:        Title,
		Body:         message,
		ConfirmLabel: LabelApply,
		CancelLabel:  LabelLater,
	}, func() {
		go g.apply(ctx)
	}, func() {
		go g.dismiss(ctx)
	})
}

func (g *Gate) apply(ctx context.Context) {
	res, err := g.opts.Backend.DownloadAndApplyUpdate(ctx)
	if err == nil {
		err = res.Err()
	}
	if err != nil {
		g.opts.Logger.Errorf("applying update failed: %v", err)
		g.opts.Presenter.Info(Title, backend.Describe(err, TextApplyFailed))
		return
	}

	text := res.Message
	if text == "" {
		text = TextApplied
	}
	g.opts.Presenter.Info(Title, text)

	if err := g.opts.Backend.RestartHostProcess(ctx); err != nil {
		g.opts.Logger.Errorf("restart after update failed: %v", err)
		g.opts.Presenter.Info(Title, backend.Describe(err, "Restart failed"))
	}
}

func (g *Gate) dismiss(ctx context.Context) {
	env, err := g.opts.Backend.DismissUpdate(ctx)
	if err == nil {
		err = env.Err()
	}
	if err != nil {
		g.opts.Logger.Warnf("dismissing update failed: %v", err)
	}
}
