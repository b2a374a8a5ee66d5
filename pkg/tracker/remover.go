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

// DefaultSettleDelay is how long a Remover waits before OnSettled.
const DefaultSettleDelay = 1000 * time.Millisecond

// RemoveFunc is a single removal call.
type RemoveFunc func(ctx context.Context, itemID int) (backend.MessageResult, error)

// RemoverOptions configures a Remover.
type RemoverOptions struct {
	Name  string
	Title string

	Remove RemoveFunc
	Settle time.Duration

	Presenter ui.Presenter
	Clock     clock.Clock
	Logger    *logging.Logger

	// OnSettled runs after every removal attempt once the settle delay
	// has passed, whatever the outcome.
	OnSettled func()
}

// Remover performs one-shot removals. Unlike Tracker it never polls.
type Remover struct {
	opts RemoverOptions

	mu      sync.Mutex
	timer   *clock.Timer
	stopped bool
}

// NewRemover creates a Remover.
func NewRemover(opts RemoverOptions) *Remover {
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettleDelay
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard("remover")
	}
	if opts.Name == "" {
		opts.Name = "remove"
	}
	return &Remover{opts: opts}
}

// Remove performs the call and schedules OnSettled. It blocks until the
// call returns; failures are shown through the presenter.
func (r *Remover) Remove(ctx context.Context, itemID int) {
	res, err := r.opts.Remove(ctx, itemID)
	if err == nil {
		err = res.Err()
	}
	if ctx.Err() != nil {
		return
	}

	if err != nil {
		r.opts.Logger.Warnf("%s: item %d failed: %v", r.opts.Name, itemID, err)
		r.opts.Presenter.Info(r.opts.Title, backend.Describe(err, "Removal failed"))
	} else {
		r.opts.Logger.Infof("%s: item %d removed %s", r.opts.Name, itemID, res.Message)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = r.opts.Clock.AfterFunc(r.opts.Settle, func() {
		r.mu.Lock()
		stopped := r.stopped
		r.mu.Unlock()
		if !stopped && r.opts.OnSettled != nil {
			r.opts.OnSettled()
		}
	})
}

// Stop cancels a pending settle timer. Later calls to Remove still reach
// the backend but no longer schedule OnSettled.
func (r *Remover) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
