// Package clock provides an injectable time source so that poll loops,
// settle delays and the binder tick can be driven deterministically in
// tests.
//
// Production code holds a Clock field set to Real(). Tests use Fake() and
// call Advance to fire timers:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	tr := tracker.New(tracker.Options{Clock: c, ...})
//	tr.Start(ctx, 730)
//	c.WaitForTimers(1)
//	c.Advance(600 * time.Millisecond)
package clock

import "time"

// Clock abstracts the subset of the time package used by titlepanel.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc calls f once d has elapsed. The returned Timer can
	// cancel the pending call.
	AfterFunc(d time.Duration, f func()) *Timer

	// NewTicker returns a Ticker delivering ticks every d on its C
	// channel. Panics if d <= 0.
	NewTicker(d time.Duration) *Ticker
}

// Ticker wraps a periodic timer. The C channel has capacity 1; ticks
// are dropped if the consumer falls behind.
type Ticker struct {
	C <-chan time.Time

	stopFunc func()
}

// Stop turns the ticker off. C is not closed.
func (t *Ticker) Stop() { t.stopFunc() }

// Timer is a pending AfterFunc call.
type Timer struct {
	stopFunc func() bool
}

// Stop prevents the timer from firing. It reports whether the call
// stopped the timer.
func (t *Timer) Stop() bool { return t.stopFunc() }
