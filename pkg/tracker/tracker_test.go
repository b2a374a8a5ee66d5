package tracker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/titlepanel/pkg/backend"
	"github.com/entrhq/titlepanel/pkg/backend/backendtest"
	"github.com/entrhq/titlepanel/pkg/clock"
	"github.com/entrhq/titlepanel/pkg/ui"
	"github.com/entrhq/titlepanel/pkg/ui/uitest"
)

const (
	waitFor = time.Second
	tick    = time.Millisecond
)

type fixture struct {
	backend  *backendtest.Fake
	recorder *uitest.Recorder
	clock    *clock.FakeClock
	settled  atomic.Int32
}

func newFixture() *fixture {
	return &fixture{
		backend:  backendtest.New(),
		recorder: uitest.NewRecorder(),
		clock:    clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
}

func (f *fixture) options() Options {
	return Options{
		Presenter: f.recorder,
		Clock:     f.clock,
		OnSettled: func() { f.settled.Add(1) },
	}
}

func status(s backend.Status) backend.StatusResult {
	return backend.StatusResult{
		Envelope: backend.Envelope{Success: true},
		State:    backend.OperationStatus{Status: s},
	}
}

// scripted answers the i-th poll with results[i], repeating the last one.
func scripted(results ...backend.StatusResult) StatusFunc {
	var n atomic.Int32
	return func(ctx context.Context, itemID int) (backend.StatusResult, error) {
		i := int(n.Add(1)) - 1
		if i >= len(results) {
			i = len(results) - 1
		}
		return results[i], nil
	}
}

func TestTracker_ProgressThenDoneRefreshesOnce(t *testing.T) {
	f := newFixture()
	half := status(backend.StatusDownloading)
	half.State.BytesRead = 50
	half.State.TotalBytes = 100
	f.backend.GetAcquireStatusFunc = scripted(half, status(backend.StatusDone))

	tr := NewAcquire(f.backend, f.options())
	tr.Start(context.Background(), 730)
	assert.True(t, tr.Active())

	f.clock.WaitForTimers(1)
	f.clock.Advance(DefaultAcquireInterval)
	require.Eventually(t, func() bool {
		return len(f.recorder.LastProgress().Statuses()) == 1
	}, waitFor, tick)
	assert.Equal(t, "Downloading... 50%", f.recorder.LastProgress().Text())
	assert.Equal(t, int32(0), f.settled.Load())

	f.clock.Advance(DefaultAcquireInterval)
	require.Eventually(t, func() bool { return f.settled.Load() == 1 }, waitFor, tick)
	require.Eventually(t, func() bool { return f.clock.PendingCount() == 0 }, waitFor, tick)

	// No poll after the terminal status.
	f.clock.Advance(10 * DefaultAcquireInterval)
	assert.Equal(t, 2, f.backend.Calls(backend.MethodGetAcquireStatus))
	assert.Equal(t, int32(1), f.settled.Load())
	assert.False(t, tr.Active())
	assert.Equal(t,
		[]string{ui.TextRequesting, "Downloading... 50%", ui.TextDone},
		f.recorder.LastProgress().Texts())
	assert.Equal(t, []int{730}, f.backend.ItemIDs(backend.MethodStartAcquire))
}

func TestTracker_ForwardOnly(t *testing.T) {
	f := newFixture()
	f.backend.GetAcquireStatusFunc = scripted(
		status(backend.StatusDownloading),
		status(backend.StatusSearching),
		status(backend.StatusInstalling),
		status(backend.StatusDone),
	)

	tr := NewAcquire(f.backend, f.options())
	tr.Start(context.Background(), 730)
	f.clock.WaitForTimers(1)

	for i := 1; i <= 4; i++ {
		f.clock.Advance(DefaultAcquireInterval)
		n := i
		require.Eventually(t, func() bool {
			return f.backend.Calls(backend.MethodGetAcquireStatus) == n
		}, waitFor, tick)
	}
	require.Eventually(t, func() bool { return f.settled.Load() == 1 }, waitFor, tick)

	var seen []backend.Status
	for _, s := range f.recorder.LastProgress().Statuses() {
		seen = append(seen, s.Status)
	}
	assert.Equal(t, []backend.Status{
		backend.StatusDownloading,
		backend.StatusInstalling,
		backend.StatusDone,
	}, seen)
}

func TestTracker_StartFailureDoesNotPoll(t *testing.T) {
	f := newFixture()
	f.backend.StartAcquireFunc = func(ctx context.Context, itemID int) (backend.StartResult, error) {
		return backend.StartResult{Envelope: backend.Envelope{Error: "No manifest found"}}, nil
	}

	tr := NewAcquire(f.backend, f.options())
	tr.Start(context.Background(), 730)

	require.Eventually(t, func() bool {
		return f.recorder.LastProgress().Text() == "No manifest found"
	}, waitFor, tick)
	require.Eventually(t, func() bool { return !tr.Active() }, waitFor, tick)

	f.clock.Advance(5 * time.Second)
	assert.Zero(t, f.backend.Calls(backend.MethodGetAcquireStatus))
	assert.Zero(t, f.settled.Load())
	assert.Zero(t, f.clock.PendingCount())
}

func TestTracker_StartTransportFailure(t *testing.T) {
	f := newFixture()
	f.backend.StartAcquireFunc = func(ctx context.Context, itemID int) (backend.StartResult, error) {
		return backend.StartResult{}, &backend.TransportError{Method: backend.MethodStartAcquire, Err: errors.New("connection refused")}
	}

	tr := NewAcquire(f.backend, f.options())
	tr.Start(context.Background(), 730)

	require.Eventually(t, func() bool {
		return f.recorder.LastProgress().Text() == "connection refused"
	}, waitFor, tick)
	assert.Zero(t, f.settled.Load())
}

func TestTracker_PollErrorsKeepPolling(t *testing.T) {
	f := newFixture()
	var n atomic.Int32
	f.backend.GetAcquireStatusFunc = func(ctx context.Context, itemID int) (backend.StatusResult, error) {
		switch n.Add(1) {
		case 1:
			return backend.StatusResult{}, &backend.ProtocolError{Method: backend.MethodGetAcquireStatus, Err: errors.New("bad json")}
		case 2:
			return backend.StatusResult{Envelope: backend.Envelope{Error: "busy"}}, nil
		default:
			return status(backend.StatusDone), nil
		}
	}

	tr := NewAcquire(f.backend, f.options())
	tr.Start(context.Background(), 730)
	f.clock.WaitForTimers(1)

	for i := 1; i <= 3; i++ {
		f.clock.Advance(DefaultAcquireInterval)
		want := i
		require.Eventually(t, func() bool {
			return f.backend.Calls(backend.MethodGetAcquireStatus) == want
		}, waitFor, tick)
	}
	require.Eventually(t, func() bool { return f.settled.Load() == 1 }, waitFor, tick)
	assert.Len(t, f.recorder.LastProgress().Statuses(), 1)
}

func TestTracker_StopCancelsPolling(t *testing.T) {
	f := newFixture()
	tr := NewAcquire(f.backend, f.options())
	tr.Start(context.Background(), 730)
	f.clock.WaitForTimers(1)

	tr.Stop()
	assert.False(t, tr.Active())
	require.Eventually(t, func() bool { return f.clock.PendingCount() == 0 }, waitFor, tick)

	f.clock.Advance(10 * DefaultAcquireInterval)
	assert.Zero(t, f.backend.Calls(backend.MethodGetAcquireStatus))
	assert.Zero(t, f.settled.Load())
}

// gatedPresenter holds ShowProgress until release is closed.
type gatedPresenter struct {
	*uitest.Recorder
	entered chan struct{}
	release chan struct{}
}

func (g *gatedPresenter) ShowProgress(title, body string) ui.Progress {
	g.entered <- struct{}{}
	<-g.release
	return g.Recorder.ShowProgress(title, body)
}

func TestTracker_OverlappingStartsKeepOnePoll(t *testing.T) {
	f := newFixture()
	gate := &gatedPresenter{
		Recorder: f.recorder,
		entered:  make(chan struct{}, 2),
		release:  make(chan struct{}),
	}
	opts := f.options()
	opts.Presenter = gate
	tr := NewAcquire(f.backend, opts)

	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Start(context.Background(), 730)
		}()
	}
	<-gate.entered
	<-gate.entered
	close(gate.release)
	wg.Wait()

	f.clock.WaitForTimers(1)
	assert.True(t, tr.Active())

	tr.Stop()
	require.Eventually(t, func() bool { return f.clock.PendingCount() == 0 }, waitFor, tick)

	f.clock.Advance(10 * DefaultAcquireInterval)
	assert.Zero(t, f.backend.Calls(backend.MethodGetAcquireStatus))
	assert.Zero(t, f.settled.Load())
}

func TestTracker_RestartReplacesPoll(t *testing.T) {
	f := newFixture()
	tr := NewAcquire(f.backend, f.options())
	tr.Start(context.Background(), 730)
	f.clock.WaitForTimers(1)

	tr.Start(context.Background(), 440)
	require.Eventually(t, func() bool {
		f.clock.Advance(DefaultAcquireInterval)
		return f.backend.Calls(backend.MethodGetAcquireStatus) >= 2
	}, waitFor, tick)

	tr.Stop()
	for _, id := range f.backend.ItemIDs(backend.MethodGetAcquireStatus) {
		assert.Equal(t, 440, id)
	}
	assert.Len(t, f.recorder.ProgressOverlays(), 2)
}

func TestTracker_AcquireLoginRequiredIsTerminal(t *testing.T) {
	f := newFixture()
	f.backend.GetAcquireStatusFunc = scripted(status(backend.StatusLoginRequired))

	tr := NewAcquire(f.backend, f.options())
	tr.Start(context.Background(), 730)
	f.clock.WaitForTimers(1)
	f.clock.Advance(DefaultAcquireInterval)

	require.Eventually(t, func() bool { return f.settled.Load() == 1 }, waitFor, tick)
	assert.Empty(t, f.recorder.CredentialPrompts())
}

func TestTracker_FixCredentialRedirect(t *testing.T) {
	f := newFixture()
	var starts atomic.Int32
	f.backend.StartSecondaryFixFunc = func(ctx context.Context, itemID int) (backend.StartResult, error) {
		starts.Add(1)
		return backend.StartResult{Envelope: backend.Envelope{Success: true}}, nil
	}
	f.backend.GetSecondaryFixStatusFunc = func(ctx context.Context, itemID int) (backend.StatusResult, error) {
		if starts.Load() == 1 {
			res := status(backend.StatusFailed)
			res.State.Error = "Steam Login failed: bad password"
			return res, nil
		}
		return status(backend.StatusDone), nil
	}
	var saved atomic.Value
	f.backend.SaveCredentialsFunc = func(ctx context.Context, username, password string) (backend.Envelope, error) {
		saved.Store(username + ":" + password)
		return backend.Envelope{Success: true}, nil
	}

	tr := NewFix(f.backend, f.options())
	tr.Start(context.Background(), 730)
	f.clock.WaitForTimers(1)
	f.clock.Advance(DefaultFixInterval)

	require.Eventually(t, func() bool { return len(f.recorder.CredentialPrompts()) == 1 }, waitFor, tick)
	require.Eventually(t, func() bool { return f.clock.PendingCount() == 0 }, waitFor, tick)
	assert.Zero(t, f.settled.Load())
	assert.True(t, f.recorder.LastProgress().Closed())

	f.recorder.CredentialPrompts()[0].Submit("gaben", "hunter2")
	require.Eventually(t, func() bool { return starts.Load() == 2 }, waitFor, tick)
	assert.Equal(t, "gaben:hunter2", saved.Load())

	f.clock.WaitForTimers(1)
	f.clock.Advance(DefaultFixInterval)
	require.Eventually(t, func() bool { return f.settled.Load() == 1 }, waitFor, tick)
	assert.Len(t, f.recorder.ProgressOverlays(), 2)
}

func TestTracker_FixNeedCredentialsOnStart(t *testing.T) {
	f := newFixture()
	f.backend.StartSecondaryFixFunc = func(ctx context.Context, itemID int) (backend.StartResult, error) {
		return backend.StartResult{
			Envelope:        backend.Envelope{Error: "No credentials configured"},
			NeedCredentials: true,
		}, nil
	}

	tr := NewFix(f.backend, f.options())
	tr.Start(context.Background(), 730)

	require.Eventually(t, func() bool { return len(f.recorder.CredentialPrompts()) == 1 }, waitFor, tick)
	assert.False(t, tr.Active())
	assert.Zero(t, f.clock.PendingCount())

	f.recorder.CredentialPrompts()[0].Cancel()
	assert.Zero(t, f.backend.Calls(backend.MethodSaveCredentials))
}

func TestTracker_FixSaveCredentialsFailure(t *testing.T) {
	f := newFixture()
	f.backend.GetSecondaryFixStatusFunc = scripted(status(backend.StatusLoginRequired))
	f.backend.SaveCredentialsFunc = func(ctx context.Context, username, password string) (backend.Envelope, error) {
		return backend.Envelope{Error: "keyring locked"}, nil
	}

	tr := NewFix(f.backend, f.options())
	tr.Start(context.Background(), 730)
	f.clock.WaitForTimers(1)
	f.clock.Advance(DefaultFixInterval)
	require.Eventually(t, func() bool { return len(f.recorder.CredentialPrompts()) == 1 }, waitFor, tick)

	f.recorder.CredentialPrompts()[0].Submit("u", "p")
	require.Eventually(t, func() bool { return len(f.recorder.Infos()) == 1 }, waitFor, tick)
	assert.Equal(t, "keyring locked", f.recorder.Infos()[0].Body)
	assert.Equal(t, 1, f.backend.Calls(backend.MethodStartSecondaryFix))
}

func TestIsCredentialFailure(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Missing credentials", true},
		{"LOGIN failed", true},
		{"Authentication error", true},
		{"wrong Password", true},
		{"unknown username", true},
		{"Please sign in first", true},
		{"not logged in", true},
		{"disk full", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCredentialFailure(tt.text))
		})
	}
}
