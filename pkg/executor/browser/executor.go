package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/titlepanel/pkg/binder"
	"github.com/entrhq/titlepanel/pkg/logging"
	"github.com/entrhq/titlepanel/pkg/ui"
)

// Executor runs the binder against a Chromium page.
type Executor struct {
	run     *RunFile
	options binder.Options
	logger  *logging.Logger
	onStart []func(context.Context, ui.Presenter)
}

// NewExecutor creates a browser executor. options must carry the backend;
// Page and Presenter are filled in by Run.
func NewExecutor(run *RunFile, options binder.Options, logger *logging.Logger) (*Executor, error) {
	if run == nil {
		return nil, errors.New("run file is required")
	}
	if err := run.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run file: %w", err)
	}
	if options.Backend == nil {
		return nil, errors.New("backend is required")
	}
	if logger == nil {
		logger = logging.Discard("browser")
	}
	return &Executor{run: run, options: options, logger: logger}, nil
}

// OnStart registers fn to run once the page is open.
func (e *Executor) OnStart(fn func(context.Context, ui.Presenter)) {
	e.onStart = append(e.onStart, fn)
}

// Run opens the page and keeps the panel bound until ctx is done or the
// page is closed.
func (e *Executor) Run(ctx context.Context) error {
	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if !e.run.SkipInstall {
		if err := playwright.Install(opts); err != nil {
			return fmt.Errorf("failed to install playwright: %w", err)
		}
	}
	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}
	defer func() {
		if stopErr := pw.Stop(); stopErr != nil {
			e.logger.Warnf("failed to stop playwright: %v", stopErr)
		}
	}()

	headless := e.run.Headless
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{Headless: &headless})
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	defer browser.Close()

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: e.run.Viewport.Width, Height: e.run.Viewport.Height},
	})
	if err != nil {
		return fmt.Errorf("failed to create context: %w", err)
	}

	pg, err := bctx.NewPage()
	if err != nil {
		return fmt.Errorf("failed to create page: %w", err)
	}
	if e.run.Timeout > 0 {
		pg.SetDefaultTimeout(float64(e.run.Timeout.Milliseconds()))
	}

	page, err := NewPage(pg, e.logger.Named("page"))
	if err != nil {
		return err
	}
	presenter := NewPresenter(page)
	page.OnOverlay(presenter.Handle)

	options := e.options
	options.Page = page
	options.Presenter = presenter
	manager, err := binder.New(options)
	if err != nil {
		return err
	}

	waitUntil := playwright.WaitUntilState(e.run.WaitUntil)
	if _, err := pg.Goto(e.run.URL, playwright.PageGotoOptions{WaitUntil: &waitUntil}); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	e.logger.Infof("opened %s", pg.URL())

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	for _, fn := range e.onStart {
		fn(runCtx, presenter)
	}
	var once sync.Once
	pg.OnClose(func(playwright.Page) {
		once.Do(func() {
			e.logger.Infof("page closed")
			cancel()
		})
	})

	err = manager.Run(runCtx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
