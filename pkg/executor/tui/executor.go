// Package tui hosts the panel in the terminal.
//
// The terminal plays the host page: an address bar drives an in-memory
// document (package dom), the binder injects its controls into that
// document, and the panel row is drawn from the injected markup. Overlays
// requested by the engine are stacked modals.
//
// The codebase is split into:
// - executor.go: program lifecycle and wiring
// - model.go: model state and messages
// - update.go: key and message handling
// - view.go: rendering
// - overlay.go, overlays.go: the overlay stack and the overlay kinds
// - presenter.go: ui.Presenter backed by program messages
// - styles.go: colors and styles
package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/titlepanel/pkg/binder"
	"github.com/entrhq/titlepanel/pkg/dom"
	"github.com/entrhq/titlepanel/pkg/logging"
	"github.com/entrhq/titlepanel/pkg/ui"
)

// Executor runs the binder against a terminal-rendered host page.
type Executor struct {
	address string
	options binder.Options
	logger  *logging.Logger
	onStart []func(context.Context, ui.Presenter)
}

// NewExecutor creates a TUI executor opening address. options must carry
// the backend; Page and Presenter are filled in by Run.
func NewExecutor(address string, options binder.Options, logger *logging.Logger) (*Executor, error) {
	if options.Backend == nil {
		return nil, errors.New("backend is required")
	}
	if logger == nil {
		logger = logging.Discard("tui")
	}
	return &Executor{address: address, options: options, logger: logger}, nil
}

// OnStart registers fn to run once the presenter exists, before the
// program starts.
func (e *Executor) OnStart(fn func(context.Context, ui.Presenter)) {
	e.onStart = append(e.onStart, fn)
}

// Run starts the program and blocks until the user exits or ctx is done.
func (e *Executor) Run(ctx context.Context) error {
	doc, err := dom.Parse(e.address, hostPage)
	if err != nil {
		return err
	}

	m := newModel(doc)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	presenter := NewPresenter(program)
	options := e.options
	options.Page = doc
	options.Presenter = presenter
	manager, err := binder.New(options)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	for _, fn := range e.onStart {
		fn(runCtx, presenter)
	}
	done := make(chan error, 1)
	go func() {
		done <- manager.Run(runCtx)
	}()

	_, err = program.Run()
	cancel()
	if runErr := <-done; runErr != nil && !errors.Is(runErr, context.Canceled) {
		e.logger.Errorf("binder stopped: %v", runErr)
	}

	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to run TUI program: %w", err)
	}
	return nil
}
