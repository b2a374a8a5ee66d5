// Package main provides the titlepanel host. It injects the title control
// panel either into a terminal-simulated store page or into a real browser
// page driven by Playwright.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/entrhq/titlepanel/pkg/backend"
	"github.com/entrhq/titlepanel/pkg/binder"
	"github.com/entrhq/titlepanel/pkg/config"
	"github.com/entrhq/titlepanel/pkg/executor/browser"
	"github.com/entrhq/titlepanel/pkg/executor/tui"
	"github.com/entrhq/titlepanel/pkg/logging"
	"github.com/entrhq/titlepanel/pkg/ui"
	"github.com/entrhq/titlepanel/pkg/update"
)

const (
	version        = "0.1.0"
	defaultAddress = "https://store.steampowered.com/app/730/"

	modeTUI     = "tui"
	modeBrowser = "browser"
)

// Config holds the command line configuration
type Config struct {
	BackendURL  string
	ConfigFile  string
	Mode        string
	RunFile     string
	Address     string
	ShowVersion bool
}

func main() {
	cfg := parseFlags()

	if cfg.ShowVersion {
		fmt.Printf("titlepanel v%s\n", version)
		return
	}

	if err := cfg.validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		cancel()
		log.Fatalf("Application error: %v", err)
	}
}

// parseFlags parses command line flags
func parseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.BackendURL, "backend", "", "Backend base URL (overrides the config file)")
	flag.StringVar(&cfg.ConfigFile, "config", "", "Path to the config file (default ~/.titlepanel/config.json)")
	flag.StringVarP(&cfg.Mode, "mode", "m", modeTUI, "Host mode: tui or browser")
	flag.StringVar(&cfg.RunFile, "run", "", "Browser run file (YAML), required in browser mode")
	flag.StringVar(&cfg.Address, "address", defaultAddress, "First page address in tui mode")
	flag.BoolVarP(&cfg.ShowVersion, "version", "v", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "titlepanel - title control panel host\n\n")
		fmt.Fprintf(os.Stderr, "Usage: titlepanel [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  titlepanel                                   # terminal host\n")
		fmt.Fprintf(os.Stderr, "  titlepanel --address https://store.steampowered.com/app/440/\n")
		fmt.Fprintf(os.Stderr, "  titlepanel --mode browser --run run.yaml\n")
		fmt.Fprintf(os.Stderr, "  titlepanel --backend http://127.0.0.1:9000\n")
	}

	flag.Parse()
	return cfg
}

// validate checks that the configuration is valid
func (c *Config) validate() error {
	switch c.Mode {
	case modeTUI:
	case modeBrowser:
		if c.RunFile == "" {
			return fmt.Errorf("browser mode requires a run file (use --run)")
		}
	default:
		return fmt.Errorf("invalid mode %q (must be %q or %q)", c.Mode, modeTUI, modeBrowser)
	}
	return nil
}

// executor is what both hosts provide.
type executor interface {
	OnStart(fn func(context.Context, ui.Presenter))
	Run(ctx context.Context) error
}

func run(ctx context.Context, cfg *Config) error {
	if err := config.Initialize(cfg.ConfigFile); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	logger, err := logging.NewLogger("titlepanel")
	if err != nil && cfg.Mode == modeTUI {
		// stderr logging would draw over the terminal UI
		logger = logging.Discard("titlepanel")
	}
	defer logger.Close()
	logger.Infof("titlepanel v%s starting in %s mode", version, cfg.Mode)

	var runFile *browser.RunFile
	if cfg.Mode == modeBrowser {
		runFile, err = browser.LoadRunFile(cfg.RunFile)
		if err != nil {
			return err
		}
	}

	backendSection := config.GetBackend()
	switch {
	case cfg.BackendURL != "":
		backendSection.SetBaseURL(cfg.BackendURL)
	case runFile != nil && runFile.BackendURL != "":
		backendSection.SetBaseURL(runFile.BackendURL)
	}
	if err := backendSection.Validate(); err != nil {
		return fmt.Errorf("invalid backend: %w", err)
	}
	baseURL, plugin := backendSection.Endpoint()
	client := backend.NewClient(baseURL, backend.WithPlugin(plugin))
	logger.Infof("backend %s/%s", baseURL, plugin)

	options, err := binderOptions(client, logger)
	if err != nil {
		return err
	}

	var host executor
	if cfg.Mode == modeBrowser {
		host, err = browser.NewExecutor(runFile, options, logger.Named("browser"))
	} else {
		host, err = tui.NewExecutor(cfg.Address, options, logger.Named("tui"))
	}
	if err != nil {
		return err
	}

	host.OnStart(func(ctx context.Context, presenter ui.Presenter) {
		scheduleUpdateCheck(ctx, client, presenter, logger)
	})
	return host.Run(ctx)
}

// binderOptions builds the binder configuration from the binder and
// tracker sections.
func binderOptions(client backend.Backend, logger *logging.Logger) (binder.Options, error) {
	binderSection := config.GetBinder()
	if err := binderSection.Validate(); err != nil {
		return binder.Options{}, fmt.Errorf("invalid binder configuration: %w", err)
	}
	selectors, idPattern, urlPatterns, tick := binderSection.Snapshot()

	matcher, err := binder.NewMatcher(idPattern, urlPatterns)
	if err != nil {
		return binder.Options{}, err
	}

	acquire, fix, settle := config.GetTracker().Timings()
	return binder.Options{
		Backend:         client,
		Logger:          logger.Named("binder"),
		Selectors:       selectors,
		Matcher:         matcher,
		TickInterval:    tick,
		AcquireInterval: acquire,
		FixInterval:     fix,
		SettleDelay:     settle,
	}, nil
}

// scheduleUpdateCheck arms the session's update check.
func scheduleUpdateCheck(ctx context.Context, client backend.Backend, presenter ui.Presenter, logger *logging.Logger) {
	section := config.GetUpdate()
	enabled, delay, minInterval := section.Settings()
	if !enabled {
		logger.Infof("update checks disabled")
		return
	}

	gate := update.New(update.Options{
		Backend:          client,
		Presenter:        presenter,
		Logger:           logger.Named("update"),
		StartupDelay:     delay,
		History:          config.CheckHistory{Manager: config.Global(), Section: section},
		MinCheckInterval: minInterval,
	})
	timer := gate.Schedule(ctx)
	go func() {
		<-ctx.Done()
		timer.Stop()
	}()
}
