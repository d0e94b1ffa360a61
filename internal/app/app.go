// Package app implements the application layer for ptree.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.trai.ch/ptree/internal/adapters/render"
	"go.trai.ch/ptree/internal/core/domain"
	"go.trai.ch/ptree/internal/core/ports"
	"go.trai.ch/ptree/internal/engine/scanner"
	"go.trai.ch/ptree/internal/ui/output"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	engine *scanner.Engine
	store  ports.SnapshotStore
	logger ports.Logger
	config *domain.Config
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

// RunOptions configures a single invocation of Run.
type RunOptions struct {
	Target    string
	Root      string
	Force     bool
	Quiet     bool
	Hidden    bool
	Admin     bool
	ShowSize  bool
	Debug     bool
	Verbose   bool
	Format    string
	Color     string
	LogFormat string
	// MaxDepth bounds the rendered depth below the target. Negative renders every level.
	MaxDepth int
	Skip     []string
	Threads  int
	TTL      time.Duration
}

// levelSetter is implemented by loggers whose format and level can change at runtime.
type levelSetter interface {
	SetJSON(enable bool)
	SetVerbose(enable bool)
}

// New creates a new App instance.
func New(
	engine *scanner.Engine,
	store ports.SnapshotStore,
	log ports.Logger,
	cfg *domain.Config,
) *App {
	if cfg == nil {
		cfg = domain.DefaultConfig()
	}
	return &App{
		engine: engine,
		store:  store,
		logger: log,
		config: cfg,
		stdout: os.Stdout,
		stderr: os.Stderr,
		now:    time.Now,
	}
}

// WithOutput replaces the streams the tree and the debug report are written to.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// Run scans the requested directory and writes its tree to stdout.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	start := a.now()

	if err := a.configureLogger(opts); err != nil {
		return err
	}

	format, err := render.ParseFormat(defaultString(opts.Format, string(render.FormatTree)))
	if err != nil {
		return err
	}

	color := defaultString(opts.Color, output.ColorAuto)
	if !output.ValidColorMode(color) {
		return zerr.With(zerr.Wrap(domain.ErrInvalidColorMode, "unknown color mode"), "color", color)
	}

	if opts.TTL < 0 {
		return zerr.With(zerr.Wrap(domain.ErrInvalidTTL, "negative ttl"), "ttl", opts.TTL.String())
	}

	res, err := a.engine.Scan(ctx, a.scanOptions(opts))
	if err != nil {
		return zerr.Wrap(err, "scan failed")
	}

	renderStart := a.now()
	if !opts.Quiet {
		r := render.New(render.Options{
			Format:   format,
			Profile:  output.ProfileFor(color, a.stdout),
			ShowSize: opts.ShowSize,
		})
		if err := r.Render(a.stdout, res.Tree.Prune(opts.MaxDepth, opts.Hidden)); err != nil {
			return err
		}
	}
	end := a.now()

	if opts.Debug {
		writeReport(a.stderr, output.ProfileFor(color, a.stderr), &report{
			result:  res,
			stats:   res.Tree.Count(),
			render:  end.Sub(renderStart),
			total:   end.Sub(start),
			ttl:     defaultDuration(opts.TTL, a.config.TTL),
			quieted: opts.Quiet,
		})
	}

	return nil
}

// Clean removes every cached snapshot.
func (a *App) Clean(_ context.Context) error {
	a.logger.Info(fmt.Sprintf("removing %s...", a.config.CacheDir))
	if err := a.store.Clear(); err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("removed %s", a.config.CacheDir))
	return nil
}

func (a *App) configureLogger(opts RunOptions) error {
	logFormat := defaultString(opts.LogFormat, a.config.LogFormat)
	switch logFormat {
	case "", "pretty", "json":
	default:
		return zerr.With(zerr.Wrap(domain.ErrInvalidLogFormat, "unknown log format"), "log_format", logFormat)
	}

	if l, ok := a.logger.(levelSetter); ok {
		l.SetJSON(logFormat == "json")
		l.SetVerbose(opts.Debug || opts.Verbose)
	}
	return nil
}

func (a *App) scanOptions(opts RunOptions) scanner.Options {
	skip := domain.DefaultSkipNames(opts.Admin)
	skip = append(skip, a.config.Skip...)
	skip = append(skip, opts.Skip...)

	threads := opts.Threads
	if threads <= 0 {
		threads = a.config.Threads
	}

	return scanner.Options{
		Target:    defaultString(opts.Target, "."),
		Root:      defaultString(opts.Root, a.config.ScanRoot),
		Threads:   threads,
		Skip:      skip,
		ScanDepth: a.config.ScanDepth,
		TTL:       opts.TTL,
		Force:     opts.Force,
	}
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func defaultDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}
