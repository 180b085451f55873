package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/subboxer"
	"github.com/aretw0/subboxer/internal/config"
	"github.com/aretw0/subboxer/internal/presentation/tui"
	httpAdapter "github.com/aretw0/subboxer/pkg/adapters/http"
	mcpAdapter "github.com/aretw0/subboxer/pkg/adapters/mcp"
	redisAdapter "github.com/aretw0/subboxer/pkg/adapters/redis"
	"github.com/aretw0/subboxer/pkg/domain"
	"github.com/aretw0/subboxer/pkg/observability"
	"github.com/aretw0/subboxer/pkg/runner"
	"github.com/muesli/termenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// shutdownTimeout bounds graceful HTTP shutdown.
	shutdownTimeout = 5 * time.Second
	// publishTTL expires the published latest-event hash once a session goes quiet.
	publishTTL      = time.Hour
)

// DefineOptions contains the configuration for the define command.
type DefineOptions struct {
	MapPath    string
	ConfigPath string
	// ConfigSet is true when the config path was given explicitly and must exist.
	ConfigSet  bool
	JSON       bool
	Events     bool
	Serve      string
	ExportDir  string
	// Validate checks HTTP request bodies against the published API description.
	Validate   bool
	// MCP serves Model Context Protocol tools on stdin/stdout instead of the command loop.
	MCP        bool
	// Publish is a redis:// URL session events are published to.
	Publish    string
	// Headless serves the HTTP API without reading commands from stdin.
	Headless   bool
	Debug      bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (o *DefineOptions) defaults() {
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.ConfigPath == "" {
		o.ConfigPath = config.DefaultPath
	}
}

// Define runs an annotation session until quit, end of input or a signal.
func Define(ctx context.Context, opts DefineOptions) error {
	opts.defaults()
	if opts.Headless && opts.Serve == "" {
		return errors.New("--headless needs --serve")
	}
	if opts.MCP && (opts.JSON || opts.Headless) {
		return errors.New("--mcp cannot be combined with --json or --headless")
	}

	cfg, err := config.Load(opts.ConfigPath, opts.ConfigSet)
	if err != nil {
		return err
	}
	logger, err := createLogger(opts.Stderr, opts.Debug, cfg.LogLevel)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return err
	}
	hooks := metrics.Hooks()
	if opts.Debug {
		hooks = domain.ComposeHooks(hooks, createDebugHooks(logger))
	}

	session := subboxer.New(
		subboxer.WithLogger(logger),
		subboxer.WithLifecycleHooks(hooks),
		subboxer.WithRotationScale(cfg.RotationScale),
		subboxer.WithThickness(cfg.Thickness, cfg.MinThickness),
		subboxer.WithPlaneNormal(cfg.Normal()),
		subboxer.WithReference(cfg.ReferenceVector()),
	)

	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	if opts.MapPath != "" {
		if err := session.OpenMap(sigCtx, opts.MapPath); err != nil {
			return fmt.Errorf("error opening map: %w", err)
		}
	}

	if opts.Publish != "" {
		stop, err := startPublisher(sigCtx, session, opts.Publish, logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	interactive := !opts.JSON && !opts.Headless && !opts.MCP && isTerminal(opts.Stdin)
	if interactive {
		tui.PrintBanner(opts.Stdout, termenv.NewOutput(opts.Stdout).Profile)
	}

	var serveErr <-chan error
	if opts.Serve != "" {
		httpOpts := []httpAdapter.Option{
			httpAdapter.WithLogger(logger),
			httpAdapter.WithExportDir(opts.ExportDir),
			httpAdapter.WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
			httpAdapter.WithMCP(mcpAdapter.NewServer(session,
				mcpAdapter.WithLogger(logger), mcpAdapter.WithExportDir(opts.ExportDir)).Handler()),
		}
		if opts.Validate {
			httpOpts = append(httpOpts, httpAdapter.WithRequestValidation())
		}
		handler := httpAdapter.NewHandler(session, httpOpts...)
		srv := &http.Server{Addr: opts.Serve, Handler: handler}
		serveErr = startServer(srv, logger)
		defer stopServer(srv, logger)
		if !opts.JSON && !opts.MCP {
			printSystemMessage(opts.Stderr, "Serving the annotation API on %s", opts.Serve)
		}
	}

	if opts.Headless {
		select {
		case <-sigCtx.Done():
			return nil
		case err := <-serveErr:
			return err
		}
	}

	if opts.MCP {
		srv := mcpAdapter.NewServer(session, mcpAdapter.WithLogger(logger))
		mcpErr := make(chan error, 1)
		go func() { mcpErr <- srv.ServeStdio(sigCtx, opts.Stdin, opts.Stdout) }()
		select {
		case err = <-mcpErr:
		case err = <-serveErr:
		}
		return handleExecutionError(err)
	}

	r := runner.New(session,
		runner.WithLogger(logger),
		runner.WithConfig(cfg),
		runner.WithEvents(opts.Events),
		runner.WithInputHandler(newHandler(opts, interactive)),
	)
	runErr := make(chan error, 1)
	go func() { runErr <- r.Run(sigCtx) }()

	select {
	case err = <-runErr:
	case err = <-serveErr:
	}
	if interactive && sigCtx.Signal() != nil {
		printSystemMessage(opts.Stdout, "Interrupted.")
	}
	return handleExecutionError(err)
}

func newHandler(opts DefineOptions, interactive bool) runner.IOHandler {
	if opts.JSON {
		return runner.NewJSONHandler(opts.Stdin, opts.Stdout)
	}
	textOpts := []runner.TextHandlerOption{runner.WithTextHandlerPrompt(interactive)}
	if interactive {
		textOpts = append(textOpts, runner.WithTextHandlerProfile(termenv.NewOutput(opts.Stdout).Profile))
		if render, err := tui.NewRenderer(true, 100); err == nil {
			textOpts = append(textOpts, runner.WithTextHandlerRenderer(render))
		}
	}
	return runner.NewTextHandler(opts.Stdin, opts.Stdout, textOpts...)
}

// startPublisher forwards session events to Redis until the returned stop is called.
func startPublisher(ctx context.Context, session *subboxer.Session, url string, logger *slog.Logger) (func(), error) {
	pub, err := redisAdapter.New(url, redisAdapter.WithLogger(logger), redisAdapter.WithTTL(publishTTL))
	if err != nil {
		return nil, err
	}
	if err := pub.Ping(ctx); err != nil {
		_ = pub.Close()
		return nil, err
	}
	events, cancel := session.Subscribe(runner.DefaultEventBuffer)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = pub.Run(ctx, events)
	}()
	logger.Info("publishing session events", "channel", pub.Channel())
	return func() {
		cancel()
		<-done
		_ = pub.Close()
	}, nil
}

func startServer(srv *http.Server, logger *slog.Logger) <-chan error {
	errs := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("server error: %w", err)
		}
	}()
	return errs
}

func stopServer(srv *http.Server, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
		_ = srv.Close()
	}
}
