package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/subboxer"
	"github.com/aretw0/subboxer/internal/config"
)

// DefaultEventBuffer is the subscription buffer used when events are streamed.
const DefaultEventBuffer = 256

// EventSink is implemented by handlers that can stream session notifications between
// replies.
type EventSink interface {
	Event(eventType string, data any) error
}

// Runner reads commands from its handler, applies them to the session and writes replies.
type Runner struct {
	// Session is the annotation session commands act on.
	Session *subboxer.Session

	// Handler is the strategy for IO. Defaults to a TextHandler on stdin/stdout.
	Handler IOHandler

	// Logger is used for internal debug logging. If nil, a no-op logger is used.
	Logger *slog.Logger

	// Config is the effective configuration reported and updated by the config command.
	Config config.Config

	// Events streams session notifications through the handler when it is an EventSink.
	Events bool

	quit bool
}

// New creates a Runner for session.
func New(session *subboxer.Session, opts ...Option) *Runner {
	r := &Runner{
		Session: session,
		Config:  config.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, nil)
	}
	if r.Logger == nil {
		r.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

// Run executes the command loop until quit, end of input or cancellation of ctx.
//
// An interrupt while a drag is in flight aborts the drag and the loop continues; an
// interrupt with nothing in flight ends the loop. A handler that implements io.Closer is
// closed when Run returns, so it serves a single Run.
func (r *Runner) Run(ctx context.Context) error {
	signals := NewSignalManager(ctx)
	defer signals.Stop()
	if c, ok := r.Handler.(io.Closer); ok {
		defer c.Close()
	}

	if stop := r.streamEvents(); stop != nil {
		defer stop()
	}

	r.quit = false
	for !r.quit {
		cmd, err := r.Handler.Input(signals.Context())
		if err != nil {
			if errors.Is(err, io.EOF) {
				signals.CheckRace()
			}
			var inputErr *InputError
			switch {
			case errors.As(err, &inputErr):
				r.Logger.Debug("rejected input", "line", inputErr.Line, "err", inputErr.Err)
				if err := r.Handler.Output(ctx, failure("", inputErr)); err != nil {
					return fmt.Errorf("output error: %w", err)
				}
				continue
			case signals.Interrupted():
				if !r.handleInterrupt(ctx) {
					return nil
				}
				signals.Reset()
				continue
			case errors.Is(err, io.EOF):
				return nil
			case ctx.Err() != nil:
				return ctx.Err()
			}
			return fmt.Errorf("input error: %w", err)
		}

		reply := r.Dispatch(ctx, cmd)
		if err := r.Handler.Output(ctx, reply); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
	return nil
}

// handleInterrupt aborts a drag in flight. It reports whether the loop should continue.
func (r *Runner) handleInterrupt(ctx context.Context) bool {
	gesture := r.Session.Status().Gesture
	if gesture == "" {
		r.Logger.Debug("interrupted")
		return false
	}
	r.Session.Abort(ctx)
	r.Logger.Info("gesture aborted by interrupt", "gesture", gesture)
	_ = r.Handler.SystemOutput(ctx, "aborted "+gesture)
	return true
}

func (r *Runner) streamEvents() func() {
	sink, ok := r.Handler.(EventSink)
	if !r.Events || !ok {
		return nil
	}
	events, cancel := r.Session.Subscribe(DefaultEventBuffer)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for e := range events {
			if err := sink.Event(string(e.Type), e.Data); err != nil {
				r.Logger.Debug("event dropped", "type", e.Type, "err", err)
			}
		}
	}()
	return func() {
		cancel()
		wg.Wait()
	}
}
