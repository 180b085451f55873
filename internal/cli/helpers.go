package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/subboxer/internal/logging"
	"github.com/aretw0/subboxer/pkg/domain"
	"golang.org/x/term"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	once   sync.Once
	sigCh  chan os.Signal
	mu     sync.Mutex
	sigVal os.Signal
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It behaves like signal.NotifyContext but remembers the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}
	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sc.sigCh:
			sc.mu.Lock()
			sc.sigVal = sig
			sc.mu.Unlock()
			sc.Cancel()
		case <-sc.Context.Done():
		}
		sc.once.Do(func() { signal.Stop(sc.sigCh) })
	}()
	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the application logger. Debug wins over the configured level;
// without either, logging is discarded so stdout stays clean for the session.
func createLogger(w io.Writer, debug bool, level string) (*slog.Logger, error) {
	if debug {
		return logging.NewWithWriter(w, slog.LevelDebug, logging.FormatText), nil
	}
	if level == "" {
		return logging.NewNop(), nil
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriter(w, lvl, logging.FormatText), nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// createDebugHooks logs every session notification.
func createDebugHooks(logger *slog.Logger) domain.Hooks {
	return domain.Hooks{
		OnModeChanged: func(ctx context.Context, e *domain.ModeEvent) {
			logger.Debug("Mode Changed", "from", e.From, "to", e.To)
		},
		OnActiveChanged: func(ctx context.Context, e *domain.ActiveEvent) {
			logger.Debug("Active Changed", "from", e.From, "to", e.To)
		},
		OnThicknessChanged: func(ctx context.Context, e *domain.PlaneEvent) {
			logger.Debug("Thickness Changed", "thickness", e.Plane.Thickness)
		},
		OnPlaneChanged: func(ctx context.Context, e *domain.PlaneEvent) {
			logger.Debug("Plane Changed", "position", e.Plane.Position, "normal", e.Plane.Normal)
		},
		OnCameraChanged: func(ctx context.Context, e *domain.CameraEvent) {
			logger.Debug("Camera Changed", "center", e.Camera.Center)
		},
		OnSubparticleAdded: func(ctx context.Context, e *domain.SubparticleEvent) {
			logger.Debug("Subparticle Added", "id", e.Subparticle.ID, "origin", e.Subparticle.Origin)
		},
		OnGestureStarted: func(ctx context.Context, e *domain.GestureEvent) {
			logger.Debug("Gesture Started", "gesture", e.Gesture, "mode", e.Mode)
		},
		OnGestureEnded: func(ctx context.Context, e *domain.GestureEvent) {
			if e.Aborted {
				logger.Debug("Gesture Aborted", "gesture", e.Gesture)
			} else {
				logger.Debug("Gesture Ended", "gesture", e.Gesture)
			}
		},
	}
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// handleExecutionError treats cancellation as a clean exit.
func handleExecutionError(err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
