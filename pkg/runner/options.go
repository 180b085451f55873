package runner

import (
	"log/slog"

	"github.com/aretw0/subboxer/internal/config"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithConfig sets the configuration the session was built from.
func WithConfig(cfg config.Config) Option {
	return func(r *Runner) {
		r.Config = cfg
	}
}

// WithEvents streams session notifications through handlers that support it.
func WithEvents(enabled bool) Option {
	return func(r *Runner) {
		r.Events = enabled
	}
}
