package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/subboxer"
	"github.com/aretw0/subboxer/internal/config"
	"github.com/aretw0/subboxer/pkg/bridge"
	"github.com/aretw0/subboxer/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// ApplyOptions contains the configuration for the apply command.
type ApplyOptions struct {
	Transforms string
	Poses      string
	Output     string
	// Workers overrides the configured worker count when positive.
	Workers    int
	ConfigPath string
	ConfigSet  bool
	JSON       bool
	Debug      bool

	Stdout io.Writer
	Stderr io.Writer
	// Registry, when set, receives the apply metrics.
	Registry prometheus.Registerer
}

// Apply derives one particle per transform and pose and reports what was written.
func Apply(ctx context.Context, opts ApplyOptions) (bridge.ApplySummary, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.DefaultPath
	}
	if opts.Transforms == "" || opts.Poses == "" || opts.Output == "" {
		return bridge.ApplySummary{}, errors.New("apply needs transforms, poses and an output path")
	}

	cfg, err := config.Load(opts.ConfigPath, opts.ConfigSet)
	if err != nil {
		return bridge.ApplySummary{}, err
	}
	logger, err := createLogger(opts.Stderr, opts.Debug, cfg.LogLevel)
	if err != nil {
		return bridge.ApplySummary{}, err
	}
	workers := cfg.Workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}

	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	summary, err := subboxer.Apply(sigCtx, opts.Transforms, opts.Poses, opts.Output,
		bridge.WithWorkers(workers), bridge.WithLogger(logger))
	if err != nil {
		if sigCtx.Signal() != nil {
			return summary, fmt.Errorf("apply interrupted: %w", err)
		}
		return summary, err
	}

	if opts.Registry != nil {
		metrics, err := observability.NewMetrics(opts.Registry)
		if err != nil {
			return summary, err
		}
		metrics.ObserveApply(summary)
	}

	if opts.JSON {
		return summary, json.NewEncoder(opts.Stdout).Encode(summary)
	}
	fmt.Fprintf(opts.Stdout, "wrote %d particle(s) to %s (%d transform(s) x %d pose(s))\n",
		summary.Written, opts.Output, summary.Transforms, summary.Poses)
	return summary, nil
}
