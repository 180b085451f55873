package bridge

import (
	"context"
	"io"
	"log/slog"
	"runtime"

	"github.com/aretw0/subboxer/pkg/pose"
)

// ApplySummary describes one ApplyFiles run.
type ApplySummary struct {
	Transforms int `json:"transforms"`
	Poses      int `json:"poses"`
	Written    int `json:"written"`
}

// ApplyOption configures ApplyFiles.
type ApplyOption func(*applyConfig)

type applyConfig struct {
	workers int
	logger  *slog.Logger
}

// WithWorkers bounds the goroutines used to compose transforms with poses.
func WithWorkers(n int) ApplyOption {
	return func(c *applyConfig) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithLogger sets the logger for progress messages.
func WithLogger(l *slog.Logger) ApplyOption {
	return func(c *applyConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// ApplyFiles reads local transforms and particle poses, applies every transform to every
// pose and writes the M·N derived particles to outputPath.
func ApplyFiles(ctx context.Context, transformsPath, posesPath, outputPath string, opts ...ApplyOption) (ApplySummary, error) {
	cfg := applyConfig{
		workers: runtime.GOMAXPROCS(0),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	t, err := ReadTransforms(transformsPath)
	if err != nil {
		return ApplySummary{}, err
	}
	p, sources, err := ReadPoses(posesPath)
	if err != nil {
		return ApplySummary{}, err
	}
	cfg.logger.Debug("inputs read", "transforms", t.Len(), "poses", p.Len())

	r, err := pose.ApplyConcurrent(ctx, t, p, cfg.workers)
	if err != nil {
		return ApplySummary{}, err
	}
	if err := WritePoses(outputPath, r, sources); err != nil {
		return ApplySummary{}, err
	}

	s := ApplySummary{Transforms: r.M, Poses: r.N, Written: r.Len()}
	cfg.logger.Info("subparticles written", "path", outputPath, "count", s.Written, "shape", r.Shape())
	return s, nil
}
