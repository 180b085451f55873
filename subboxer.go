package subboxer

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/subboxer/internal/runtime"
	"github.com/aretw0/subboxer/pkg/bridge"
	"github.com/aretw0/subboxer/pkg/domain"
	"github.com/aretw0/subboxer/pkg/mrc"
	"github.com/aretw0/subboxer/pkg/store"
	"gonum.org/v1/gonum/spatial/r3"
)

// Session is the high-level entry point for defining subparticles.
// It wraps the annotation engine and serialises every call, so transports running on
// different goroutines can share one session.
type Session struct {
	mu      sync.Mutex
	engine  *runtime.Engine
	hooks   domain.Hooks
	logger  *slog.Logger
	events  *broadcaster
	rtOpts  []runtime.EngineOption
	storeOp []store.Option
}

// Option defines a functional option for configuring the Session.
type Option func(*Session)

// WithLifecycleHooks registers change notifications.
func WithLifecycleHooks(hooks domain.Hooks) Option {
	return func(s *Session) {
		s.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithRotationScale sets the degrees of in-plane rotation per voxel of drag.
func WithRotationScale(scale float64) Option {
	return func(s *Session) {
		s.rtOpts = append(s.rtOpts, runtime.WithRotationScale(scale))
	}
}

// WithThickness sets the initial and minimum slicing plane thickness.
func WithThickness(initial, min float64) Option {
	return func(s *Session) {
		s.rtOpts = append(s.rtOpts, runtime.WithThickness(initial, min))
	}
}

// WithPlaneNormal sets the axis the plane normal starts along when a volume is opened.
func WithPlaneNormal(axis domain.Axis) Option {
	return func(s *Session) {
		s.rtOpts = append(s.rtOpts, runtime.WithInitialNormal(axis))
	}
}

// WithReference sets the vector crossed with z to seed default in-plane bases.
func WithReference(v r3.Vec) Option {
	return func(s *Session) {
		s.storeOp = append(s.storeOp, store.WithReference(v))
	}
}

// New creates a session in ADD mode with no volume.
func New(opts ...Option) *Session {
	s := &Session{events: newBroadcaster()}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	rtOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(domain.ComposeHooks(s.hooks, s.events.hooks())),
		runtime.WithLogger(s.logger),
		runtime.WithStore(store.New(s.storeOp...)),
	}
	s.engine = runtime.NewEngine(append(rtOpts, s.rtOpts...)...)
	return s
}

// OpenVolume loads a volume extent and resets the slicing plane.
func (s *Session) OpenVolume(ctx context.Context, v domain.Volume) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.OpenVolume(ctx, v)
}

// OpenMap reads the header of the MRC map at path and opens its extent.
func (s *Session) OpenMap(ctx context.Context, path string) error {
	h, err := mrc.ReadHeaderFile(path)
	if err != nil {
		return err
	}
	return s.OpenVolume(ctx, domain.Volume{Shape: h.Shape(), Source: path})
}

// SetMode switches the annotation mode.
func (s *Session) SetMode(ctx context.Context, m domain.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.SetMode(ctx, m)
}

// HandlePointer feeds one pointer event to the gesture machinery.
func (s *Session) HandlePointer(ctx context.Context, ev domain.PointerEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.HandlePointer(ctx, ev)
}

// HandleKey runs the action bound to key.
func (s *Session) HandleKey(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.HandleKey(ctx, key)
}

// Abort ends any gesture in flight.
func (s *Session) Abort(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Abort(ctx)
}

// Next makes the next subparticle active.
func (s *Session) Next(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Next(ctx)
}

// Previous makes the previous subparticle active.
func (s *Session) Previous(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Previous(ctx)
}

// Select makes id the active subparticle.
func (s *Session) Select(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Select(ctx, id)
}

// SetCamera records the viewer camera.
func (s *Session) SetCamera(c domain.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.SetCamera(c)
}

// SetRotationScale changes the degrees of in-plane rotation per voxel of drag.
func (s *Session) SetRotationScale(scale float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.SetRotationScale(scale)
}

// SetThickness sets the slicing plane thickness.
func (s *Session) SetThickness(ctx context.Context, t float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.SetThickness(ctx, t)
}

// Subparticles returns copies of every subparticle ordered by id.
func (s *Session) Subparticles() []domain.SubparticlePose {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Subparticles()
}

// Layers returns the derived visual state.
func (s *Session) Layers() domain.Layers {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Layers()
}

// Status reports the current session state.
func (s *Session) Status() runtime.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Status()
}

// KeyBindings lists the keyboard shortcuts.
func (s *Session) KeyBindings() []runtime.KeyBinding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.KeyBindings()
}

// Records converts the current definitions into transform records relative to the volume
// centre. Subparticles without a complete frame are skipped.
func (s *Session) Records() ([]bridge.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.engine.Volume()
	if !ok {
		return nil, domain.ErrNoVolume
	}
	_, records, err := bridge.Export(s.engine.Subparticles(), v.Center())
	return records, err
}

// Export writes the current definitions to path as a transform table.
func (s *Session) Export(path string) ([]bridge.Record, error) {
	records, err := s.Records()
	if err != nil {
		return nil, err
	}
	if err := bridge.WriteTransforms(path, records); err != nil {
		return nil, err
	}
	s.logger.Info("transforms exported", "path", path, "count", len(records))
	return records, nil
}

// Subscribe returns a channel receiving every notification until cancel is called.
// Slow subscribers miss events rather than block the session.
func (s *Session) Subscribe(buffer int) (<-chan Event, func()) {
	return s.events.subscribe(buffer)
}

// Apply applies the transforms in transformsPath to the poses in posesPath and writes the
// derived particles to outputPath.
func Apply(ctx context.Context, transformsPath, posesPath, outputPath string, opts ...bridge.ApplyOption) (bridge.ApplySummary, error) {
	return bridge.ApplyFiles(ctx, transformsPath, posesPath, outputPath, opts...)
}
