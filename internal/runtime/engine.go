package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/subboxer/pkg/domain"
	"github.com/aretw0/subboxer/pkg/geometry"
	"github.com/aretw0/subboxer/pkg/store"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// DefaultRotationScale converts drag distance (voxels) to in-plane rotation (degrees).
	DefaultRotationScale = 1.0
	// DefaultThickness is the slicing plane thickness after a volume is opened.
	DefaultThickness = 5.0
	// DefaultMinThickness is the lower bound for DecreaseThickness.
	DefaultMinThickness = 1.0
)

// Engine is the annotation state machine.
//
// It owns the subparticle store, the current mode and active subparticle, and the view
// parameters gestures act on. It is single-threaded: callers serialise every method call.
type Engine struct {
	store  *store.Store
	hooks  domain.Hooks
	logger *slog.Logger

	volume *domain.Volume
	plane  domain.SlicingPlane
	camera domain.Camera
	cursor domain.PointerEvent

	mode   domain.Mode
	active int
	zPick  *r3.Vec

	inFlight    Gesture
	interactive bool
	gestures    map[domain.Mode]gestureFactory
	keymap      map[string]KeyBinding

	rotationScale float64
	thickness     float64
	minThickness  float64
	initialNormal domain.Axis
}

// EngineOption defines a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers change notifications.
func WithLifecycleHooks(hooks domain.Hooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithStore injects a pre-populated store.
func WithStore(s *store.Store) EngineOption {
	return func(e *Engine) {
		if s != nil {
			e.store = s
		}
	}
}

// WithRotationScale sets the degrees of in-plane rotation per voxel of drag.
func WithRotationScale(scale float64) EngineOption {
	return func(e *Engine) {
		if scale != 0 {
			e.rotationScale = scale
		}
	}
}

// WithThickness sets the initial and minimum plane thickness.
func WithThickness(initial, min float64) EngineOption {
	return func(e *Engine) {
		if min > 0 {
			e.minThickness = min
		}
		if initial >= e.minThickness {
			e.thickness = initial
		}
	}
}

// WithInitialNormal sets the axis the plane normal points along after a volume is opened.
func WithInitialNormal(axis domain.Axis) EngineOption {
	return func(e *Engine) {
		if _, ok := axis.Unit(); ok {
			e.initialNormal = axis
		}
	}
}

// NewEngine creates an engine in ADD mode with no volume and no active subparticle.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		store:         store.New(),
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		mode:          domain.ModeAdd,
		active:        domain.NoActive,
		interactive:   true,
		rotationScale: DefaultRotationScale,
		thickness:     DefaultThickness,
		minThickness:  DefaultMinThickness,
		initialNormal: domain.AxisZ,
		camera:        domain.Camera{ViewDirection: r3.Vec{Z: 1}},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.gestures = defaultGestures()
	e.keymap = e.defaultKeymap()

	if ids := e.store.IDs(); len(ids) > 0 {
		e.active = ids[len(ids)-1]
	}
	return e
}

// OpenVolume loads a new volume extent, recomputes the bounding box and resets the plane
// to the volume centre.
func (e *Engine) OpenVolume(ctx context.Context, v domain.Volume) error {
	if err := v.Validate(); err != nil {
		return err
	}
	e.abortInFlight(ctx)

	normal, _ := e.initialNormal.Unit()
	e.volume = &v
	e.plane = domain.SlicingPlane{
		Position:  v.Center(),
		Normal:    normal,
		Thickness: e.thickness,
	}
	e.camera.Center = v.Center()

	e.logger.Info("volume opened", "source", v.Source, "shape", v.Shape)
	e.emitPlaneChanged(ctx)
	e.emitThicknessChanged(ctx)
	e.emitCameraChanged(ctx)
	e.refreshLayers(ctx)
	return nil
}

// Volume returns the loaded volume, or false if none is open.
func (e *Engine) Volume() (domain.Volume, bool) {
	if e.volume == nil {
		return domain.Volume{}, false
	}
	return *e.volume, true
}

// Mode returns the current annotation mode.
func (e *Engine) Mode() domain.Mode { return e.mode }

// Active returns the active subparticle id, or domain.NoActive.
func (e *Engine) Active() int { return e.active }

// Plane returns the slicing plane.
func (e *Engine) Plane() domain.SlicingPlane { return e.plane }

// Camera returns the camera state.
func (e *Engine) Camera() domain.Camera { return e.camera }

// Interactive reports whether the picking layer accepts interaction. It is false while a
// drag gesture is in flight.
func (e *Engine) Interactive() bool { return e.interactive }

// Subparticles returns copies of every subparticle ordered by id.
func (e *Engine) Subparticles() []domain.SubparticlePose { return e.store.All() }

// Subparticle returns a copy of subparticle id.
func (e *Engine) Subparticle(id int) (domain.SubparticlePose, error) { return e.store.Get(id) }

// SetMode switches the annotation mode. Modes that edit the active subparticle can only be
// entered once one exists. The transient z pick is cleared on every mode change.
func (e *Engine) SetMode(ctx context.Context, m domain.Mode) error {
	if _, ok := e.gestures[m]; !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownMode, m)
	}
	if m.NeedsActive() && e.active == domain.NoActive {
		return fmt.Errorf("enter %s: %w", m, domain.ErrNoActiveSubparticle)
	}
	e.abortInFlight(ctx)

	from := e.mode
	e.mode = m
	e.zPick = nil
	if from != m {
		e.logger.Debug("mode changed", "from", from, "to", m)
		e.emitModeChanged(ctx, from, m)
	}
	e.refreshLayers(ctx)
	return nil
}

// SetCamera records the viewer camera. A zero view direction keeps the previous one.
func (e *Engine) SetCamera(c domain.Camera) {
	if r3.Norm(c.ViewDirection) == 0 {
		c.ViewDirection = e.camera.ViewDirection
	}
	e.camera = c
}

// SetRotationScale changes the degrees of in-plane rotation per voxel of drag. A drag in
// flight picks up the new scale on its next move.
func (e *Engine) SetRotationScale(scale float64) error {
	if scale == 0 {
		return errors.New("rotation scale must be non-zero")
	}
	e.rotationScale = scale
	return nil
}

// Select makes id the active subparticle.
func (e *Engine) Select(ctx context.Context, id int) error {
	if _, err := e.store.Get(id); err != nil {
		return err
	}
	e.setActive(ctx, id)
	e.refreshLayers(ctx)
	return nil
}

func (e *Engine) setActive(ctx context.Context, id int) {
	if id == e.active {
		return
	}
	from := e.active
	e.active = id
	e.emitActiveChanged(ctx, from, id)
}

// pick intersects the event's view ray with the slicing plane. ok is false for a miss:
// the intersection falls outside the volume box.
func (e *Engine) pick(ev domain.PointerEvent) (r3.Vec, bool, error) {
	if e.volume == nil {
		return r3.Vec{}, false, domain.ErrNoVolume
	}
	pt, err := geometry.RayPlaneIntersection(ev.Position, ev.ViewDirection, e.plane.Position, e.plane.Normal)
	if err != nil {
		return r3.Vec{}, false, err
	}
	box := e.volume.Box()
	if !geometry.PointInBox(pt, box.Min, box.Max) {
		return pt, false, nil
	}
	return pt, true, nil
}
