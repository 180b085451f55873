package runtime_test

import (
	"context"
	"math"
	"testing"

	"github.com/aretw0/subboxer/internal/runtime"
	"github.com/aretw0/subboxer/pkg/domain"
	"github.com/aretw0/subboxer/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// recorder collects the type of every emitted event, in order.
type recorder struct {
	events []domain.EventType
	layers []domain.Layers
}

func (r *recorder) hooks() domain.Hooks {
	return domain.Hooks{
		OnModeChanged:      func(_ context.Context, e *domain.ModeEvent) { r.events = append(r.events, e.Type) },
		OnActiveChanged:    func(_ context.Context, e *domain.ActiveEvent) { r.events = append(r.events, e.Type) },
		OnThicknessChanged: func(_ context.Context, e *domain.PlaneEvent) { r.events = append(r.events, e.Type) },
		OnPlaneChanged:     func(_ context.Context, e *domain.PlaneEvent) { r.events = append(r.events, e.Type) },
		OnCameraChanged:    func(_ context.Context, e *domain.CameraEvent) { r.events = append(r.events, e.Type) },
		OnLayersChanged: func(_ context.Context, e *domain.LayersEvent) {
			r.events = append(r.events, e.Type)
			r.layers = append(r.layers, e.Layers)
		},
		OnSubparticleAdded: func(_ context.Context, e *domain.SubparticleEvent) { r.events = append(r.events, e.Type) },
		OnGestureStarted:   func(_ context.Context, e *domain.GestureEvent) { r.events = append(r.events, e.Type) },
		OnGestureEnded:     func(_ context.Context, e *domain.GestureEvent) { r.events = append(r.events, e.Type) },
	}
}

func (r *recorder) count(t domain.EventType) int {
	n := 0
	for _, e := range r.events {
		if e == t {
			n++
		}
	}
	return n
}

func (r *recorder) reset() { r.events, r.layers = nil, nil }

var viewZ = r3.Vec{Z: 1}

func newOpenEngine(t *testing.T, opts ...runtime.EngineOption) (*runtime.Engine, *recorder) {
	t.Helper()
	rec := &recorder{}
	opts = append([]runtime.EngineOption{runtime.WithLifecycleHooks(rec.hooks())}, opts...)
	e := runtime.NewEngine(opts...)
	require.NoError(t, e.OpenVolume(context.Background(), domain.Volume{Shape: [3]int{100, 100, 100}, Source: "test"}))
	rec.reset()
	return e, rec
}

func altClick(t *testing.T, e *runtime.Engine, pos, view r3.Vec) {
	t.Helper()
	require.NoError(t, e.HandlePointer(context.Background(), domain.PointerEvent{
		Phase:         domain.PhasePress,
		Position:      pos,
		ViewDirection: view,
		Modifiers:     []string{domain.ModifierAlt},
	}))
}

func vecNear(t *testing.T, want, got r3.Vec, tol float64) {
	t.Helper()
	assert.InDelta(t, 0, r3.Norm(r3.Sub(want, got)), tol, "want %v got %v", want, got)
}

func TestEngine_NewEngineDefaults(t *testing.T) {
	e := runtime.NewEngine()
	assert.Equal(t, domain.ModeAdd, e.Mode())
	assert.Equal(t, domain.NoActive, e.Active())
	assert.True(t, e.Interactive())
	_, ok := e.Volume()
	assert.False(t, ok)

	s := store.New()
	s.Add(r3.Vec{})
	s.Add(r3.Vec{X: 1})
	e = runtime.NewEngine(runtime.WithStore(s))
	assert.Equal(t, 1, e.Active())
}

func TestEngine_OpenVolume(t *testing.T) {
	rec := &recorder{}
	e := runtime.NewEngine(runtime.WithLifecycleHooks(rec.hooks()), runtime.WithThickness(8, 2))
	ctx := context.Background()

	assert.Error(t, e.OpenVolume(ctx, domain.Volume{Shape: [3]int{10, 0, 10}}))

	require.NoError(t, e.OpenVolume(ctx, domain.Volume{Shape: [3]int{40, 60, 80}}))
	p := e.Plane()
	assert.Equal(t, r3.Vec{X: 20, Y: 30, Z: 40}, p.Position)
	assert.Equal(t, r3.Vec{Z: 1}, p.Normal)
	assert.Equal(t, 8.0, p.Thickness)
	assert.Equal(t, r3.Vec{X: 20, Y: 30, Z: 40}, e.Camera().Center)
	assert.Equal(t, []domain.EventType{
		domain.EventPlaneChanged,
		domain.EventThicknessChanged,
		domain.EventCameraChanged,
		domain.EventLayersChanged,
	}, rec.events)
}

func TestEngine_AnnotateSubparticle(t *testing.T) {
	e, rec := newOpenEngine(t)
	ctx := context.Background()

	altClick(t, e, r3.Vec{X: 50, Y: 50, Z: 50}, viewZ)
	require.Equal(t, 0, e.Active())
	assert.Equal(t, 1, rec.count(domain.EventSubparticleAdded))
	assert.Equal(t, 1, rec.count(domain.EventActiveChanged))

	p, err := e.Subparticle(0)
	require.NoError(t, err)
	vecNear(t, r3.Vec{X: 50, Y: 50, Z: 50}, p.Origin, 1e-12)

	// Put the plane through the subparticle perpendicular to x, then pick along x.
	require.NoError(t, e.HandleKey(ctx, "x"))
	vecNear(t, r3.Vec{X: 50, Y: 50, Z: 50}, e.Plane().Position, 1e-12)
	assert.Equal(t, r3.Vec{X: 1}, e.Plane().Normal)

	require.NoError(t, e.SetMode(ctx, domain.ModeDefineZAxis))
	altClick(t, e, r3.Vec{X: 10, Y: 50, Z: 60}, r3.Vec{X: 1})

	p, err = e.Subparticle(0)
	require.NoError(t, err)
	require.True(t, p.HasFrame())
	vecNear(t, r3.Vec{Z: 1}, *p.ZAxis, 1e-12)
	f, _ := p.Frame()
	assert.True(t, f.Matrix().IsOrthonormal(1e-9))
	assert.InDelta(t, 1, f.Matrix().Det(), 1e-9)

	layers := e.Layers()
	require.NotNil(t, layers.ZPick)
	vecNear(t, r3.Vec{X: 50, Y: 50, Z: 60}, *layers.ZPick, 1e-12)
	assert.Len(t, layers.Points, 1)
	assert.Len(t, layers.Vectors, 3)
	assert.Equal(t, 0, layers.Active)
}

func TestEngine_AltClickOutsideVolumeIsIgnored(t *testing.T) {
	e, rec := newOpenEngine(t)

	altClick(t, e, r3.Vec{X: 150, Y: 50, Z: 0}, viewZ)
	assert.Empty(t, e.Subparticles())
	assert.Equal(t, domain.NoActive, e.Active())
	assert.Zero(t, rec.count(domain.EventSubparticleAdded))
}

func TestEngine_AltClickWithoutVolume(t *testing.T) {
	e := runtime.NewEngine()
	err := e.HandlePointer(context.Background(), domain.PointerEvent{
		Phase:     domain.PhasePress,
		Position:  r3.Vec{X: 1, Y: 1, Z: 1},
		Modifiers: []string{domain.ModifierAlt},
	})

	var gerr *runtime.GestureError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "add_point", gerr.Gesture)
	assert.ErrorIs(t, err, domain.ErrNoVolume)
}

func TestEngine_SetMode(t *testing.T) {
	e, rec := newOpenEngine(t)
	ctx := context.Background()

	assert.ErrorIs(t, e.SetMode(ctx, domain.ModeDefineZAxis), domain.ErrNoActiveSubparticle)
	assert.ErrorIs(t, e.SetMode(ctx, domain.ModeRotateInPlane), domain.ErrNoActiveSubparticle)
	assert.ErrorIs(t, e.SetMode(ctx, domain.Mode("paint")), domain.ErrUnknownMode)
	assert.Equal(t, domain.ModeAdd, e.Mode())
	assert.Zero(t, rec.count(domain.EventModeChanged))

	altClick(t, e, r3.Vec{X: 50, Y: 50, Z: 50}, viewZ)
	require.NoError(t, e.SetMode(ctx, domain.ModeRotateInPlane))
	assert.Equal(t, domain.ModeRotateInPlane, e.Mode())
	assert.Equal(t, 1, rec.count(domain.EventModeChanged))

	// Re-entering the same mode emits no mode change.
	require.NoError(t, e.SetMode(ctx, domain.ModeRotateInPlane))
	assert.Equal(t, 1, rec.count(domain.EventModeChanged))
}

func TestEngine_ModeChangeClearsZPick(t *testing.T) {
	e, _ := newOpenEngine(t)
	ctx := context.Background()

	altClick(t, e, r3.Vec{X: 50, Y: 50, Z: 50}, viewZ)
	require.NoError(t, e.SetMode(ctx, domain.ModeDefineZAxis))
	altClick(t, e, r3.Vec{X: 60, Y: 55, Z: 10}, viewZ)
	require.NotNil(t, e.Layers().ZPick)

	require.NoError(t, e.SetMode(ctx, domain.ModeAdd))
	assert.Nil(t, e.Layers().ZPick)
	require.NoError(t, e.SetMode(ctx, domain.ModeDefineZAxis))
	assert.Nil(t, e.Layers().ZPick)
}

func TestEngine_DefineZOutsideVolumeKeepsAxis(t *testing.T) {
	e, _ := newOpenEngine(t)
	ctx := context.Background()

	altClick(t, e, r3.Vec{X: 50, Y: 50, Z: 50}, viewZ)
	require.NoError(t, e.SetMode(ctx, domain.ModeDefineZAxis))
	altClick(t, e, r3.Vec{X: -5, Y: 50, Z: 0}, viewZ)

	p, err := e.Subparticle(0)
	require.NoError(t, err)
	assert.Nil(t, p.ZAxis)
	assert.Nil(t, e.Layers().ZPick)
}

func TestEngine_DefineZOnOrigin(t *testing.T) {
	e, _ := newOpenEngine(t)
	ctx := context.Background()

	altClick(t, e, r3.Vec{X: 50, Y: 50, Z: 50}, viewZ)
	require.NoError(t, e.SetMode(ctx, domain.ModeDefineZAxis))

	err := e.HandlePointer(ctx, domain.PointerEvent{
		Phase:         domain.PhasePress,
		Position:      r3.Vec{X: 50, Y: 50, Z: 0},
		ViewDirection: viewZ,
		Modifiers:     []string{domain.ModifierAlt},
	})
	var gerr *runtime.GestureError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "define_z_axis", gerr.Gesture)
}

func TestEngine_Navigation(t *testing.T) {
	e, rec := newOpenEngine(t)
	ctx := context.Background()

	for _, x := range []float64{20, 40, 60} {
		altClick(t, e, r3.Vec{X: x, Y: 50, Z: 50}, viewZ)
	}
	require.Equal(t, 2, e.Active())

	// ADD mode does not move the camera.
	rec.reset()
	require.NoError(t, e.Next(ctx))
	assert.Equal(t, 0, e.Active())
	assert.Zero(t, rec.count(domain.EventCameraChanged))
	assert.Equal(t, r3.Vec{X: 50, Y: 50, Z: 50}, e.Camera().Center)

	require.NoError(t, e.SetMode(ctx, domain.ModeDefineZAxis))
	altClick(t, e, r3.Vec{X: 20, Y: 70, Z: 0}, viewZ)
	require.NotNil(t, e.Layers().ZPick)

	rec.reset()
	require.NoError(t, e.Previous(ctx))
	assert.Equal(t, 2, e.Active())
	assert.Equal(t, r3.Vec{X: 60, Y: 50, Z: 50}, e.Camera().Center)
	assert.Equal(t, 1, rec.count(domain.EventCameraChanged))
	assert.Nil(t, e.Layers().ZPick)

	require.NoError(t, e.HandleKey(ctx, "."))
	assert.Equal(t, 0, e.Active())
	require.NoError(t, e.HandleKey(ctx, ","))
	assert.Equal(t, 2, e.Active())
}

func TestEngine_NavigationEmptyStore(t *testing.T) {
	e, rec := newOpenEngine(t)
	require.NoError(t, e.Next(context.Background()))
	require.NoError(t, e.Previous(context.Background()))
	assert.Equal(t, domain.NoActive, e.Active())
	assert.Empty(t, rec.events)
}

func TestEngine_SelectUnknown(t *testing.T) {
	e, _ := newOpenEngine(t)
	assert.ErrorIs(t, e.Select(context.Background(), 3), domain.ErrUnknownSubparticle)
}

func TestEngine_PlaneKeys(t *testing.T) {
	e, rec := newOpenEngine(t, runtime.WithThickness(3, 1))
	ctx := context.Background()

	require.NoError(t, e.HandleKey(ctx, "]"))
	assert.Equal(t, 4.0, e.Plane().Thickness)
	for i := 0; i < 10; i++ {
		require.NoError(t, e.HandleKey(ctx, "["))
	}
	assert.Equal(t, 1.0, e.Plane().Thickness)
	assert.Equal(t, 4, rec.count(domain.EventThicknessChanged))

	require.NoError(t, e.HandleKey(ctx, "y"))
	assert.Equal(t, r3.Vec{Y: 1}, e.Plane().Normal)

	e.SetCamera(domain.Camera{Center: r3.Vec{X: 1}, ViewDirection: r3.Vec{X: 3, Y: 4}})
	require.NoError(t, e.HandleKey(ctx, "o"))
	vecNear(t, r3.Vec{X: 0.6, Y: 0.8}, e.Plane().Normal, 1e-12)
	assert.Equal(t, r3.Vec{X: 50, Y: 50, Z: 50}, e.Plane().Position)

	assert.ErrorIs(t, e.HandleKey(ctx, "q"), runtime.ErrUnknownKey)
	var axisErr *runtime.UnknownAxisError
	assert.ErrorAs(t, e.AlignPlaneToAxis(ctx, domain.Axis("w")), &axisErr)
}

func TestEngine_AlignPlaneFallsBackToCentre(t *testing.T) {
	e, _ := newOpenEngine(t)
	ctx := context.Background()

	// Leave the cursor far outside the volume.
	require.NoError(t, e.HandlePointer(ctx, domain.PointerEvent{
		Phase:         domain.PhaseMove,
		Position:      r3.Vec{X: 500, Y: 500, Z: 0},
		ViewDirection: viewZ,
	}))
	require.NoError(t, e.AlignPlaneToAxis(ctx, domain.AxisX))
	assert.Equal(t, r3.Vec{X: 50, Y: 50, Z: 50}, e.Plane().Position)
	assert.Equal(t, r3.Vec{X: 1}, e.Plane().Normal)
}

func TestEngine_PlaneOpsWithoutVolume(t *testing.T) {
	e := runtime.NewEngine()
	ctx := context.Background()
	assert.ErrorIs(t, e.AlignPlaneToAxis(ctx, domain.AxisZ), domain.ErrNoVolume)
	assert.ErrorIs(t, e.OrientPlaneToCamera(ctx), domain.ErrNoVolume)
	assert.ErrorIs(t, e.IncreaseThickness(ctx), domain.ErrNoVolume)
}

func TestEngine_KeyBindings(t *testing.T) {
	e := runtime.NewEngine()
	keys := make([]string, 0)
	for _, b := range e.KeyBindings() {
		keys = append(keys, b.Key)
		assert.NotEmpty(t, b.Description)
	}
	assert.Equal(t, []string{",", ".", "[", "]", "n", "o", "p", "x", "y", "z"}, keys)
}

func TestEngine_Status(t *testing.T) {
	e, _ := newOpenEngine(t)
	altClick(t, e, r3.Vec{X: 50, Y: 50, Z: 50}, viewZ)

	s := e.Status()
	assert.Equal(t, domain.ModeAdd, s.Mode)
	assert.Equal(t, 0, s.Active)
	assert.Equal(t, 1, s.Subparticles)
	require.NotNil(t, s.Volume)
	assert.Equal(t, [3]int{100, 100, 100}, s.Volume.Shape)
	assert.True(t, s.Interactive)
	assert.Empty(t, s.Gesture)
	assert.False(t, math.IsNaN(s.Plane.Thickness))
}

func TestEngine_Tuning(t *testing.T) {
	ctx := context.Background()
	e := runtime.NewEngine()

	assert.Error(t, e.SetRotationScale(0))
	require.NoError(t, e.SetRotationScale(2))

	assert.Error(t, e.SetThickness(ctx, 0.5))
	require.NoError(t, e.SetThickness(ctx, 8))
	require.NoError(t, e.OpenVolume(ctx, domain.Volume{Shape: [3]int{10, 10, 10}}))
	assert.Equal(t, 8.0, e.Plane().Thickness)

	require.NoError(t, e.SetThickness(ctx, 2))
	assert.Equal(t, 2.0, e.Plane().Thickness)
}
