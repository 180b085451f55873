package store_test

import (
	"testing"

	"github.com/aretw0/subboxer/pkg/domain"
	"github.com/aretw0/subboxer/pkg/geometry"
	"github.com/aretw0/subboxer/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func assertOrthonormal(t *testing.T, p domain.SubparticlePose) {
	t.Helper()
	f, ok := p.Frame()
	require.True(t, ok, "frame incomplete")
	assert.True(t, f.Matrix().IsOrthonormal(1e-9), "frame not orthonormal: %v", f.Matrix())
}

func TestStore_AddAllocatesMonotonicIDs(t *testing.T) {
	s := store.New()
	assert.Equal(t, 0, s.Add(r3.Vec{X: 1}))
	assert.Equal(t, 1, s.Add(r3.Vec{X: 2}))
	assert.Equal(t, 2, s.Add(r3.Vec{X: 3}))
	assert.Equal(t, []int{0, 1, 2}, s.IDs())

	p, err := s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, r3.Vec{X: 2}, p.Origin)
	assert.Nil(t, p.ZAxis)
}

func TestStore_GetUnknown(t *testing.T) {
	s := store.New()
	_, err := s.Get(4)
	assert.ErrorIs(t, err, domain.ErrUnknownSubparticle)
	assert.ErrorIs(t, s.SetZAxis(4, r3.Vec{}), domain.ErrUnknownSubparticle)
	assert.ErrorIs(t, s.InitialiseBasis(4), domain.ErrUnknownSubparticle)
	assert.ErrorIs(t, s.RotateInPlane(4, 1), domain.ErrUnknownSubparticle)
}

func TestStore_SetZAxisAndBasis(t *testing.T) {
	s := store.New()
	id := s.Add(r3.Vec{X: 50, Y: 50, Z: 50})

	require.NoError(t, s.SetZAxis(id, r3.Vec{X: 50, Y: 50, Z: 60}))
	p, _ := s.Get(id)
	require.NotNil(t, p.ZAxis)
	assert.Equal(t, r3.Vec{Z: 1}, *p.ZAxis)
	assert.Nil(t, p.XAxis)

	require.NoError(t, s.InitialiseBasis(id))
	p, _ = s.Get(id)
	assertOrthonormal(t, p)
	assert.InDelta(t, 0, r3.Dot(*p.XAxis, *p.ZAxis), 1e-12)
	assert.InDelta(t, 0, r3.Dot(*p.YAxis, *p.ZAxis), 1e-12)

	// A second call keeps the existing frame.
	before := *p.XAxis
	require.NoError(t, s.RotateInPlane(id, 30))
	require.NoError(t, s.InitialiseBasis(id))
	p, _ = s.Get(id)
	assert.NotEqual(t, before, *p.XAxis)
}

func TestStore_SetZAxisDegenerate(t *testing.T) {
	s := store.New()
	id := s.Add(r3.Vec{X: 1, Y: 1, Z: 1})
	assert.ErrorIs(t, s.SetZAxis(id, r3.Vec{X: 1, Y: 1, Z: 1}), geometry.ErrDegenerateVector)
}

func TestStore_SetZAxisReprojectsExistingFrame(t *testing.T) {
	s := store.New()
	id := s.Add(r3.Vec{})
	require.NoError(t, s.SetZAxis(id, r3.Vec{Z: 1}))
	require.NoError(t, s.InitialiseBasis(id))

	require.NoError(t, s.SetZAxis(id, r3.Vec{X: 1, Y: 1, Z: 1}))
	p, _ := s.Get(id)
	assertOrthonormal(t, p)
}

func TestStore_InitialiseBasisWithoutZ(t *testing.T) {
	s := store.New()
	id := s.Add(r3.Vec{})
	require.NoError(t, s.InitialiseBasis(id))

	p, _ := s.Get(id)
	f, ok := p.Frame()
	require.True(t, ok)
	assert.True(t, f.Matrix().EqualApprox(geometry.Identity(), 0))
}

func TestStore_InitialiseBasisParallelToReference(t *testing.T) {
	ref := r3.Vec{Z: 1}
	s := store.New(store.WithReference(ref))
	id := s.Add(r3.Vec{})
	require.NoError(t, s.SetZAxis(id, r3.Vec{Z: 5}))
	require.NoError(t, s.InitialiseBasis(id))

	p, _ := s.Get(id)
	assertOrthonormal(t, p)
}

func TestStore_RotateInPlaneRequiresZ(t *testing.T) {
	s := store.New()
	id := s.Add(r3.Vec{})
	assert.ErrorIs(t, s.RotateInPlane(id, 10), domain.ErrZAxisUndefined)
	assert.ErrorIs(t, s.SetInPlaneRotation(id, domain.Frame{}, 10), domain.ErrZAxisUndefined)
}

func TestStore_RotateInPlaneClosure(t *testing.T) {
	s := store.New()
	id := s.Add(r3.Vec{X: 10, Y: 10, Z: 10})
	require.NoError(t, s.SetZAxis(id, r3.Vec{X: 13, Y: 7, Z: 21}))
	require.NoError(t, s.InitialiseBasis(id))

	start, _ := s.Get(id)
	for i := 0; i < 360; i++ {
		require.NoError(t, s.RotateInPlane(id, 1))
		p, _ := s.Get(id)
		assertOrthonormal(t, p)
	}
	end, _ := s.Get(id)

	assert.InDelta(t, 0, r3.Norm(r3.Sub(*start.XAxis, *end.XAxis)), 1e-9)
	assert.InDelta(t, 0, r3.Norm(r3.Sub(*start.YAxis, *end.YAxis)), 1e-9)
	assert.Equal(t, *start.ZAxis, *end.ZAxis)
}

func TestStore_RotateInPlaneQuarterTurn(t *testing.T) {
	s := store.New()
	id := s.Add(r3.Vec{})
	require.NoError(t, s.SetZAxis(id, r3.Vec{Z: 1}))
	require.NoError(t, s.InitialiseBasis(id))
	before, _ := s.Get(id)

	require.NoError(t, s.RotateInPlane(id, 90))
	after, _ := s.Get(id)

	// Positive rotation about z carries x onto the old y.
	assert.InDelta(t, 0, r3.Norm(r3.Sub(*after.XAxis, *before.YAxis)), 1e-12)
}

func TestStore_SetInPlaneRotationFromCapturedFrame(t *testing.T) {
	s := store.New()
	id := s.Add(r3.Vec{})
	require.NoError(t, s.SetZAxis(id, r3.Vec{Y: 1}))
	require.NoError(t, s.InitialiseBasis(id))
	p, _ := s.Get(id)
	captured, _ := p.Frame()

	// Successive absolute angles from the same captured frame do not accumulate.
	require.NoError(t, s.SetInPlaneRotation(id, captured, 10))
	require.NoError(t, s.SetInPlaneRotation(id, captured, 20))
	got, _ := s.Get(id)

	require.NoError(t, s.SetInPlaneRotation(id, captured, 0))
	require.NoError(t, s.RotateInPlane(id, 20))
	want, _ := s.Get(id)

	assert.InDelta(t, 0, r3.Norm(r3.Sub(*want.XAxis, *got.XAxis)), 1e-12)
}

func TestStore_Navigate(t *testing.T) {
	s := store.New()
	for i := 0; i < 3; i++ {
		s.Add(r3.Vec{X: float64(i)})
	}

	tests := []struct {
		from, dir, want int
	}{
		{from: 0, dir: 1, want: 1},
		{from: 1, dir: 1, want: 2},
		{from: 2, dir: 1, want: 0},
		{from: 0, dir: -1, want: 2},
		{from: 2, dir: -1, want: 1},
	}
	for _, tt := range tests {
		got, err := s.Navigate(tt.from, tt.dir)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "from %d dir %d", tt.from, tt.dir)
	}

	_, err := s.Navigate(7, 1)
	assert.ErrorIs(t, err, domain.ErrUnknownSubparticle)
	_, err = s.Navigate(0, 2)
	assert.ErrorIs(t, err, store.ErrInvalidDirection)
}

func TestStore_NavigateSingle(t *testing.T) {
	s := store.New()
	id := s.Add(r3.Vec{})
	got, err := s.Navigate(id, -1)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestStore_NavigateEmpty(t *testing.T) {
	_, err := store.New().Navigate(0, 1)
	assert.ErrorIs(t, err, domain.ErrEmptyStore)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := store.New()
	id := s.Add(r3.Vec{})
	require.NoError(t, s.InitialiseBasis(id))

	p, _ := s.Get(id)
	p.XAxis.X = 42
	again, _ := s.Get(id)
	assert.Equal(t, 1.0, again.XAxis.X)
}
