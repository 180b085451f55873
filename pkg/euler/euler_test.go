package euler_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/aretw0/subboxer/pkg/euler"
	"github.com/aretw0/subboxer/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

func axisQuat(deg float64, axis r3.Vec) quat.Number {
	half := deg * math.Pi / 360
	s := math.Sin(half)
	return quat.Number{Real: math.Cos(half), Imag: s * axis.X, Jmag: s * axis.Y, Kmag: s * axis.Z}
}

func rotateByQuat(q quat.Number, v r3.Vec) r3.Vec {
	p := quat.Mul(quat.Mul(q, quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}), quat.Conj(q))
	return r3.Vec{X: p.Imag, Y: p.Jmag, Z: p.Kmag}
}

func randomRotation(rng *rand.Rand) geometry.Mat3 {
	return euler.ToMatrix(euler.Angles{
		Rot:  rng.Float64()*360 - 180,
		Tilt: rng.Float64() * 180,
		Psi:  rng.Float64()*360 - 180,
	})
}

func TestToMatrix_MatchesQuaternionComposition(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	z := r3.Vec{Z: 1}
	y := r3.Vec{Y: 1}

	for i := 0; i < 100; i++ {
		a := euler.Angles{Rot: rng.Float64() * 360, Tilt: rng.Float64() * 180, Psi: rng.Float64() * 360}
		q := quat.Mul(quat.Mul(axisQuat(a.Rot, z), axisQuat(a.Tilt, y)), axisQuat(a.Psi, z))
		m := euler.ToMatrix(a)

		for _, v := range []r3.Vec{{X: 1}, {Y: 1}, {Z: 1}, {X: 0.3, Y: -2, Z: 5}} {
			want := rotateByQuat(q, v)
			got := m.MulVec(v)
			assert.InDelta(t, want.X, got.X, 1e-9)
			assert.InDelta(t, want.Y, got.Y, 1e-9)
			assert.InDelta(t, want.Z, got.Z, 1e-9)
		}
	}
}

func TestRoundTrip_RandomRotations(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 1000; i++ {
		R := randomRotation(rng)
		back := euler.ToMatrix(euler.FromMatrix(R))
		assert.True(t, back.EqualApprox(R, 1e-8), "rotation %d: %v != %v", i, back, R)
	}
}

func TestFromMatrix_Gimbal(t *testing.T) {
	tests := []struct {
		name string
		in   euler.Angles
	}{
		{name: "identity", in: euler.Angles{}},
		{name: "tilt zero", in: euler.Angles{Rot: 30, Tilt: 0, Psi: 45}},
		{name: "tilt 180", in: euler.Angles{Rot: 30, Tilt: 180, Psi: 45}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			R := euler.ToMatrix(tt.in)
			got := euler.FromMatrix(R)
			assert.Equal(t, 0.0, got.Psi)
			assert.True(t, euler.ToMatrix(got).EqualApprox(R, 1e-9))
		})
	}
}

func TestFromMatrix_Identity(t *testing.T) {
	assert.Equal(t, euler.Angles{}, euler.FromMatrix(geometry.Identity()))
}
