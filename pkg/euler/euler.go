// Package euler converts between rotation matrices and Euler angles in the intrinsic ZYZ
// convention with right-handed rotations, as used by RELION-style pose tables
// (AngleRot, AngleTilt, AnglePsi in degrees).
package euler

import (
	"math"

	"github.com/aretw0/subboxer/pkg/geometry"
)

// gimbalTolerance bounds |sin(tilt)| below which rot and psi are no longer separable.
const gimbalTolerance = 1e-9

// Angles holds intrinsic ZYZ Euler angles in degrees.
type Angles struct {
	Rot  float64
	Tilt float64
	Psi  float64
}

// ToMatrix returns Rz(rot)·Ry(tilt)·Rz(psi).
func ToMatrix(a Angles) geometry.Mat3 {
	return rotZ(a.Rot).Mul(rotY(a.Tilt)).Mul(rotZ(a.Psi))
}

// FromMatrix decomposes a rotation matrix into intrinsic ZYZ angles.
//
// Tilt is returned in [0, 180]. When tilt is 0 or 180 the decomposition is not unique;
// psi is then fixed to 0 and the whole in-plane rotation is carried by rot.
func FromMatrix(m geometry.Mat3) Angles {
	cb := math.Max(-1, math.Min(1, m[2][2]))
	tilt := math.Acos(cb)
	sb := math.Sin(tilt)

	var rot, psi float64
	switch {
	case sb > gimbalTolerance:
		rot = math.Atan2(m[1][2], m[0][2])
		psi = math.Atan2(m[2][1], -m[2][0])
	case cb > 0:
		rot = math.Atan2(m[1][0], m[0][0])
	default:
		rot = math.Atan2(-m[1][0], -m[0][0])
	}

	return Angles{
		Rot:  degrees(rot),
		Tilt: degrees(tilt),
		Psi:  degrees(psi),
	}
}

func rotZ(deg float64) geometry.Mat3 {
	return geometry.InPlaneRotation(deg)
}

func rotY(deg float64) geometry.Mat3 {
	rad := deg * math.Pi / 180
	c, s := math.Cos(rad), math.Sin(rad)
	return geometry.Mat3{
		{c, 0, s},
		{0, 1, 0},
		{-s, 0, c},
	}
}

func degrees(rad float64) float64 {
	d := rad * 180 / math.Pi
	if d == 0 {
		return 0 // drop negative zero
	}
	return d
}
