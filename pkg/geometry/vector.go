package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Normalize returns v scaled to unit length.
func Normalize(v r3.Vec) (r3.Vec, error) {
	n := r3.Norm(v)
	if n == 0 || math.IsNaN(n) {
		return r3.Vec{}, ErrDegenerateVector
	}
	return r3.Scale(1/n, v), nil
}

// AlignRotation returns the rotation R with R·a = b.
//
// The matrix is filled directly from the cross product axis v = a×b, the cosine c = a·b and
// k = 1/(1+c), so no trigonometric call is made. Inputs are normalized first.
// The construction is undefined for antiparallel vectors and reports ErrAntiparallelVectors.
func AlignRotation(a, b r3.Vec) (Mat3, error) {
	a, err := Normalize(a)
	if err != nil {
		return Mat3{}, err
	}
	b, err = Normalize(b)
	if err != nil {
		return Mat3{}, err
	}

	v := r3.Cross(a, b)
	c := r3.Dot(a, b)
	if 1+c < Tolerance {
		return Mat3{}, ErrAntiparallelVectors
	}
	k := 1 / (1 + c)

	return Mat3{
		{v.X*v.X*k + c, v.Y*v.X*k - v.Z, v.Z*v.X*k + v.Y},
		{v.X*v.Y*k + v.Z, v.Y*v.Y*k + c, v.Z*v.Y*k - v.X},
		{v.X*v.Z*k - v.Y, v.Y*v.Z*k + v.X, v.Z*v.Z*k + c},
	}, nil
}

// InPlaneRotation returns the rotation about the local z axis by theta degrees.
func InPlaneRotation(thetaDeg float64) Mat3 {
	rad := thetaDeg * math.Pi / 180
	c, s := math.Cos(rad), math.Sin(rad)
	return Mat3{
		{c, -s, 0},
		{s, c, 0},
		{0, 0, 1},
	}
}

// RayPlaneIntersection returns the point where the ray origin + t·direction meets the plane
// through planePoint with normal planeNormal. t may be negative: the ray is a line through the
// view, not a half line.
func RayPlaneIntersection(origin, direction, planePoint, planeNormal r3.Vec) (r3.Vec, error) {
	if r3.Norm(direction) == 0 {
		return r3.Vec{}, ErrDegenerateVector
	}
	n, err := Normalize(planeNormal)
	if err != nil {
		return r3.Vec{}, err
	}
	d, _ := Normalize(direction)

	denom := r3.Dot(d, n)
	if math.Abs(denom) < Tolerance {
		return r3.Vec{}, ErrParallelRay
	}
	t := r3.Dot(r3.Sub(planePoint, origin), n) / denom
	return r3.Add(origin, r3.Scale(t, d)), nil
}

// ProjectPointOntoPlane returns the orthogonal projection of p onto the plane through
// planePoint with the given normal.
func ProjectPointOntoPlane(p, planePoint, normal r3.Vec) (r3.Vec, error) {
	n, err := Normalize(normal)
	if err != nil {
		return r3.Vec{}, err
	}
	dist := r3.Dot(r3.Sub(p, planePoint), n)
	return r3.Sub(p, r3.Scale(dist, n)), nil
}

// PointInBox reports whether every coordinate of p lies strictly between min and max.
func PointInBox(p, min, max r3.Vec) bool {
	return p.X > min.X && p.X < max.X &&
		p.Y > min.Y && p.Y < max.Y &&
		p.Z > min.Z && p.Z < max.Z
}

// ClampToBox clamps every coordinate of p into [min, max].
func ClampToBox(p, min, max r3.Vec) r3.Vec {
	return r3.Vec{
		X: clamp(p.X, min.X, max.X),
		Y: clamp(p.Y, min.Y, max.Y),
		Z: clamp(p.Z, min.Z, max.Z),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ProjectDragOntoAxis converts a drag between two 3D points into a signed distance along axis.
//
// end is first projected onto a pseudo-canvas: the plane through start perpendicular to
// viewDirection. The resulting displacement is dotted with the normalized axis.
func ProjectDragOntoAxis(start, end, viewDirection, axis r3.Vec) (float64, error) {
	u, err := Normalize(axis)
	if err != nil {
		return 0, err
	}
	onCanvas, err := ProjectPointOntoPlane(end, start, viewDirection)
	if err != nil {
		return 0, err
	}
	return r3.Dot(r3.Sub(onCanvas, start), u), nil
}
