package geometry

import "errors"

// ErrDegenerateVector is returned when a zero-length vector would have to be normalized.
var ErrDegenerateVector = errors.New("degenerate vector")

// ErrAntiparallelVectors is returned by AlignRotation when a·b ≈ -1.
var ErrAntiparallelVectors = errors.New("antiparallel vectors")

// ErrParallelRay is returned when a ray runs parallel to the plane it should intersect.
var ErrParallelRay = errors.New("ray parallel to plane")
