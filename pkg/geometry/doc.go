/*
Package geometry holds the stateless vector and frame primitives used by the subboxer core.

Vectors are gonum r3.Vec values in (x, y, z) order. Rotations are Mat3 values that premultiply
column vectors (v' = R·v). Nothing in this package keeps state; every function either returns a
new value or a named error for a geometric degeneracy. Degeneracies are never reported as NaN.

# Key Functions

  - Normalize: unit vector or ErrDegenerateVector.
  - AlignRotation: closed-form rotation taking unit vector a onto b.
  - InPlaneRotation: rotation about the local z axis by an angle in degrees.
  - RayPlaneIntersection: pick point of a view ray on the slicing plane.
  - PointInBox / ClampToBox: containment against the volume extent.
  - ProjectDragOntoAxis: signed drag distance along an axis.
*/
package geometry
