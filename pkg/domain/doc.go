/*
Package domain contains the data model shared by the subboxer core.

It defines the entities the annotation state machine works on and the notifications it emits.
The package is kept free of I/O; the only dependency is the geometry layer.

# Key Entities

  - SubparticlePose: origin plus an optional orthonormal frame, keyed by a stable integer id.
  - Mode: the annotation mode (add, define z axis, rotate in plane).
  - SlicingPlane / BoundingBox / Camera: the view parameters gestures act on.
  - PointerEvent: one phase (press, move, release) of a pointer gesture.
  - Hooks: typed change notifications that presentation code subscribes to.
*/
package domain
