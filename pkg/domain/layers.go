package domain

import "gonum.org/v1/gonum/spatial/r3"

// FrameVector is one axis of a subparticle frame, drawn from the subparticle origin.
type FrameVector struct {
	ID        int    `json:"id"`
	Axis      Axis   `json:"axis"`
	Origin    r3.Vec `json:"origin"`
	Direction r3.Vec `json:"direction"`
}

// Layers is the derived visual state recomputed from the store after every mutation.
type Layers struct {
	Points  []SubparticlePose `json:"points"`
	Vectors []FrameVector     `json:"vectors"`
	// ZPick is the transient z-axis pick; nil when hidden.
	ZPick  *r3.Vec `json:"z_pick,omitempty"`
	Active int     `json:"active"`
}
