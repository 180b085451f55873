/*
Package subboxer defines subparticles on a 3D density map and applies them to particle poses.

A subparticle is a local region of a larger particle with its own reference frame. Users
place subparticle origins by clicking on a slicing plane through the map, point the z axis at
a second position and spin the frame about z by dragging. The definitions are exported as
local transforms (a shift and a rotation, relative to the map centre) which, applied to every
particle pose from a consensus refinement, yield the poses of every subparticle.

# Defining subparticles

A Session owns the annotation state and accepts pointer events, key presses and mode changes
from any front end. Calls are serialised, so an HTTP API and a terminal prompt may drive the
same session.

	s := subboxer.New(subboxer.WithLogger(logger))
	if err := s.OpenMap(ctx, "consensus.mrc"); err != nil {
		return err
	}
	_ = s.HandlePointer(ctx, domain.PointerEvent{
		Phase:     domain.PhasePress,
		Position:  r3.Vec{X: 40, Y: 52, Z: 0},
		Modifiers: []string{domain.ModifierAlt},
	})
	records, err := s.Export("transforms.star")

# Applying transforms

Apply reads a transform table and a RELION particle table and writes one particle per
(transform, pose) pair, transform-major.

	summary, err := subboxer.Apply(ctx, "transforms.star", "particles.star", "subparticles.star")
*/
package subboxer
