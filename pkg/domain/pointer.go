package domain

import "gonum.org/v1/gonum/spatial/r3"

// Phase is the stage of a pointer gesture.
type Phase string

const (
	PhasePress   Phase = "press"
	PhaseMove    Phase = "move"
	PhaseRelease Phase = "release"
)

// ModifierAlt is the qualifier that turns a click into an annotation pick.
const ModifierAlt = "alt"

// PointerEvent is one pointer event in data coordinates.
//
// Position is the cursor position in (x, y, z) voxel coordinates and ViewDirection the
// direction of the view ray through it. Any reversal to a display axis order happens in
// the presentation layer, never here.
type PointerEvent struct {
	Phase         Phase    `json:"phase" mapstructure:"phase"`
	Position      r3.Vec   `json:"position" mapstructure:"position"`
	ViewDirection r3.Vec   `json:"view_direction" mapstructure:"view_direction"`
	Modifiers     []string `json:"modifiers,omitempty" mapstructure:"modifiers"`
}

// HasModifier reports whether name is among the event's modifiers.
func (e PointerEvent) HasModifier(name string) bool {
	for _, m := range e.Modifiers {
		if m == name {
			return true
		}
	}
	return false
}
