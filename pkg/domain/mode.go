package domain

import (
	"fmt"
	"strings"
)

// Mode is the annotation mode. Transitions happen only on explicit user commands.
type Mode string

const (
	ModeAdd           Mode = "add"             // Initial: alt-click adds a subparticle
	ModeDefineZAxis   Mode = "define_z_axis"   // alt-click sets the active z axis
	ModeRotateInPlane Mode = "rotate_in_plane" // alt-drag spins the active frame about z
)

var modeAliases = map[string]Mode{
	"add":             ModeAdd,
	"point":           ModeAdd,
	"define_z_axis":   ModeDefineZAxis,
	"define-z":        ModeDefineZAxis,
	"z":               ModeDefineZAxis,
	"rotate_in_plane": ModeRotateInPlane,
	"rotate":          ModeRotateInPlane,
	"in-plane":        ModeRotateInPlane,
}

// ParseMode resolves a mode name or one of its short aliases.
func ParseMode(s string) (Mode, error) {
	m, ok := modeAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	return m, nil
}

// NeedsActive reports whether the mode operates on the active subparticle.
func (m Mode) NeedsActive() bool {
	return m == ModeDefineZAxis || m == ModeRotateInPlane
}
