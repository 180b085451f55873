package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/subboxer/internal/runtime"
	"github.com/aretw0/subboxer/pkg/domain"
	"github.com/muesli/termenv"
	"gonum.org/v1/gonum/spatial/r3"
)

var modeColors = map[domain.Mode]string{
	domain.ModeAdd:           "#4ade80",
	domain.ModeDefineZAxis:   "#facc15",
	domain.ModeRotateInPlane: "#f472b6",
}

// ActiveLabel renders a subparticle id the way the viewer labels it.
func ActiveLabel(id int) string {
	if id == domain.NoActive {
		return "---"
	}
	return fmt.Sprintf("%03d", id)
}

// StatusLine summarises the engine state on one line.
func StatusLine(p termenv.Profile, s runtime.Status) string {
	mode := p.String(string(s.Mode)).Bold()
	if c, ok := modeColors[s.Mode]; ok {
		mode = mode.Foreground(p.Color(c))
	}

	parts := []string{
		"mode " + mode.String(),
		"active " + ActiveLabel(s.Active),
		fmt.Sprintf("subparticles %d", s.Subparticles),
	}
	if s.Volume != nil {
		parts = append(parts,
			fmt.Sprintf("plane %s n=%s t=%g", vec(s.Plane.Position), vec(s.Plane.Normal), s.Plane.Thickness))
	} else {
		parts = append(parts, p.String("no volume").Faint().String())
	}
	if s.Gesture != "" {
		parts = append(parts, "dragging "+s.Gesture)
	}
	return strings.Join(parts, " | ")
}

func vec(v r3.Vec) string {
	return fmt.Sprintf("(%.1f, %.1f, %.1f)", v.X, v.Y, v.Z)
}

// SubparticleLine lists one subparticle; the active one is marked with an asterisk.
func SubparticleLine(p termenv.Profile, s domain.SubparticlePose, active bool) string {
	mark := " "
	if active {
		mark = p.String("*").Bold().String()
	}
	line := fmt.Sprintf("%s %s origin %s", mark, ActiveLabel(s.ID), vec(s.Origin))
	if s.ZAxis != nil {
		line += " z " + vec(*s.ZAxis)
	}
	if !s.HasFrame() {
		line += " " + p.String("(frame incomplete)").Faint().String()
	}
	return line
}
