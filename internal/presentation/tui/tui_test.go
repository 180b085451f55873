package tui_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/subboxer/internal/presentation/tui"
	"github.com/aretw0/subboxer/internal/runtime"
	"github.com/aretw0/subboxer/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestActiveLabel(t *testing.T) {
	assert.Equal(t, "007", tui.ActiveLabel(7))
	assert.Equal(t, "1234", tui.ActiveLabel(1234))
	assert.Equal(t, "---", tui.ActiveLabel(domain.NoActive))
}

func TestStatusLine(t *testing.T) {
	s := runtime.Status{
		Mode:         domain.ModeRotateInPlane,
		Active:       2,
		Subparticles: 3,
		Volume:       &domain.Volume{Shape: [3]int{10, 10, 10}},
		Plane:        domain.SlicingPlane{Position: r3.Vec{X: 5, Y: 5, Z: 5}, Normal: r3.Vec{Z: 1}, Thickness: 5},
		Gesture:      "rotate_in_plane",
	}
	line := tui.StatusLine(termenv.Ascii, s)
	assert.Equal(t,
		"mode rotate_in_plane | active 002 | subparticles 3 | plane (5.0, 5.0, 5.0) n=(0.0, 0.0, 1.0) t=5 | dragging rotate_in_plane",
		line)

	line = tui.StatusLine(termenv.Ascii, runtime.Status{Mode: domain.ModeAdd, Active: domain.NoActive})
	assert.Contains(t, line, "no volume")
	assert.Contains(t, line, "active ---")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, termenv.Ascii)
	assert.Contains(t, buf.String(), `|___/\__,_|`)
}

func TestControlsMarkdown(t *testing.T) {
	md := tui.ControlsMarkdown(runtime.NewEngine().KeyBindings())
	assert.Contains(t, md, "| `o` | orient plane perpendicular to the view |")
	assert.Contains(t, md, "alt-click")

	render, err := tui.NewRenderer(false, 80)
	require.NoError(t, err)
	out, err := render(md)
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "subboxer controls"))
}

func TestSubparticleLine(t *testing.T) {
	z := r3.Vec{Z: 1}
	p := domain.SubparticlePose{ID: 2, Origin: r3.Vec{X: 1, Y: 2, Z: 3}, ZAxis: &z}

	line := tui.SubparticleLine(termenv.Ascii, p, true)
	assert.Equal(t, "* 002 origin (1.0, 2.0, 3.0) z (0.0, 0.0, 1.0) (frame incomplete)", line)

	p.SetFrame(domain.Frame{X: r3.Vec{X: 1}, Y: r3.Vec{Y: 1}, Z: z})
	assert.Equal(t, "  002 origin (1.0, 2.0, 3.0) z (0.0, 0.0, 1.0)", tui.SubparticleLine(termenv.Ascii, p, false))
}
