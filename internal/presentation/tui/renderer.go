package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/subboxer/internal/runtime"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// Plain output is used when colour is disabled.
func NewRenderer(color bool, width int) (func(string) (string, error), error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if color {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}

const controlsIntro = `# subboxer controls

Pointer gestures act on the slicing plane:

- **click and drag plane**: shift the plane along its normal
- **alt-click**: add a subparticle (add mode) or set the active z axis (define_z_axis mode)
- **alt-drag**: rotate the active subparticle about its z axis (rotate_in_plane mode)

Keys:

| key | action |
|---|---|
`

// ControlsMarkdown lists the gestures and the engine's key bindings as markdown.
func ControlsMarkdown(bindings []runtime.KeyBinding) string {
	var b strings.Builder
	b.WriteString(controlsIntro)
	for _, kb := range bindings {
		fmt.Fprintf(&b, "| `%s` | %s |\n", kb.Key, kb.Description)
	}
	b.WriteString("\nCommands: `open`, `mode`, `press`, `move`, `release`, `abort`, `key`, " +
		"`next`, `prev`, `select`, `camera`, `list`, `status`, `export`, `config`, `help`, `quit`.\n")
	return b.String()
}
