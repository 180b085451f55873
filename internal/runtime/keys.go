package runtime

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/subboxer/pkg/domain"
)

// ErrUnknownKey is returned by HandleKey for a key with no binding.
var ErrUnknownKey = errors.New("unknown key")

// KeyBinding is a keyboard shortcut and the engine action it triggers.
type KeyBinding struct {
	Key         string
	Description string
	action      func(context.Context) error
}

func (e *Engine) defaultKeymap() map[string]KeyBinding {
	align := func(a domain.Axis) func(context.Context) error {
		return func(ctx context.Context) error { return e.AlignPlaneToAxis(ctx, a) }
	}
	bindings := []KeyBinding{
		{"x", "align plane normal with x", align(domain.AxisX)},
		{"y", "align plane normal with y", align(domain.AxisY)},
		{"z", "align plane normal with z", align(domain.AxisZ)},
		{"o", "orient plane perpendicular to the view", e.OrientPlaneToCamera},
		{"[", "decrease plane thickness", e.DecreaseThickness},
		{"]", "increase plane thickness", e.IncreaseThickness},
		{",", "previous subparticle", e.Previous},
		{"p", "previous subparticle", e.Previous},
		{".", "next subparticle", e.Next},
		{"n", "next subparticle", e.Next},
	}
	m := make(map[string]KeyBinding, len(bindings))
	for _, b := range bindings {
		m[b.Key] = b
	}
	return m
}

// HandleKey runs the action bound to key.
func (e *Engine) HandleKey(ctx context.Context, key string) error {
	b, ok := e.keymap[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	e.logger.Debug("key", "key", key, "action", b.Description)
	return b.action(ctx)
}

// KeyBindings lists the keyboard shortcuts ordered by key.
func (e *Engine) KeyBindings() []KeyBinding {
	out := make([]KeyBinding, 0, len(e.keymap))
	for _, b := range e.keymap {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
