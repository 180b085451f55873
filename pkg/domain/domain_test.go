package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"add", ModeAdd},
		{"  Z ", ModeDefineZAxis},
		{"define-z", ModeDefineZAxis},
		{"rotate", ModeRotateInPlane},
		{"rotate_in_plane", ModeRotateInPlane},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseMode("delete")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestSubparticlePose_CloneIsDeep(t *testing.T) {
	p := SubparticlePose{ID: 1, Origin: r3.Vec{X: 1}}
	p.SetFrame(Frame{X: r3.Vec{X: 1}, Y: r3.Vec{Y: 1}, Z: r3.Vec{Z: 1}})
	require.True(t, p.HasFrame())

	c := p.Clone()
	c.ZAxis.Z = -1
	assert.Equal(t, 1.0, p.ZAxis.Z)

	f, ok := p.Frame()
	require.True(t, ok)
	assert.Equal(t, r3.Vec{Y: 1}, f.Y)

	_, ok = SubparticlePose{}.Frame()
	assert.False(t, ok)
}

func TestVolume(t *testing.T) {
	v := Volume{Shape: [3]int{100, 80, 60}}
	require.NoError(t, v.Validate())
	assert.Equal(t, r3.Vec{X: 50, Y: 40, Z: 30}, v.Center())
	assert.Equal(t, r3.Vec{X: 100, Y: 80, Z: 60}, v.Box().Max)

	assert.Error(t, Volume{Shape: [3]int{10, 0, 10}}.Validate())
}

func TestPointerEvent_HasModifier(t *testing.T) {
	e := PointerEvent{Modifiers: []string{"shift", ModifierAlt}}
	assert.True(t, e.HasModifier(ModifierAlt))
	assert.False(t, e.HasModifier("control"))
}

func TestComposeHooks(t *testing.T) {
	var calls []string
	a := Hooks{OnModeChanged: func(ctx context.Context, e *ModeEvent) { calls = append(calls, "a:"+string(e.To)) }}
	b := Hooks{OnModeChanged: func(ctx context.Context, e *ModeEvent) { calls = append(calls, "b:"+string(e.To)) }}

	h := ComposeHooks(a, Hooks{}, b)
	h.OnModeChanged(context.Background(), &ModeEvent{EventBase: NewEventBase(EventModeChanged), To: ModeAdd})
	h.OnActiveChanged(context.Background(), &ActiveEvent{})

	assert.Equal(t, []string{"a:add", "b:add"}, calls)
}
