package runner

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrUnknownCommand is returned for a verb the runner does not implement.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrMissingCommand is returned for a JSON line without a "command" field.
	ErrMissingCommand = errors.New("missing command")
)

// Command is one decoded request from the front end. On the wire it is a flat object: the
// verb under "command" and every argument as a sibling field, e.g.
// {"command": "select", "id": 2}.
type Command struct {
	Name string         `json:"command" mapstructure:"command"`
	Args map[string]any `json:"-" mapstructure:",remain"`
}

// MarshalJSON writes the flat wire form that the JSON handler reads.
func (c Command) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(c.Args)+1)
	for k, v := range c.Args {
		flat[k] = v
	}
	flat["command"] = c.Name
	return json.Marshal(flat)
}

// Reply answers one Command. Data is nil when the command fails.
type Reply struct {
	Command string `json:"command"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Help is the data of a help reply: the controls as markdown.
type Help struct {
	Markdown string `json:"markdown"`
}

// Notice is a short human-readable acknowledgement.
type Notice struct {
	Message string `json:"message"`
}

func failure(name string, err error) Reply {
	return Reply{Command: name, Error: err.Error()}
}

// decodeArgs decodes command arguments into out. Numbers may arrive as strings, as they do
// from the text handler, and vectors as three-element lists or {x, y, z} objects.
func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       vectorHook,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if args == nil {
		args = map[string]any{}
	}
	return dec.Decode(args)
}

var vecType = reflect.TypeOf(r3.Vec{})

func vectorHook(from, to reflect.Type, data any) (any, error) {
	if to != vecType || (from.Kind() != reflect.Slice && from.Kind() != reflect.Array) {
		return data, nil
	}
	var xs []float64
	if err := mapstructure.WeakDecode(data, &xs); err != nil {
		return nil, err
	}
	if len(xs) != 3 {
		return nil, fmt.Errorf("vector needs 3 components, got %d", len(xs))
	}
	return r3.Vec{X: xs[0], Y: xs[1], Z: xs[2]}, nil
}
