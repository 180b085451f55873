package mcp

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

func vector(args map[string]any, name string, required bool) (r3.Vec, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		if required {
			return r3.Vec{}, fmt.Errorf("%s is required", name)
		}
		return r3.Vec{}, nil
	}
	list, ok := raw.([]any)
	if !ok || len(list) != 3 {
		return r3.Vec{}, fmt.Errorf("%s must be an array of 3 numbers", name)
	}
	var c [3]float64
	for i, v := range list {
		f, ok := v.(float64)
		if !ok {
			return r3.Vec{}, fmt.Errorf("%s[%d] is not a number", name, i)
		}
		c[i] = f
	}
	return r3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}
