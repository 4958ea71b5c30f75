package tools

import (
	"fmt"

	"github.com/hktproto/hktmcp/internal/editor"
)

// xyz and pyr are the lower-case shapes used in tool arguments and results.
type xyz struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type pyr struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
}

func (v xyz) vector() editor.Vector { return editor.Vector{X: v.X, Y: v.Y, Z: v.Z} }
func (r pyr) rotator() editor.Rotator {
	return editor.Rotator{Pitch: r.Pitch, Yaw: r.Yaw, Roll: r.Roll}
}

var vectorSchema = map[string]any{
	"x": map[string]any{"type": "number"},
	"y": map[string]any{"type": "number"},
	"z": map[string]any{"type": "number"},
}

var rotatorSchema = map[string]any{
	"pitch": map[string]any{"type": "number"},
	"yaw":   map[string]any{"type": "number"},
	"roll":  map[string]any{"type": "number"},
}

// objectArg returns args[key] as an object; ok is false when absent or null.
func objectArg(args map[string]any, key string) (map[string]any, bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, false, nil
	}
	m, isMap := v.(map[string]any)
	if !isMap {
		return nil, false, fmt.Errorf("%s must be an object", key)
	}
	return m, true, nil
}

func number(m map[string]any, key string, required bool, def float64) (float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return 0, fmt.Errorf("missing %s", key)
		}
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("%s must be a number", key)
	}
}

// vectorArg reads {x, y, z}. All components are required when the object is present.
func vectorArg(args map[string]any, key string) (xyz, bool, error) {
	m, ok, err := objectArg(args, key)
	if err != nil || !ok {
		return xyz{}, ok, err
	}
	var v xyz
	if v.X, err = number(m, "x", true, 0); err != nil {
		return xyz{}, true, fmt.Errorf("%s: %w", key, err)
	}
	if v.Y, err = number(m, "y", true, 0); err != nil {
		return xyz{}, true, fmt.Errorf("%s: %w", key, err)
	}
	if v.Z, err = number(m, "z", true, 0); err != nil {
		return xyz{}, true, fmt.Errorf("%s: %w", key, err)
	}
	return v, true, nil
}

// rotatorArg reads {pitch, yaw, roll}; missing components default to zero
// unless strict is set.
func rotatorArg(args map[string]any, key string, strict bool) (pyr, bool, error) {
	m, ok, err := objectArg(args, key)
	if err != nil || !ok {
		return pyr{}, ok, err
	}
	var r pyr
	if r.Pitch, err = number(m, "pitch", strict, 0); err != nil {
		return pyr{}, true, fmt.Errorf("%s: %w", key, err)
	}
	if r.Yaw, err = number(m, "yaw", strict, 0); err != nil {
		return pyr{}, true, fmt.Errorf("%s: %w", key, err)
	}
	if r.Roll, err = number(m, "roll", strict, 0); err != nil {
		return pyr{}, true, fmt.Errorf("%s: %w", key, err)
	}
	return r, true, nil
}
