package component

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vec3 is a 3-component vector. In payloads it is written as a short string
// ("1 2 3" or "1, 2, 3"), a sequence [1, 2, 3] or a mapping {x: 1, y: 2, z: 3}.
// Missing trailing components are 0.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Mul(o Vec3) Vec3      { return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }
func (v Vec3) Scale(f float64) Vec3 { return Vec3{v.X * f, v.Y * f, v.Z * f} }
func (v Vec3) String() string       { return fmt.Sprintf("%g %g %g", v.X, v.Y, v.Z) }

// ParseVec3 parses "x y z" with spaces and/or commas between components.
func ParseVec3(s string) (Vec3, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })
	if len(fields) == 0 || len(fields) > 3 {
		return Vec3{}, fmt.Errorf("vec3 %q: want 1 to 3 components, got %d", s, len(fields))
	}
	var out [3]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Vec3{}, fmt.Errorf("vec3 %q: %w", s, err)
		}
		out[i] = n
	}
	return Vec3{out[0], out[1], out[2]}, nil
}

func (v *Vec3) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		parsed, err := ParseVec3(n.Value)
		if err != nil {
			return err
		}
		*v = parsed
		return nil
	case yaml.SequenceNode:
		var xs []float64
		if err := n.Decode(&xs); err != nil {
			return err
		}
		if len(xs) == 0 || len(xs) > 3 {
			return fmt.Errorf("vec3: want 1 to 3 components, got %d (line %d)", len(xs), n.Line)
		}
		var out [3]float64
		copy(out[:], xs)
		*v = Vec3{out[0], out[1], out[2]}
		return nil
	case yaml.MappingNode:
		var m struct {
			X, Y, Z float64
		}
		if err := n.Decode(&m); err != nil {
			return err
		}
		*v = Vec3{m.X, m.Y, m.Z}
		return nil
	}
	return fmt.Errorf("vec3: unexpected yaml node kind %d (line %d)", n.Kind, n.Line)
}
