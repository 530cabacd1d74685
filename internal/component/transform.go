package component

import "github.com/l1jgo/ecsengine/internal/core/ecs"

// Transform places its entity in the world.
type Transform struct {
	Position Vec3
	Scale    Vec3
	Rotation float64 // radians around Z
}

// Load merges position, scale and rotation; fields the payload omits keep
// their current value. A new transform starts at scale 1.
func (t *Transform) Load(_ *ecs.Context, p ecs.Payload) error {
	var raw struct {
		Position *Vec3    `yaml:"position"`
		Scale    *Vec3    `yaml:"scale"`
		Rotation *float64 `yaml:"rotation"`
	}
	if err := p.Decode(&raw); err != nil {
		return err
	}
	if t.Scale == (Vec3{}) {
		t.Scale = Vec3{1, 1, 1}
	}
	if raw.Position != nil {
		t.Position = *raw.Position
	}
	if raw.Scale != nil {
		t.Scale = *raw.Scale
	}
	if raw.Rotation != nil {
		t.Rotation = *raw.Rotation
	}
	return nil
}
