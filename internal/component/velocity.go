package component

import (
	"time"

	"github.com/l1jgo/ecsengine/internal/core/ecs"
)

// Velocity moves the Transform of its own entity every frame.
type Velocity struct {
	Linear  Vec3
	Angular float64

	transform ecs.Handle
}

func (v *Velocity) Load(_ *ecs.Context, p ecs.Payload) error {
	var raw struct {
		Linear  *Vec3    `yaml:"linear"`
		Angular *float64 `yaml:"angular"`
	}
	if err := p.Decode(&raw); err != nil {
		return err
	}
	if raw.Linear != nil {
		v.Linear = *raw.Linear
	}
	if raw.Angular != nil {
		v.Angular = *raw.Angular
	}
	return nil
}

func (v *Velocity) OnAttach(ctx *ecs.Context) {
	v.transform = ecs.Sibling[Transform](ctx.World, ctx.Self)
	if v.transform == ecs.InvalidHandle {
		ctx.Log.Warn("velocity without transform", ctx.Fields()...)
	}
}

func (v *Velocity) Update(ctx *ecs.Context, dt time.Duration) {
	t := ecs.Resolve[Transform](ctx.World, v.transform)
	if t == nil {
		// the transform may have been replaced since attach
		v.transform = ecs.Sibling[Transform](ctx.World, ctx.Self)
		if t = ecs.Resolve[Transform](ctx.World, v.transform); t == nil {
			return
		}
	}
	s := dt.Seconds()
	t.Position = t.Position.Add(v.Linear.Scale(s))
	t.Rotation += v.Angular * s
}
