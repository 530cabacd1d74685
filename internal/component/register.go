// Package component holds the built-in component kinds.
package component

import (
	"github.com/l1jgo/ecsengine/internal/core/ecs"
	"github.com/l1jgo/ecsengine/internal/scripting"
)

// Kind names as they appear in scene records.
const (
	KindTransform = "transform"
	KindVelocity  = "velocity"
	KindHealth    = "health"
	KindLifetime  = "lifetime"
	KindScript    = "script"
)

// Deps carries the services components need. A nil Scripts leaves the
// script kind registered but rejecting every record.
type Deps struct {
	Scripts *scripting.Engine
}

// Register adds every built-in kind to w. Call before w.Init.
func Register(w *ecs.World, deps Deps) error {
	pools := []ecs.Storage{
		ecs.NewPool[Transform](KindTransform),
		ecs.NewPool[Velocity](KindVelocity),
		ecs.NewPool[Health](KindHealth),
		ecs.NewPool[Lifetime](KindLifetime),
		ecs.NewPool[Script](KindScript, ecs.WithConstructor(func(s *Script) {
			s.engine = deps.Scripts
		})),
	}
	for _, p := range pools {
		if err := w.Register(p); err != nil {
			return err
		}
	}
	return nil
}
