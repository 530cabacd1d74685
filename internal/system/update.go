package system

import (
	"time"

	"github.com/l1jgo/ecsengine/internal/core/ecs"
	coresys "github.com/l1jgo/ecsengine/internal/core/system"
)

// PoolUpdateSystem runs UpdateAll on every registry, in type id order.
// Phase 1 (Update).
type PoolUpdateSystem struct {
	world *ecs.World
}

func NewPoolUpdateSystem(world *ecs.World) *PoolUpdateSystem {
	return &PoolUpdateSystem{world: world}
}

func (s *PoolUpdateSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *PoolUpdateSystem) Update(dt time.Duration) {
	s.world.UpdateAll(dt)
}
