package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/ecsengine/internal/core/ecs"
	coresys "github.com/l1jgo/ecsengine/internal/core/system"
)

// StatsSystem logs pool occupancy every interval frames.
// Phase 2 (PostUpdate).
type StatsSystem struct {
	world     *ecs.World
	log       *zap.Logger
	interval  int
	tickCount int
}

func NewStatsSystem(world *ecs.World, interval int, log *zap.Logger) *StatsSystem {
	if interval <= 0 {
		interval = 1
	}
	return &StatsSystem{world: world, log: log, interval: interval}
}

func (s *StatsSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *StatsSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount%s.interval != 0 {
		return
	}
	for _, r := range s.world.Directory().Registries() {
		if r.Len() == 0 {
			continue
		}
		s.log.Debug("pool occupancy",
			zap.String("component", r.Name()),
			zap.Int("live", r.Len()),
			zap.Int("capacity", r.Capacity()),
		)
	}
}
