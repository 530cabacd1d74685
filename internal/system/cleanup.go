package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/ecsengine/internal/core/ecs"
	coresys "github.com/l1jgo/ecsengine/internal/core/system"
)

// CleanupSystem flushes the deferred destruction queue at frame end, after
// every update pass of the frame has finished.
// Phase 3 (Cleanup).
type CleanupSystem struct {
	world *ecs.World
	log   *zap.Logger
}

func NewCleanupSystem(world *ecs.World, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{world: world, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	queued := s.world.Pending()
	if queued == 0 {
		return
	}
	n := s.world.FlushDestroyQueue()
	s.log.Debug("destroy queue flushed", zap.Int("queued", queued), zap.Int("destroyed", n))
}
