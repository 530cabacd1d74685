package system

import "time"

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhaseEvents     Phase = iota // 0: dispatch last frame's events
	PhaseUpdate                  // 1: per-pool update passes
	PhasePostUpdate              // 2: work that reads the frame's results
	PhaseCleanup                 // 3: drain the deferred destroy queue
)

// System is the interface every frame-loop system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
