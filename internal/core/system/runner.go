package system

import (
	"sort"
	"time"
)

// Runner executes systems in phase order each frame. Systems of one phase
// run in registration order.
type Runner struct {
	systems []System
	sorted  bool
	frames  uint64

	lastFrame time.Duration
	busy      time.Duration
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 16),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	start := time.Now()
	for _, s := range r.systems {
		s.Update(dt)
	}
	r.lastFrame = time.Since(start)
	r.busy += r.lastFrame
	r.frames++
}

// Frames returns the number of completed Tick calls.
func (r *Runner) Frames() uint64 { return r.frames }

// LastFrame is the wall time the previous Tick spent in systems.
func (r *Runner) LastFrame() time.Duration { return r.lastFrame }

// MeanFrame averages LastFrame over every Tick so far.
func (r *Runner) MeanFrame() time.Duration {
	if r.frames == 0 {
		return 0
	}
	return r.busy / time.Duration(r.frames)
}

// TickPhase runs only the systems of one phase.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
