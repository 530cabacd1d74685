package system

import (
	"time"

	"github.com/l1jgo/ecsengine/internal/core/ecs"
	"github.com/l1jgo/ecsengine/internal/core/event"
	coresys "github.com/l1jgo/ecsengine/internal/core/system"
)

// EventDispatchSystem delivers last frame's events at the start of a frame.
// Phase 0 (Events).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseEvents }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}

// BridgeLifecycle forwards registry create/destroy notifications of w to
// the bus as ComponentCreated / ComponentDestroyed events.
func BridgeLifecycle(w *ecs.World, bus *event.Bus) {
	w.OnCreated(func(h ecs.Handle) {
		event.Emit(bus, event.ComponentCreated{Handle: h})
	})
	w.OnDestroyed(func(h, owner ecs.Handle) {
		event.Emit(bus, event.ComponentDestroyed{Handle: h, Owner: owner})
	})
}
