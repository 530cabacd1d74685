package component

import (
	"errors"
	"time"

	"github.com/l1jgo/ecsengine/internal/core/ecs"
)

// Health destroys its entity when Current drops to zero.
type Health struct {
	Current float64
	Max     float64
	Regen   float64 // per second
}

func (h *Health) Load(_ *ecs.Context, p ecs.Payload) error {
	var raw struct {
		Current *float64 `yaml:"current"`
		Max     *float64 `yaml:"max"`
		Regen   *float64 `yaml:"regen"`
	}
	if err := p.Decode(&raw); err != nil {
		return err
	}
	next := *h
	if raw.Max != nil {
		next.Max = *raw.Max
	}
	if raw.Regen != nil {
		next.Regen = *raw.Regen
	}
	if raw.Current != nil {
		next.Current = *raw.Current
	} else if h.Max == 0 {
		next.Current = next.Max
	}
	if next.Max <= 0 {
		return errors.New("health: max must be positive")
	}
	if next.Current > next.Max {
		next.Current = next.Max
	}
	*h = next
	return nil
}

// Damage subtracts amount and reports whether the entity is now dead.
func (h *Health) Damage(amount float64) bool {
	h.Current -= amount
	return h.Current <= 0
}

func (h *Health) Update(ctx *ecs.Context, dt time.Duration) {
	if h.Current <= 0 {
		destroyOwner(ctx)
		return
	}
	if h.Regen > 0 && h.Current < h.Max {
		h.Current += h.Regen * dt.Seconds()
		if h.Current > h.Max {
			h.Current = h.Max
		}
	}
}

// destroyOwner queues the owning entity, or the component itself when it
// has no owner.
func destroyOwner(ctx *ecs.Context) {
	if ctx.World.IsValid(ctx.Owner) {
		ctx.World.QueueDestroy(ctx.Owner)
		return
	}
	ctx.World.QueueDestroy(ctx.Self)
}
