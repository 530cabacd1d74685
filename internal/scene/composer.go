package scene

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/l1jgo/ecsengine/internal/core/ecs"
	"github.com/l1jgo/ecsengine/internal/core/event"
)

// Composer builds entities from batches in two passes: every record of the
// batch is loaded, then every touched entity is attached.
type Composer struct {
	world *ecs.World
	bus   *event.Bus
	log   *zap.Logger
}

// NewComposer returns a composer for w. bus may be nil.
func NewComposer(w *ecs.World, bus *event.Bus, log *zap.Logger) *Composer {
	return &Composer{world: w, bus: bus, log: log}
}

// Compose applies b and returns the entities it touched, in first-touch
// order. Bad records are skipped with a warning; the only error is running
// out of capacity, after which the batch is left half built and is not
// attached.
func (c *Composer) Compose(b *Batch) ([]ecs.Handle, error) {
	touched := make([]ecs.Handle, 0, len(b.Entities))
	seen := make(map[ecs.Handle]bool, len(b.Entities))

	for i := range b.Entities {
		def := &b.Entities[i]
		h, err := c.entityFor(def.Name)
		if err != nil {
			return touched, fmt.Errorf("batch %s: entity %q: %w", b.Name, def.Name, err)
		}
		if err := c.world.Entity(h).Load(def.Records); err != nil {
			return touched, fmt.Errorf("batch %s: %w", b.Name, err)
		}
		if !seen[h] {
			seen[h] = true
			touched = append(touched, h)
		}
	}

	for _, h := range touched {
		e := c.world.Entity(h)
		if e == nil {
			continue
		}
		e.OnAttach()
		event.Emit(c.bus, event.EntityComposed{
			Entity:  h,
			Name:    e.Name(),
			BatchID: b.ID,
			Batch:   b.Name,
		})
	}

	c.log.Debug("batch composed",
		zap.String("batch", b.Name),
		zap.Stringer("id", b.ID),
		zap.Int("entities", len(touched)),
	)
	return touched, nil
}

// ComposeAll composes batches in order and stops at the first error.
func (c *Composer) ComposeAll(batches []*Batch) (int, error) {
	n := 0
	for _, b := range batches {
		hs, err := c.Compose(b)
		n += len(hs)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func (c *Composer) entityFor(name string) (ecs.Handle, error) {
	if name != "" {
		if h := c.world.Named(name); h != ecs.InvalidHandle {
			return h, nil
		}
	}
	return c.world.CreateEntity(name)
}
