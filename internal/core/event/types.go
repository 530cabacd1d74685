package event

import (
	"github.com/google/uuid"

	"github.com/l1jgo/ecsengine/internal/core/ecs"
)

// Lifecycle events. Emitted during frame N, dispatched at the start of N+1.

type ComponentCreated struct {
	Handle ecs.Handle
}

type ComponentDestroyed struct {
	Handle ecs.Handle
	Owner  ecs.Handle
}

// EntityComposed is emitted once per entity touched by a composition batch,
// after that batch's OnAttach pass.
type EntityComposed struct {
	Entity  ecs.Handle
	Name    string
	BatchID uuid.UUID
	Batch   string
}
