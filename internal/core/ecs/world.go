package ecs

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// World is the top-level ECS container. It owns the directory, the entity
// pool and a deferred destruction queue flushed by CleanupSystem each frame.
type World struct {
	dir          *Directory
	entities     *Pool[Entity]
	names        map[string]Handle
	destroyQueue []Handle
	log          *zap.Logger

	onCreated   []func(Handle)
	onDestroyed []func(h, owner Handle)
}

// NewWorld creates a world whose directory already holds the entity kind.
func NewWorld(log *zap.Logger) *World {
	if log == nil {
		log = zap.NewNop()
	}
	w := &World{
		dir:          NewDirectory(),
		entities:     NewPool[Entity](EntityKind),
		names:        make(map[string]Handle, 64),
		destroyQueue: make([]Handle, 0, 64),
		log:          log,
	}
	w.dir.world = w
	if _, err := w.dir.Register(w.entities); err != nil {
		panic(err) // empty directory
	}
	return w
}

func (w *World) Directory() *Directory   { return w.dir }
func (w *World) Entities() *Pool[Entity] { return w.entities }
func (w *World) Logger() *zap.Logger     { return w.log }
func (w *World) IsValid(h Handle) bool   { return w.dir.IsValid(h) }

// Register adds a component kind; see Directory.Register.
func (w *World) Register(s Storage) error {
	_, err := w.dir.Register(s)
	return err
}

// Init initializes every registry that is not yet initialized, taking its
// capacity from capacities by (case-folded) name or falling back to def.
func (w *World) Init(capacities map[string]int, def int) error {
	sized := make(map[*Registry]int, len(capacities))
	for name, c := range capacities {
		r := w.dir.ByName(name)
		if r == nil {
			w.log.Warn("capacity for unknown component ignored", zap.String("component", name))
			continue
		}
		sized[r] = c
	}
	for _, r := range w.dir.Registries() {
		if r.Initialized() {
			continue
		}
		capacity := def
		if c, ok := sized[r]; ok {
			capacity = c
		}
		if err := r.Init(capacity); err != nil {
			return err
		}
		w.log.Debug("registry initialized",
			zap.String("component", r.name),
			zap.Uint8("type", uint8(r.typ)),
			zap.Int("capacity", capacity),
		)
	}
	return nil
}

// CreateEntity creates an empty entity. A non-empty name must be unused.
func (w *World) CreateEntity(name string) (Handle, error) {
	if name != "" {
		if h, ok := w.names[name]; ok && w.entities.IsValid(h) {
			return InvalidHandle, fmt.Errorf("create entity %q: %w", name, ErrDuplicateName)
		}
	}
	h, err := w.entities.CreateHandle()
	if err != nil {
		return InvalidHandle, err
	}
	e := w.entities.Get(h)
	e.world = w
	e.self = h
	e.name = name
	if name != "" {
		w.names[name] = h
	}
	return h, nil
}

// Entity resolves h, or returns nil if it is not a live entity.
func (w *World) Entity(h Handle) *Entity { return w.entities.Get(h) }

// Named returns the live entity registered under name, or InvalidHandle.
func (w *World) Named(name string) Handle {
	h, ok := w.names[name]
	if !ok || !w.entities.IsValid(h) {
		return InvalidHandle
	}
	return h
}

// Owner returns the owner recorded for h, or InvalidHandle.
func (w *World) Owner(h Handle) Handle {
	r := w.dir.ByType(h.Type())
	if r == nil {
		return InvalidHandle
	}
	return r.GetOwner(h)
}

// Destroy retires h immediately. Not allowed from inside Update; see
// QueueDestroy.
func (w *World) Destroy(h Handle) {
	if r := w.dir.ByType(h.Type()); r != nil {
		r.DestroyHandle(h)
	}
}

// QueueDestroy defers the destruction of h to the end of the frame.
func (w *World) QueueDestroy(h Handle) {
	w.destroyQueue = append(w.destroyQueue, h)
}

// Pending returns the number of queued destructions.
func (w *World) Pending() int { return len(w.destroyQueue) }

// FlushDestroyQueue destroys all queued handles and returns how many were
// still live. Destructions queued while flushing run in the same flush.
func (w *World) FlushDestroyQueue() int {
	n := 0
	for i := 0; i < len(w.destroyQueue); i++ {
		h := w.destroyQueue[i]
		if !w.dir.IsValid(h) {
			continue
		}
		w.Destroy(h)
		n++
	}
	w.destroyQueue = w.destroyQueue[:0]
	return n
}

// UpdateAll runs UpdateAll on every registry in type id order.
func (w *World) UpdateAll(dt time.Duration) {
	for _, r := range w.dir.Registries() {
		r.UpdateAll(dt)
	}
}

// OnCreated registers fn to run after every successful CreateHandle.
func (w *World) OnCreated(fn func(Handle)) { w.onCreated = append(w.onCreated, fn) }

// OnDestroyed registers fn to run after every destroy, with the owner the
// handle had at that moment.
func (w *World) OnDestroyed(fn func(h, owner Handle)) {
	w.onDestroyed = append(w.onDestroyed, fn)
}

func (w *World) created(h Handle) {
	for _, fn := range w.onCreated {
		fn(h)
	}
}

func (w *World) destroyed(h, owner Handle) {
	if e := w.entities.Get(owner); e != nil {
		e.detach(h)
	}
	for _, fn := range w.onDestroyed {
		fn(h, owner)
	}
}
