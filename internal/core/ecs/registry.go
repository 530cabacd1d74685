package ecs

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

const noSlot = math.MaxUint32

var nopLogger = zap.NewNop()

type slot struct {
	internal   uint32 // position in dense storage, noSlot when free
	nextFree   uint32
	owner      Handle
	generation uint32
	dying      bool
}

// Registry is the slot map of one component kind. It maps external indices
// (the ones handles carry) to internal indices in its store, recycles free
// external slots through a FIFO free list and keeps internal storage dense
// by moving the last live object into every hole a destroy leaves.
type Registry struct {
	name     string
	typ      TypeID
	dir      *Directory
	store    store
	capacity int
	live     uint32

	slots   []slot
	reverse []uint32 // internal → external, dense over [0, live)

	freeHead uint32
	freeTail uint32

	traversals int // nesting depth of UpdateAll/Each
}

func newRegistry(name string, s store) *Registry {
	return &Registry{
		name:     name,
		store:    s,
		freeHead: noSlot,
		freeTail: noSlot,
	}
}

func (r *Registry) Name() string      { return r.name }
func (r *Registry) Type() TypeID      { return r.typ }
func (r *Registry) Capacity() int     { return r.capacity }
func (r *Registry) Len() int          { return int(r.live) }
func (r *Registry) Initialized() bool { return r.slots != nil }

// Init allocates capacity slots chained into the free list, all at
// generation 1. The registry must already be registered in a Directory.
func (r *Registry) Init(capacity int) error {
	if r.typ == 0 {
		return fmt.Errorf("init %s: %w", r.name, ErrNotRegistered)
	}
	if r.slots != nil {
		return fmt.Errorf("init %s: %w", r.name, ErrAlreadyInitialized)
	}
	if capacity <= 0 || capacity > MaxCapacity {
		return fmt.Errorf("init %s: %w: %d (max %d)", r.name, ErrInvalidCapacity, capacity, MaxCapacity)
	}

	r.slots = make([]slot, capacity)
	r.reverse = make([]uint32, capacity)
	for i := range r.slots {
		r.slots[i] = slot{internal: noSlot, nextFree: uint32(i) + 1, generation: 1}
		r.reverse[i] = noSlot
	}
	r.slots[capacity-1].nextFree = noSlot
	r.freeHead = 0
	r.freeTail = uint32(capacity - 1)
	r.capacity = capacity
	r.store.init(capacity)
	return nil
}

// CreateHandle pops the head of the free list and constructs a fresh object
// at the end of dense storage. On a full registry it returns
// ErrCapacityExhausted and changes nothing.
func (r *Registry) CreateHandle() (Handle, error) {
	if r.slots == nil {
		return InvalidHandle, fmt.Errorf("create %s: %w", r.name, ErrNotInitialized)
	}
	if r.freeHead == noSlot || int(r.live) >= r.capacity {
		return InvalidHandle, fmt.Errorf("create %s: %w (capacity %d)", r.name, ErrCapacityExhausted, r.capacity)
	}

	ext := r.freeHead
	s := &r.slots[ext]
	r.freeHead = s.nextFree
	if r.freeHead == noSlot {
		r.freeTail = noSlot
	}
	s.nextFree = noSlot
	s.internal = r.live
	s.owner = InvalidHandle
	r.reverse[r.live] = ext
	r.store.construct(r.live)
	r.live++

	h := NewHandle(r.typ, ext, s.generation)
	if w := r.world(); w != nil {
		w.created(h)
	}
	return h, nil
}

// MustCreate is CreateHandle for callers that treat exhaustion as fatal.
func (r *Registry) MustCreate() Handle {
	h, err := r.CreateHandle()
	if err != nil {
		panic(err)
	}
	return h
}

// DestroyHandle retires h: every copy of it turns stale, its external slot
// goes to the tail of the free list and the last live object is moved into
// the vacated internal slot. Destroying an invalid handle is a no-op.
//
// Structural mutation during UpdateAll of the same registry panics.
func (r *Registry) DestroyHandle(h Handle) {
	if !r.IsValid(h) {
		return
	}
	if r.traversals > 0 {
		panic(fmt.Sprintf("ecs: destroy %s on %s during update; use World.QueueDestroy", h, r.name))
	}
	ext := h.Index()
	if r.slots[ext].dying {
		return
	}
	r.slots[ext].dying = true
	owner := r.slots[ext].owner

	// The hook may create or destroy other objects of this kind, so the
	// internal index is read after it returns.
	ctx := r.context(h, owner)
	r.store.release(r.slots[ext].internal, &ctx)

	s := &r.slots[ext]
	internal := s.internal
	last := r.live - 1
	if internal != last {
		r.store.move(internal, last)
		moved := r.reverse[last]
		r.reverse[internal] = moved
		r.slots[moved].internal = internal
	}
	r.store.clear(last)
	r.reverse[last] = noSlot
	r.live--

	s.generation = (s.generation + 1) & generationMask
	s.internal = noSlot
	s.owner = InvalidHandle
	s.dying = false
	s.nextFree = noSlot
	if r.freeTail == noSlot {
		r.freeHead = ext
	} else {
		r.slots[r.freeTail].nextFree = ext
	}
	r.freeTail = ext

	if w := r.world(); w != nil {
		w.destroyed(h, owner)
	}
}

// IsValid reports whether h was issued by this registry and has not been
// destroyed since.
func (r *Registry) IsValid(h Handle) bool {
	if h.Type() != r.typ || r.typ == 0 {
		return false
	}
	ext := h.Index()
	if int(ext) >= len(r.slots) {
		return false
	}
	s := &r.slots[ext]
	if s.generation != h.Generation() || s.internal >= r.live {
		return false
	}
	return r.reverse[s.internal] == ext
}

// SetOwner records the aggregate owning item. item must be valid.
func (r *Registry) SetOwner(item, owner Handle) {
	if !r.IsValid(item) {
		panic(fmt.Sprintf("ecs: set owner of invalid handle %s on %s", item, r.name))
	}
	r.slots[item.Index()].owner = owner
}

// GetOwner returns the owner of item, or InvalidHandle if item is stale.
func (r *Registry) GetOwner(item Handle) Handle {
	if !r.IsValid(item) {
		return InvalidHandle
	}
	return r.slots[item.Index()].owner
}

// UpdateAll calls Update on every live object in internal-index order.
// Objects created during the pass are appended and first visited next pass.
func (r *Registry) UpdateAll(dt time.Duration) {
	if r.live == 0 || !r.store.updates() {
		return
	}
	r.traversals++
	defer func() { r.traversals-- }()

	ctx := r.context(InvalidHandle, InvalidHandle)
	n := r.live
	for i := uint32(0); i < n; i++ {
		ext := r.reverse[i]
		ctx.Self = NewHandle(r.typ, ext, r.slots[ext].generation)
		ctx.Owner = r.slots[ext].owner
		r.store.update(i, &ctx, dt)
	}
}

// Each calls fn with the handle of every live object in internal-index
// order. Structural mutation from fn follows the UpdateAll rules.
func (r *Registry) Each(fn func(Handle)) {
	r.traversals++
	defer func() { r.traversals-- }()
	n := r.live
	for i := uint32(0); i < n; i++ {
		ext := r.reverse[i]
		fn(NewHandle(r.typ, ext, r.slots[ext].generation))
	}
}

// Load dispatches p to the Loader of h.
func (r *Registry) Load(h Handle, p Payload) error {
	internal, ok := r.internalOf(h)
	if !ok {
		panic(fmt.Sprintf("ecs: load into invalid handle %s on %s", h, r.name))
	}
	ctx := r.context(h, r.slots[h.Index()].owner)
	return r.store.load(internal, &ctx, p)
}

// Attach dispatches OnAttach to h.
func (r *Registry) Attach(h Handle) {
	internal, ok := r.internalOf(h)
	if !ok {
		panic(fmt.Sprintf("ecs: attach invalid handle %s on %s", h, r.name))
	}
	ctx := r.context(h, r.slots[h.Index()].owner)
	r.store.attach(internal, &ctx)
}

func (r *Registry) internalOf(h Handle) (uint32, bool) {
	if !r.IsValid(h) {
		return 0, false
	}
	return r.slots[h.Index()].internal, true
}

// handleAt returns the handle of the object at internal index i.
func (r *Registry) handleAt(i uint32) Handle {
	if i >= r.live {
		return InvalidHandle
	}
	ext := r.reverse[i]
	return NewHandle(r.typ, ext, r.slots[ext].generation)
}

func (r *Registry) world() *World {
	if r.dir == nil {
		return nil
	}
	return r.dir.world
}

func (r *Registry) context(self, owner Handle) Context {
	ctx := Context{Self: self, Owner: owner}
	if w := r.world(); w != nil {
		ctx.World = w
		ctx.Log = w.log
	} else {
		ctx.Log = nopLogger
	}
	return ctx
}
