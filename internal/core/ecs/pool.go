package ecs

import (
	"reflect"
	"time"
	"unsafe"
)

// Pool is the fixed-size backing storage for one component kind. Objects
// live at the internal indices their Registry assigns and move when the
// registry compacts, so a *T is only good until the next destroy of this
// kind; hold the Handle instead.
type Pool[T any] struct {
	*Registry

	items []T
	ctor  func(*T)

	hasLoad, hasAttach, hasUpdate, hasDestroy bool
}

// PoolOption configures a Pool at creation.
type PoolOption[T any] func(*Pool[T])

// WithConstructor runs fn on every freshly zeroed object before its handle
// is returned from CreateHandle.
func WithConstructor[T any](fn func(*T)) PoolOption[T] {
	return func(p *Pool[T]) { p.ctor = fn }
}

// NewPool creates an unregistered pool. Register it in a Directory, then
// Init it with a capacity.
func NewPool[T any](name string, opts ...PoolOption[T]) *Pool[T] {
	p := &Pool[T]{}
	p.Registry = newRegistry(name, p)
	for _, opt := range opts {
		opt(p)
	}

	probe := any((*T)(nil))
	_, p.hasLoad = probe.(Loader)
	_, p.hasAttach = probe.(Attacher)
	_, p.hasUpdate = probe.(Updater)
	_, p.hasDestroy = probe.(Destroyer)
	return p
}

// Get resolves h to its object, or nil if h is stale or of another kind.
func (p *Pool[T]) Get(h Handle) *T {
	i, ok := p.internalOf(h)
	if !ok {
		return nil
	}
	return &p.items[i]
}

// HandleOf is the inverse of Get. It returns InvalidHandle for pointers
// outside the live range of this pool. Zero-sized T has no distinct
// addresses and always yields InvalidHandle.
func (p *Pool[T]) HandleOf(ptr *T) Handle {
	size := unsafe.Sizeof(*new(T))
	if ptr == nil || size == 0 || p.live == 0 {
		return InvalidHandle
	}
	base := uintptr(unsafe.Pointer(&p.items[0]))
	addr := uintptr(unsafe.Pointer(ptr))
	if addr < base {
		return InvalidHandle
	}
	off := addr - base
	if off%size != 0 || off/size >= uintptr(p.live) {
		return InvalidHandle
	}
	return p.handleAt(uint32(off / size))
}

// Each calls fn for every live object in internal-index order.
func (p *Pool[T]) Each(fn func(Handle, *T)) {
	p.traversals++
	defer func() { p.traversals-- }()
	n := p.live
	for i := uint32(0); i < n; i++ {
		fn(p.handleAt(i), &p.items[i])
	}
}

func (p *Pool[T]) goType() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }
func (p *Pool[T]) registry() *Registry  { return p.Registry }

func (p *Pool[T]) init(capacity int) {
	p.items = make([]T, capacity)
}

func (p *Pool[T]) construct(i uint32) {
	var zero T
	p.items[i] = zero
	if p.ctor != nil {
		p.ctor(&p.items[i])
	}
}

func (p *Pool[T]) clear(i uint32) {
	var zero T
	p.items[i] = zero
}

func (p *Pool[T]) move(dst, src uint32) {
	p.items[dst] = p.items[src]
}

func (p *Pool[T]) load(i uint32, ctx *Context, pl Payload) error {
	if !p.hasLoad {
		return nil
	}
	return any(&p.items[i]).(Loader).Load(ctx, pl)
}

func (p *Pool[T]) attach(i uint32, ctx *Context) {
	if p.hasAttach {
		any(&p.items[i]).(Attacher).OnAttach(ctx)
	}
}

func (p *Pool[T]) update(i uint32, ctx *Context, dt time.Duration) {
	any(&p.items[i]).(Updater).Update(ctx, dt)
}

func (p *Pool[T]) release(i uint32, ctx *Context) {
	if p.hasDestroy {
		any(&p.items[i]).(Destroyer).OnDestroy(ctx)
	}
}

func (p *Pool[T]) updates() bool { return p.hasUpdate }
