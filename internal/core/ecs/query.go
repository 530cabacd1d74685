package ecs

// Resolve returns the object behind h if it is a live T, else nil.
func Resolve[T any](w *World, h Handle) *T {
	p := PoolOf[T](w.dir)
	if p == nil {
		return nil
	}
	return p.Get(h)
}

// Sibling returns the T component owned by the same entity as h, or
// InvalidHandle.
func Sibling[T any](w *World, h Handle) Handle {
	e := w.Entity(w.Owner(h))
	if e == nil {
		return InvalidHandle
	}
	return Get[T](e)
}

// Each2 iterates over entities owning both an A and a B. It walks the
// smaller pool densely and resolves the other side through the owner.
func Each2[A, B any](w *World, fn func(owner Handle, a *A, b *B)) {
	pa, pb := PoolOf[A](w.dir), PoolOf[B](w.dir)
	if pa == nil || pb == nil {
		return
	}
	if pa.Len() <= pb.Len() {
		pa.Each(func(h Handle, a *A) {
			owner := pa.GetOwner(h)
			if e := w.Entity(owner); e != nil {
				if b := pb.Get(Get[B](e)); b != nil {
					fn(owner, a, b)
				}
			}
		})
		return
	}
	pb.Each(func(h Handle, b *B) {
		owner := pb.GetOwner(h)
		if e := w.Entity(owner); e != nil {
			if a := pa.Get(Get[A](e)); a != nil {
				fn(owner, a, b)
			}
		}
	})
}
