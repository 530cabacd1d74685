package ecs

import (
	"fmt"
	"reflect"

	"golang.org/x/text/cases"
)

// Storage is anything registrable in a Directory; every *Pool[T] is one.
type Storage interface {
	registry() *Registry
	goType() reflect.Type
}

// Directory resolves registries by type id, by Go type and by name. Names
// are matched case-insensitively. Type ids are handed out in registration
// order starting at 1.
type Directory struct {
	world  *World
	fold   cases.Caser
	next   TypeID
	byType [MaxTypes]*Registry
	byName map[string]*Registry
	byGo   map[reflect.Type]*Registry
}

func NewDirectory() *Directory {
	return &Directory{
		fold:   cases.Fold(),
		next:   1,
		byName: make(map[string]*Registry, 16),
		byGo:   make(map[reflect.Type]*Registry, 16),
	}
}

// Register assigns the next type id to s and indexes it. Names must be
// unique after case folding and every Go type may be registered once.
func (d *Directory) Register(s Storage) (TypeID, error) {
	r := s.registry()
	if r.typ != 0 {
		return 0, fmt.Errorf("register %s: already registered as type %d", r.name, r.typ)
	}
	key := d.fold.String(r.name)
	if key == "" {
		return 0, fmt.Errorf("register: empty component name")
	}
	if _, ok := d.byName[key]; ok {
		return 0, fmt.Errorf("register %s: %w", r.name, ErrDuplicateName)
	}
	gt := s.goType()
	if prev, ok := d.byGo[gt]; ok {
		return 0, fmt.Errorf("register %s: type %s already registered as %s", r.name, gt, prev.name)
	}
	if int(d.next) >= MaxTypes {
		return 0, fmt.Errorf("register %s: %w (max %d)", r.name, ErrTooManyTypes, MaxTypes-1)
	}

	r.typ = d.next
	r.dir = d
	d.next++
	d.byType[r.typ] = r
	d.byName[key] = r
	d.byGo[gt] = r
	return r.typ, nil
}

// ByType returns the registry for t, or nil.
func (d *Directory) ByType(t TypeID) *Registry {
	if int(t) >= MaxTypes {
		return nil
	}
	return d.byType[t]
}

// ByName returns the registry registered under name, or nil.
func (d *Directory) ByName(name string) *Registry {
	return d.byName[d.fold.String(name)]
}

// Registries returns every registry in type id order.
func (d *Directory) Registries() []*Registry {
	out := make([]*Registry, 0, int(d.next)-1)
	for t := TypeID(1); t < d.next; t++ {
		out = append(out, d.byType[t])
	}
	return out
}

// IsValid checks h against the registry of its own type.
func (d *Directory) IsValid(h Handle) bool {
	r := d.ByType(h.Type())
	return r != nil && r.IsValid(h)
}

// PoolOf returns the pool registered for T, or nil.
func PoolOf[T any](d *Directory) *Pool[T] {
	r := d.byGo[reflect.TypeOf((*T)(nil)).Elem()]
	if r == nil {
		return nil
	}
	p, _ := r.store.(*Pool[T])
	return p
}

// TypeOf returns the type id registered for T, or 0.
func TypeOf[T any](d *Directory) TypeID {
	if r := d.byGo[reflect.TypeOf((*T)(nil)).Elem()]; r != nil {
		return r.typ
	}
	return 0
}
