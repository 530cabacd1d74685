package ecs

import "fmt"

// Handle packs a component type, an external slot index and a generation
// into one 32-bit value:
//
//	| generation (11) | external index (14) | type (7) |
//
// Type 0 is never assigned, so the zero Handle is always invalid.
type Handle uint32

// TypeID identifies a registered component kind. 0 means "invalid".
type TypeID uint8

const (
	TypeBits       = 7
	IndexBits      = 14
	GenerationBits = 32 - TypeBits - IndexBits

	MaxTypes       = 1 << TypeBits
	MaxCapacity    = 1 << IndexBits
	GenerationSpan = 1 << GenerationBits

	typeMask       = MaxTypes - 1
	indexMask      = MaxCapacity - 1
	generationMask = GenerationSpan - 1

	indexShift      = TypeBits
	generationShift = TypeBits + IndexBits
)

// InvalidHandle is the zero Handle.
const InvalidHandle Handle = 0

func NewHandle(t TypeID, index, generation uint32) Handle {
	return Handle(uint32(t)&typeMask |
		(index&indexMask)<<indexShift |
		(generation&generationMask)<<generationShift)
}

func (h Handle) Type() TypeID       { return TypeID(uint32(h) & typeMask) }
func (h Handle) Index() uint32      { return uint32(h) >> indexShift & indexMask }
func (h Handle) Generation() uint32 { return uint32(h) >> generationShift }
func (h Handle) IsZero() bool       { return h.Type() == 0 }

// Less orders handles by type, external index and then generation. Across
// different slots the result is arbitrary but stable; for one slot it tells
// an older issuance from a newer one (modulo wraparound).
func (h Handle) Less(o Handle) bool {
	if h.Type() != o.Type() {
		return h.Type() < o.Type()
	}
	if h.Index() != o.Index() {
		return h.Index() < o.Index()
	}
	return h.Generation() < o.Generation()
}

func (h Handle) String() string {
	if h.IsZero() {
		return "invalid"
	}
	return fmt.Sprintf("%d:%d@%d", h.Type(), h.Index(), h.Generation())
}
