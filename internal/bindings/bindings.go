// Package bindings implements the Variable -> Term map threaded
// through unification and evaluation. The representation
// is size-adaptive: absent, a single inline pair, or a heap-allocated
// slice for two or more entries. Callers must not
// depend on which shape backs a given value — Bindings is immutable
// from the outside; every mutating method returns a new value, the
// same convention the rest of the engine uses for CoW-friendly data.
package bindings

import "github.com/F1R3FLY-io/mettatron/internal/term"

// smallCap is the initial capacity of the slice allocated when a
// second name is bound. The slice lives on the heap from the start;
// there is no inline array, and each later Insert copies the entries
// into a new slice one element larger.
const smallCap = 8

// pair is a name/value entry; kept as its own type so Small's slice
// has a concrete element type instead of two parallel slices.
type pair struct {
	name  term.Variable
	value term.Term
}

// shape tags which of the three representations b currently holds.
type shape uint8

const (
	shapeEmpty shape = iota
	shapeSingle
	shapeSmall
)

// Bindings is a finite map from Variable name to Term. A name is
// bound at most once: a later Insert of the same name succeeds only
// with a structurally equal value (see Insert).
type Bindings struct {
	kind   shape
	single pair
	small  []pair
}

// Empty is the zero-value Bindings (no entries, no heap traffic).
var Empty = Bindings{}

// Get returns the Term bound to name, if any.
func (b Bindings) Get(name term.Variable) (term.Term, bool) {
	switch b.kind {
	case shapeSingle:
		if b.single.name == name {
			return b.single.value, true
		}
		return nil, false
	case shapeSmall:
		for _, p := range b.small {
			if p.name == name {
				return p.value, true
			}
		}
		return nil, false
	default:
		return nil, false
	}
}

// Len reports the number of bound names.
func (b Bindings) Len() int {
	switch b.kind {
	case shapeSingle:
		return 1
	case shapeSmall:
		return len(b.small)
	default:
		return 0
	}
}

// IsEmpty reports whether b has no entries.
func (b Bindings) IsEmpty() bool { return b.kind == shapeEmpty }

// Insert returns a new Bindings with name bound to value. If name is
// already bound, the existing value must be structurally equal to
// value (ok=false otherwise) — a binding is never silently
// overwritten with a different value; that is a match failure at the
// Unifier layer, not an update.
func Insert(b Bindings, name term.Variable, value term.Term, equal func(a, c term.Term) bool) (Bindings, bool) {
	switch b.kind {
	case shapeEmpty:
		return Bindings{kind: shapeSingle, single: pair{name, value}}, true

	case shapeSingle:
		if b.single.name == name {
			if equal(b.single.value, value) {
				return b, true
			}
			return b, false
		}
		small := make([]pair, 0, smallCap)
		small = append(small, b.single, pair{name, value})
		return Bindings{kind: shapeSmall, small: small}, true

	case shapeSmall:
		for _, p := range b.small {
			if p.name == name {
				if equal(p.value, value) {
					return b, true
				}
				return b, false
			}
		}
		next := make([]pair, len(b.small), cap(b.small)+1)
		copy(next, b.small)
		next = append(next, pair{name, value})
		return Bindings{kind: shapeSmall, small: next}, true

	default:
		return b, false
	}
}

// Shape identifiers exposed only for tests that must exercise all
// three representations.
type Shape = shape

const (
	ShapeEmpty  Shape = shapeEmpty
	ShapeSingle Shape = shapeSingle
	ShapeSmall  Shape = shapeSmall
)

// DebugShape reports which representation b currently holds.
func DebugShape(b Bindings) Shape { return b.kind }

// Range calls fn for every bound name/value pair in an unspecified but
// stable-for-a-given-value order. Range stops early if fn returns
// false.
func Range(b Bindings, fn func(name term.Variable, value term.Term) bool) {
	switch b.kind {
	case shapeSingle:
		fn(b.single.name, b.single.value)
	case shapeSmall:
		for _, p := range b.small {
			if !fn(p.name, p.value) {
				return
			}
		}
	}
}
