// Package statecell implements StateCell: a reference-shared mutable single-term container that
// deliberately escapes Space's copy-on-write isolation. Writes are
// visible to every holder, even across nondeterministic branches,
// because cells model top-level mutable configuration rather than
// branch-local state.
package statecell

import (
	"sync"
	"sync/atomic"

	"github.com/F1R3FLY-io/mettatron/internal/term"
)

var idSeq atomic.Uint64

func nextID() uint64 { return idSeq.Add(1) }

// Cell is a mutable, reference-shared single-term container.
type Cell struct {
	mu    sync.Mutex
	id    uint64
	value term.Term
}

// New returns a fresh Cell bound to v.
func New(v term.Term) *Cell {
	return &Cell{id: nextID(), value: v}
}

// Get reads the current value.
func (c *Cell) Get() term.Term {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set writes a new value, visible to every holder of c.
func (c *Cell) Set(v term.Term) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = v
}

// term.Handle implementation.
func (c *Cell) HandleKind() term.Kind { return term.KindState }
func (c *Cell) HandleID() uint64      { return c.id }
func (c *Cell) HandleString() string  { return "&state" }
