// Package factindex implements the FactIndex: a trie
// keyed by the canonical byte encoding of a Term, supporting insert,
// remove, presence check, full iteration, and prefix-restricted
// subtree lookup (used to build the type subindex).
//
// The trie is backed by github.com/hashicorp/go-immutable-radix/v2, a
// persistent (copy-on-write) radix tree. Every mutating method returns
// a new *Index sharing unmodified structure with the receiver — this
// is what makes Space.Fork O(1) (see package space): a fork is just
// holding onto the *Index value at fork time while the original
// continues to mutate independently.
package factindex

import (
	iradix "github.com/hashicorp/go-immutable-radix/v2"

	"github.com/F1R3FLY-io/mettatron/internal/term"
)

// Index is an immutable snapshot of a FactIndex. The zero value is not
// valid; use New.
type Index struct {
	tree *iradix.Tree[term.Term]
}

// New returns an empty Index.
func New() *Index {
	return &Index{tree: iradix.New[term.Term]()}
}

// Insert returns a new Index with t stored under its canonical
// encoding. Inserting a term that is already present is a no-op value
// equality-wise, but still returns a fresh (structurally identical)
// Index, matching the underlying tree's CoW contract.
func (ix *Index) Insert(t term.Term) *Index {
	txn := ix.tree.Txn()
	txn.Insert(term.Encode(t), t)
	return &Index{tree: txn.Commit()}
}

// Remove returns a new Index with t's key removed, and whether t was
// present beforehand.
func (ix *Index) Remove(t term.Term) (*Index, bool) {
	txn := ix.tree.Txn()
	_, removed := txn.Delete(term.Encode(t))
	return &Index{tree: txn.Commit()}, removed
}

// Contains reports whether t's encoded key is present.
func (ix *Index) Contains(t term.Term) bool {
	_, ok := ix.tree.Get(term.Encode(t))
	return ok
}

// Len reports the number of stored terms.
func (ix *Index) Len() int { return ix.tree.Len() }

// Iter calls fn for every stored term in trie (lexicographic
// encoding) order. Iteration stops early if fn returns false.
func (ix *Index) Iter(fn func(term.Term) bool) {
	it := ix.tree.Root().Iterator()
	for {
		_, v, ok := it.Next()
		if !ok {
			return
		}
		if !fn(v) {
			return
		}
	}
}

// All materializes every stored term into a slice, in iteration order.
func (ix *Index) All() []term.Term {
	out := make([]term.Term, 0, ix.tree.Len())
	ix.Iter(func(t term.Term) bool {
		out = append(out, t)
		return true
	})
	return out
}

// Restrict returns a new Index containing only the terms whose
// encoded key carries prefix as a byte-prefix. This is how the type
// subindex is built from the `(: name)` prefix.
func (ix *Index) Restrict(prefix []byte) *Index {
	it := ix.tree.Root().Iterator()
	it.SeekPrefix(prefix)

	sub := iradix.New[term.Term]()
	txn := sub.Txn()
	for {
		k, v, ok := it.Next()
		if !ok {
			break
		}
		txn.Insert(k, v)
	}
	return &Index{tree: txn.Commit()}
}
