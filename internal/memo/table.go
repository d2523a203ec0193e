// Package memo implements MemoTable: a named cache keyed by a term's
// structural hash, eviction LRU with an
// optional bound. Backed by github.com/hashicorp/golang-lru/v2.
package memo

import (
	"log/slog"
	"sync/atomic"

	"github.com/hashicorp/golang-lru/v2"

	"github.com/F1R3FLY-io/mettatron/internal/term"
)

// DefaultCapacity is used when a memo table is created without an
// explicit bound.
const DefaultCapacity = 4096

var idSeq atomic.Uint64

func nextID() uint64 { return idSeq.Add(1) }

// Entry is a cached evaluation outcome: every result Term produced the
// first time the memoized expression was reduced.
type Entry struct {
	Results []term.Term
}

// Table is a named, LRU-evicted memoization cache.
type Table struct {
	id     uint64
	name   string
	cache  *lru.Cache[term.Hash, Entry]
	logger *slog.Logger
}

// New returns a Table named name with the given capacity (DefaultCapacity
// if capacity <= 0).
func New(name string, capacity int, logger *slog.Logger) *Table {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	cache, err := lru.New[term.Hash, Entry](capacity)
	if err != nil {
		// Only invalid (<=0) size can fail here, and we already
		// normalized capacity above.
		panic(err)
	}
	return &Table{id: nextID(), name: name, cache: cache, logger: logger}
}

// Lookup returns the cached Entry for key, if present.
func (t *Table) Lookup(key term.Hash) (Entry, bool) {
	return t.cache.Get(key)
}

// Store records e under key, possibly evicting the least-recently-used
// entry.
func (t *Table) Store(key term.Hash, e Entry) {
	t.cache.Add(key, e)
	t.logger.Debug("memo.store", "table", t.name, "results", len(e.Results))
}

// Name is the table's identifier.
func (t *Table) Name() string { return t.name }

// Len reports the number of cached entries.
func (t *Table) Len() int { return t.cache.Len() }

// term.Handle implementation.
func (t *Table) HandleKind() term.Kind { return term.KindMemo }
func (t *Table) HandleID() uint64      { return t.id }
func (t *Table) HandleString() string  { return "&memo:" + t.name }
