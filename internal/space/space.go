// Package space implements Space: a handle to a set
// of stored terms (facts) and rules with copy-on-write forking.
//
// Facts are backed by factindex.Index, itself a persistent radix tree.
// Because every Index mutation already returns an independent value
// sharing unmodified structure with its predecessor, Fork is O(1): it
// copies the two tree pointers into a brand-new *Space, and neither
// the parent nor any sibling fork is affected by subsequent mutation —
// there is no separate overlay/tombstone structure to maintain, even
// across a fork-of-a-fork.
package space

import (
	"log/slog"
	"sync"
	"sync/atomic"

	iradix "github.com/hashicorp/go-immutable-radix/v2"

	"github.com/F1R3FLY-io/mettatron/internal/factindex"
	"github.com/F1R3FLY-io/mettatron/internal/rule"
	"github.com/F1R3FLY-io/mettatron/internal/term"
)

var idSeq atomic.Uint64

func nextID() uint64 { return idSeq.Add(1) }

// Space is a mutable handle over an immutable snapshot of facts and
// rules. Mutating methods swap the handle's interior pointers under a
// lock; they never mutate the pointed-to trees in place, so any
// *Space obtained via Fork before the mutation is unaffected.
type Space struct {
	mu   sync.Mutex
	id   uint64
	name string

	facts *factindex.Index
	rules *iradix.Tree[rule.Rule]
	seq   uint64

	ruleDirty bool
	byHead    map[string][]rule.Rule
	sentinel  []rule.Rule

	logger *slog.Logger
}

// New returns a fresh, empty, named Space.
func New(name string, logger *slog.Logger) *Space {
	if logger == nil {
		logger = slog.Default()
	}
	return &Space{
		id:        nextID(),
		name:      name,
		facts:     factindex.New(),
		rules:     iradix.New[rule.Rule](),
		ruleDirty: true,
		logger:    logger,
	}
}

// Fork returns a new Space handle sharing the current base facts and
// rules by reference; it is O(1). Mutations on
// the fork never touch s.
func (s *Space) Fork() *Space {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Debug("space.fork", "from", s.id, "name", s.name)
	return &Space{
		id:        nextID(),
		name:      s.name,
		facts:     s.facts,
		rules:     s.rules,
		seq:       s.seq,
		ruleDirty: true,
		logger:    s.logger,
	}
}

// ID is the handle's unique identity, used for equality of SpaceHandle
// terms and for logging.
func (s *Space) ID() uint64 { return s.id }

// Name is the space's informative name (e.g. "self"; HandleString
// adds the "&" prefix).
func (s *Space) Name() string { return s.name }

// term.Handle implementation, so a *Space can be embedded directly as
// a term.SpaceHandle without an import cycle between term and space.
func (s *Space) HandleKind() term.Kind   { return term.KindSpace }
func (s *Space) HandleID() uint64        { return s.id }
func (s *Space) HandleString() string    { return "&" + s.name }

// AddFact stores t.
func (s *Space) AddFact(t term.Term) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facts = s.facts.Insert(t)
}

// RemoveFact removes t, reporting whether it had been present.
func (s *Space) RemoveFact(t term.Term) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, removed := s.facts.Remove(t)
	s.facts = next
	return removed
}

// Contains reports whether t is currently stored.
func (s *Space) Contains(t term.Term) bool {
	s.mu.Lock()
	ix := s.facts
	s.mu.Unlock()
	return ix.Contains(t)
}

// Iter enumerates every stored fact.
func (s *Space) Iter(fn func(term.Term) bool) {
	s.mu.Lock()
	ix := s.facts
	s.mu.Unlock()
	ix.Iter(fn)
}

// Collapse materializes every live atom into a slice; its elements
// must equal the multiset enumerated by Iter.
func (s *Space) Collapse() []term.Term {
	s.mu.Lock()
	ix := s.facts
	s.mu.Unlock()
	return ix.All()
}

// Facts returns the current immutable snapshot of the fact trie, for
// callers (the type subindex) that need to Restrict() it directly.
func (s *Space) Facts() *factindex.Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.facts
}

// AddRule appends r to the rule list and invalidates the head-symbol
// index.
func (s *Space) AddRule(r rule.Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn := s.rules.Txn()
	var seqKey [8]byte
	putUint64(seqKey[:], s.seq)
	s.seq++
	txn.Insert(seqKey[:], r)
	s.rules = txn.Commit()
	s.ruleDirty = true
}

// RulesForHead returns the rules indexed under head, not including the
// sentinel (variable/wildcard-headed) bucket — callers combine the two.
func (s *Space) RulesForHead(head string) []rule.Rule {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureRuleIndexLocked()
	return s.byHead[head]
}

// SentinelRules returns every rule whose LHS head is a Variable or
// Wildcard; these are consulted on every dispatch regardless of the
// query's head symbol.
func (s *Space) SentinelRules() []rule.Rule {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureRuleIndexLocked()
	return s.sentinel
}

// AllRules returns every rule in insertion order.
func (s *Space) AllRules() []rule.Rule {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]rule.Rule, 0, s.rules.Len())
	it := s.rules.Root().Iterator()
	for {
		_, v, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

// ensureRuleIndexLocked rebuilds the head-symbol index if dirty. Must
// be called with s.mu held.
func (s *Space) ensureRuleIndexLocked() {
	if !s.ruleDirty {
		return
	}
	byHead := make(map[string][]rule.Rule)
	var sentinel []rule.Rule
	it := s.rules.Root().Iterator()
	for {
		_, r, ok := it.Next()
		if !ok {
			break
		}
		key := rule.HeadKey(r)
		if key == rule.Sentinel {
			sentinel = append(sentinel, r)
			continue
		}
		byHead[key] = append(byHead[key], r)
	}
	s.byHead = byHead
	s.sentinel = sentinel
	s.ruleDirty = false
}

func putUint64(b []byte, v uint64) {
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}
