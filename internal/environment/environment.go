// Package environment implements Environment: the evaluator's mutable
// context — the active Space, rule retrieval by head symbol (delegated
// to Space, see below), a type subindex derived by prefix restriction,
// module and memoization state, and a CoW ownership bit.
//
// Rule storage lives on space.Space itself rather than being
// duplicated here: Space already maintains the head-symbol index as
// the single source of truth, so Environment's rule-cache
// responsibility is satisfied by delegating to the active Space
// rather than keeping a second, independently-invalidated copy.
package environment

import (
	"context"
	"log/slog"

	"github.com/F1R3FLY-io/mettatron/internal/factindex"
	"github.com/F1R3FLY-io/mettatron/internal/memo"
	"github.com/F1R3FLY-io/mettatron/internal/module"
	"github.com/F1R3FLY-io/mettatron/internal/rule"
	"github.com/F1R3FLY-io/mettatron/internal/space"
	"github.com/F1R3FLY-io/mettatron/internal/term"
)

// typePrefix is the encoded "(: " used to restrict the FactIndex to
// type-assertion terms.
var typePrefix = term.EncodePrefix([]term.Term{term.Symbol(":")})

// Environment is the evaluator's mutable context.
type Environment struct {
	spc *space.Space

	// owned is the CoW ownership bit: false means
	// memoTables is still shared with at least one sibling clone and
	// must be copied before the next mutation.
	owned      bool
	memoTables map[string]*memo.Table

	typeIndex *factindex.Index
	typeDirty bool

	modules module.Registry
	logger  *slog.Logger
}

// New returns an Environment rooted at spc with the given module
// registry (may be nil) and logger (nil defaults to slog.Default()).
func New(spc *space.Space, modules module.Registry, logger *slog.Logger) *Environment {
	if logger == nil {
		logger = slog.Default()
	}
	return &Environment{
		spc:        spc,
		owned:      true,
		memoTables: make(map[string]*memo.Table),
		typeDirty:  true,
		modules:    modules,
		logger:     logger,
	}
}

// Space returns the active primary Space (conventionally "&self").
func (e *Environment) Space() *space.Space { return e.spc }

// Modules returns the module registry reference.
func (e *Environment) Modules() module.Registry { return e.modules }

// Logger returns the Environment's logger.
func (e *Environment) Logger() *slog.Logger { return e.logger }

// Fork produces a branch-local Environment: the active Space is forked
// (O(1), see package space), and this Environment's own mutable
// interior (the memo-table set) is marked shared on both sides, so
// each side copies the map on its own first mutation. The copy is
// shallow: the memo tables themselves stay shared.
func (e *Environment) Fork() *Environment {
	e.owned = false
	return &Environment{
		spc:        e.spc.Fork(),
		owned:      false,
		memoTables: e.memoTables,
		typeIndex:  e.typeIndex,
		typeDirty:  e.typeDirty,
		modules:    e.modules,
		logger:     e.logger,
	}
}

// makeOwned ensures e exclusively owns memoTables before a mutation,
// copying it if it is still shared with a sibling clone.
func (e *Environment) makeOwned() {
	if e.owned {
		return
	}
	next := make(map[string]*memo.Table, len(e.memoTables))
	for k, v := range e.memoTables {
		next[k] = v
	}
	e.memoTables = next
	e.owned = true
}

// AddFact stores t in the primary Space and invalidates the type
// subindex.
func (e *Environment) AddFact(t term.Term) {
	e.spc.AddFact(t)
	e.typeDirty = true
}

// RemoveFact removes t from the primary Space and invalidates the type
// subindex.
func (e *Environment) RemoveFact(t term.Term) bool {
	removed := e.spc.RemoveFact(t)
	e.typeDirty = true
	return removed
}

// AddRule adds r to the primary Space's rule list. Rules are added
// when a top-level expression of shape (=, pattern, body) is
// evaluated; they are never removed.
func (e *Environment) AddRule(r rule.Rule) {
	e.spc.AddRule(r)
}

// RulesFor returns every rule dispatch must consider for an
// expression headed by head: the rules indexed under head plus every
// sentinel (variable/wildcard-headed) rule.
func (e *Environment) RulesFor(head string) []rule.Rule {
	byHead := e.spc.RulesForHead(head)
	sentinel := e.spc.SentinelRules()
	if len(sentinel) == 0 {
		return byHead
	}
	out := make([]rule.Rule, 0, len(byHead)+len(sentinel))
	out = append(out, byHead...)
	out = append(out, sentinel...)
	return out
}

// AddType records a type assertion `(: name typ)` as a fact and
// invalidates the type subindex.
func (e *Environment) AddType(name string, typ term.Term) {
	e.AddFact(term.NewExpr(term.Symbol(":"), term.Symbol(name), typ))
}

// ensureTypeIndex rebuilds the type subindex if dirty.
func (e *Environment) ensureTypeIndex() {
	if !e.typeDirty {
		return
	}
	e.typeIndex = e.spc.Facts().Restrict(typePrefix)
	e.typeDirty = false
	if e.logger.Enabled(context.Background(), slog.LevelDebug) {
		e.logger.Debug("environment.type_index.rebuilt", "entries", e.typeIndex.Len())
	}
}

// TypeOf looks up the declared type of name: `(: name typ)`. The fast
// path descends the type subindex to the encoded prefix of
// `(: name)`; on a miss it falls back to a linear scan of the primary
// Space, kept as a defensive safety net rather than a performance
// target.
func (e *Environment) TypeOf(name string) (term.Term, bool) {
	e.ensureTypeIndex()
	prefix := term.EncodePrefix([]term.Term{term.Symbol(":"), term.Symbol(name)})
	sub := e.typeIndex.Restrict(prefix)

	var found term.Term
	ok := false
	sub.Iter(func(t term.Term) bool {
		if ex, isExpr := t.(term.Expr); isExpr && len(ex.Items) == 3 {
			found, ok = ex.Items[2], true
		}
		return false
	})
	if ok {
		return found, true
	}
	return e.typeOfLinear(name)
}

func (e *Environment) typeOfLinear(name string) (term.Term, bool) {
	var found term.Term
	ok := false
	e.spc.Iter(func(t term.Term) bool {
		ex, isExpr := t.(term.Expr)
		if !isExpr || len(ex.Items) != 3 {
			return true
		}
		head, isHead := ex.Items[0].(term.Symbol)
		sym, isSym := ex.Items[1].(term.Symbol)
		if isHead && head == ":" && isSym && string(sym) == name {
			found, ok = ex.Items[2], true
			return false
		}
		return true
	})
	return found, ok
}

// MemoTable returns the named memo table, creating it with
// memo.DefaultCapacity if it does not yet exist.
func (e *Environment) MemoTable(name string) *memo.Table {
	if t, ok := e.memoTables[name]; ok {
		return t
	}
	e.makeOwned()
	t := memo.New(name, memo.DefaultCapacity, e.logger)
	e.memoTables[name] = t
	return t
}

// Union performs a monotonic (non-CoW) merge of a and b's facts and
// rules into a fresh Environment. This is a
// convenience for combining module-loaded Environments with the
// session Environment; it is not on the hot nondeterministic-branching
// path, which uses Fork instead.
func Union(a, b *Environment) *Environment {
	merged := space.New(a.spc.Name(), a.logger)
	a.spc.Iter(func(t term.Term) bool { merged.AddFact(t); return true })
	b.spc.Iter(func(t term.Term) bool { merged.AddFact(t); return true })
	for _, r := range a.spc.AllRules() {
		merged.AddRule(r)
	}
	for _, r := range b.spc.AllRules() {
		merged.AddRule(r)
	}
	return New(merged, a.modules, a.logger)
}
