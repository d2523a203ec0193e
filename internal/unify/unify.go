// Package unify implements the pattern-matching Unifier:
// match(pattern, subject, bindings) -> Option<bindings>.
package unify

import (
	"github.com/F1R3FLY-io/mettatron/internal/bindings"
	"github.com/F1R3FLY-io/mettatron/internal/term"
)

// Match attempts to unify pattern against subject given an incoming
// Bindings, in this order:
//
//  1. Wildcard matches anything; bindings unchanged.
//  2. A bound Variable requires the existing binding to be
//     structurally equal to subject (no re-unification); an unbound
//     Variable binds to subject.
//  3. Both ground of equal primitive kind require equality.
//  4. Both Expressions require equal length and elementwise match,
//     threading bindings left to right.
//  5. Every other combination fails.
//
// Failure is a plain (Bindings{}, false) outcome, never an error — the
// Unifier is pure and allocates only when a new binding is actually
// added.
func Match(pattern, subject term.Term, in bindings.Bindings) (bindings.Bindings, bool) {
	if _, ok := pattern.(term.Wildcard); ok {
		return in, true
	}

	if v, ok := pattern.(term.Variable); ok {
		if existing, bound := in.Get(v); bound {
			if term.StructuralEqual(existing, subject) {
				return in, true
			}
			return bindings.Bindings{}, false
		}
		return bindings.Insert(in, v, subject, term.StructuralEqual)
	}

	pe, pIsExpr := pattern.(term.Expr)
	se, sIsExpr := subject.(term.Expr)
	if pIsExpr && sIsExpr {
		if len(pe.Items) != len(se.Items) {
			return bindings.Bindings{}, false
		}
		cur := in
		for i := range pe.Items {
			next, ok := Match(pe.Items[i], se.Items[i], cur)
			if !ok {
				return bindings.Bindings{}, false
			}
			cur = next
		}
		return cur, true
	}
	if pIsExpr != sIsExpr {
		return bindings.Bindings{}, false
	}

	if pattern.Kind() != subject.Kind() {
		return bindings.Bindings{}, false
	}
	if term.StructuralEqual(pattern, subject) {
		return in, true
	}
	return bindings.Bindings{}, false
}

// Substitute replaces every Variable in t with its bound value from b,
// leaving unbound Variables (and Wildcards) untouched. This realizes
// "substituting bindings into a term" used throughout the Evaluator.
func Substitute(t term.Term, b bindings.Bindings) term.Term {
	switch v := t.(type) {
	case term.Variable:
		if val, ok := b.Get(v); ok {
			return val
		}
		return v
	case term.Expr:
		items := make([]term.Term, len(v.Items))
		changed := false
		for i, it := range v.Items {
			items[i] = Substitute(it, b)
			if !term.StructuralEqual(items[i], it) {
				changed = true
			}
		}
		if !changed {
			return v
		}
		return term.Expr{Items: items}
	default:
		return t
	}
}
