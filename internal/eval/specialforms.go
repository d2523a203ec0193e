package eval

import (
	"github.com/F1R3FLY-io/mettatron/internal/bindings"
	"github.com/F1R3FLY-io/mettatron/internal/environment"
	"github.com/F1R3FLY-io/mettatron/internal/memo"
	"github.com/F1R3FLY-io/mettatron/internal/space"
	"github.com/F1R3FLY-io/mettatron/internal/statecell"
	"github.com/F1R3FLY-io/mettatron/internal/term"
	"github.com/F1R3FLY-io/mettatron/internal/unify"
)

// specialFormFn is the handler for one head symbol recognized before
// grounded/rule dispatch: forms that do not uniformly evaluate every
// argument first.
type specialFormFn func(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term

var specialForms map[string]specialFormFn

func init() {
	specialForms = map[string]specialFormFn{
		"quote":         evalQuote,
		"if":            evalIf,
		"case":          evalCase,
		"match":         evalMatch,
		"let":           evalLet,
		"let*":          evalLetStar,
		"chain":         evalChain,
		"collapse":      evalCollapse,
		"superpose":     evalSuperpose,
		"=":             evalDefineRule,
		"!":             evalDirective,
		"error":         evalError,
		"is-error":      evalIsError,
		"catch":         evalCatch,
		":":             evalTypeAssert,
		"get-type":      evalGetType,
		"check-type":    evalCheckType,
		"get-metatype":  evalGetMetatype,
		"new-space":     evalNewSpace,
		"add-atom":      evalAddAtom,
		"remove-atom":   evalRemoveAtom,
		"get-atoms":     evalGetAtoms,
		"new-state":     evalNewState,
		"get-state":     evalGetState,
		"change-state!": evalChangeState,
		"new-memo":      evalNewMemo,
		"memo":          evalMemo,
		"memo-first":    evalMemoFirst,
		"bind!":         evalBindBang,
		"function":      evalFunction,
		"return":        evalReturn,
	}
}

func arityErr(name string, want, got int) []term.Term {
	return []term.Term{term.NewError(name+": expected "+term.Int(want).String()+" argument(s), got "+term.Int(got).String(), term.Nil{})}
}

// evalQuote returns its argument verbatim, unevaluated.
func evalQuote(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 2 {
		return arityErr("quote", 1, len(e.Items)-1)
	}
	return []term.Term{e.Items[1]}
}

// evalIf evaluates the condition, then only the selected branch. Each
// nondeterministic branch of the condition selects its own then/else
// independently.
func evalIf(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 4 {
		return arityErr("if", 3, len(e.Items)-1)
	}
	conds := ev.Eval(e.Items[1], env)
	var results []term.Term
	for _, c := range conds {
		b, ok := c.(term.Bool)
		if !ok {
			results = append(results, term.NewError("if: condition is not Bool", c))
			continue
		}
		if bool(b) {
			results = append(results, ev.Eval(e.Items[2], env.Fork())...)
		} else {
			results = append(results, ev.Eval(e.Items[3], env.Fork())...)
		}
	}
	return results
}

// evalCase evaluates the scrutinee once, then tries each (pattern
// body) clause in declared order; the first whose pattern unifies
// evaluates its body.
func evalCase(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 3 {
		return arityErr("case", 2, len(e.Items)-1)
	}
	clausesExpr, ok := e.Items[2].(term.Expr)
	if !ok {
		return []term.Term{term.NewError("case: clause list must be an Expression", e.Items[2])}
	}

	scrutinees := ev.Eval(e.Items[1], env)
	var results []term.Term
	for _, s := range scrutinees {
		matched := false
		for _, clauseTerm := range clausesExpr.Items {
			clause, ok := clauseTerm.(term.Expr)
			if !ok || len(clause.Items) != 2 {
				continue
			}
			b, ok := unify.Match(clause.Items[0], s, bindings.Empty)
			if !ok {
				continue
			}
			matched = true
			body := unify.Substitute(clause.Items[1], b)
			results = append(results, ev.Eval(body, env.Fork())...)
			break
		}
		if !matched {
			// No clause matched: pattern failure propagates as
			// Empty, not an error.
			continue
		}
	}
	return results
}

// resolveSpace evaluates t to a SpaceHandle and unwraps it, with
// "&self" resolving directly to env's primary Space without a general
// evaluation round-trip.
func resolveSpace(ev *Evaluator, t term.Term, env *environment.Environment) (*space.Space, bool) {
	if sym, ok := t.(term.Symbol); ok && sym == "&self" {
		return env.Space(), true
	}
	vals := ev.Eval(t, env)
	if len(vals) != 1 {
		return nil, false
	}
	h, ok := vals[0].(term.SpaceHandle)
	if !ok {
		return nil, false
	}
	spc, ok := h.Ref.(*space.Space)
	return spc, ok
}

// evalMatch implements the Space-query form: `(match SPACE pattern
// template)` or `(match SPACE pattern template default)`.
func evalMatch(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 4 && len(e.Items) != 5 {
		return arityErr("match", 3, len(e.Items)-1)
	}
	spc, ok := resolveSpace(ev, e.Items[1], env)
	if !ok {
		return []term.Term{term.NewError("match: first argument is not a Space", e.Items[1])}
	}

	var results []term.Term
	spc.Iter(func(fact term.Term) bool {
		b, ok := unify.Match(e.Items[2], fact, bindings.Empty)
		if ok {
			results = append(results, unify.Substitute(e.Items[3], b))
		}
		return true
	})
	if len(results) == 0 && len(e.Items) == 5 {
		return []term.Term{e.Items[4]}
	}
	return results
}

// evalLet evaluates the bound expression once, unifies pattern against
// each of its branches, and evaluates body with the bindings
// substituted in.
func evalLet(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 4 {
		return arityErr("let", 3, len(e.Items)-1)
	}
	pattern, bound, body := e.Items[1], e.Items[2], e.Items[3]
	boundVals := ev.Eval(bound, env)

	var results []term.Term
	for _, v := range boundVals {
		b, ok := unify.Match(pattern, v, bindings.Empty)
		if !ok {
			continue
		}
		substituted := unify.Substitute(body, b)
		results = append(results, ev.Eval(substituted, env)...)
	}
	return results
}

// evalLetStar threads a sequence of (pattern expr) bindings, each
// substituted into the remaining bindings and the body before the next
// is evaluated.
func evalLetStar(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 3 {
		return arityErr("let*", 2, len(e.Items)-1)
	}
	bindingsExpr, ok := e.Items[1].(term.Expr)
	if !ok {
		return []term.Term{term.NewError("let*: binding list must be an Expression", e.Items[1])}
	}
	return letStarStep(ev, bindingsExpr.Items, e.Items[2], env)
}

func letStarStep(ev *Evaluator, pairs []term.Term, body term.Term, env *environment.Environment) []term.Term {
	if len(pairs) == 0 {
		return ev.Eval(body, env)
	}
	pair, ok := pairs[0].(term.Expr)
	if !ok || len(pair.Items) != 2 {
		return []term.Term{term.NewError("let*: malformed binding", pairs[0])}
	}
	pattern, bound := pair.Items[0], pair.Items[1]
	boundVals := ev.Eval(bound, env)

	var results []term.Term
	for _, v := range boundVals {
		b, ok := unify.Match(pattern, v, bindings.Empty)
		if !ok {
			continue
		}
		rest := make([]term.Term, len(pairs)-1)
		for i, p := range pairs[1:] {
			rest[i] = unify.Substitute(p, b)
		}
		results = append(results, letStarStep(ev, rest, unify.Substitute(body, b), env)...)
	}
	return results
}

// evalChain is explicit sequencing: evaluate expr to a value, bind it,
// evaluate body.
func evalChain(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 4 {
		return arityErr("chain", 3, len(e.Items)-1)
	}
	expr, v, body := e.Items[1], e.Items[2], e.Items[3]
	vv, ok := v.(term.Variable)
	if !ok {
		return []term.Term{term.NewError("chain: second argument must be a Variable", v)}
	}

	vals := ev.Eval(expr, env)
	var results []term.Term
	for _, val := range vals {
		b, _ := bindings.Insert(bindings.Empty, vv, val, term.StructuralEqual)
		substituted := unify.Substitute(body, b)
		results = append(results, ev.Eval(substituted, env)...)
	}
	return results
}

// evalCollapse force-evaluates its body and materializes every
// nondeterministic result into one Expression.
func evalCollapse(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 2 {
		return arityErr("collapse", 1, len(e.Items)-1)
	}
	vals := ev.Eval(e.Items[1], env)
	return []term.Term{term.NewExpr(vals...)}
}

// evalSuperpose is the explicit choice point over a literal list of
// alternatives, also known as amb: each list element is its own
// branch, forked so side effects stay isolated.
func evalSuperpose(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 2 {
		return arityErr("superpose", 1, len(e.Items)-1)
	}
	alts, ok := e.Items[1].(term.Expr)
	if !ok {
		return []term.Term{term.NewError("superpose: argument must be an Expression of alternatives", e.Items[1])}
	}
	var results []term.Term
	for _, alt := range alts.Items {
		results = append(results, ev.Eval(alt, env.Fork())...)
	}
	return results
}

// evalDefineRule registers `(= pattern body)` as a rule on the active
// Space.
func evalDefineRule(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 3 {
		return arityErr("=", 2, len(e.Items)-1)
	}
	env.AddRule(ruleOf(e.Items[1], e.Items[2]))
	return []term.Term{term.Unit{}}
}

// evalDirective marks a top-level expression for REPL printing; at the
// core evaluator layer it is transparent.
func evalDirective(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 2 {
		return arityErr("!", 1, len(e.Items)-1)
	}
	return ev.Eval(e.Items[1], env)
}

// evalError constructs an Error term from a message and a detail term.
func evalError(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 3 {
		return arityErr("error", 2, len(e.Items)-1)
	}
	msgVals := ev.Eval(e.Items[1], env)
	detailVals := ev.Eval(e.Items[2], env)
	var results []term.Term
	for _, m := range msgVals {
		msg := m.String()
		if s, ok := m.(term.String); ok {
			msg = string(s)
		}
		for _, d := range detailVals {
			results = append(results, term.NewError(msg, d))
		}
	}
	return results
}

// evalIsError is a total True/False predicate that never itself errors.
func evalIsError(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 2 {
		return arityErr("is-error", 1, len(e.Items)-1)
	}
	vals := ev.Eval(e.Items[1], env)
	results := make([]term.Term, len(vals))
	for i, v := range vals {
		_, isErr := v.(term.Error)
		results[i] = term.Bool(isErr)
	}
	return results
}

// evalCatch reduces handler in body's place for every branch that
// reduced to an Error; other branches pass through unchanged.
func evalCatch(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 3 {
		return arityErr("catch", 2, len(e.Items)-1)
	}
	bodyVals := ev.Eval(e.Items[1], env)
	var results []term.Term
	for _, v := range bodyVals {
		if _, isErr := v.(term.Error); isErr {
			results = append(results, ev.Eval(e.Items[2], env.Fork())...)
			continue
		}
		results = append(results, v)
	}
	return results
}

// evalTypeAssert records `(: name type)` as a type-subindex fact and
// returns Unit.
func evalTypeAssert(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 3 {
		return arityErr(":", 2, len(e.Items)-1)
	}
	name, ok := e.Items[1].(term.Symbol)
	if !ok {
		return []term.Term{term.NewError(": name must be a Symbol", e.Items[1])}
	}
	env.AddType(string(name), e.Items[2])
	return []term.Term{term.Unit{}}
}

// evalGetType looks up a declared type; an undeclared name yields no
// result (pattern failure, not an error).
func evalGetType(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 2 {
		return arityErr("get-type", 1, len(e.Items)-1)
	}
	name, ok := e.Items[1].(term.Symbol)
	if !ok {
		return []term.Term{term.NewError("get-type: argument must be a Symbol", e.Items[1])}
	}
	typ, ok := env.TypeOf(string(name))
	if !ok {
		return nil
	}
	return []term.Term{typ}
}

// evalCheckType compares a term's declared type (if any) against an
// expected type expression; without a full type-checker this performs
// the structural comparison a checked operation can afford.
func evalCheckType(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 3 {
		return arityErr("check-type", 2, len(e.Items)-1)
	}
	name, ok := e.Items[1].(term.Symbol)
	if !ok {
		return []term.Term{term.NewError("check-type: first argument must be a Symbol", e.Items[1])}
	}
	expected := e.Items[2]
	typ, ok := env.TypeOf(string(name))
	if !ok {
		return []term.Term{term.NewError("check-type: no type declared for "+string(name), e.Items[1])}
	}
	return []term.Term{term.Bool(term.StructuralEqual(typ, expected))}
}

// evalGetMetatype returns a Symbol naming the evaluated term's Kind.
func evalGetMetatype(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 2 {
		return arityErr("get-metatype", 1, len(e.Items)-1)
	}
	vals := ev.Eval(e.Items[1], env)
	results := make([]term.Term, len(vals))
	for i, v := range vals {
		results[i] = term.Symbol(v.Kind().String())
	}
	return results
}

// evalNewSpace allocates a fresh, empty Space.
func evalNewSpace(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	spc := space.New("anonymous", env.Logger())
	return []term.Term{term.SpaceHandle{Ref: spc}}
}

// evalAddAtom modifies the SpaceHandle's state. For &self in a forked
// branch it modifies only that branch's fork of the primary Space; a
// Space created by new-space is not forked with the branch, so atoms
// added to it are visible to every holder of the handle.
func evalAddAtom(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 3 {
		return arityErr("add-atom", 2, len(e.Items)-1)
	}
	spc, ok := resolveSpace(ev, e.Items[1], env)
	if !ok {
		return []term.Term{term.NewError("add-atom: first argument is not a Space", e.Items[1])}
	}
	atoms := ev.Eval(e.Items[2], env)
	for _, a := range atoms {
		spc.AddFact(a)
	}
	return []term.Term{term.Unit{}}
}

func evalRemoveAtom(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 3 {
		return arityErr("remove-atom", 2, len(e.Items)-1)
	}
	spc, ok := resolveSpace(ev, e.Items[1], env)
	if !ok {
		return []term.Term{term.NewError("remove-atom: first argument is not a Space", e.Items[1])}
	}
	atoms := ev.Eval(e.Items[2], env)
	for _, a := range atoms {
		spc.RemoveFact(a)
	}
	return []term.Term{term.Unit{}}
}

// evalGetAtoms returns the current collapse of a Space.
func evalGetAtoms(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 2 {
		return arityErr("get-atoms", 1, len(e.Items)-1)
	}
	spc, ok := resolveSpace(ev, e.Items[1], env)
	if !ok {
		return []term.Term{term.NewError("get-atoms: argument is not a Space", e.Items[1])}
	}
	return []term.Term{term.NewExpr(spc.Collapse()...)}
}

// evalNewState returns a fresh cell bound to v.
func evalNewState(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 2 {
		return arityErr("new-state", 1, len(e.Items)-1)
	}
	vals := ev.Eval(e.Items[1], env)
	results := make([]term.Term, len(vals))
	for i, v := range vals {
		results[i] = term.StateCell{Ref: statecell.New(v)}
	}
	return results
}

func resolveCell(ev *Evaluator, t term.Term, env *environment.Environment) (*statecell.Cell, bool) {
	vals := ev.Eval(t, env)
	if len(vals) != 1 {
		return nil, false
	}
	h, ok := vals[0].(term.StateCell)
	if !ok {
		return nil, false
	}
	c, ok := h.Ref.(*statecell.Cell)
	return c, ok
}

// evalGetState reads the current value.
func evalGetState(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 2 {
		return arityErr("get-state", 1, len(e.Items)-1)
	}
	c, ok := resolveCell(ev, e.Items[1], env)
	if !ok {
		return []term.Term{term.NewError("get-state: argument is not a StateCell", e.Items[1])}
	}
	return []term.Term{c.Get()}
}

// evalChangeState writes a new value, visible to every holder of the
// cell across branches.
func evalChangeState(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 3 {
		return arityErr("change-state!", 2, len(e.Items)-1)
	}
	c, ok := resolveCell(ev, e.Items[1], env)
	if !ok {
		return []term.Term{term.NewError("change-state!: first argument is not a StateCell", e.Items[1])}
	}
	vals := ev.Eval(e.Items[2], env)
	results := make([]term.Term, len(vals))
	for i, v := range vals {
		c.Set(v)
		results[i] = term.Unit{}
	}
	return results
}

// evalNewMemo returns the named memo table, creating it on first use.
func evalNewMemo(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 2 {
		return arityErr("new-memo", 1, len(e.Items)-1)
	}
	name, ok := e.Items[1].(term.Symbol)
	if !ok {
		return []term.Term{term.NewError("new-memo: argument must be a Symbol", e.Items[1])}
	}
	table := env.MemoTable(string(name))
	return []term.Term{term.MemoHandle{Ref: table}}
}

func resolveMemo(ev *Evaluator, t term.Term, env *environment.Environment) (*memo.Table, bool) {
	vals := ev.Eval(t, env)
	if len(vals) != 1 {
		return nil, false
	}
	h, ok := vals[0].(term.MemoHandle)
	if !ok {
		return nil, false
	}
	tbl, ok := h.Ref.(*memo.Table)
	return tbl, ok
}

// evalMemo evaluates expr once per structurally-distinct key and
// caches every result; a later call with a structurally equal expr
// returns the cached results without reducing.
func evalMemo(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 3 {
		return arityErr("memo", 2, len(e.Items)-1)
	}
	tbl, ok := resolveMemo(ev, e.Items[1], env)
	if !ok {
		return []term.Term{term.NewError("memo: first argument is not a MemoTable", e.Items[1])}
	}
	key := term.StructuralHash(e.Items[2])
	if entry, found := tbl.Lookup(key); found {
		return entry.Results
	}
	results := ev.Eval(e.Items[2], env)
	tbl.Store(key, memo.Entry{Results: results})
	return results
}

// evalMemoFirst is memo but caches only the first result.
func evalMemoFirst(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 3 {
		return arityErr("memo-first", 2, len(e.Items)-1)
	}
	tbl, ok := resolveMemo(ev, e.Items[1], env)
	if !ok {
		return []term.Term{term.NewError("memo-first: first argument is not a MemoTable", e.Items[1])}
	}
	key := term.StructuralHash(e.Items[2])
	if entry, found := tbl.Lookup(key); found {
		return entry.Results
	}
	results := ev.Eval(e.Items[2], env)
	if len(results) > 1 {
		results = results[:1]
	}
	tbl.Store(key, memo.Entry{Results: results})
	return results
}

// evalBindBang binds a top-level name to the first result of value as
// a rule `(= name value)` on the current Space, a REPL-session
// convenience.
func evalBindBang(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 3 {
		return arityErr("bind!", 2, len(e.Items)-1)
	}
	name, ok := e.Items[1].(term.Symbol)
	if !ok {
		return []term.Term{term.NewError("bind!: first argument must be a Symbol", e.Items[1])}
	}
	vals := ev.Eval(e.Items[2], env)
	if len(vals) == 0 {
		return nil
	}
	env.AddRule(ruleOf(name, vals[0]))
	return []term.Term{term.Unit{}}
}

// evalFunction evaluates body, unwrapping an early `(return v)` result
// into v.
func evalFunction(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 2 {
		return arityErr("function", 1, len(e.Items)-1)
	}
	vals := ev.Eval(e.Items[1], env)
	results := make([]term.Term, len(vals))
	for i, v := range vals {
		if ex, ok := v.(term.Expr); ok && len(ex.Items) == 2 {
			if head, ok := ex.Items[0].(term.Symbol); ok && head == "return" {
				results[i] = ex.Items[1]
				continue
			}
		}
		results[i] = v
	}
	return results
}

// evalReturn is recognized by evalFunction; outside of a function body
// it passes its value through unchanged.
func evalReturn(ev *Evaluator, e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) != 2 {
		return arityErr("return", 1, len(e.Items)-1)
	}
	return []term.Term{e.Items[1]}
}
