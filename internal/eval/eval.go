// Package eval implements the reduction loop: dispatch on term head,
// consult the grounded registry, match against rules, and manage
// nondeterminism and error propagation.
package eval

import (
	"github.com/F1R3FLY-io/mettatron/internal/bindings"
	"github.com/F1R3FLY-io/mettatron/internal/environment"
	"github.com/F1R3FLY-io/mettatron/internal/grounded"
	"github.com/F1R3FLY-io/mettatron/internal/rule"
	"github.com/F1R3FLY-io/mettatron/internal/term"
	"github.com/F1R3FLY-io/mettatron/internal/unify"
)

// Evaluator carries the state shared across a reduction session: the
// grounded operation registry and a persistent worker pool for
// parallel sibling reduction above arityParallelThreshold.
type Evaluator struct {
	grounded               *grounded.Registry
	pool                   *workerPool
	arityParallelThreshold int
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithGroundedRegistry overrides the standard registry.
func WithGroundedRegistry(r *grounded.Registry) Option {
	return func(e *Evaluator) { e.grounded = r }
}

// WithWorkers sets the persistent worker pool size (0 disables
// parallel dispatch; sibling reductions run sequentially instead).
func WithWorkers(n int) Option {
	return func(e *Evaluator) { e.pool = newWorkerPool(n) }
}

// WithParallelArityThreshold sets the minimum argument count above
// which independent sibling arguments are dispatched to the worker
// pool.
func WithParallelArityThreshold(n int) Option {
	return func(e *Evaluator) { e.arityParallelThreshold = n }
}

// New returns an Evaluator with the standard grounded registry and no
// worker pool, as configured by opts.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		grounded:               grounded.NewStandardRegistry(),
		arityParallelThreshold: 4,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.pool == nil {
		e.pool = newWorkerPool(0)
	}
	return e
}

// Close releases the worker pool.
func (ev *Evaluator) Close() { ev.pool.close() }

// Eval reduces t under env, returning every nondeterministic branch's
// result. An empty slice means Empty: zero results mean Empty,
// multiple results mean nondeterministic branches.
func (ev *Evaluator) Eval(t term.Term, env *environment.Environment) []term.Term {
	switch v := t.(type) {
	case term.Expr:
		return ev.evalExpr(v, env)
	case term.Symbol:
		return ev.evalHeadOnly(string(v), v, env)
	case term.Empty:
		return nil
	default:
		return []term.Term{t}
	}
}

func (ev *Evaluator) evalExpr(e term.Expr, env *environment.Environment) []term.Term {
	if len(e.Items) == 0 {
		return []term.Term{term.Nil{}}
	}

	head, hasHead := term.HeadSymbol(e)
	if hasHead {
		if fn, ok := specialForms[head]; ok {
			return fn(ev, e, env)
		}
		if vals, execErr := ev.grounded.Apply(head, e.Items[1:], ev.makeEvalFn(env)); execErr == nil {
			return valuesToTerms(vals)
		} else if !grounded.IsNoReduce(execErr) {
			return []term.Term{errorTerm(execErr)}
		}
	}

	headKey := rule.Sentinel
	if hasHead {
		headKey = head
	}
	return ev.evalViaRules(headKey, e, env)
}

// evalHeadOnly handles a bare Symbol appearing where a term is
// expected: it may itself be a nullary grounded operation or the LHS
// atom of a rule, when that rule's pattern is itself a bare atom.
func (ev *Evaluator) evalHeadOnly(head string, self term.Term, env *environment.Environment) []term.Term {
	if fn, ok := specialForms[head]; ok {
		return fn(ev, term.NewExpr(self), env)
	}
	if vals, execErr := ev.grounded.Apply(head, nil, ev.makeEvalFn(env)); execErr == nil {
		return valuesToTerms(vals)
	} else if !grounded.IsNoReduce(execErr) {
		return []term.Term{errorTerm(execErr)}
	}

	rules := env.RulesFor(head)
	for _, r := range rules {
		b, ok := unify.Match(r.LHS, self, bindings.Empty)
		if !ok {
			continue
		}
		branchEnv := env.Fork()
		rhs := unify.Substitute(r.RHS, b)
		return ev.Eval(rhs, branchEnv)
	}
	return []term.Term{self}
}

// evalViaRules evaluates arguments leftmost-first, threads the
// Cartesian product of their nondeterministic branches through every
// candidate rule (head-indexed plus sentinel), and collects results.
// A combination containing an Error short-circuits to that Error
// without attempting any rule.
func (ev *Evaluator) evalViaRules(headKey string, e term.Expr, env *environment.Environment) []term.Term {
	args := e.Items[1:]
	argBranches := ev.evalArgs(args, env)
	for _, vals := range argBranches {
		if len(vals) == 0 {
			return nil // any zero-branch argument collapses the whole expression
		}
	}
	combos := cartesian(argBranches)
	rules := env.RulesFor(headKey)

	var results []term.Term
	for _, combo := range combos {
		if errTerm, found := firstError(combo); found {
			results = append(results, errTerm)
			continue
		}

		reconstructed := term.NewExpr(append([]term.Term{e.Items[0]}, combo...)...)
		matched := false
		for _, r := range rules {
			b, ok := unify.Match(r.LHS, reconstructed, bindings.Empty)
			if !ok {
				continue
			}
			matched = true
			// Each candidate match is an independent branch, forked so
			// that add-atom/remove-atom in one branch is invisible to
			// siblings.
			branchEnv := env.Fork()
			rhs := unify.Substitute(r.RHS, b)
			results = append(results, ev.Eval(rhs, branchEnv)...)
		}
		if !matched {
			// Step 5: irreducible — return the expression unchanged,
			// modulo the argument evaluation step 4a already performed.
			results = append(results, reconstructed)
		}
	}
	return results
}

// evalArgs reduces each argument, leftmost-first by default. Above the
// configured arity threshold, arguments are independent of one
// another's bindings (they share only the read side of env) so they
// are fanned out to the persistent worker pool instead.
func (ev *Evaluator) evalArgs(args []term.Term, env *environment.Environment) [][]term.Term {
	if len(args) <= ev.arityParallelThreshold {
		out := make([][]term.Term, len(args))
		for i, arg := range args {
			out[i] = ev.Eval(arg, env)
		}
		return out
	}
	fns := make([]func() []term.Term, len(args))
	for i, arg := range args {
		arg := arg
		fns[i] = func() []term.Term { return ev.Eval(arg, env) }
	}
	return submitAll(ev.pool, fns)
}

func (ev *Evaluator) makeEvalFn(env *environment.Environment) grounded.EvalFn {
	return func(t term.Term) ([]term.Term, error) {
		return ev.Eval(t, env), nil
	}
}

func cartesian(branches [][]term.Term) [][]term.Term {
	if len(branches) == 0 {
		return [][]term.Term{{}}
	}
	rest := cartesian(branches[1:])
	out := make([][]term.Term, 0, len(branches[0])*len(rest))
	for _, v := range branches[0] {
		for _, r := range rest {
			combo := make([]term.Term, 0, len(r)+1)
			combo = append(combo, v)
			combo = append(combo, r...)
			out = append(out, combo)
		}
	}
	return out
}

func firstError(ts []term.Term) (term.Term, bool) {
	for _, t := range ts {
		if _, ok := t.(term.Error); ok {
			return t, true
		}
	}
	return nil, false
}

func errorTerm(e *grounded.ExecError) term.Term {
	return term.NewError(e.Error(), term.Nil{})
}

func ruleOf(lhs, rhs term.Term) rule.Rule { return rule.New(lhs, rhs) }

func valuesToTerms(vs []grounded.Value) []term.Term {
	out := make([]term.Term, len(vs))
	for i, v := range vs {
		out[i] = v.Term
	}
	return out
}
