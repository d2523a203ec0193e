package grounded

import (
	"github.com/F1R3FLY-io/mettatron/internal/term"
)

// shortCircuitLogical implements "and"/"or" without ever evaluating
// the right operand when the left one already decides the result:
// zero is the absorbing value — false for "and", true for "or" — at
// which the operator short-circuits without touching arg[1] at all.
type shortCircuitLogical struct {
	name string
	zero bool
}

func (op shortCircuitLogical) Name() string { return op.name }

func (op shortCircuitLogical) Step(args []term.Term, scratch map[int][]term.Term, step int) StepResult {
	if len(args) != 2 {
		return stepErr(arityError(op.name, 2, len(args)))
	}
	left, haveLeft := scratch[0]
	if !haveLeft {
		return requestEval(0)
	}

	leftBools := make([]bool, len(left))
	needRight := false
	for i, lt := range left {
		b, ok := lt.(term.Bool)
		if !ok {
			return stepErr(runtimeError("%s: left operand %s is not Bool", op.name, lt))
		}
		leftBools[i] = bool(b)
		if bool(b) != op.zero {
			needRight = true
		}
	}
	if !needRight {
		results := make([]Value, len(leftBools))
		for i := range leftBools {
			results[i] = plain(term.Bool(op.zero))
		}
		return done(results...)
	}

	right, haveRight := scratch[1]
	if !haveRight {
		return requestEval(1)
	}

	var results []Value
	for _, l := range leftBools {
		if l == op.zero {
			results = append(results, plain(term.Bool(op.zero)))
			continue
		}
		for _, rt := range right {
			rb, ok := rt.(term.Bool)
			if !ok {
				return stepErr(runtimeError("%s: right operand %s is not Bool", op.name, rt))
			}
			results = append(results, plain(rb))
		}
	}
	return done(results...)
}

type notOp struct{}

func (notOp) Name() string { return "not" }

func (notOp) Step(args []term.Term, scratch map[int][]term.Term, step int) StepResult {
	if len(args) != 1 {
		return stepErr(arityError("not", 1, len(args)))
	}
	vals, have := scratch[0]
	if !have {
		return requestEval(0)
	}
	results := make([]Value, len(vals))
	for i, v := range vals {
		b, ok := v.(term.Bool)
		if !ok {
			return stepErr(runtimeError("not: operand %s is not Bool", v))
		}
		results[i] = plain(term.Bool(!bool(b)))
	}
	return done(results...)
}

func standardLogicalOps() []StepwiseOperation {
	return []StepwiseOperation{
		shortCircuitLogical{name: "and", zero: false},
		shortCircuitLogical{name: "or", zero: true},
		notOp{},
	}
}
