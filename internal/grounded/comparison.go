package grounded

import (
	"github.com/F1R3FLY-io/mettatron/internal/term"
)

// binaryCompare is a two-argument StepwiseOperation producing a Bool.
// Ordering comparisons (< <= > >=) require numeric operands; equality
// comparisons (== !=) accept any Term and fall back to HEEqual, which
// collapses Nil, Unit, and the empty Expression into one equivalence
// class.
type binaryCompare struct {
	name     string
	ordering bool
	combine  func(a, b term.Term) (bool, *ExecError)
}

func (op binaryCompare) Name() string { return op.name }

func (op binaryCompare) Step(args []term.Term, scratch map[int][]term.Term, step int) StepResult {
	if len(args) != 2 {
		return stepErr(arityError(op.name, 2, len(args)))
	}
	left, haveLeft := scratch[0]
	if !haveLeft {
		return requestEval(0)
	}
	right, haveRight := scratch[1]
	if !haveRight {
		return requestEval(1)
	}

	results := make([]Value, 0, len(left)*len(right))
	for _, lt := range left {
		for _, rt := range right {
			b, err := op.combine(lt, rt)
			if err != nil {
				return stepErr(err)
			}
			results = append(results, plain(term.Bool(b)))
		}
	}
	return done(results...)
}

func compareOrdered(name string, cmp func(a, b float64) bool) binaryCompare {
	return binaryCompare{
		name:     name,
		ordering: true,
		combine: func(a, b term.Term) (bool, *ExecError) {
			an, ok := toNumber(a)
			if !ok {
				return false, runtimeError("%s: left operand %s is not numeric", name, a)
			}
			bn, ok := toNumber(b)
			if !ok {
				return false, runtimeError("%s: right operand %s is not numeric", name, b)
			}
			return cmp(an.asFloat(), bn.asFloat()), nil
		},
	}
}

func standardComparisonOps() []StepwiseOperation {
	return []StepwiseOperation{
		compareOrdered("<", func(a, b float64) bool { return a < b }),
		compareOrdered("<=", func(a, b float64) bool { return a <= b }),
		compareOrdered(">", func(a, b float64) bool { return a > b }),
		compareOrdered(">=", func(a, b float64) bool { return a >= b }),
		binaryCompare{name: "==", combine: func(a, b term.Term) (bool, *ExecError) {
			return term.HEEqual(a, b), nil
		}},
		binaryCompare{name: "!=", combine: func(a, b term.Term) (bool, *ExecError) {
			return !term.HEEqual(a, b), nil
		}},
	}
}
