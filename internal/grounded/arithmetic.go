package grounded

import (
	"github.com/F1R3FLY-io/mettatron/internal/term"
)

// number is a numeric operand coerced from a Term, tracking whether
// the original value was a Float so mixed Int/Float operands promote
// results to Float correctly.
type number struct {
	isFloat bool
	i       int64
	f       float64
}

func (n number) asFloat() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

func toNumber(t term.Term) (number, bool) {
	switch v := t.(type) {
	case term.Int:
		return number{i: int64(v)}, true
	case term.Float:
		return number{isFloat: true, f: float64(v)}, true
	default:
		return number{}, false
	}
}

func fromNumber(n number) term.Term {
	if n.isFloat {
		return term.Float(n.f)
	}
	return term.Int(n.i)
}

// binaryArith is a two-argument numeric StepwiseOperation: it requests
// evaluation of arg 0, then arg 1, then applies combine to every pair
// in their nondeterministic branch lists (the Cartesian product: if
// (f) yields two matches, "(+ (f) 10)" yields two sums).
type binaryArith struct {
	name    string
	combine func(a, b number) (term.Term, *ExecError)
}

func (op binaryArith) Name() string { return op.name }

func (op binaryArith) Step(args []term.Term, scratch map[int][]term.Term, step int) StepResult {
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
		ln, ok := toNumber(lt)
		if !ok {
			return stepErr(runtimeError("%s: left operand %s is not numeric", op.name, lt))
		}
		for _, rt := range right {
			rn, ok := toNumber(rt)
			if !ok {
				return stepErr(runtimeError("%s: right operand %s is not numeric", op.name, rt))
			}
			out, err := op.combine(ln, rn)
			if err != nil {
				return stepErr(err)
			}
			results = append(results, plain(out))
		}
	}
	return done(results...)
}

func standardArithmeticOps() []StepwiseOperation {
	return []StepwiseOperation{
		binaryArith{name: "+", combine: func(a, b number) (term.Term, *ExecError) {
			if a.isFloat || b.isFloat {
				return term.Float(a.asFloat() + b.asFloat()), nil
			}
			return term.Int(a.i + b.i), nil
		}},
		binaryArith{name: "-", combine: func(a, b number) (term.Term, *ExecError) {
			if a.isFloat || b.isFloat {
				return term.Float(a.asFloat() - b.asFloat()), nil
			}
			return term.Int(a.i - b.i), nil
		}},
		binaryArith{name: "*", combine: func(a, b number) (term.Term, *ExecError) {
			if a.isFloat || b.isFloat {
				return term.Float(a.asFloat() * b.asFloat()), nil
			}
			return term.Int(a.i * b.i), nil
		}},
		binaryArith{name: "/", combine: func(a, b number) (term.Term, *ExecError) {
			if a.isFloat || b.isFloat {
				if b.asFloat() == 0 {
					return nil, arithmeticError("/: division by zero")
				}
				return term.Float(a.asFloat() / b.asFloat()), nil
			}
			if b.i == 0 {
				return nil, arithmeticError("/: division by zero")
			}
			if a.i%b.i == 0 {
				return term.Int(a.i / b.i), nil
			}
			return term.Float(float64(a.i) / float64(b.i)), nil
		}},
		binaryArith{name: "%", combine: func(a, b number) (term.Term, *ExecError) {
			if a.isFloat || b.isFloat {
				return nil, runtimeError("%%: operands must be Int")
			}
			if b.i == 0 {
				return nil, arithmeticError("%%: modulo by zero")
			}
			return term.Int(a.i % b.i), nil
		}},
	}
}
