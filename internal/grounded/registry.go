package grounded

import (
	"github.com/F1R3FLY-io/mettatron/internal/bindings"
	"github.com/F1R3FLY-io/mettatron/internal/term"
)

// Value pairs a grounded result with optional bindings it introduces.
// None of the standard arithmetic/comparison/logic operations bind
// variables, but the shape is kept so a future operation (e.g. a
// grounded unifier) has somewhere to put them.
type Value struct {
	Term        term.Term
	Bindings    bindings.Bindings
	HasBindings bool
}

func plain(t term.Term) Value { return Value{Term: t} }

func plainAll(ts ...term.Term) []Value {
	out := make([]Value, len(ts))
	for i, t := range ts {
		out[i] = plain(t)
	}
	return out
}

// EvalFn is the callback a Simple operation uses to reduce one of its
// arguments; it returns every nondeterministic branch the evaluator
// produced for that argument.
type EvalFn func(t term.Term) ([]term.Term, error)

// SimpleOperation is the convenience protocol shape: the operation is
// handed an evaluator callback and decides directly
// when, and in what order, to reduce its arguments.
type SimpleOperation interface {
	Name() string
	Apply(args []term.Term, eval EvalFn) ([]Value, *ExecError)
}

// StepResultKind tags what a Stepwise operation's Step call produced.
type StepResultKind uint8

const (
	// StepRequestEval asks the driver to reduce args[ArgIndex] and
	// call Step again with the result recorded in scratch.
	StepRequestEval StepResultKind = iota
	// StepDone carries the operation's final result list.
	StepDone
	// StepErr carries a terminal ExecError.
	StepErr
)

// StepResult is returned by one Step call.
type StepResult struct {
	Kind     StepResultKind
	ArgIndex int
	Results  []Value
	Err      *ExecError
}

func requestEval(argIndex int) StepResult {
	return StepResult{Kind: StepRequestEval, ArgIndex: argIndex}
}

func done(vs ...Value) StepResult {
	return StepResult{Kind: StepDone, Results: vs}
}

func stepErr(e *ExecError) StepResult {
	return StepResult{Kind: StepErr, Err: e}
}

// StepwiseOperation is the canonical grounded-operation protocol shape,
// modeled as an explicit state machine: a step counter plus a scratch
// area of already-evaluated argument branches. This form supports
// proper tail calls because control returns to the driver between
// every argument reduction instead of recursing through a closure.
type StepwiseOperation interface {
	Name() string
	// Step advances the state machine. scratch[i] holds every
	// nondeterministic branch produced for args[i], once requested;
	// step is 0 on the first call and increments by one each time the
	// driver honors a StepRequestEval.
	Step(args []term.Term, scratch map[int][]term.Term, step int) StepResult
}

// AsSimple adapts a StepwiseOperation into a SimpleOperation by
// driving its state machine to completion, showing that the
// convenience shape is expressible on top of the canonical one.
func AsSimple(op StepwiseOperation) SimpleOperation { return stepwiseAsSimple{op} }

type stepwiseAsSimple struct{ op StepwiseOperation }

func (s stepwiseAsSimple) Name() string { return s.op.Name() }

func (s stepwiseAsSimple) Apply(args []term.Term, eval EvalFn) ([]Value, *ExecError) {
	scratch := make(map[int][]term.Term)
	step := 0
	for {
		res := s.op.Step(args, scratch, step)
		switch res.Kind {
		case StepDone:
			return res.Results, nil
		case StepErr:
			return nil, res.Err
		case StepRequestEval:
			vals, err := eval(args[res.ArgIndex])
			if err != nil {
				return nil, runtimeError("evaluating argument %d of %s: %v", res.ArgIndex, s.op.Name(), err)
			}
			if errTerm, found := firstErrorValue(vals); found {
				return []Value{plain(errTerm)}, nil
			}
			scratch[res.ArgIndex] = vals
			step++
		}
	}
}

// firstErrorValue reports the first term.Error among vals, if any. A
// grounded operation never sees an Error argument: any Expression
// containing an Error in any position reduces to that Error, so the
// state machine short-circuits here rather than handing the Error to
// the operation's own Step logic.
func firstErrorValue(vals []term.Term) (term.Term, bool) {
	for _, v := range vals {
		if _, ok := v.(term.Error); ok {
			return v, true
		}
	}
	return nil, false
}

// Registry dispatches a head symbol to its grounded operation.
type Registry struct {
	ops map[string]StepwiseOperation
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]StepwiseOperation)}
}

// NewStandardRegistry returns a Registry pre-populated with the
// standard arithmetic, comparison, and logic operations:
// + - * / % < <= > >= == != and or not.
func NewStandardRegistry() *Registry {
	r := NewRegistry()
	for _, op := range standardArithmeticOps() {
		r.Register(op)
	}
	for _, op := range standardComparisonOps() {
		r.Register(op)
	}
	for _, op := range standardLogicalOps() {
		r.Register(op)
	}
	return r
}

// Register adds or replaces the operation bound to op.Name().
func (r *Registry) Register(op StepwiseOperation) {
	r.ops[op.Name()] = op
}

// Lookup returns the operation bound to head, if any.
func (r *Registry) Lookup(head string) (StepwiseOperation, bool) {
	op, ok := r.ops[head]
	return op, ok
}

// Apply drives the head's grounded operation to completion via the
// Simple-shape adapter. It returns ErrNoReduce (unwrapped via
// IsNoReduce) when head is not a registered grounded symbol, so the
// evaluator's dispatch can fall through to rule-based reduction.
func (r *Registry) Apply(head string, args []term.Term, eval EvalFn) ([]Value, *ExecError) {
	op, ok := r.Lookup(head)
	if !ok {
		return nil, ErrNoReduce
	}
	return AsSimple(op).Apply(args, eval)
}
