package eval

import (
	"log/slog"

	"github.com/F1R3FLY-io/mettatron/internal/environment"
	"github.com/F1R3FLY-io/mettatron/internal/module"
	"github.com/F1R3FLY-io/mettatron/internal/space"
	"github.com/F1R3FLY-io/mettatron/internal/term"
)

// Session bundles an Evaluator with the root Environment a REPL or
// batch run evaluates top-level expressions against.
type Session struct {
	Evaluator *Evaluator
	Env       *environment.Environment
}

// NewSession returns a Session rooted at a fresh "&self" Space backed
// by an in-memory module registry.
func NewSession(opts ...Option) *Session {
	logger := slog.Default()
	root := space.New("self", logger)
	reg := module.NewMemRegistry(logger)
	env := environment.New(root, reg, logger)
	reg.Register("self", root)
	return &Session{
		Evaluator: New(opts...),
		Env:       env,
	}
}

// Run evaluates one top-level term against the session's Environment,
// returning its result list.
func (s *Session) Run(t term.Term) []term.Term {
	return s.Evaluator.Eval(t, s.Env)
}

// Close releases the session's worker pool.
func (s *Session) Close() { s.Evaluator.Close() }
