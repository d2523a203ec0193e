// Command mettatron is the CLI entry point: it owns flag parsing,
// signal-driven cancellation, and exit codes, and hands the actual
// source text to a parser that is itself outside this core's scope.
// Lacking that parser here, the input (a file path, or stdin for "-"
// or no argument) is read by a stand-in parser that takes only its
// first line; see parseStandIn.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/F1R3FLY-io/mettatron/internal/config"
	"github.com/F1R3FLY-io/mettatron/internal/eval"
	"github.com/F1R3FLY-io/mettatron/internal/term"
)

func main() {
	cfg := config.Default()

	var (
		inputPath string
		sexprOnly bool
		replMode  bool
		output    string
	)

	rootCmd := &cobra.Command{
		Use:           "mettatron [input]",
		Short:         "Evaluate MeTTa S-expressions",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				inputPath = args[0]
			}
			ctx, cancel := newCancellableContext()
			defer cancel()
			exitCode, err := run(ctx, inputPath, sexprOnly, replMode, output, cfg)
			if err != nil {
				cmd.SilenceUsage = true
				return err
			}
			if exitCode != 0 {
				return fmt.Errorf("evaluation reported errors (exit %d)", exitCode)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVar(&sexprOnly, "sexpr", false, "stop after parsing, print the parsed term tree")
	rootCmd.PersistentFlags().BoolVar(&replMode, "repl", false, "run an interactive read-eval-print loop")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "write results to this file instead of stdout")
	rootCmd.PersistentFlags().IntVar(&cfg.Workers, "workers", cfg.Workers, "persistent worker pool size for parallel sibling reduction")
	rootCmd.PersistentFlags().IntVar(&cfg.ParallelArityThreshold, "parallel-arity-threshold", cfg.ParallelArityThreshold, "minimum argument count before arguments are evaluated in parallel")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newCancellableContext returns a context canceled on SIGINT/SIGTERM.
// Only the REPL loop checks it, between inputs; the evaluator itself
// never reads it and does not preempt a running evaluation.
func newCancellableContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()
	return ctx, cancel
}

func run(ctx context.Context, inputPath string, sexprOnly, replMode bool, output string, cfg config.Config) (int, error) {
	input, err := getInputReader(inputPath)
	if err != nil {
		return 1, err
	}

	if replMode {
		return runREPL(ctx, cfg)
	}

	// The literal S-expression parser is a delegated collaborator; the
	// stand-in path below accepts one line of parenthesized symbols,
	// integers, floats, True/False and $-variables, for smoke-testing
	// the evaluator in the absence of that parser.
	t, err := parseStandIn(input)
	if err != nil {
		return 1, err
	}
	if sexprOnly {
		fmt.Fprintln(os.Stdout, t.String())
		return 0, nil
	}

	out := os.Stdout
	if output != "" {
		f, ferr := os.Create(output)
		if ferr != nil {
			return 1, ferr
		}
		defer f.Close()
		out = f
	}

	session := eval.NewSession(eval.WithWorkers(cfg.Workers), eval.WithParallelArityThreshold(cfg.ParallelArityThreshold))
	defer session.Close()

	results := session.Run(t)
	return printResults(out, results)
}

func runREPL(ctx context.Context, cfg config.Config) (int, error) {
	session := eval.NewSession(eval.WithWorkers(cfg.Workers), eval.WithParallelArityThreshold(cfg.ParallelArityThreshold))
	defer session.Close()

	fmt.Fprintln(os.Stdout, "mettatron (no line-editing; the REPL UI is a delegated collaborator)")
	exitCode := 0
	for {
		select {
		case <-ctx.Done():
			return exitCode, nil
		default:
		}
		fmt.Fprint(os.Stdout, "> ")
		t, err := parseStandIn(os.Stdin)
		if err != nil {
			return 1, err
		}
		results := session.Run(t)
		code, _ := printResults(os.Stdout, results)
		if code != 0 {
			exitCode = code
		}
	}
}

func printResults(out *os.File, results []term.Term) (int, error) {
	exitCode := 0
	if len(results) == 0 {
		fmt.Fprintln(out, "Empty")
		return exitCode, nil
	}
	for _, r := range results {
		fmt.Fprintln(out, r.String())
		if _, isErr := r.(term.Error); isErr {
			exitCode = 1
		}
	}
	return exitCode, nil
}
