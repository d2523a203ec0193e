package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/F1R3FLY-io/mettatron/internal/term"
)

// getInputReader opens the given path, or stdin for "" or "-".
func getInputReader(path string) (io.Reader, error) {
	if path == "" || path == "-" {
		return os.Stdin, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	return f, nil
}

// parseStandIn reads one line and builds a minimal term tree from
// parenthesized, whitespace-separated atoms. This exists only to
// exercise the evaluator from the command line; the real MeTTa reader
// (tokenizer, full literal grammar, quoting sugar) is a delegated
// collaborator outside this core's scope.
func parseStandIn(r io.Reader) (term.Term, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		return term.Nil{}, nil
	}
	line := strings.TrimSpace(scanner.Text())
	if line == "" {
		return term.Nil{}, nil
	}
	tokens := tokenize(line)
	t, rest, err := parseTokens(tokens)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("unexpected trailing tokens: %v", rest)
	}
	return t, nil
}

func tokenize(line string) []string {
	line = strings.ReplaceAll(line, "(", " ( ")
	line = strings.ReplaceAll(line, ")", " ) ")
	return strings.Fields(line)
}

func parseTokens(tokens []string) (term.Term, []string, error) {
	if len(tokens) == 0 {
		return nil, nil, fmt.Errorf("unexpected end of input")
	}
	head, rest := tokens[0], tokens[1:]
	if head == "(" {
		var children []term.Term
		for {
			if len(rest) == 0 {
				return nil, nil, fmt.Errorf("unclosed expression")
			}
			if rest[0] == ")" {
				return term.NewExpr(children...), rest[1:], nil
			}
			var child term.Term
			var err error
			child, rest, err = parseTokens(rest)
			if err != nil {
				return nil, nil, err
			}
			children = append(children, child)
		}
	}
	if head == ")" {
		return nil, nil, fmt.Errorf("unexpected )")
	}
	return atom(head), rest, nil
}

func atom(tok string) term.Term {
	if strings.HasPrefix(tok, "$") {
		return term.Variable(tok)
	}
	if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return term.Int(i)
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return term.Float(f)
	}
	if tok == "True" || tok == "False" {
		return term.Bool(tok == "True")
	}
	return term.Symbol(tok)
}
