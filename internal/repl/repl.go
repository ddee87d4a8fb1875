// Package repl implements an interactive read-eval-print loop over
// internal/interp, grounded on the teacher's cmd/funxy eval-mode entry
// point (handleEval in cmd/funxy/main.go): read one line, lex, parse,
// evaluate, print. Unlike the teacher's batch-oriented CLI this package
// keeps one interp.Interp and its global Environment alive across
// lines, so a binding made on one line is visible on the next.
package repl

import (
	"bufio"
	"fmt"
	"io"

	"github.com/mattn/go-isatty"

	"github.com/rillwright/rill/internal/interp"
	"github.com/rillwright/rill/internal/lexer"
	"github.com/rillwright/rill/internal/parser"
)

// REPL holds the persistent state of one interactive session.
type REPL struct {
	in     *bufio.Scanner
	out    io.Writer
	interp *interp.Interp
	color  bool
}

// New builds a REPL reading from in and writing to out. The prompt is
// colored only when out is a real terminal (isatty.IsTerminal), matching
// how a shell's own prompt only colors itself for an interactive tty and
// stays plain when piped.
func New(in io.Reader, out io.Writer, outFd uintptr) *REPL {
	it := interp.New()
	r := &REPL{
		in:     bufio.NewScanner(in),
		out:    out,
		interp: it,
		color:  isatty.IsTerminal(outFd) || isatty.IsCygwinTerminal(outFd),
	}
	it.Out = func(s string) { fmt.Fprintln(r.out, s) }
	return r
}

func (r *REPL) prompt() string {
	if r.color {
		return "\x1b[36mrill>\x1b[0m "
	}
	return "rill> "
}

// Run drives the loop until EOF on input.
func (r *REPL) Run() {
	for {
		fmt.Fprint(r.out, r.prompt())
		if !r.in.Scan() {
			fmt.Fprintln(r.out)
			return
		}
		line := r.in.Text()
		if line == "" {
			continue
		}
		r.evalLine(line)
	}
}

func (r *REPL) evalLine(line string) {
	toks := lexer.Tokenize(line)
	prog, errs := parser.ParseProgram(toks)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(r.out, "%serror:%s %s\n", r.colorCode("\x1b[31m"), r.colorCode("\x1b[0m"), e.Error())
		}
		return
	}
	v, err := r.interp.Run(prog)
	if err != nil {
		fmt.Fprintf(r.out, "%serror:%s %s\n", r.colorCode("\x1b[31m"), r.colorCode("\x1b[0m"), err)
		return
	}
	if _, ok := v.(interp.Unit); !ok {
		fmt.Fprintln(r.out, v.String())
	}
}

func (r *REPL) colorCode(code string) string {
	if r.color {
		return code
	}
	return ""
}
