// Command rillc is the file compiler (spec.md §6.3): lex, parse, check,
// fold, flatten, select, allocate and peephole-clean one source file into
// assembly text, grounded on the relevant slice of the teacher's own
// cmd/funxy entry point (read source, drive the pipeline, print
// diagnostics, set the process exit code) rather than its full bundling
// and native-build machinery, which this project has no use for.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rillwright/rill/internal/cache"
	"github.com/rillwright/rill/internal/lexer"
	"github.com/rillwright/rill/internal/parser"
	"github.com/rillwright/rill/internal/pipeline"
	"github.com/rillwright/rill/internal/repl"
	"github.com/rillwright/rill/internal/target"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, in io.Reader, out, errw io.Writer) int {
	if len(args) > 0 && args[0] == "repl" {
		repl.New(in, out, os.Stdout.Fd()).Run()
		return 0
	}

	fs := flag.NewFlagSet("rillc", flag.ContinueOnError)
	fs.SetOutput(errw)
	outPath := fs.String("o", "", "write assembly to this path instead of stdout")
	cachePath := fs.String("cache", "", "SQLite file caching compiled assembly by source+convention")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var source string
	if fs.NArg() == 0 || fs.Arg(0) == "-" {
		data, err := io.ReadAll(in)
		if err != nil {
			fmt.Fprintf(errw, "rillc: reading stdin: %s\n", err)
			return 1
		}
		source = string(data)
	} else {
		data, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(errw, "rillc: %s\n", err)
			return 1
		}
		source = string(data)
	}

	var c *cache.Cache
	var key cache.Key
	if *cachePath != "" {
		var err error
		c, err = cache.Open(*cachePath)
		if err != nil {
			fmt.Fprintf(errw, "rillc: %s\n", err)
			return 1
		}
		defer c.Close()
		key = cache.Key{Source: source, Convention: target.Conv.String()}
		if assembly, hit, err := c.Lookup(context.Background(), key); err == nil && hit {
			fmt.Fprint(out, assembly)
			return 0
		}
	}

	assembly, code := compile(source, errw)
	if code != 0 {
		return code
	}

	if c != nil {
		if _, err := c.Store(context.Background(), key, assembly); err != nil {
			fmt.Fprintf(errw, "rillc: warning: caching result: %s\n", err)
		}
	}

	if *outPath != "" && *outPath != "-" {
		if err := os.WriteFile(*outPath, []byte(assembly), 0o644); err != nil {
			fmt.Fprintf(errw, "rillc: %s\n", err)
			return 1
		}
		return 0
	}
	fmt.Fprint(out, assembly)
	return 0
}

// compile drives lex -> parse -> pipeline.Compile -> Render, printing every
// diagnostic collected along the way. It returns a nonzero exit code once
// any stage reports a diagnostic, matching spec.md §7's rule that a
// compile with errors never reaches codegen output.
func compile(source string, errw io.Writer) (string, int) {
	toks := lexer.Tokenize(source)
	prog, perrs := parser.ParseProgram(toks)
	if len(perrs) > 0 {
		for _, d := range perrs {
			fmt.Fprintln(errw, d.Error())
		}
		return "", 1
	}

	code, errs := pipeline.Compile(prog, source)
	if len(errs) > 0 {
		for _, d := range errs {
			fmt.Fprintln(errw, d.Error())
		}
		return "", 1
	}
	return target.Render(code), 0
}
