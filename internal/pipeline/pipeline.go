// Package pipeline wires the compiler passes into one ordered sequence,
// grounded on the teacher's own internal/pipeline: a Context threaded
// through a list of Processors. A stage that fails records its
// diagnostic on the Context, and every later stage then skips its work,
// so a caller sees how far a compile got and the error that stopped it.
package pipeline

import (
	"github.com/rillwright/rill/internal/ast"
	"github.com/rillwright/rill/internal/checker"
	"github.com/rillwright/rill/internal/diagnostics"
	"github.com/rillwright/rill/internal/flat"
	"github.com/rillwright/rill/internal/fold"
	"github.com/rillwright/rill/internal/isel"
	"github.com/rillwright/rill/internal/peephole"
	"github.com/rillwright/rill/internal/regalloc"
	"github.com/rillwright/rill/internal/target"
	"github.com/rillwright/rill/internal/token"
)

// Context carries every stage's output so later stages, and callers
// inspecting a partial run, can see exactly how far a compile got.
type Context struct {
	Source string

	AstRoot   *ast.Program
	Typed     *ast.TypedProgram
	Folded    *ast.TypedProgram
	Flat      *flat.Program
	Selected  []target.Ins
	Allocated []target.Ins
	Code      []target.Ins

	Errors []*diagnostics.Diagnostic
}

// NewContext starts a fresh Context for the given source text.
func NewContext(source string) *Context {
	return &Context{Source: source}
}

func (c *Context) fail(err error) {
	if d, ok := err.(*diagnostics.Diagnostic); ok {
		c.Errors = append(c.Errors, d)
		return
	}
	c.Errors = append(c.Errors, diagnostics.New(diagnostics.ErrInternalInvariant, token.Span{}, "%s", err.Error()))
}

// Processor is one pipeline stage.
type Processor interface {
	Process(ctx *Context) *Context
}

// Pipeline runs an ordered sequence of Processors over one Context.
type Pipeline struct {
	stages []Processor
}

// New builds the standard compile pipeline: check, fold, flatten,
// select instructions, allocate registers, peephole-clean. AstRoot must
// already be populated on the Context passed to Run (internal/lexer and
// internal/parser produce it; this package is deliberately agnostic to
// the surface syntax that feeds it).
func New() *Pipeline {
	return &Pipeline{stages: []Processor{
		&CheckStage{},
		&FoldStage{},
		&FlattenStage{},
		&SelectStage{},
		&AllocateStage{},
		&PeepholeStage{},
	}}
}

// Run hands the Context to every stage in order. Each stage returns
// without doing anything once ctx.Errors is non-empty, so a compile
// stops at the first stage that records an error.
func (p *Pipeline) Run(ctx *Context) *Context {
	for _, stage := range p.stages {
		ctx = stage.Process(ctx)
	}
	return ctx
}

// Compile runs the full pipeline over an already-parsed program and
// returns the final target instruction stream, or the diagnostics
// collected along the way.
func Compile(prog *ast.Program, source string) ([]target.Ins, []*diagnostics.Diagnostic) {
	ctx := NewContext(source)
	ctx.AstRoot = prog
	ctx = New().Run(ctx)
	return ctx.Code, ctx.Errors
}

// CheckStage runs spec.md §4.2's bidirectional type checker.
type CheckStage struct{}

func (s *CheckStage) Process(ctx *Context) *Context {
	if ctx.AstRoot == nil || len(ctx.Errors) > 0 {
		return ctx
	}
	typed, err := checker.New().Check(ctx.AstRoot)
	if err != nil {
		ctx.fail(err)
		return ctx
	}
	ctx.Typed = typed
	return ctx
}

// FoldStage runs spec.md §4.3's fixed-point constant folder.
type FoldStage struct{}

func (s *FoldStage) Process(ctx *Context) *Context {
	if ctx.Typed == nil || len(ctx.Errors) > 0 {
		return ctx
	}
	ctx.Folded = fold.Program(ctx.Typed)
	return ctx
}

// FlattenStage lowers the folded typed AST to three-address flat IR
// (spec.md §4.4).
type FlattenStage struct{}

func (s *FlattenStage) Process(ctx *Context) *Context {
	if ctx.Folded == nil || len(ctx.Errors) > 0 {
		return ctx
	}
	f, err := flat.Flatten(ctx.Folded)
	if err != nil {
		ctx.fail(err)
		return ctx
	}
	ctx.Flat = f
	return ctx
}

// SelectStage runs instruction selection (spec.md §4.5).
type SelectStage struct{}

func (s *SelectStage) Process(ctx *Context) *Context {
	if ctx.Flat == nil || len(ctx.Errors) > 0 {
		return ctx
	}
	code, err := isel.Select(ctx.Flat)
	if err != nil {
		ctx.fail(err)
		return ctx
	}
	ctx.Selected = code
	return ctx
}

// AllocateStage runs graph-coloring register allocation (spec.md §4.6).
type AllocateStage struct{}

func (s *AllocateStage) Process(ctx *Context) *Context {
	if ctx.Selected == nil || len(ctx.Errors) > 0 {
		return ctx
	}
	code, err := regalloc.Allocate(ctx.Selected)
	if err != nil {
		ctx.fail(err)
		return ctx
	}
	ctx.Allocated = code
	return ctx
}

// PeepholeStage runs the post-allocation cleanup pass (spec.md §4.7).
type PeepholeStage struct{}

func (s *PeepholeStage) Process(ctx *Context) *Context {
	if ctx.Allocated == nil || len(ctx.Errors) > 0 {
		return ctx
	}
	ctx.Code = peephole.Run(ctx.Allocated)
	return ctx
}
