package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rillwright/rill/internal/lexer"
	"github.com/rillwright/rill/internal/parser"
	"github.com/rillwright/rill/internal/target"
)

func mustCompile(t *testing.T, src string) []target.Ins {
	t.Helper()
	prog, perrs := parser.ParseProgram(lexer.Tokenize(src))
	require.Empty(t, perrs)
	code, errs := Compile(prog, src)
	require.Empty(t, errs, "unexpected diagnostics: %v", errs)
	return code
}

// S1: let x: i8 = 2 + 3; print(x) compiles clean and calls print.
func TestPipelineCompilesS1(t *testing.T) {
	code := mustCompile(t, `let x: i8 = 2 + 3; print(x)`)
	require.NotEmpty(t, code)
	rendered := target.Render(code)
	assert.Contains(t, rendered, "call")
}

// S2: division by zero is caught at fold time and produces a trap, not
// a compile error.
func TestPipelineCompilesS2DivideByZeroTrap(t *testing.T) {
	prog, perrs := parser.ParseProgram(lexer.Tokenize(`let y = 1 / 0`))
	require.Empty(t, perrs)
	code, errs := Compile(prog, `let y = 1 / 0`)
	require.Empty(t, errs)
	require.NotEmpty(t, code)
}

// S3: fn max(a, b) i16 = if a > b then a else b.
func TestPipelineCompilesS3Max(t *testing.T) {
	code := mustCompile(t, `fn max(a: i16, b: i16) i16 = if a > b then a else b`)
	require.NotEmpty(t, code)
}

// S5: rebinding a let is a type-check error, so the pipeline reports a
// diagnostic and never reaches codegen.
func TestPipelineRejectsS5RebindOfLet(t *testing.T) {
	prog, perrs := parser.ParseProgram(lexer.Tokenize(`fn f() i16 = { let x = 1; x = 2; x }`))
	require.Empty(t, perrs)
	code, errs := Compile(prog, "")
	assert.NotEmpty(t, errs)
	assert.Empty(t, code)
}

// S6: disjoint integer widths are a type-check error.
func TestPipelineRejectsS6WidthMismatch(t *testing.T) {
	prog, perrs := parser.ParseProgram(lexer.Tokenize(`fn f() i16 = { let x: u8 = 1; let y: i16 = x; y }`))
	require.Empty(t, perrs)
	_, errs := Compile(prog, "")
	assert.NotEmpty(t, errs)
}

func TestPipelineStopsAtFirstFailingStage(t *testing.T) {
	prog, perrs := parser.ParseProgram(lexer.Tokenize(`fn f() i16 = nope`))
	require.Empty(t, perrs)
	ctx := NewContext("")
	ctx.AstRoot = prog
	ctx = New().Run(ctx)
	assert.NotEmpty(t, ctx.Errors)
	assert.Nil(t, ctx.Typed)
	assert.Nil(t, ctx.Flat)
}
