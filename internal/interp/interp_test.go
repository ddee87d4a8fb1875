package interp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rillwright/rill/internal/lexer"
	"github.com/rillwright/rill/internal/parser"
)

func run(t *testing.T, src string) (Value, string) {
	t.Helper()
	prog, errs := parser.ParseProgram(lexer.Tokenize(src))
	require.Empty(t, errs)
	var out strings.Builder
	it := New()
	it.Out = func(s string) { out.WriteString(s) }
	v, err := it.Run(prog)
	require.NoError(t, err)
	return v, out.String()
}

// S1: let x: i8 = 2 + 3; print(x)
func TestInterpPrintsArithmeticResult(t *testing.T) {
	_, out := run(t, `let x: i8 = 2 + 3; print(x)`)
	assert.Equal(t, "5", out)
}

func TestInterpDivideByZeroErrors(t *testing.T) {
	prog, errs := parser.ParseProgram(lexer.Tokenize(`let y = 1 / 0`))
	require.Empty(t, errs)
	_, err := New().Run(prog)
	assert.Error(t, err)
}

// S3-shaped: fn max(a, b) = if a > b then a else b.
func TestInterpFnIfCompare(t *testing.T) {
	v, _ := run(t, `fn max(a: i16, b: i16) i16 = if a > b then a else b; print(max(3, 7))`)
	assert.Equal(t, Unit{}, v)
}

func TestInterpCallNamedFunction(t *testing.T) {
	_, out := run(t, `fn double(a: i16) i16 = a * 2; print(double(21))`)
	assert.Equal(t, "42", out)
}

func TestInterpRebindMutatesVar(t *testing.T) {
	_, out := run(t, `var x = 1; x = x + 1; print(x)`)
	assert.Equal(t, "2", out)
}

func TestInterpConcatStrings(t *testing.T) {
	_, out := run(t, `let x = "foo" ++ "bar"; print(x)`)
	assert.Equal(t, "foobar", out)
}

func TestInterpArrayIndex(t *testing.T) {
	_, out := run(t, `let a = [10, 20, 30]; print(a[1])`)
	assert.Equal(t, "20", out)
}

func TestInterpStructFieldAccess(t *testing.T) {
	_, out := run(t, `let s = .{ x: 1, y: 2 }; print(s.y)`)
	assert.Equal(t, "2", out)
}

func TestInterpLambdaClosesOverEnclosingScope(t *testing.T) {
	_, out := run(t, `let k = 3; let add = fn(a: i16) i16 = a + k; print(add(2))`)
	assert.Equal(t, "5", out)
}

func TestInterpRefAndDeref(t *testing.T) {
	_, out := run(t, `let x = 5; let p = &x; print(*p)`)
	assert.Equal(t, "5", out)
}
