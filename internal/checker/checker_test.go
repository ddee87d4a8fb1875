package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rillwright/rill/internal/ast"
	"github.com/rillwright/rill/internal/diagnostics"
	"github.com/rillwright/rill/internal/lexer"
	"github.com/rillwright/rill/internal/parser"
	"github.com/rillwright/rill/internal/types"
)

func checkSource(t *testing.T, src string) (*ast.TypedProgram, error) {
	t.Helper()
	prog, errs := parser.ParseProgram(lexer.Tokenize(src))
	require.Empty(t, errs)
	return New().Check(prog)
}

// S3: fn max(a: i16, b: i16) i16 = if a > b then a else b
func TestCheckFnIfCompare(t *testing.T) {
	typed, err := checkSource(t, `fn max(a: i16, b: i16) i16 = if a > b then a else b`)
	require.NoError(t, err)
	fn := typed.Fns["max"]
	require.NotNil(t, fn)
	assert.Equal(t, types.Int{Kind: types.I16}, fn.Ret)
	ifExpr, ok := fn.Body.(*ast.TypedIfExpr)
	require.True(t, ok)
	assert.Equal(t, types.Int{Kind: types.I16}, ifExpr.Type)
}

// S4: let x = 3; let y: u8 = x -- x is pinned to U8 by the second line.
func TestCheckUnificationPinsEarlierLet(t *testing.T) {
	typed, err := checkSource(t, `fn f() u8 = { let x = 3; let y: u8 = x; y }`)
	require.NoError(t, err)
	fn := typed.Fns["f"]
	block := fn.Body.(*ast.TypedBlockExpr)
	letX := block.Stmts[0].(*ast.TypedLetStmt)
	assert.Equal(t, types.Int{Kind: types.U8}, letX.Value.ExprType())
}

// S5: let x = 1; x = 2 rebinding a let (not var) is a mutability error.
func TestCheckRebindOfLetIsNotMutable(t *testing.T) {
	_, err := checkSource(t, `fn f() i16 = { let x = 1; x = 2; x }`)
	require.Error(t, err)
	d, ok := err.(*diagnostics.Diagnostic)
	require.True(t, ok)
	assert.Equal(t, diagnostics.ErrNotMutable, d.Code)
}

// S6: let x: u8 = 1; let y: i16 = x is a disjoint-width mismatch.
func TestCheckDisjointWidthMismatch(t *testing.T) {
	_, err := checkSource(t, `fn f() i16 = { let x: u8 = 1; let y: i16 = x; y }`)
	require.Error(t, err)
	d, ok := err.(*diagnostics.Diagnostic)
	require.True(t, ok)
	assert.Equal(t, diagnostics.ErrTypeMismatch, d.Code)
}

func TestCheckVarIsMutable(t *testing.T) {
	typed, err := checkSource(t, `fn f() i16 = { var x = 1; x = 2; x }`)
	require.NoError(t, err)
	require.NotNil(t, typed.Fns["f"])
}

func TestCheckPrintBuiltinAcceptsAnything(t *testing.T) {
	_, err := checkSource(t, `let x = 1; print(x)`)
	require.NoError(t, err)
}

func TestCheckUndefinedIdentifier(t *testing.T) {
	_, err := checkSource(t, `fn f() i16 = nope`)
	require.Error(t, err)
	d, ok := err.(*diagnostics.Diagnostic)
	require.True(t, ok)
	assert.Equal(t, diagnostics.ErrUndefined, d.Code)
}

func TestCheckStructConstructorIsStructural(t *testing.T) {
	typed, err := checkSource(t, `fn f() i16 = { let s = .{ x: 1, y: 2 }; s.x }`)
	require.NoError(t, err)
	fn := typed.Fns["f"]
	block := fn.Body.(*ast.TypedBlockExpr)
	let := block.Stmts[0].(*ast.TypedLetStmt)
	st, ok := let.Value.ExprType().(types.Struct)
	require.True(t, ok)
	require.Len(t, st.Fields, 2)
	assert.Equal(t, "x", st.Fields[0].Name)
}
