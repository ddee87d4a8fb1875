package fold

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rillwright/rill/internal/ast"
	"github.com/rillwright/rill/internal/diagnostics"
	"github.com/rillwright/rill/internal/types"
)

func intLit(v int64) *ast.TypedIntLit {
	return &ast.TypedIntLit{Value: v, Type: types.Int{Kind: types.I32}}
}

func TestFoldConstantArithmetic(t *testing.T) {
	bin := &ast.TypedBinaryExpr{Op: ast.Add, Left: intLit(2), Right: intLit(3), Type: types.Int{Kind: types.I32}}
	out := toFixedPoint(bin)
	lit, ok := out.(*ast.TypedIntLit)
	require.True(t, ok)
	assert.Equal(t, int64(5), lit.Value)
}

func TestFoldAddZeroIdentity(t *testing.T) {
	bin := &ast.TypedBinaryExpr{Op: ast.Add, Left: intLit(0), Right: &ast.TypedIdent{Name: "x", Type: types.Int{Kind: types.I32}}, Type: types.Int{Kind: types.I32}}
	out := toFixedPoint(bin)
	ident, ok := out.(*ast.TypedIdent)
	require.True(t, ok)
	assert.Equal(t, "x", ident.Name)
}

func TestFoldMulZeroCollapses(t *testing.T) {
	bin := &ast.TypedBinaryExpr{Op: ast.Mul, Left: intLit(0), Right: &ast.TypedIdent{Name: "x", Type: types.Int{Kind: types.I32}}, Type: types.Int{Kind: types.I32}}
	out := toFixedPoint(bin)
	lit, ok := out.(*ast.TypedIntLit)
	require.True(t, ok)
	assert.Equal(t, int64(0), lit.Value)
}

// S2: let y = 1 / 0 folds to a divide-by-zero Raise.
func TestFoldDivByZeroRaises(t *testing.T) {
	bin := &ast.TypedBinaryExpr{Op: ast.Div, Left: intLit(1), Right: intLit(0), Type: types.Int{Kind: types.I32}}
	out := toFixedPoint(bin)
	raised, ok := out.(*ast.TypedRaiseExpr)
	require.True(t, ok)
	assert.Equal(t, diagnostics.ErrDivideByZero, raised.Code)
}

func TestFoldIntOverflowRaises(t *testing.T) {
	bin := &ast.TypedBinaryExpr{Op: ast.Add, Left: intLit(1 << 31), Right: intLit(1 << 31), Type: types.Int{Kind: types.I32}}
	out := toFixedPoint(bin)
	raised, ok := out.(*ast.TypedRaiseExpr)
	require.True(t, ok)
	assert.Equal(t, diagnostics.ErrIntOverflow, raised.Code)
}

func TestFoldCompareConstants(t *testing.T) {
	cmp := &ast.TypedCompareExpr{Op: ast.Gt, Left: intLit(5), Right: intLit(3), OperandType: types.Int{Kind: types.I32}}
	out := toFixedPoint(cmp)
	lit, ok := out.(*ast.TypedBoolLit)
	require.True(t, ok)
	assert.True(t, lit.Value)
}

func TestFoldNotNotCancels(t *testing.T) {
	inner := &ast.TypedIdent{Name: "flag", Type: types.Bool{}}
	not := &ast.TypedNotExpr{Operand: &ast.TypedNotExpr{Operand: inner}}
	out := toFixedPoint(not)
	ident, ok := out.(*ast.TypedIdent)
	require.True(t, ok)
	assert.Equal(t, "flag", ident.Name)
}

// S3-shaped: if a > b then a else b, with a constant-true condition.
func TestFoldIfConstantConditionChoosesBranch(t *testing.T) {
	thenB := &ast.TypedIdent{Name: "then-branch", Type: types.Int{Kind: types.I16}}
	elseB := &ast.TypedIdent{Name: "else-branch", Type: types.Int{Kind: types.I16}}
	ifExpr := &ast.TypedIfExpr{
		Cond: &ast.TypedBoolLit{Value: true},
		Then: thenB,
		Else: elseB,
		Type: types.Int{Kind: types.I16},
	}
	out := toFixedPoint(ifExpr)
	ident, ok := out.(*ast.TypedIdent)
	require.True(t, ok)
	assert.Equal(t, "then-branch", ident.Name)
}

func TestProgramFoldsStaticsAndFnBodies(t *testing.T) {
	prog := &ast.TypedProgram{
		Statics: []*ast.TypedStatic{
			{Name: "limit", Type: types.Int{Kind: types.I32}, Value: &ast.TypedBinaryExpr{
				Op: ast.Add, Left: intLit(2), Right: intLit(3), Type: types.Int{Kind: types.I32},
			}},
		},
		Fns: map[string]*ast.TypedFn{},
	}
	Program(prog)
	lit, ok := prog.Statics[0].Value.(*ast.TypedIntLit)
	require.True(t, ok)
	assert.Equal(t, int64(5), lit.Value)
}
