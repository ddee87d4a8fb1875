package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rillwright/rill/internal/ast"
	"github.com/rillwright/rill/internal/lexer"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, errs := ParseProgram(lexer.Tokenize(src))
	require.Empty(t, errs, "unexpected parse errors: %v", errs)
	return prog
}

func TestParseStaticAndConstDecls(t *testing.T) {
	prog := parse(t, `static counter: i16 = 0; const limit = 10`)
	require.Len(t, prog.Decls, 2)

	s, ok := prog.Decls[0].(*ast.StaticDecl)
	require.True(t, ok)
	assert.Equal(t, "counter", s.Name)
	require.NotNil(t, s.Type)
	assert.Equal(t, "i16", s.Type.Name)

	c, ok := prog.Decls[1].(*ast.ConstDecl)
	require.True(t, ok)
	assert.Equal(t, "limit", c.Name)
	assert.Nil(t, c.Type)
}

func TestParseFnDeclWithParamsAndReturn(t *testing.T) {
	prog := parse(t, `fn max(a: i16, b: i16) i16 = if a > b then a else b`)
	require.Len(t, prog.Decls, 1)
	fn, ok := prog.Decls[0].(*ast.FnDecl)
	require.True(t, ok)
	assert.Equal(t, "max", fn.Name)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name)
	require.NotNil(t, fn.Ret)
	assert.Equal(t, "i16", fn.Ret.Name)

	ifExpr, ok := fn.Body.(*ast.IfExpr)
	require.True(t, ok)
	cmp, ok := ifExpr.Cond.(*ast.CompareExpr)
	require.True(t, ok)
	assert.Equal(t, ast.Gt, cmp.Op)
}

func TestBareTopLevelStatementsSynthesizeMain(t *testing.T) {
	prog := parse(t, `let x: i8 = 2 + 3; print(x)`)
	require.Len(t, prog.Decls, 1)
	main, ok := prog.Decls[0].(*ast.FnDecl)
	require.True(t, ok)
	assert.Equal(t, "main", main.Name)

	block, ok := main.Body.(*ast.BlockExpr)
	require.True(t, ok)
	require.Len(t, block.Stmts, 2)

	let, ok := block.Stmts[0].(*ast.LetStmt)
	require.True(t, ok)
	assert.Equal(t, "x", let.Name)
	bin, ok := let.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.Add, bin.Op)

	expr, ok := block.Stmts[1].(*ast.ExpressStmt)
	require.True(t, ok)
	call, ok := expr.Expr.(*ast.CallExpr)
	require.True(t, ok)
	assert.Equal(t, "print", call.Callee)
}

func TestParseProgramWithOnlyDeclsHasNoSynthesizedMain(t *testing.T) {
	prog := parse(t, `fn f() i16 = 1`)
	require.Len(t, prog.Decls, 1)
	_, ok := prog.Decls[0].(*ast.FnDecl)
	require.True(t, ok)
}

func TestParseRebindStmt(t *testing.T) {
	prog := parse(t, `let x = 1; x = 2`)
	main := prog.Decls[0].(*ast.FnDecl)
	block := main.Body.(*ast.BlockExpr)
	require.Len(t, block.Stmts, 2)
	rebind, ok := block.Stmts[1].(*ast.RebindStmt)
	require.True(t, ok)
	place, ok := rebind.Place.(*ast.IdentPlace)
	require.True(t, ok)
	assert.Equal(t, "x", place.Name)
}

func TestParseConcatAndCast(t *testing.T) {
	prog := parse(t, `let x = a ++ b cast_as i32`)
	main := prog.Decls[0].(*ast.FnDecl)
	block := main.Body.(*ast.BlockExpr)
	let := block.Stmts[0].(*ast.LetStmt)
	cast, ok := let.Value.(*ast.CastExpr)
	require.True(t, ok)
	assert.Equal(t, "i32", cast.Target.Name)
	_, ok = cast.Inner.(*ast.ConcatExpr)
	require.True(t, ok)
}

func TestParsePrefixOperators(t *testing.T) {
	prog := parse(t, `let x = !a; let y = -b; let z = *p; let w = &v`)
	main := prog.Decls[0].(*ast.FnDecl)
	block := main.Body.(*ast.BlockExpr)
	_, ok := block.Stmts[0].(*ast.LetStmt).Value.(*ast.NotExpr)
	require.True(t, ok)
	_, ok = block.Stmts[1].(*ast.LetStmt).Value.(*ast.NegExpr)
	require.True(t, ok)
	_, ok = block.Stmts[2].(*ast.LetStmt).Value.(*ast.DerefExpr)
	require.True(t, ok)
	_, ok = block.Stmts[3].(*ast.LetStmt).Value.(*ast.RefExpr)
	require.True(t, ok)
}

func TestParseArrayAndIndex(t *testing.T) {
	prog := parse(t, `let a = [1, 2, 3]; let x = a[0]`)
	main := prog.Decls[0].(*ast.FnDecl)
	block := main.Body.(*ast.BlockExpr)
	arr, ok := block.Stmts[0].(*ast.LetStmt).Value.(*ast.ArrayExpr)
	require.True(t, ok)
	assert.Len(t, arr.Elems, 3)
	idx, ok := block.Stmts[1].(*ast.LetStmt).Value.(*ast.IndexExpr)
	require.True(t, ok)
	_, ok = idx.Base.(*ast.Ident)
	require.True(t, ok)
}

func TestParseStructConstructorAndField(t *testing.T) {
	prog := parse(t, `let s = .{ x: 1, y: 2 }; let x = s.x`)
	main := prog.Decls[0].(*ast.FnDecl)
	block := main.Body.(*ast.BlockExpr)
	sc, ok := block.Stmts[0].(*ast.LetStmt).Value.(*ast.StructConstructorExpr)
	require.True(t, ok)
	require.Len(t, sc.Fields, 2)
	assert.Equal(t, "x", sc.Fields[0].Name)
	fe, ok := block.Stmts[1].(*ast.LetStmt).Value.(*ast.FieldExpr)
	require.True(t, ok)
	assert.Equal(t, "x", fe.Field)
}

func TestParseLambda(t *testing.T) {
	prog := parse(t, `let add = fn(a: i16, b: i16) i16 = a + b`)
	main := prog.Decls[0].(*ast.FnDecl)
	block := main.Body.(*ast.BlockExpr)
	lam, ok := block.Stmts[0].(*ast.LetStmt).Value.(*ast.LambdaExpr)
	require.True(t, ok)
	require.Len(t, lam.Params, 2)
	require.NotNil(t, lam.Ret)
}

func TestParseBlockWithTrailingExpr(t *testing.T) {
	prog := parse(t, `fn f() i16 = { let x = 1; x }`)
	fn := prog.Decls[0].(*ast.FnDecl)
	block, ok := fn.Body.(*ast.BlockExpr)
	require.True(t, ok)
	require.Len(t, block.Stmts, 1)
	require.NotNil(t, block.Trailing)
	_, ok = block.Trailing.(*ast.Ident)
	require.True(t, ok)
}

func TestParsePrecedenceProductBeforeSum(t *testing.T) {
	prog := parse(t, `let x = 1 + 2 * 3`)
	main := prog.Decls[0].(*ast.FnDecl)
	block := main.Body.(*ast.BlockExpr)
	bin := block.Stmts[0].(*ast.LetStmt).Value.(*ast.BinaryExpr)
	assert.Equal(t, ast.Add, bin.Op)
	_, ok := bin.Left.(*ast.IntLit)
	require.True(t, ok)
	_, ok = bin.Right.(*ast.BinaryExpr)
	require.True(t, ok)
}

func TestParseTypeExprForms(t *testing.T) {
	prog := parse(t, `fn f(a: ?i16, b: *i16, c: [*]i16, d: []i16, e: [3]i16) i16 = 0`)
	fn := prog.Decls[0].(*ast.FnDecl)
	require.Len(t, fn.Params, 5)
	assert.Equal(t, ast.TypeOption, fn.Params[0].Type.Kind)
	assert.Equal(t, ast.TypePointer, fn.Params[1].Type.Kind)
	assert.Equal(t, ast.TypeArrayPointer, fn.Params[2].Type.Kind)
	assert.Equal(t, ast.TypeSlice, fn.Params[3].Type.Kind)
	assert.Equal(t, ast.TypeArray, fn.Params[4].Type.Kind)
	assert.Equal(t, uint16(3), fn.Params[4].Type.N)
}

func TestParseSyntaxErrorIsCollectedNotPanicked(t *testing.T) {
	_, errs := ParseProgram(lexer.Tokenize(`let = 1`))
	require.NotEmpty(t, errs)
}
