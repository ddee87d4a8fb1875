package flat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rillwright/rill/internal/ast"
	"github.com/rillwright/rill/internal/types"
)

func emptyProgram() *ast.TypedProgram {
	return &ast.TypedProgram{Fns: map[string]*ast.TypedFn{}}
}

// S1-shaped: a top-level static initializer must run before any function.
func TestFlattenSynthesizesInitFunction(t *testing.T) {
	prog := emptyProgram()
	prog.Statics = []*ast.TypedStatic{
		{Name: "x", Type: types.Int{Kind: types.I8}, Value: &ast.TypedIntLit{Value: 5, Type: types.Int{Kind: types.I8}}},
	}
	out, err := Flatten(prog)
	require.NoError(t, err)
	require.Equal(t, initFnName, out.Order[0])
	initFn, ok := out.Functions[initFnName]
	require.True(t, ok)

	var sawAssignToX bool
	for _, ins := range initFn.Code {
		if a, ok := ins.(Assign); ok && a.Dst == "x" {
			sawAssignToX = true
		}
	}
	assert.True(t, sawAssignToX)
}

func TestFlattenNoInitWhenNoGlobals(t *testing.T) {
	prog := emptyProgram()
	prog.Fns["f"] = &ast.TypedFn{Name: "f", Ret: types.Int{Kind: types.I16}, Body: &ast.TypedIntLit{Value: 1, Type: types.Int{Kind: types.I16}}}
	out, err := Flatten(prog)
	require.NoError(t, err)
	_, ok := out.Functions[initFnName]
	assert.False(t, ok)
}

func TestFlattenArrayLiteralAllocatesAndStores(t *testing.T) {
	arrType := types.Array{Elem: types.Int{Kind: types.I8}, N: 2}
	prog := emptyProgram()
	prog.Fns["f"] = &ast.TypedFn{
		Name: "f",
		Ret:  arrType,
		Body: &ast.TypedArrayExpr{
			Elems: []ast.TypedExpr{
				&ast.TypedIntLit{Value: 1, Type: types.Int{Kind: types.I8}},
				&ast.TypedIntLit{Value: 2, Type: types.Int{Kind: types.I8}},
			},
			Type: arrType,
		},
	}
	out, err := Flatten(prog)
	require.NoError(t, err)
	fn := out.Functions["f"]

	var addrOfCount, storeCount int
	for _, ins := range fn.Code {
		switch ins.(type) {
		case AddrOf:
			addrOfCount++
		case Store:
			storeCount++
		}
	}
	assert.Equal(t, 1, addrOfCount)
	assert.Equal(t, 2, storeCount)
}

func TestFlattenStructConstructorStoresEachField(t *testing.T) {
	structType := types.Struct{Fields: []types.StructField{
		{Name: "x", Type: types.Int{Kind: types.I16}},
		{Name: "y", Type: types.Int{Kind: types.I16}},
	}}
	prog := emptyProgram()
	prog.Fns["f"] = &ast.TypedFn{
		Name: "f",
		Ret:  structType,
		Body: &ast.TypedStructConstructorExpr{
			Fields: []ast.TypedStructFieldInit{
				{Name: "x", Value: &ast.TypedIntLit{Value: 1, Type: types.Int{Kind: types.I16}}},
				{Name: "y", Value: &ast.TypedIntLit{Value: 2, Type: types.Int{Kind: types.I16}}},
			},
			Type: structType,
		},
	}
	out, err := Flatten(prog)
	require.NoError(t, err)
	fn := out.Functions["f"]

	var offsets []int
	for _, ins := range fn.Code {
		if s, ok := ins.(Store); ok {
			offsets = append(offsets, s.Offset)
		}
	}
	assert.Equal(t, []int{0, 2}, offsets)
}

func TestFlattenConcatEmitsRuntimeCall(t *testing.T) {
	prog := emptyProgram()
	prog.Fns["f"] = &ast.TypedFn{
		Name: "f",
		Ret:  types.CompString{},
		Body: &ast.TypedConcatExpr{
			Left:  &ast.TypedStringLit{Value: "a", Type: types.CompString{}},
			Right: &ast.TypedStringLit{Value: "b", Type: types.CompString{}},
			Type:  types.CompString{},
		},
	}
	out, err := Flatten(prog)
	require.NoError(t, err)
	fn := out.Functions["f"]

	var sawConcatCall bool
	for _, ins := range fn.Code {
		if c, ok := ins.(Call); ok && c.Callee == concatRuntime {
			sawConcatCall = true
			assert.Len(t, c.Args, 2)
		}
	}
	assert.True(t, sawConcatCall)
}

func TestFlattenLambdaHoistsTopLevelFunction(t *testing.T) {
	fnType := types.Function{Params: []types.Type{types.Int{Kind: types.I16}}, Ret: types.Int{Kind: types.I16}}
	prog := emptyProgram()
	prog.Fns["f"] = &ast.TypedFn{
		Name: "f",
		Ret:  fnType,
		Body: &ast.TypedLambdaExpr{
			Params: []ast.TypedParam{{Name: "a", Type: types.Int{Kind: types.I16}}},
			Body:   &ast.TypedIdent{Name: "a", Type: types.Int{Kind: types.I16}},
			Type:   fnType,
		},
	}
	out, err := Flatten(prog)
	require.NoError(t, err)

	lamFn, ok := out.Functions["lambda$0"]
	require.True(t, ok)
	require.Len(t, lamFn.Params, 1)
	assert.Equal(t, "a", lamFn.Params[0].Name)

	fn := out.Functions["f"]
	var sawLambdaRef bool
	for _, ins := range fn.Code {
		if a, ok := ins.(Assign); ok {
			if tmp, ok := a.Value.(Temp); ok && tmp.Name == "lambda$0" {
				sawLambdaRef = true
			}
		}
	}
	assert.True(t, sawLambdaRef)
}
