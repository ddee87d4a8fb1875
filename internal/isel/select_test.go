package isel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rillwright/rill/internal/flat"
	"github.com/rillwright/rill/internal/target"
)

// S3-shaped function: one comparison, one branch, a return from each arm.
func buildMaxFn() *flat.Function {
	return &flat.Function{
		Name:   "max",
		Params: []flat.Param{{Name: "a", Type: flat.FInt{Kind: 3}}, {Name: "b", Type: flat.FInt{Kind: 3}}},
		Ret:    flat.FInt{Kind: 3},
		Temps: map[string]flat.FlatType{
			"a": flat.FInt{Kind: 3}, "b": flat.FInt{Kind: 3}, "c": flat.FBool{}, "r": flat.FInt{Kind: 3},
		},
		Code: []flat.Instruction{
			flat.CompareInstr{Dst: "c", Op: flat.Gt, Left: flat.Temp{Name: "a"}, Right: flat.Temp{Name: "b"}},
			flat.CondJump{Cond: flat.Temp{Name: "c"}, IfTrue: "t", IfFalse: "f"},
			flat.LabelInstr{Name: "t"},
			flat.Assign{Dst: "r", Value: flat.Temp{Name: "a"}},
			flat.Jump{Target: "end"},
			flat.LabelInstr{Name: "f"},
			flat.Assign{Dst: "r", Value: flat.Temp{Name: "b"}},
			flat.Jump{Target: "end"},
			flat.LabelInstr{Name: "end"},
			flat.Return{Value: flat.Temp{Name: "r"}},
		},
	}
}

func TestSelectWrapsFunctionInMarkersAndEpilogue(t *testing.T) {
	prog := &flat.Program{Functions: map[string]*flat.Function{"max": buildMaxFn()}, Order: []string{"max"}}
	code, err := Select(prog)
	require.NoError(t, err)
	require.NotEmpty(t, code)

	_, isLabel := code[0].(target.Label)
	require.True(t, isLabel)
	_, isStart := code[1].(target.FunctionStartMarker)
	require.True(t, isStart)

	var sawEnd, sawRet bool
	for _, ins := range code {
		switch ins.(type) {
		case target.FunctionEndMarker:
			sawEnd = true
		case target.Ret:
			sawRet = true
		}
	}
	assert.True(t, sawEnd)
	assert.True(t, sawRet)
}

func TestSelectSkipsOrderEntriesWithNoFunctionBody(t *testing.T) {
	prog := &flat.Program{Functions: map[string]*flat.Function{}, Order: []string{"some_global"}}
	code, err := Select(prog)
	require.NoError(t, err)
	assert.Empty(t, code)
}

func TestSelectRejectsTooManyParamsForConvention(t *testing.T) {
	fn := &flat.Function{
		Name: "toomany",
		Ret:  flat.FUnit{},
	}
	for i := 0; i < len(target.Conv.ArgsW)+1; i++ {
		fn.Params = append(fn.Params, flat.Param{Name: string(rune('a' + i)), Type: flat.FInt{Kind: 3}})
	}
	fn.Temps = make(map[string]flat.FlatType)
	for _, p := range fn.Params {
		fn.Temps[p.Name] = p.Type
	}
	fn.Code = []flat.Instruction{flat.Return{}}

	prog := &flat.Program{Functions: map[string]*flat.Function{"toomany": fn}, Order: []string{"toomany"}}
	_, err := Select(prog)
	assert.Error(t, err)
}
