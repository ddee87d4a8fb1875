package regalloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rillwright/rill/internal/flat"
	"github.com/rillwright/rill/internal/isel"
	"github.com/rillwright/rill/internal/target"
)

// S3-shaped function: max(a, b) via one compare and one branch.
func buildMaxFlatFn() *flat.Function {
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

func noPseudoRegistersRemain(t *testing.T, code []target.Ins) {
	t.Helper()
	for _, ins := range code {
		du := describe(ins)
		for _, r := range append(du.DefsW, du.UsesW...) {
			assert.False(t, r.IsPseudo(), "pseudo wide register %v leaked into allocated code", r)
		}
		for _, r := range append(du.DefsB, du.UsesB...) {
			assert.False(t, r.IsPseudo(), "pseudo byte register %v leaked into allocated code", r)
		}
	}
}

func TestAllocateAssignsPhysicalRegisters(t *testing.T) {
	prog := &flat.Program{Functions: map[string]*flat.Function{"max": buildMaxFlatFn()}, Order: []string{"max"}}
	selected, err := isel.Select(prog)
	require.NoError(t, err)

	allocated, err := Allocate(selected)
	require.NoError(t, err)
	require.NotEmpty(t, allocated)
	noPseudoRegistersRemain(t, allocated)
}

func TestAllocatePreservesMarkersAndLength(t *testing.T) {
	prog := &flat.Program{Functions: map[string]*flat.Function{"max": buildMaxFlatFn()}, Order: []string{"max"}}
	selected, err := isel.Select(prog)
	require.NoError(t, err)

	allocated, err := Allocate(selected)
	require.NoError(t, err)

	var starts, ends int
	for _, ins := range allocated {
		switch ins.(type) {
		case target.FunctionStartMarker:
			starts++
		case target.FunctionEndMarker:
			ends++
		}
	}
	assert.Equal(t, 1, starts)
	assert.Equal(t, 1, ends)
	assert.Len(t, allocated, len(selected))
}

func TestAllocateRejectsUnmatchedStartMarker(t *testing.T) {
	_, err := Allocate([]target.Ins{target.FunctionStartMarker{}})
	assert.Error(t, err)
}
