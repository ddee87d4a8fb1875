package peephole

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rillwright/rill/internal/target"
)

func TestRunStripsNopWideMove(t *testing.T) {
	code := []target.Ins{target.MoveW(target.R6, target.R6)}
	out := Run(code)
	require.Len(t, out, 1)
	_, ok := out[0].(target.Comment)
	assert.True(t, ok)
}

func TestRunStripsNopByteMove(t *testing.T) {
	code := []target.Ins{target.MoveB(target.R6b, target.R6b)}
	out := Run(code)
	require.Len(t, out, 1)
	_, ok := out[0].(target.Comment)
	assert.True(t, ok)
}

func TestRunNarrowsSmallConstantLoadIntoByteAliasedRegister(t *testing.T) {
	code := []target.Ins{target.LdiW{Dst: target.R6, Val: target.WiConstant(10)}}
	out := Run(code)
	require.Len(t, out, 1)
	ldi, ok := out[0].(target.LdiB)
	require.True(t, ok)
	assert.Equal(t, target.R6b, ldi.Dst)
	assert.Equal(t, target.Bi(10), ldi.Val)
}

func TestRunLeavesLargeConstantLoadAlone(t *testing.T) {
	code := []target.Ins{target.LdiW{Dst: target.R6, Val: target.WiConstant(1000)}}
	out := Run(code)
	require.Len(t, out, 1)
	_, ok := out[0].(target.LdiW)
	assert.True(t, ok)
}

func TestRunLeavesR1LoadAlone(t *testing.T) {
	// R1 has no single-register byte alias (it splits into R1l/R1h), so
	// narrowing never applies.
	code := []target.Ins{target.LdiW{Dst: target.R1, Val: target.WiConstant(10)}}
	out := Run(code)
	require.Len(t, out, 1)
	_, ok := out[0].(target.LdiW)
	assert.True(t, ok)
}

func TestRunDoesNotMutateInput(t *testing.T) {
	orig := []target.Ins{target.MoveW(target.R6, target.R6)}
	_ = Run(orig)
	_, stillMove := orig[0].(target.Comment)
	assert.False(t, stillMove)
}
