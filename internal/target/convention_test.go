package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConventionLoadsFromEmbeddedYAML(t *testing.T) {
	require.Len(t, Conv.ArgsW, 5)
	assert.Equal(t, R1, Conv.ArgsW[0])
	assert.Equal(t, R1, Conv.ReturnW)
	assert.Equal(t, Rs, Conv.Sp)
	assert.Equal(t, Rf, Conv.Fp)
	assert.Equal(t, Rl, Conv.Lr)
	assert.Equal(t, Rp, Conv.Pc)
}

func TestConventionAllocatableWCombinesCallerAndCalleeSaved(t *testing.T) {
	all := Conv.AllocatableW()
	assert.Len(t, all, len(Conv.CallerSavedW)+len(Conv.CalleeSavedW))
	assert.Equal(t, Conv.CallerSavedW[0], all[0])
}

func TestConventionIsCallerSaved(t *testing.T) {
	assert.True(t, Conv.IsCallerSaved(R1))
	assert.False(t, Conv.IsCallerSaved(R6))
}

func TestConventionStringChangesWithFields(t *testing.T) {
	a := Conv.String()
	modified := Conv
	modified.ReturnW = R2
	b := modified.String()
	assert.NotEqual(t, a, b)
}

func TestConventionStringIsStableAcrossCalls(t *testing.T) {
	assert.Equal(t, Conv.String(), Conv.String())
}
