package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifyConcreteEqual(t *testing.T) {
	s := NewStore()
	got, err := Unify(s, Bool{}, Bool{})
	require.NoError(t, err)
	assert.Equal(t, Bool{}, got)
}

func TestUnifyOpaqueAbsorbsAnything(t *testing.T) {
	s := NewStore()
	got, err := Unify(s, Opaque{}, Int{Kind: U16})
	require.NoError(t, err)
	assert.Equal(t, Opaque{}, got)

	got, err = Unify(s, Struct{}, Opaque{})
	require.NoError(t, err)
	assert.Equal(t, Opaque{}, got)
}

func TestUnifyCompIntegerPinsWidth(t *testing.T) {
	s := NewStore()
	got, err := Unify(s, CompInteger{}, Int{Kind: I8})
	require.NoError(t, err)
	assert.Equal(t, Int{Kind: I8}, got)
}

func TestUnifyUnknownBindsToConcrete(t *testing.T) {
	s := NewStore()
	v := s.Fresh()
	got, err := Unify(s, Unknown{Var: v}, Int{Kind: U8})
	require.NoError(t, err)
	assert.Equal(t, Int{Kind: U8}, got)

	resolved, ok := s.Resolved(v)
	require.True(t, ok)
	assert.Equal(t, Int{Kind: U8}, resolved)
}

func TestUnifyUnknownMerge(t *testing.T) {
	s := NewStore()
	v1 := s.Fresh()
	v2 := s.Fresh()
	_, err := Unify(s, Unknown{Var: v1}, Unknown{Var: v2})
	require.NoError(t, err)

	// Binding either variable now resolves both.
	_, err = Unify(s, Unknown{Var: v1}, Int{Kind: I16})
	require.NoError(t, err)
	resolved, ok := s.Resolved(v2)
	require.True(t, ok)
	assert.Equal(t, Int{Kind: I16}, resolved)
}

func TestUnifyDisjointConstraints(t *testing.T) {
	s := NewStore()
	v := s.Fresh(Int{Kind: U8}, Int{Kind: U16})
	_, err := Unify(s, Unknown{Var: v}, Int{Kind: I32})
	require.Error(t, err)
	var dc *DisjointConstraintsError
	assert.ErrorAs(t, err, &dc)
}

func TestUnifyTypeMismatch(t *testing.T) {
	s := NewStore()
	_, err := Unify(s, Bool{}, Int{Kind: U8})
	require.Error(t, err)
	var mm *TypeMismatchError
	assert.ErrorAs(t, err, &mm)
}

func TestUnifyArraySizeMismatch(t *testing.T) {
	s := NewStore()
	_, err := Unify(s, Array{Elem: Int{Kind: U8}, N: 3}, Array{Elem: Int{Kind: U8}, N: 4})
	require.Error(t, err)
	var am *UnequalArraySizesError
	assert.ErrorAs(t, err, &am)
}

func TestUnifyCommutative(t *testing.T) {
	s1, s2 := NewStore(), NewStore()
	a := Array{Elem: Int{Kind: I16}, N: 2}
	b := Array{Elem: CompInteger{}, N: 2}

	r1, err1 := Unify(s1, a, b)
	require.NoError(t, err1)
	r2, err2 := Unify(s2, b, a)
	require.NoError(t, err2)
	assert.Equal(t, r1.String(), r2.String())
}

func TestUnifyFunctionArity(t *testing.T) {
	s := NewStore()
	f1 := Function{Params: []Type{Int{Kind: U8}}, Ret: Unit{}}
	f2 := Function{Params: []Type{Int{Kind: U8}, Int{Kind: U8}}, Ret: Unit{}}
	_, err := Unify(s, f1, f2)
	require.Error(t, err)
	var am *UnequalArgLenError
	assert.ErrorAs(t, err, &am)
}

func TestAllResolvedDetectsPendingVar(t *testing.T) {
	s := NewStore()
	v := s.Fresh()
	assert.False(t, AllResolved(s.Resolve(Unknown{Var: v})))
	_, err := Unify(s, Unknown{Var: v}, Int{Kind: U8})
	require.NoError(t, err)
	assert.True(t, AllResolved(s.Resolve(Unknown{Var: v})))
}
