// Package flat implements spec.md §4.4: lowering of the typed,
// possibly-folded AST into a three-address "flat" program — named
// functions with linear instruction lists, pseudo-temporaries, labels
// and explicit branches.
package flat

import (
	"fmt"
	"strings"

	"github.com/rillwright/rill/internal/diagnostics"
	"github.com/rillwright/rill/internal/token"
	"github.com/rillwright/rill/internal/types"
)

// FlatType is spec.md §3's lossy projection of Type: no CompInteger, no
// type variables, no Option/Slice (those are lowered to Struct/Ptr
// representations, see FromType).
type FlatType interface {
	String() string
	sizeofSelf() int
}

type FUnit struct{}

func (FUnit) String() string  { return "unit" }
func (FUnit) sizeofSelf() int { return 0 }

type FBool struct{}

func (FBool) String() string  { return "bool" }
func (FBool) sizeofSelf() int { return 1 }

type FInt struct{ Kind types.IntKind }

func (t FInt) String() string { return t.Kind.String() }
func (t FInt) sizeofSelf() int {
	switch t.Kind {
	case types.U8, types.I8:
		return 1
	case types.U16, types.I16:
		return 2
	default:
		return 4
	}
}

// FFloat is reserved. original_source's sizeof leaves Float unsized
// (`todo!()`); spec.md §9 Open Question (iv) asks implementers to pick
// a representation before touching float codegen. This project picks a
// 32-bit IEEE-754 layout, matching the width of the widest integer type
// already in the ISA, since no float instructions are emitted (spec.md
// §1 non-goals) this choice is never exercised by codegen, only by
// sizeof.
type FFloat struct{}

func (FFloat) String() string  { return "float" }
func (FFloat) sizeofSelf() int { return 4 }

type FPtr struct{ Elem FlatType }

func (t FPtr) String() string  { return "*" + t.Elem.String() }
func (FPtr) sizeofSelf() int   { return 2 }

type FFnPtr struct {
	Params []FlatType
	Ret    FlatType
}

func (t FFnPtr) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("fnptr(%s)%s", strings.Join(parts, ","), t.Ret.String())
}
func (FFnPtr) sizeofSelf() int { return 2 }

type FArr struct {
	Elem FlatType
	N    uint16
}

func (t FArr) String() string  { return fmt.Sprintf("[%d]%s", t.N, t.Elem.String()) }
func (t FArr) sizeofSelf() int { return int(t.N) * Sizeof(t.Elem) }

type FStruct struct{ Fields []FlatType }

func (t FStruct) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.String()
	}
	return "{" + strings.Join(parts, ",") + "}"
}
func (t FStruct) sizeofSelf() int {
	total := 0
	for _, f := range t.Fields {
		total += Sizeof(f)
	}
	return total
}

// Sizeof computes a FlatType's size in bytes, per spec.md §4.5's
// formula (Unit=0, Bool=U8=I8=1, U16=I16=2, U32=I32=4, Ptr=FnPtr=2,
// Arr(t,n)=n*sizeof(t), Struct=sum of field sizes).
func Sizeof(t FlatType) int { return t.sizeofSelf() }

// FromType projects a fully-resolved types.Type down to a FlatType.
// Slice and Option, which have no direct FlatType, are lowered to their
// natural in-memory representations: Slice(T) becomes a two-field
// struct of {Ptr(T), U16} (base + length); Option(T) becomes a
// two-field struct of {Bool, T} (present flag + payload). CompInteger
// reaching this stage (a literal whose width nothing ever constrained)
// defaults to I32, the widest signed width; CompString defaults to the
// same representation as Slice(U8). ArrayPointer, like Pointer, erases
// to a bare address.
func FromType(t types.Type) (FlatType, error) {
	switch tt := t.(type) {
	case types.Unit:
		return FUnit{}, nil
	case types.Bool:
		return FBool{}, nil
	case types.Byte:
		return FInt{Kind: types.U8}, nil
	case types.Int:
		return FInt{Kind: tt.Kind}, nil
	case types.CompInteger:
		return FInt{Kind: types.I32}, nil
	case types.Float:
		return FFloat{}, nil
	case types.Pointer:
		elem, err := FromType(tt.Elem)
		if err != nil {
			return nil, err
		}
		return FPtr{Elem: elem}, nil
	case types.ArrayPointer:
		elem, err := FromType(tt.Elem)
		if err != nil {
			return nil, err
		}
		return FPtr{Elem: elem}, nil
	case types.Slice:
		elem, err := FromType(tt.Elem)
		if err != nil {
			return nil, err
		}
		return FStruct{Fields: []FlatType{FPtr{Elem: elem}, FInt{Kind: types.U16}}}, nil
	case types.CompString:
		return FStruct{Fields: []FlatType{FPtr{Elem: FInt{Kind: types.U8}}, FInt{Kind: types.U16}}}, nil
	case types.Array:
		elem, err := FromType(tt.Elem)
		if err != nil {
			return nil, err
		}
		return FArr{Elem: elem, N: tt.N}, nil
	case types.Option:
		elem, err := FromType(tt.Elem)
		if err != nil {
			return nil, err
		}
		return FStruct{Fields: []FlatType{FBool{}, elem}}, nil
	case types.Function:
		params := make([]FlatType, len(tt.Params))
		for i, p := range tt.Params {
			ft, err := FromType(p)
			if err != nil {
				return nil, err
			}
			params[i] = ft
		}
		ret, err := FromType(tt.Ret)
		if err != nil {
			return nil, err
		}
		return FFnPtr{Params: params, Ret: ret}, nil
	case types.Struct:
		fields := make([]FlatType, len(tt.Fields))
		for i, f := range tt.Fields {
			ft, err := FromType(f.Type)
			if err != nil {
				return nil, err
			}
			fields[i] = ft
		}
		return FStruct{Fields: fields}, nil
	default:
		return nil, diagnostics.New(diagnostics.ErrInternalInvariant, token.Span{}, "type %s cannot be flattened", t)
	}
}
