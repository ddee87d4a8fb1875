package ast

import "github.com/rillwright/rill/internal/token"

// TypeExprKind tags which surface type annotation form a TypeExpr is.
type TypeExprKind int

const (
	TypeName TypeExprKind = iota // bool, byte, u8, i16, StructName, ...
	TypeOption                   // ?T
	TypePointer                  // *T
	TypeArrayPointer             // [*]T
	TypeSlice                    // []T
	TypeArray                    // [N]T
	TypeFunction                 // fn(T, T) T
)

// TypeExpr is a surface type annotation as written by the programmer.
// The checker resolves each TypeExpr to a types.Type.
type TypeExpr struct {
	Sp   token.Span
	Kind TypeExprKind

	Name string // TypeName

	Elem *TypeExpr // Option, Pointer, ArrayPointer, Slice, Array
	N    uint16    // Array

	Params []*TypeExpr // Function
	Ret    *TypeExpr   // Function
}

func (t *TypeExpr) Span() token.Span { return t.Sp }
