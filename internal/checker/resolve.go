package checker

import (
	"github.com/rillwright/rill/internal/ast"
	"github.com/rillwright/rill/internal/diagnostics"
	"github.com/rillwright/rill/internal/types"
)

// resolveType turns a surface TypeExpr into a types.Type. A nil TypeExpr
// resolves to a fresh, unconstrained type variable (spec.md §4.2: an
// absent annotation on Let/Var means "infer").
func (c *Checker) resolveType(te *ast.TypeExpr) types.Type {
	if te == nil {
		return types.Unknown{Var: c.store.Fresh()}
	}
	switch te.Kind {
	case ast.TypeName:
		return c.resolveNamed(te)
	case ast.TypeOption:
		return types.Option{Elem: c.resolveType(te.Elem)}
	case ast.TypePointer:
		return types.Pointer{Elem: c.resolveType(te.Elem)}
	case ast.TypeArrayPointer:
		return types.ArrayPointer{Elem: c.resolveType(te.Elem)}
	case ast.TypeSlice:
		return types.Slice{Elem: c.resolveType(te.Elem)}
	case ast.TypeArray:
		return types.Array{Elem: c.resolveType(te.Elem), N: te.N}
	case ast.TypeFunction:
		params := make([]types.Type, len(te.Params))
		for i, p := range te.Params {
			params[i] = c.resolveType(p)
		}
		return types.Function{Params: params, Ret: c.resolveType(te.Ret)}
	default:
		c.bag.Addf(diagnostics.ErrInternalInvariant, te.Sp, "unrecognized type annotation kind %d", te.Kind)
		return types.Opaque{}
	}
}

// resolveNamed maps a bare identifier type annotation to its concrete
// type. Per spec.md §9 Open Question (i), the original parser mapped
// "float" to I8 by mistake; this maps it to Float as the implementers'
// note directs.
func (c *Checker) resolveNamed(te *ast.TypeExpr) types.Type {
	switch te.Name {
	case "bool":
		return types.Bool{}
	case "byte":
		return types.Byte{}
	case "u8":
		return types.Int{Kind: types.U8}
	case "i8":
		return types.Int{Kind: types.I8}
	case "u16":
		return types.Int{Kind: types.U16}
	case "i16":
		return types.Int{Kind: types.I16}
	case "u32":
		return types.Int{Kind: types.U32}
	case "i32":
		return types.Int{Kind: types.I32}
	case "float":
		return types.Float{}
	case "unit":
		return types.Unit{}
	default:
		if st, ok := c.structs[te.Name]; ok {
			return st
		}
		c.bag.Addf(diagnostics.ErrUndefined, te.Sp, "undefined type %q", te.Name)
		return types.Opaque{}
	}
}
