package checker

import (
	"github.com/rillwright/rill/internal/ast"
	"github.com/rillwright/rill/internal/diagnostics"
	"github.com/rillwright/rill/internal/types"
)

// checkPlace resolves a surface PlaceExpr (the left side of a Rebind) to
// its typed form and the type it currently holds.
func (c *Checker) checkPlace(p ast.PlaceExpr) (ast.TypedPlace, error) {
	switch pe := p.(type) {
	case *ast.IdentPlace:
		sym, err := c.syms.LookupSymbol(pe.Name)
		if err != nil {
			return nil, diagnostics.New(diagnostics.ErrUndefined, pe.Sp, "%s", err)
		}
		return &ast.TypedIdentPlace{Sp: pe.Sp, Name: pe.Name, Type: sym.Type}, nil

	case *ast.DerefPlace:
		elemVar := types.Unknown{Var: c.store.Fresh()}
		inner, err := c.checkExpr(pe.Inner, types.Pointer{Elem: elemVar})
		if err != nil {
			return nil, err
		}
		ptr, ok := c.store.Resolve(inner.ExprType()).(types.Pointer)
		if !ok {
			return nil, diagnostics.New(diagnostics.ErrNotPtr, pe.Sp, "cannot dereference non-pointer %s", inner.ExprType())
		}
		return &ast.TypedDerefPlace{Sp: pe.Sp, Inner: inner, Type: ptr.Elem}, nil

	case *ast.IndexPlace:
		elemVar := types.Unknown{Var: c.store.Fresh()}
		base, err := c.checkExpr(pe.Base, elemVar)
		if err != nil {
			return nil, err
		}
		elemType, err := elementTypeOf(c.store.Resolve(base.ExprType()))
		if err != nil {
			return nil, diagnostics.New(diagnostics.ErrInvalidOp, pe.Sp, "%s", err)
		}
		idx, err := c.checkExpr(pe.Index, types.Unknown{Var: c.store.Fresh(types.CompInteger{}, types.Int{Kind: types.U16}, types.Int{Kind: types.U8})})
		if err != nil {
			return nil, err
		}
		return &ast.TypedIndexPlace{Sp: pe.Sp, Base: base, Index: idx, Type: elemType}, nil

	case *ast.FieldPlace:
		base, err := c.checkExpr(pe.Base, types.Unknown{Var: c.store.Fresh()})
		if err != nil {
			return nil, err
		}
		st, ok := c.store.Resolve(base.ExprType()).(types.Struct)
		if !ok {
			return nil, diagnostics.New(diagnostics.ErrInvalidOp, pe.Sp, "field access on non-struct %s", base.ExprType())
		}
		ft := st.FieldType(pe.Field)
		if ft == nil {
			return nil, diagnostics.New(diagnostics.ErrUndefined, pe.Sp, "no field %q", pe.Field)
		}
		return &ast.TypedFieldPlace{Sp: pe.Sp, Base: base, Field: pe.Field, Type: ft}, nil

	default:
		return nil, diagnostics.New(diagnostics.ErrInternalInvariant, p.Span(), "unhandled place node %T", p)
	}
}

// tryCheckPlace interprets a Ref's operand expression as a place when
// its syntax denotes one (Ident, Deref, Index, FieldAccess); otherwise
// it reports isPlace=false so the caller falls back to the
// hidden-temporary rule (spec.md §4.2).
func (c *Checker) tryCheckPlace(e ast.Expr, expected types.Type) (ast.TypedPlace, bool, error) {
	var surface ast.PlaceExpr
	switch ex := e.(type) {
	case *ast.Ident:
		surface = &ast.IdentPlace{Sp: ex.Sp, Name: ex.Name}
	case *ast.DerefExpr:
		surface = &ast.DerefPlace{Sp: ex.Sp, Inner: ex.Inner}
	case *ast.IndexExpr:
		surface = &ast.IndexPlace{Sp: ex.Sp, Base: ex.Base, Index: ex.Index}
	case *ast.FieldExpr:
		surface = &ast.FieldPlace{Sp: ex.Sp, Base: ex.Base, Field: ex.Field}
	default:
		return nil, false, nil
	}
	place, err := c.checkPlace(surface)
	if err != nil {
		return nil, false, err
	}
	if _, err := types.Unify(c.store, place.PlaceType(), expected); err != nil {
		return nil, false, wrapMismatch(e.Span(), err)
	}
	return place, true, nil
}
