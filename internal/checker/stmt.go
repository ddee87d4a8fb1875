package checker

import (
	"github.com/rillwright/rill/internal/ast"
	"github.com/rillwright/rill/internal/diagnostics"
	"github.com/rillwright/rill/internal/types"
)

func (c *Checker) checkStmt(s ast.Stmt) (ast.TypedStmt, error) {
	switch st := s.(type) {
	case *ast.ExpressStmt:
		e, err := c.checkExpr(st.Expr, types.Unknown{Var: c.store.Fresh()})
		if err != nil {
			return nil, err
		}
		return &ast.TypedExpressStmt{Sp: st.Sp, Expr: e}, nil

	case *ast.LetStmt:
		expected := c.resolveType(st.Type)
		e, err := c.checkExpr(st.Value, expected)
		if err != nil {
			return nil, err
		}
		if err := c.syms.Add(st.Name, e.ExprType(), false); err != nil {
			return nil, diagnostics.New(diagnostics.ErrInternalInvariant, st.Sp, "%s", err)
		}
		return &ast.TypedLetStmt{Sp: st.Sp, Name: st.Name, Type: e.ExprType(), Value: e}, nil

	case *ast.VarStmt:
		expected := c.resolveType(st.Type)
		e, err := c.checkExpr(st.Value, expected)
		if err != nil {
			return nil, err
		}
		if err := c.syms.Add(st.Name, e.ExprType(), true); err != nil {
			return nil, diagnostics.New(diagnostics.ErrInternalInvariant, st.Sp, "%s", err)
		}
		return &ast.TypedVarStmt{Sp: st.Sp, Name: st.Name, Type: e.ExprType(), Value: e}, nil

	case *ast.RebindStmt:
		place, err := c.checkPlace(st.Place)
		if err != nil {
			return nil, err
		}
		if ip, ok := place.(*ast.TypedIdentPlace); ok {
			value, err := c.checkExpr(st.Value, ip.Type)
			if err != nil {
				return nil, err
			}
			resolved, err := c.syms.Mutate(c.store, ip.Name, value.ExprType())
			if err != nil {
				return nil, diagnostics.New(diagnostics.ErrNotMutable, st.Sp, "%s", err)
			}
			ip.Type = resolved
			return &ast.TypedRebindStmt{Sp: st.Sp, Place: ip, Value: value}, nil
		}
		value, err := c.checkExpr(st.Value, place.PlaceType())
		if err != nil {
			return nil, err
		}
		return &ast.TypedRebindStmt{Sp: st.Sp, Place: place, Value: value}, nil

	case *ast.ReturnStmt:
		if st.Value == nil {
			if c.currentReturn != nil {
				if _, err := types.Unify(c.store, types.Unit{}, c.currentReturn); err != nil {
					return nil, wrapMismatch(st.Sp, err)
				}
			}
			return &ast.TypedReturnStmt{Sp: st.Sp}, nil
		}
		expected := types.Type(types.Unknown{Var: c.store.Fresh()})
		if c.currentReturn != nil {
			expected = c.currentReturn
		}
		v, err := c.checkExpr(st.Value, expected)
		if err != nil {
			return nil, err
		}
		return &ast.TypedReturnStmt{Sp: st.Sp, Value: v}, nil

	default:
		return nil, diagnostics.New(diagnostics.ErrInternalInvariant, s.Span(), "unhandled statement node %T", s)
	}
}
