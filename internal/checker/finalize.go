package checker

import (
	"github.com/rillwright/rill/internal/ast"
	"github.com/rillwright/rill/internal/diagnostics"
	"github.com/rillwright/rill/internal/types"
)

// finalize walks the fully checked program, resolving every type
// variable through the store and rejecting any node whose type is
// still unresolved (spec.md §3 invariant i: "unresolved variables at
// finalization are errors").
func (c *Checker) finalize(prog *ast.TypedProgram) error {
	for _, s := range prog.Statics {
		s.Type = c.store.Resolve(s.Type)
		if err := c.finalizeExpr(s.Value); err != nil {
			return err
		}
	}
	for _, cn := range prog.Consts {
		cn.Type = c.store.Resolve(cn.Type)
		if err := c.finalizeExpr(cn.Value); err != nil {
			return err
		}
	}
	for _, fn := range prog.Fns {
		fn.Ret = c.store.Resolve(fn.Ret)
		for i := range fn.Params {
			fn.Params[i].Type = c.store.Resolve(fn.Params[i].Type)
		}
		if err := c.finalizeExpr(fn.Body); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) requireResolved(t types.Type, n ast.TypedNode) error {
	resolved := c.store.Resolve(t)
	if !types.AllResolved(resolved) {
		return diagnostics.New(diagnostics.ErrNonConcreteType, n.Span(), "type not fully resolved: %s", resolved)
	}
	return nil
}

func (c *Checker) finalizeExpr(e ast.TypedExpr) error {
	if e == nil {
		return nil
	}
	if err := c.requireResolved(e.ExprType(), e); err != nil {
		return err
	}
	switch ex := e.(type) {
	case *ast.TypedBinaryExpr:
		ex.Type = c.store.Resolve(ex.Type)
		return firstErr(c.finalizeExpr(ex.Left), c.finalizeExpr(ex.Right))
	case *ast.TypedCompareExpr:
		ex.OperandType = c.store.Resolve(ex.OperandType)
		return firstErr(c.finalizeExpr(ex.Left), c.finalizeExpr(ex.Right))
	case *ast.TypedNotExpr:
		return c.finalizeExpr(ex.Operand)
	case *ast.TypedNegExpr:
		ex.Type = c.store.Resolve(ex.Type)
		return c.finalizeExpr(ex.Operand)
	case *ast.TypedDerefExpr:
		ex.Type = c.store.Resolve(ex.Type)
		return c.finalizeExpr(ex.Inner)
	case *ast.TypedRefExpr:
		ex.Type = c.store.Resolve(ex.Type)
		return c.finalizePlace(ex.Inner)
	case *ast.TypedIfExpr:
		ex.Type = c.store.Resolve(ex.Type)
		return firstErr(c.finalizeExpr(ex.Cond), c.finalizeExpr(ex.Then), c.finalizeExpr(ex.Else))
	case *ast.TypedBlockExpr:
		ex.Type = c.store.Resolve(ex.Type)
		for _, s := range ex.Stmts {
			if err := c.finalizeStmt(s); err != nil {
				return err
			}
		}
		return c.finalizeExpr(ex.Trailing)
	case *ast.TypedLambdaExpr:
		ex.Type = c.store.Resolve(ex.Type)
		for i := range ex.Params {
			ex.Params[i].Type = c.store.Resolve(ex.Params[i].Type)
		}
		return c.finalizeExpr(ex.Body)
	case *ast.TypedCallExpr:
		ex.Type = c.store.Resolve(ex.Type)
		for _, a := range ex.Args {
			if err := c.finalizeExpr(a); err != nil {
				return err
			}
		}
		return nil
	case *ast.TypedArrayExpr:
		ex.Type = c.store.Resolve(ex.Type)
		for _, el := range ex.Elems {
			if err := c.finalizeExpr(el); err != nil {
				return err
			}
		}
		return nil
	case *ast.TypedStructConstructorExpr:
		ex.Type = c.store.Resolve(ex.Type)
		for _, f := range ex.Fields {
			if err := c.finalizeExpr(f.Value); err != nil {
				return err
			}
		}
		return nil
	case *ast.TypedCastExpr:
		ex.Type = c.store.Resolve(ex.Type)
		return c.finalizeExpr(ex.Inner)
	case *ast.TypedConcatExpr:
		ex.Type = c.store.Resolve(ex.Type)
		return firstErr(c.finalizeExpr(ex.Left), c.finalizeExpr(ex.Right))
	case *ast.TypedIndexExpr:
		ex.Type = c.store.Resolve(ex.Type)
		return firstErr(c.finalizeExpr(ex.Base), c.finalizeExpr(ex.Index))
	case *ast.TypedFieldExpr:
		ex.Type = c.store.Resolve(ex.Type)
		return c.finalizeExpr(ex.Base)
	case *ast.TypedIdent:
		ex.Type = c.store.Resolve(ex.Type)
		return nil
	case *ast.TypedIntLit:
		ex.Type = c.store.Resolve(ex.Type)
		return nil
	case *ast.TypedStringLit:
		ex.Type = c.store.Resolve(ex.Type)
		return nil
	case *ast.TypedNullLit:
		ex.Type = c.store.Resolve(ex.Type)
		return nil
	case *ast.TypedRaiseExpr:
		ex.Type = c.store.Resolve(ex.Type)
		return nil
	case *ast.TypedBoolLit, *ast.TypedUnitLit:
		return nil
	default:
		return nil
	}
}

func (c *Checker) finalizePlace(p ast.TypedPlace) error {
	if err := c.requireResolved(p.PlaceType(), p); err != nil {
		return err
	}
	switch pl := p.(type) {
	case *ast.TypedDerefPlace:
		return c.finalizeExpr(pl.Inner)
	case *ast.TypedIndexPlace:
		return firstErr(c.finalizeExpr(pl.Base), c.finalizeExpr(pl.Index))
	case *ast.TypedFieldPlace:
		return c.finalizeExpr(pl.Base)
	case *ast.TypedTempPlace:
		return c.finalizeExpr(pl.Value)
	default:
		return nil
	}
}

func (c *Checker) finalizeStmt(s ast.TypedStmt) error {
	switch st := s.(type) {
	case *ast.TypedExpressStmt:
		return c.finalizeExpr(st.Expr)
	case *ast.TypedLetStmt:
		st.Type = c.store.Resolve(st.Type)
		return c.finalizeExpr(st.Value)
	case *ast.TypedVarStmt:
		st.Type = c.store.Resolve(st.Type)
		return c.finalizeExpr(st.Value)
	case *ast.TypedRebindStmt:
		return firstErr(c.finalizePlace(st.Place), c.finalizeExpr(st.Value))
	case *ast.TypedReturnStmt:
		return c.finalizeExpr(st.Value)
	default:
		return nil
	}
}

func firstErr(errs ...error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}
