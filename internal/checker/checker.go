// Package checker implements spec.md §4.2: a bidirectional type checker
// that walks the surface AST, threading an expected type through each
// visit and unifying it against the actual type it discovers, producing
// a typed AST in which every node carries its resolved type.
//
// The two-pass program structure (forward-declare every top-level type,
// then check bodies) and the scoped-symbol-table plumbing follow the
// teacher's internal/backend checking passes; the bidirectional
// expected/actual unification discipline and the error taxonomy are
// spec.md §4.2's own, grounded in original_source's ttype.rs and
// ttype/stab.rs (specify for forward declarations, mutate for rebinds).
package checker

import (
	"github.com/rillwright/rill/internal/ast"
	"github.com/rillwright/rill/internal/diagnostics"
	"github.com/rillwright/rill/internal/symtab"
	"github.com/rillwright/rill/internal/types"
)

// Checker holds the state of one type-check session: its type variable
// store (dropped after lowering, per spec.md §5) and its scoped symbol
// table.
type Checker struct {
	store   *types.Store
	syms    *symtab.Table
	bag     *diagnostics.Bag
	structs map[string]types.Struct

	// currentReturn is the enclosing function's return type, consulted
	// by ReturnStmt so that a mid-body return unifies against it even
	// though the function's overall body type is unified separately.
	currentReturn types.Type
}

// New creates a checker with the built-in print symbol installed
// (spec.md §6.4: print : Function([Opaque], Unit)).
func New() *Checker {
	c := &Checker{
		store:   types.NewStore(),
		syms:    symtab.New(),
		bag:     &diagnostics.Bag{},
		structs: make(map[string]types.Struct),
	}
	_ = c.syms.Add("print", types.Function{Params: []types.Type{types.Opaque{}}, Ret: types.Unit{}}, false)
	return c
}

// Store exposes the type variable store so later stages (none in this
// pipeline need it beyond Check, since lowering consumes only resolved
// types) can inspect it if needed.
func (c *Checker) Store() *types.Store { return c.store }

// Check type-checks an entire program. Per spec.md §7, type checking
// has no recovery: it returns the first error encountered.
func (c *Checker) Check(prog *ast.Program) (*ast.TypedProgram, error) {
	c.syms.Push(symtab.ScopeGlobal)
	defer c.syms.Pop()

	declared := make(map[string]types.Type, len(prog.Decls))

	// Pass 1: record every top-level declaration's type so forward
	// references (mutual recursion, use-before-def) resolve.
	for _, decl := range prog.Decls {
		switch d := decl.(type) {
		case *ast.StaticDecl:
			t := c.resolveType(d.Type)
			if err := c.syms.Add(d.Name, t, true); err != nil {
				return nil, err
			}
			declared[d.Name] = t
		case *ast.ConstDecl:
			t := c.resolveType(d.Type)
			if err := c.syms.Add(d.Name, t, false); err != nil {
				return nil, err
			}
			declared[d.Name] = t
		case *ast.FnDecl:
			params := make([]types.Type, len(d.Params))
			for i, p := range d.Params {
				params[i] = c.resolveType(p.Type)
			}
			ret := c.resolveType(d.Ret)
			fnType := types.Function{Params: params, Ret: ret}
			if err := c.syms.Add(d.Name, fnType, false); err != nil {
				return nil, err
			}
			declared[d.Name] = fnType
		}
	}
	if d := c.bag.First(); d != nil {
		return nil, d
	}

	out := &ast.TypedProgram{Fns: make(map[string]*ast.TypedFn)}

	// Pass 2: check bodies against their declared types.
	for _, decl := range prog.Decls {
		switch d := decl.(type) {
		case *ast.StaticDecl:
			typed, err := c.checkExpr(d.Value, declared[d.Name])
			if err != nil {
				return nil, err
			}
			resolved, err := c.syms.Specify(c.store, d.Name, typed.ExprType())
			if err != nil {
				return nil, err
			}
			out.Statics = append(out.Statics, &ast.TypedStatic{Sp: d.Sp, Name: d.Name, Type: resolved, Value: typed})
			out.Order = append(out.Order, d.Name)
		case *ast.ConstDecl:
			typed, err := c.checkExpr(d.Value, declared[d.Name])
			if err != nil {
				return nil, err
			}
			resolved, err := c.syms.Specify(c.store, d.Name, typed.ExprType())
			if err != nil {
				return nil, err
			}
			out.Consts = append(out.Consts, &ast.TypedConst{Sp: d.Sp, Name: d.Name, Type: resolved, Value: typed})
			out.Order = append(out.Order, d.Name)
		case *ast.FnDecl:
			fn, err := c.checkFn(d, declared[d.Name].(types.Function))
			if err != nil {
				return nil, err
			}
			out.Fns[d.Name] = fn
			out.Order = append(out.Order, d.Name)
		}
	}
	if d := c.bag.First(); d != nil {
		return nil, d
	}

	if err := c.finalize(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Checker) checkFn(d *ast.FnDecl, sig types.Function) (*ast.TypedFn, error) {
	c.syms.Push(symtab.ScopeFunction)
	defer c.syms.Pop()

	params := make([]ast.TypedParam, len(d.Params))
	for i, p := range d.Params {
		if err := c.syms.Add(p.Name, sig.Params[i], false); err != nil {
			return nil, err
		}
		params[i] = ast.TypedParam{Name: p.Name, Type: sig.Params[i]}
	}

	prevReturn := c.currentReturn
	c.currentReturn = sig.Ret
	body, err := c.checkExpr(d.Body, sig.Ret)
	c.currentReturn = prevReturn
	if err != nil {
		return nil, err
	}
	if _, err := types.Unify(c.store, sig.Ret, body.ExprType()); err != nil {
		return nil, err
	}

	return &ast.TypedFn{Sp: d.Sp, Name: d.Name, Params: params, Ret: c.store.Resolve(sig.Ret), Body: body}, nil
}
