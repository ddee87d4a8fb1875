package checker

import (
	"github.com/rillwright/rill/internal/ast"
	"github.com/rillwright/rill/internal/diagnostics"
	"github.com/rillwright/rill/internal/symtab"
	"github.com/rillwright/rill/internal/token"
	"github.com/rillwright/rill/internal/types"
)

// checkExpr checks e against expected, returning the typed node whose
// ExprType is the unification of e's actual type with expected.
func (c *Checker) checkExpr(e ast.Expr, expected types.Type) (ast.TypedExpr, error) {
	switch ex := e.(type) {
	case *ast.Ident:
		sym, err := c.syms.LookupSymbol(ex.Name)
		if err != nil {
			return nil, diagnostics.New(diagnostics.ErrUndefined, ex.Sp, "%s", err)
		}
		t, err := types.Unify(c.store, sym.Type, expected)
		if err != nil {
			return nil, wrapMismatch(ex.Sp, err)
		}
		return &ast.TypedIdent{Sp: ex.Sp, Name: ex.Name, Type: t}, nil

	case *ast.IntLit:
		t, err := types.Unify(c.store, types.CompInteger{}, expected)
		if err != nil {
			return nil, wrapMismatch(ex.Sp, err)
		}
		return &ast.TypedIntLit{Sp: ex.Sp, Value: ex.Value, Type: t}, nil

	case *ast.StringLit:
		t, err := types.Unify(c.store, types.CompString{}, expected)
		if err != nil {
			return nil, wrapMismatch(ex.Sp, err)
		}
		return &ast.TypedStringLit{Sp: ex.Sp, Value: ex.Value, Type: t}, nil

	case *ast.BoolLit:
		if _, err := types.Unify(c.store, types.Bool{}, expected); err != nil {
			return nil, wrapMismatch(ex.Sp, err)
		}
		return &ast.TypedBoolLit{Sp: ex.Sp, Value: ex.Value}, nil

	case *ast.UnitLit:
		if _, err := types.Unify(c.store, types.Unit{}, expected); err != nil {
			return nil, wrapMismatch(ex.Sp, err)
		}
		return &ast.TypedUnitLit{Sp: ex.Sp}, nil

	case *ast.NullLit:
		t, err := types.Unify(c.store, types.Option{Elem: types.Unknown{Var: c.store.Fresh()}}, expected)
		if err != nil {
			return nil, wrapMismatch(ex.Sp, err)
		}
		return &ast.TypedNullLit{Sp: ex.Sp, Type: t}, nil

	case *ast.BinaryExpr:
		return c.checkBinary(ex, expected)

	case *ast.CompareExpr:
		return c.checkCompare(ex, expected)

	case *ast.NotExpr:
		operand, err := c.checkExpr(ex.Operand, types.Bool{})
		if err != nil {
			return nil, err
		}
		if _, err := types.Unify(c.store, types.Bool{}, expected); err != nil {
			return nil, wrapMismatch(ex.Sp, err)
		}
		return &ast.TypedNotExpr{Sp: ex.Sp, Operand: operand}, nil

	case *ast.NegExpr:
		operand, err := c.checkExpr(ex.Operand, expected)
		if err != nil {
			return nil, err
		}
		return &ast.TypedNegExpr{Sp: ex.Sp, Operand: operand, Type: operand.ExprType()}, nil

	case *ast.DerefExpr:
		return c.checkDeref(ex, expected)

	case *ast.RefExpr:
		return c.checkRef(ex, expected)

	case *ast.IfExpr:
		return c.checkIf(ex, expected)

	case *ast.BlockExpr:
		return c.checkBlock(ex, expected)

	case *ast.LambdaExpr:
		return c.checkLambda(ex, expected)

	case *ast.CallExpr:
		return c.checkCall(ex, expected)

	case *ast.ArrayExpr:
		return c.checkArray(ex, expected)

	case *ast.StructConstructorExpr:
		return c.checkStructConstructor(ex, expected)

	case *ast.CastExpr:
		return c.checkCast(ex)

	case *ast.ConcatExpr:
		return c.checkConcat(ex, expected)

	case *ast.IndexExpr:
		return c.checkIndexExpr(ex, expected)

	case *ast.FieldExpr:
		return c.checkFieldExpr(ex, expected)

	default:
		return nil, diagnostics.New(diagnostics.ErrInternalInvariant, e.Span(), "unhandled expression node %T", e)
	}
}

// wrapMismatch attaches a source span to an underlying unification
// error so the caller reports a located diagnostic (spec.md §7: every
// type error carries a location).
func wrapMismatch(span token.Span, err error) error {
	switch err.(type) {
	case *types.TypeMismatchError:
		return diagnostics.New(diagnostics.ErrTypeMismatch, span, "%s", err)
	case *types.UnequalArraySizesError:
		return diagnostics.New(diagnostics.ErrUnequalArraySizes, span, "%s", err)
	case *types.UnequalArgLenError:
		return diagnostics.New(diagnostics.ErrUnequalArgLen, span, "%s", err)
	case *types.DisjointConstraintsError:
		return diagnostics.New(diagnostics.ErrDisjointConstraints, span, "%s", err)
	default:
		return diagnostics.New(diagnostics.ErrTypeMismatch, span, "%s", err)
	}
}

// numericCommon unifies two operand types into one numeric type, used
// for arithmetic and comparison (spec.md §4.2: "unify operand types
// into a common numeric type").
func (c *Checker) numericCommon(left, right ast.Expr) (ast.TypedExpr, ast.TypedExpr, types.Type, error) {
	lv := types.Unknown{Var: c.store.Fresh(types.CompInteger{}, types.Int{Kind: types.U8}, types.Int{Kind: types.I8}, types.Int{Kind: types.U16}, types.Int{Kind: types.I16}, types.Int{Kind: types.U32}, types.Int{Kind: types.I32})}
	l, err := c.checkExpr(left, lv)
	if err != nil {
		return nil, nil, nil, err
	}
	r, err := c.checkExpr(right, l.ExprType())
	if err != nil {
		return nil, nil, nil, err
	}
	common, err := types.Unify(c.store, l.ExprType(), r.ExprType())
	if err != nil {
		return nil, nil, nil, diagnostics.New(diagnostics.ErrInvalidOp, left.Span(), "%s", err)
	}
	return l, r, common, nil
}

func (c *Checker) checkBinary(ex *ast.BinaryExpr, expected types.Type) (ast.TypedExpr, error) {
	l, r, common, err := c.numericCommon(ex.Left, ex.Right)
	if err != nil {
		return nil, err
	}
	t, err := types.Unify(c.store, common, expected)
	if err != nil {
		return nil, wrapMismatch(ex.Sp, err)
	}
	return &ast.TypedBinaryExpr{Sp: ex.Sp, Op: ex.Op, Left: l, Right: r, Type: t}, nil
}

func (c *Checker) checkCompare(ex *ast.CompareExpr, expected types.Type) (ast.TypedExpr, error) {
	l, r, common, err := c.numericCommon(ex.Left, ex.Right)
	if err != nil {
		return nil, err
	}
	if _, err := types.Unify(c.store, types.Bool{}, expected); err != nil {
		return nil, wrapMismatch(ex.Sp, err)
	}
	return &ast.TypedCompareExpr{Sp: ex.Sp, Op: ex.Op, Left: l, Right: r, OperandType: common}, nil
}

func (c *Checker) checkDeref(ex *ast.DerefExpr, expected types.Type) (ast.TypedExpr, error) {
	elemVar := types.Unknown{Var: c.store.Fresh()}
	inner, err := c.checkExpr(ex.Inner, types.Pointer{Elem: elemVar})
	if err != nil {
		return nil, err
	}
	ptr, ok := c.store.Resolve(inner.ExprType()).(types.Pointer)
	if !ok {
		return nil, diagnostics.New(diagnostics.ErrNotPtr, ex.Sp, "cannot dereference non-pointer %s", inner.ExprType())
	}
	t, err := types.Unify(c.store, ptr.Elem, expected)
	if err != nil {
		return nil, wrapMismatch(ex.Sp, err)
	}
	return &ast.TypedDerefExpr{Sp: ex.Sp, Inner: inner, Type: t}, nil
}

func (c *Checker) checkRef(ex *ast.RefExpr, expected types.Type) (ast.TypedExpr, error) {
	elemVar := types.Unknown{Var: c.store.Fresh()}

	place, isPlace, err := c.tryCheckPlace(ex.Inner, elemVar)
	if err != nil {
		return nil, err
	}

	var innerType types.Type
	var typedPlace ast.TypedPlace
	if isPlace {
		typedPlace = place
		innerType = place.PlaceType()
	} else {
		val, err := c.checkExpr(ex.Inner, elemVar)
		if err != nil {
			return nil, err
		}
		innerType = val.ExprType()
		typedPlace = &ast.TypedTempPlace{Sp: ex.Sp, Value: val, Type: innerType}
	}

	t, err := types.Unify(c.store, types.Pointer{Elem: innerType}, expected)
	if err != nil {
		return nil, wrapMismatch(ex.Sp, err)
	}
	return &ast.TypedRefExpr{Sp: ex.Sp, Inner: typedPlace, Type: t}, nil
}

func (c *Checker) checkIf(ex *ast.IfExpr, expected types.Type) (ast.TypedExpr, error) {
	cond, err := c.checkExpr(ex.Cond, types.Bool{})
	if err != nil {
		return nil, err
	}
	then, err := c.checkExpr(ex.Then, expected)
	if err != nil {
		return nil, err
	}
	els, err := c.checkExpr(ex.Else, then.ExprType())
	if err != nil {
		return nil, err
	}
	t, err := types.Unify(c.store, then.ExprType(), els.ExprType())
	if err != nil {
		return nil, diagnostics.New(diagnostics.ErrTypeMismatch, ex.Sp, "if branches disagree: %s", err)
	}
	return &ast.TypedIfExpr{Sp: ex.Sp, Cond: cond, Then: then, Else: els, Type: t}, nil
}

func (c *Checker) checkBlock(ex *ast.BlockExpr, expected types.Type) (ast.TypedExpr, error) {
	c.syms.Push(symtab.ScopeBlock)
	defer c.syms.Pop()

	stmts := make([]ast.TypedStmt, len(ex.Stmts))
	for i, s := range ex.Stmts {
		ts, err := c.checkStmt(s)
		if err != nil {
			return nil, err
		}
		stmts[i] = ts
	}

	if ex.Trailing == nil {
		if _, err := types.Unify(c.store, types.Unit{}, expected); err != nil {
			return nil, wrapMismatch(ex.Sp, err)
		}
		return &ast.TypedBlockExpr{Sp: ex.Sp, Stmts: stmts, Type: types.Unit{}}, nil
	}

	trailing, err := c.checkExpr(ex.Trailing, expected)
	if err != nil {
		return nil, err
	}
	return &ast.TypedBlockExpr{Sp: ex.Sp, Stmts: stmts, Trailing: trailing, Type: trailing.ExprType()}, nil
}

func (c *Checker) checkLambda(ex *ast.LambdaExpr, expected types.Type) (ast.TypedExpr, error) {
	c.syms.Push(symtab.ScopeFunction)
	defer c.syms.Pop()

	params := make([]ast.TypedParam, len(ex.Params))
	paramTypes := make([]types.Type, len(ex.Params))
	for i, p := range ex.Params {
		pt := c.resolveType(p.Type)
		if err := c.syms.Add(p.Name, pt, false); err != nil {
			return nil, err
		}
		params[i] = ast.TypedParam{Name: p.Name, Type: pt}
		paramTypes[i] = pt
	}
	retType := c.resolveType(ex.Ret)

	prevReturn := c.currentReturn
	c.currentReturn = retType
	body, err := c.checkExpr(ex.Body, retType)
	c.currentReturn = prevReturn
	if err != nil {
		return nil, err
	}

	fnType := types.Function{Params: paramTypes, Ret: body.ExprType()}
	t, err := types.Unify(c.store, fnType, expected)
	if err != nil {
		return nil, wrapMismatch(ex.Sp, err)
	}
	return &ast.TypedLambdaExpr{Sp: ex.Sp, Params: params, Body: body, Type: t}, nil
}

func (c *Checker) checkCall(ex *ast.CallExpr, expected types.Type) (ast.TypedExpr, error) {
	calleeType, err := c.syms.Lookup(ex.Callee)
	if err != nil {
		return nil, diagnostics.New(diagnostics.ErrUndefined, ex.Sp, "%s", err)
	}
	fn, ok := c.store.Resolve(calleeType).(types.Function)
	if !ok {
		return nil, diagnostics.New(diagnostics.ErrCannotCall, ex.Sp, "%s is not callable", ex.Callee)
	}
	if len(fn.Params) != len(ex.Args) {
		return nil, diagnostics.New(diagnostics.ErrUnequalArgLen, ex.Sp, "%s expects %d arguments, got %d", ex.Callee, len(fn.Params), len(ex.Args))
	}
	args := make([]ast.TypedExpr, len(ex.Args))
	for i, a := range ex.Args {
		// An Opaque parameter (spec.md §6.4's print) accepts anything;
		// checking against a fresh variable rather than Opaque itself
		// lets the argument keep its own concrete width, which codegen
		// needs to size the value it passes.
		expectedArg := fn.Params[i]
		if _, isOpaque := fn.Params[i].(types.Opaque); isOpaque {
			expectedArg = types.Unknown{Var: c.store.Fresh()}
		}
		ta, err := c.checkExpr(a, expectedArg)
		if err != nil {
			return nil, err
		}
		args[i] = ta
	}
	t, err := types.Unify(c.store, fn.Ret, expected)
	if err != nil {
		return nil, wrapMismatch(ex.Sp, err)
	}
	return &ast.TypedCallExpr{Sp: ex.Sp, Callee: ex.Callee, Args: args, Type: t}, nil
}

func (c *Checker) checkArray(ex *ast.ArrayExpr, expected types.Type) (ast.TypedExpr, error) {
	elemVar := types.Unknown{Var: c.store.Fresh()}
	elems := make([]ast.TypedExpr, len(ex.Elems))
	elemType := types.Type(elemVar)
	for i, el := range ex.Elems {
		te, err := c.checkExpr(el, elemType)
		if err != nil {
			return nil, err
		}
		elems[i] = te
		elemType = te.ExprType()
	}
	arr := types.Array{Elem: elemType, N: uint16(len(ex.Elems))}
	t, err := types.Unify(c.store, arr, expected)
	if err != nil {
		return nil, wrapMismatch(ex.Sp, err)
	}
	return &ast.TypedArrayExpr{Sp: ex.Sp, Elems: elems, Type: t}, nil
}

func (c *Checker) checkStructConstructor(ex *ast.StructConstructorExpr, expected types.Type) (ast.TypedExpr, error) {
	fields := make([]ast.TypedStructFieldInit, len(ex.Fields))
	structFields := make([]types.StructField, len(ex.Fields))
	for i, f := range ex.Fields {
		tv, err := c.checkExpr(f.Value, types.Unknown{Var: c.store.Fresh()})
		if err != nil {
			return nil, err
		}
		fields[i] = ast.TypedStructFieldInit{Name: f.Name, Value: tv}
		structFields[i] = types.StructField{Name: f.Name, Type: tv.ExprType()}
	}
	st := types.Struct{Fields: structFields}
	t, err := types.Unify(c.store, st, expected)
	if err != nil {
		return nil, wrapMismatch(ex.Sp, err)
	}
	return &ast.TypedStructConstructorExpr{Sp: ex.Sp, Fields: fields, Type: t}, nil
}

// checkCast resolves the Rust implementation's Open Question (iii): the
// cast target type must be parsed from Target and overrides the typed
// representation, the underlying runtime representation left unchanged
// where possible (spec.md §4.2).
func (c *Checker) checkCast(ex *ast.CastExpr) (ast.TypedExpr, error) {
	inner, err := c.checkExpr(ex.Inner, types.Unknown{Var: c.store.Fresh()})
	if err != nil {
		return nil, err
	}
	target := c.resolveType(ex.Target)
	return &ast.TypedCastExpr{Sp: ex.Sp, Inner: inner, Type: target}, nil
}

func (c *Checker) checkConcat(ex *ast.ConcatExpr, expected types.Type) (ast.TypedExpr, error) {
	lv := types.Unknown{Var: c.store.Fresh(types.CompString{})}
	l, err := c.checkExpr(ex.Left, lv)
	if err != nil {
		return nil, err
	}
	r, err := c.checkExpr(ex.Right, l.ExprType())
	if err != nil {
		return nil, err
	}
	t, err := types.Unify(c.store, r.ExprType(), expected)
	if err != nil {
		return nil, wrapMismatch(ex.Sp, err)
	}
	return &ast.TypedConcatExpr{Sp: ex.Sp, Left: l, Right: r, Type: t}, nil
}

func (c *Checker) checkIndexExpr(ex *ast.IndexExpr, expected types.Type) (ast.TypedExpr, error) {
	elemVar := types.Unknown{Var: c.store.Fresh()}
	base, err := c.checkExpr(ex.Base, elemVar)
	if err != nil {
		return nil, err
	}
	elemType, err := elementTypeOf(c.store.Resolve(base.ExprType()))
	if err != nil {
		return nil, diagnostics.New(diagnostics.ErrInvalidOp, ex.Sp, "%s", err)
	}
	idx, err := c.checkExpr(ex.Index, types.Unknown{Var: c.store.Fresh(types.CompInteger{}, types.Int{Kind: types.U16}, types.Int{Kind: types.U8})})
	if err != nil {
		return nil, err
	}
	t, err := types.Unify(c.store, elemType, expected)
	if err != nil {
		return nil, wrapMismatch(ex.Sp, err)
	}
	return &ast.TypedIndexExpr{Sp: ex.Sp, Base: base, Index: idx, Type: t}, nil
}

func (c *Checker) checkFieldExpr(ex *ast.FieldExpr, expected types.Type) (ast.TypedExpr, error) {
	base, err := c.checkExpr(ex.Base, types.Unknown{Var: c.store.Fresh()})
	if err != nil {
		return nil, err
	}
	st, ok := c.store.Resolve(base.ExprType()).(types.Struct)
	if !ok {
		return nil, diagnostics.New(diagnostics.ErrInvalidOp, ex.Sp, "field access on non-struct %s", base.ExprType())
	}
	ft := st.FieldType(ex.Field)
	if ft == nil {
		return nil, diagnostics.New(diagnostics.ErrUndefined, ex.Sp, "no field %q", ex.Field)
	}
	t, err := types.Unify(c.store, ft, expected)
	if err != nil {
		return nil, wrapMismatch(ex.Sp, err)
	}
	return &ast.TypedFieldExpr{Sp: ex.Sp, Base: base, Field: ex.Field, Type: t}, nil
}

func elementTypeOf(t types.Type) (types.Type, error) {
	switch tt := t.(type) {
	case types.Array:
		return tt.Elem, nil
	case types.Slice:
		return tt.Elem, nil
	case types.ArrayPointer:
		return tt.Elem, nil
	default:
		return nil, &types.TypeMismatchError{A: types.Slice{Elem: types.Opaque{}}, B: t}
	}
}
