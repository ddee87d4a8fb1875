package interp

import (
	"fmt"

	"github.com/rillwright/rill/internal/ast"
)

// Interp runs a parsed internal/ast.Program directly, without going
// through internal/checker or internal/flat.
type Interp struct {
	Global  *Environment
	Out     func(string) // where print() writes; defaults to no-op
	funcs   map[string]*ast.FnDecl
}

// New builds an Interp with an empty global environment; the print
// builtin is not stored there but recognized by name when it is called.
func New() *Interp {
	it := &Interp{Global: NewEnvironment(), funcs: make(map[string]*ast.FnDecl)}
	it.Out = func(string) {}
	return it
}

// returnSignal unwinds evalBlock/evalExpr back to the enclosing call
// when a ReturnStmt executes; it is never surfaced to a caller of Run.
type returnSignal struct{ value Value }

func (returnSignal) Error() string { return "return" }

// Run registers every top-level declaration, then executes "main" if
// one exists (the parser synthesizes one from bare top-level statements,
// per internal/parser.ParseProgram), returning its result.
func (it *Interp) Run(prog *ast.Program) (Value, error) {
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ast.FnDecl:
			it.funcs[decl.Name] = decl
		case *ast.StaticDecl:
			v, err := it.evalExpr(decl.Value, it.Global)
			if err != nil {
				return nil, err
			}
			it.Global.Define(decl.Name, v)
		case *ast.ConstDecl:
			v, err := it.evalExpr(decl.Value, it.Global)
			if err != nil {
				return nil, err
			}
			it.Global.Define(decl.Name, v)
		}
	}
	main, ok := it.funcs["main"]
	if !ok {
		return Unit{}, nil
	}
	return it.runTopLevel(main)
}

// runTopLevel executes the synthesized "main" entry point's statements
// directly against the global environment, rather than in a child scope
// the way an ordinary call would: a REPL feeding one line at a time
// expects a `let` on one line to still be visible on the next, and a
// fresh child scope per call would discard it on return.
func (it *Interp) runTopLevel(main *ast.FnDecl) (Value, error) {
	block, ok := main.Body.(*ast.BlockExpr)
	if !ok {
		return it.evalExpr(main.Body, it.Global)
	}
	for _, s := range block.Stmts {
		if err := it.evalStmt(s, it.Global); err != nil {
			if rs, ok := err.(returnSignal); ok {
				return rs.value, nil
			}
			return nil, err
		}
	}
	if block.Trailing != nil {
		return it.evalExpr(block.Trailing, it.Global)
	}
	return Unit{}, nil
}

func (it *Interp) callNamed(name string, args []Value) (Value, error) {
	if fn, ok := it.funcs[name]; ok {
		return it.callFn(fn, args)
	}
	if v, ok := it.Global.Get(name); ok {
		if cl, ok := v.(Closure); ok {
			return cl.Body(args)
		}
	}
	if v, err, handled := it.callBuiltin(name, args); handled {
		return v, err
	}
	return nil, fmt.Errorf("call to undefined function %q", name)
}

func (it *Interp) callFn(fn *ast.FnDecl, args []Value) (Value, error) {
	env := it.Global.Child()
	for i, p := range fn.Params {
		var v Value = Unit{}
		if i < len(args) {
			v = args[i]
		}
		env.Define(p.Name, v)
	}
	v, err := it.evalExpr(fn.Body, env)
	if rs, ok := err.(returnSignal); ok {
		return rs.value, nil
	}
	return v, err
}

func (it *Interp) callBuiltin(name string, args []Value) (Value, error, bool) {
	switch name {
	case "print":
		if len(args) > 0 {
			it.Out(args[0].String())
		} else {
			it.Out("")
		}
		return Unit{}, nil, true
	default:
		return nil, nil, false
	}
}

func (it *Interp) evalExpr(e ast.Expr, env *Environment) (Value, error) {
	switch n := e.(type) {
	case *ast.IntLit:
		return Int(n.Value), nil
	case *ast.StringLit:
		return Str(n.Value), nil
	case *ast.BoolLit:
		return Bool(n.Value), nil
	case *ast.UnitLit:
		return Unit{}, nil
	case *ast.NullLit:
		return Option{Some: false}, nil
	case *ast.Ident:
		if v, ok := env.Get(n.Name); ok {
			return v, nil
		}
		return nil, fmt.Errorf("undefined name %q", n.Name)
	case *ast.BinaryExpr:
		return it.evalBinary(n, env)
	case *ast.CompareExpr:
		return it.evalCompare(n, env)
	case *ast.NotExpr:
		v, err := it.evalExpr(n.Operand, env)
		if err != nil {
			return nil, err
		}
		b, ok := v.(Bool)
		if !ok {
			return nil, fmt.Errorf("! applied to non-bool %s", v.String())
		}
		return Bool(!b), nil
	case *ast.NegExpr:
		v, err := it.evalExpr(n.Operand, env)
		if err != nil {
			return nil, err
		}
		i, ok := v.(Int)
		if !ok {
			return nil, fmt.Errorf("- applied to non-int %s", v.String())
		}
		return Int(-i), nil
	case *ast.RefExpr:
		return it.evalRef(n.Inner, env)
	case *ast.DerefExpr:
		v, err := it.evalExpr(n.Inner, env)
		if err != nil {
			return nil, err
		}
		p, ok := v.(Ptr)
		if !ok {
			return nil, fmt.Errorf("* applied to non-pointer %s", v.String())
		}
		return *p.Slot, nil
	case *ast.IfExpr:
		cond, err := it.evalExpr(n.Cond, env)
		if err != nil {
			return nil, err
		}
		b, ok := cond.(Bool)
		if !ok {
			return nil, fmt.Errorf("if condition is not bool")
		}
		if b {
			return it.evalExpr(n.Then, env)
		}
		return it.evalExpr(n.Else, env)
	case *ast.BlockExpr:
		return it.evalBlock(n, env)
	case *ast.LambdaExpr:
		return it.makeClosure(n.Params, n.Body, env), nil
	case *ast.CallExpr:
		return it.evalCall(n, env)
	case *ast.ArrayExpr:
		elems := make([]Value, len(n.Elems))
		for i, el := range n.Elems {
			v, err := it.evalExpr(el, env)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return Array{Elems: elems}, nil
	case *ast.StructConstructorExpr:
		s := Struct{Fields: make(map[string]Value, len(n.Fields))}
		for _, f := range n.Fields {
			v, err := it.evalExpr(f.Value, env)
			if err != nil {
				return nil, err
			}
			s.Order = append(s.Order, f.Name)
			s.Fields[f.Name] = v
		}
		return s, nil
	case *ast.CastExpr:
		return it.evalExpr(n.Inner, env)
	case *ast.ConcatExpr:
		return it.evalConcat(n, env)
	case *ast.IndexExpr:
		base, err := it.evalExpr(n.Base, env)
		if err != nil {
			return nil, err
		}
		idx, err := it.evalExpr(n.Index, env)
		if err != nil {
			return nil, err
		}
		arr, ok := base.(Array)
		if !ok {
			return nil, fmt.Errorf("index base is not an array")
		}
		i, ok := idx.(Int)
		if !ok || int(i) < 0 || int(i) >= len(arr.Elems) {
			return nil, fmt.Errorf("index out of range")
		}
		return arr.Elems[i], nil
	case *ast.FieldExpr:
		base, err := it.evalExpr(n.Base, env)
		if err != nil {
			return nil, err
		}
		s, ok := base.(Struct)
		if !ok {
			return nil, fmt.Errorf("field access on non-struct")
		}
		v, ok := s.Fields[n.Field]
		if !ok {
			return nil, fmt.Errorf("struct has no field %q", n.Field)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("interp: unhandled expression %T", e)
	}
}

func (it *Interp) makeClosure(params []ast.Param, body ast.Expr, env *Environment) Closure {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return Closure{
		Params: names,
		Body: func(args []Value) (Value, error) {
			call := env.Child()
			for i, name := range names {
				var v Value = Unit{}
				if i < len(args) {
					v = args[i]
				}
				call.Define(name, v)
			}
			v, err := it.evalExpr(body, call)
			if rs, ok := err.(returnSignal); ok {
				return rs.value, nil
			}
			return v, err
		},
	}
}

func (it *Interp) evalRef(e ast.Expr, env *Environment) (Value, error) {
	id, ok := e.(*ast.Ident)
	if !ok {
		v, err := it.evalExpr(e, env)
		if err != nil {
			return nil, err
		}
		return Ptr{Slot: &v}, nil
	}
	slot, ok := env.Slot(id.Name)
	if !ok {
		return nil, fmt.Errorf("cannot take address of undefined name %q", id.Name)
	}
	return Ptr{Slot: slot}, nil
}

func (it *Interp) evalCall(n *ast.CallExpr, env *Environment) (Value, error) {
	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		v, err := it.evalExpr(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	if v, ok := env.Get(n.Callee); ok {
		if cl, ok := v.(Closure); ok {
			return cl.Body(args)
		}
	}
	return it.callNamed(n.Callee, args)
}

func (it *Interp) evalBlock(n *ast.BlockExpr, env *Environment) (Value, error) {
	scope := env.Child()
	for _, s := range n.Stmts {
		if err := it.evalStmt(s, scope); err != nil {
			return nil, err
		}
	}
	if n.Trailing != nil {
		return it.evalExpr(n.Trailing, scope)
	}
	return Unit{}, nil
}

func (it *Interp) evalStmt(s ast.Stmt, env *Environment) error {
	switch n := s.(type) {
	case *ast.ExpressStmt:
		_, err := it.evalExpr(n.Expr, env)
		return err
	case *ast.LetStmt:
		v, err := it.evalExpr(n.Value, env)
		if err != nil {
			return err
		}
		env.Define(n.Name, v)
		return nil
	case *ast.VarStmt:
		v, err := it.evalExpr(n.Value, env)
		if err != nil {
			return err
		}
		env.Define(n.Name, v)
		return nil
	case *ast.RebindStmt:
		v, err := it.evalExpr(n.Value, env)
		if err != nil {
			return err
		}
		return it.evalRebind(n.Place, v, env)
	case *ast.ReturnStmt:
		if n.Value == nil {
			return returnSignal{value: Unit{}}
		}
		v, err := it.evalExpr(n.Value, env)
		if err != nil {
			return err
		}
		return returnSignal{value: v}
	default:
		return fmt.Errorf("interp: unhandled statement %T", s)
	}
}

func (it *Interp) evalRebind(place ast.PlaceExpr, v Value, env *Environment) error {
	switch p := place.(type) {
	case *ast.IdentPlace:
		return env.Set(p.Name, v)
	case *ast.DerefPlace:
		inner, err := it.evalExpr(p.Inner, env)
		if err != nil {
			return err
		}
		ptr, ok := inner.(Ptr)
		if !ok {
			return fmt.Errorf("rebind through non-pointer")
		}
		*ptr.Slot = v
		return nil
	case *ast.IndexPlace:
		base, err := it.evalExpr(p.Base, env)
		if err != nil {
			return err
		}
		idx, err := it.evalExpr(p.Index, env)
		if err != nil {
			return err
		}
		arr, ok := base.(Array)
		if !ok {
			return fmt.Errorf("index rebind base is not an array")
		}
		i, ok := idx.(Int)
		if !ok || int(i) < 0 || int(i) >= len(arr.Elems) {
			return fmt.Errorf("index out of range")
		}
		arr.Elems[i] = v
		return nil
	case *ast.FieldPlace:
		base, err := it.evalExpr(p.Base, env)
		if err != nil {
			return err
		}
		s, ok := base.(Struct)
		if !ok {
			return fmt.Errorf("field rebind on non-struct")
		}
		s.Fields[p.Field] = v
		return nil
	default:
		return fmt.Errorf("interp: unhandled place %T", place)
	}
}

func (it *Interp) evalBinary(n *ast.BinaryExpr, env *Environment) (Value, error) {
	l, err := it.evalExpr(n.Left, env)
	if err != nil {
		return nil, err
	}
	r, err := it.evalExpr(n.Right, env)
	if err != nil {
		return nil, err
	}
	li, lok := l.(Int)
	ri, rok := r.(Int)
	if !lok || !rok {
		return nil, fmt.Errorf("arithmetic on non-integer operands")
	}
	switch n.Op {
	case ast.Add:
		return li + ri, nil
	case ast.Sub:
		return li - ri, nil
	case ast.Mul:
		return li * ri, nil
	case ast.Div:
		if ri == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return li / ri, nil
	default:
		return nil, fmt.Errorf("unknown binary operator")
	}
}

func (it *Interp) evalCompare(n *ast.CompareExpr, env *Environment) (Value, error) {
	l, err := it.evalExpr(n.Left, env)
	if err != nil {
		return nil, err
	}
	r, err := it.evalExpr(n.Right, env)
	if err != nil {
		return nil, err
	}
	li, lok := l.(Int)
	ri, rok := r.(Int)
	if !lok || !rok {
		return nil, fmt.Errorf("comparison on non-integer operands")
	}
	switch n.Op {
	case ast.Eq:
		return Bool(li == ri), nil
	case ast.Neq:
		return Bool(li != ri), nil
	case ast.Lt:
		return Bool(li < ri), nil
	case ast.Lte:
		return Bool(li <= ri), nil
	case ast.Gt:
		return Bool(li > ri), nil
	case ast.Gte:
		return Bool(li >= ri), nil
	default:
		return nil, fmt.Errorf("unknown comparison operator")
	}
}

func (it *Interp) evalConcat(n *ast.ConcatExpr, env *Environment) (Value, error) {
	l, err := it.evalExpr(n.Left, env)
	if err != nil {
		return nil, err
	}
	r, err := it.evalExpr(n.Right, env)
	if err != nil {
		return nil, err
	}
	if ls, ok := l.(Str); ok {
		rs, ok := r.(Str)
		if !ok {
			return nil, fmt.Errorf("++ operands must both be strings or both arrays")
		}
		return ls + rs, nil
	}
	if la, ok := l.(Array); ok {
		ra, ok := r.(Array)
		if !ok {
			return nil, fmt.Errorf("++ operands must both be strings or both arrays")
		}
		out := make([]Value, 0, len(la.Elems)+len(ra.Elems))
		out = append(out, la.Elems...)
		out = append(out, ra.Elems...)
		return Array{Elems: out}, nil
	}
	return nil, fmt.Errorf("++ applied to unsupported type")
}
