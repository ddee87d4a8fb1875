package flat

import (
	"fmt"

	"github.com/rillwright/rill/internal/ast"
	"github.com/rillwright/rill/internal/diagnostics"
	"github.com/rillwright/rill/internal/token"
	"github.com/rillwright/rill/internal/types"
)

func nopSpan() token.Span { return token.Span{} }

// initFnName names the synthesized function that evaluates every
// top-level static/const initializer once, ahead of main (spec.md §8
// scenarios S1/S2 need their globals holding a real value before any
// function body runs, not just a declared FlatType).
const initFnName = "$init"

// Flatten lowers a checked, folded program into a flat program
// (spec.md §4.4).
func Flatten(prog *ast.TypedProgram) (*Program, error) {
	out := &Program{Functions: make(map[string]*Function), Order: append([]string(nil), prog.Order...)}
	lambdaCounter := new(int)

	globals := make(map[string]FlatType)
	var initFn *Function
	var init *builder
	if len(prog.Statics) > 0 || len(prog.Consts) > 0 {
		initFn = &Function{Name: initFnName, Ret: FUnit{}, Temps: make(map[string]FlatType)}
		init = &builder{fn: initFn, scopes: []map[string]string{{}}, globals: globals, out: out, lambdaCounter: lambdaCounter}
	}
	for _, s := range prog.Statics {
		ft, err := FromType(s.Type)
		if err != nil {
			return nil, err
		}
		globals[s.Name] = ft
		v, err := init.lowerExpr(s.Value)
		if err != nil {
			return nil, err
		}
		init.emit(Assign{Dst: s.Name, Value: Temp{Name: v}})
		initFn.Temps[s.Name] = ft
	}
	for _, cn := range prog.Consts {
		ft, err := FromType(cn.Type)
		if err != nil {
			return nil, err
		}
		globals[cn.Name] = ft
		v, err := init.lowerExpr(cn.Value)
		if err != nil {
			return nil, err
		}
		init.emit(Assign{Dst: cn.Name, Value: Temp{Name: v}})
		initFn.Temps[cn.Name] = ft
	}
	if initFn != nil {
		init.emit(Return{})
		if err := checkInvariants(initFn); err != nil {
			return nil, err
		}
		out.Functions[initFnName] = initFn
		out.Order = append([]string{initFnName}, out.Order...)
	}

	for _, fn := range prog.Fns {
		flatFn, err := flattenFn(fn, globals, out, lambdaCounter)
		if err != nil {
			return nil, err
		}
		out.Functions[fn.Name] = flatFn
	}
	return out, nil
}

// builder accumulates one function's instruction stream and owns its
// temp/label name generators (spec.md §4.4: "a temp generator... and a
// label generator" scoped to the function).
type builder struct {
	fn            *Function
	tempCounter   int
	labelCounter  int
	scopes        []map[string]string // name -> temp/local holding its current value
	globals       map[string]FlatType
	out           *Program // owning program, so a lambda can hoist a sibling function
	lambdaCounter *int     // shared across every builder in one Flatten call
}

func flattenFn(fn *ast.TypedFn, globals map[string]FlatType, out *Program, lambdaCounter *int) (*Function, error) {
	params := make([]Param, len(fn.Params))
	for i, p := range fn.Params {
		ft, err := FromType(p.Type)
		if err != nil {
			return nil, err
		}
		params[i] = Param{Name: p.Name, Type: ft}
	}
	ret, err := FromType(fn.Ret)
	if err != nil {
		return nil, err
	}

	flatFn := &Function{Name: fn.Name, Params: params, Ret: ret, Temps: make(map[string]FlatType)}
	b := &builder{fn: flatFn, scopes: []map[string]string{{}}, globals: globals, out: out, lambdaCounter: lambdaCounter}
	for _, p := range params {
		b.bind(p.Name, p.Name)
		flatFn.Temps[p.Name] = p.Type
	}

	result, err := b.lowerExpr(fn.Body)
	if err != nil {
		return nil, err
	}
	b.emit(Return{Value: Temp{Name: result}})

	if err := checkInvariants(flatFn); err != nil {
		return nil, err
	}
	return flatFn, nil
}

func (b *builder) emit(i Instruction) { b.fn.Code = append(b.fn.Code, i) }

func (b *builder) newTemp(t FlatType) string {
	name := fmt.Sprintf("t%d", b.tempCounter)
	b.tempCounter++
	b.fn.Temps[name] = t
	return name
}

func (b *builder) newLabel(prefix string) Label {
	name := fmt.Sprintf("%s%d", prefix, b.labelCounter)
	b.labelCounter++
	return Label(name)
}

func (b *builder) pushScope()   { b.scopes = append(b.scopes, map[string]string{}) }
func (b *builder) popScope()    { b.scopes = b.scopes[:len(b.scopes)-1] }
func (b *builder) bind(name, t string) {
	b.scopes[len(b.scopes)-1][name] = t
}
func (b *builder) resolve(name string) (string, bool) {
	for i := len(b.scopes) - 1; i >= 0; i-- {
		if t, ok := b.scopes[i][name]; ok {
			return t, true
		}
	}
	return "", false
}

// lowerExpr lowers e to a sequence of instructions appended to the
// builder and returns the name of the temporary holding its result.
func (b *builder) lowerExpr(e ast.TypedExpr) (string, error) {
	ft, ferr := FromType(e.ExprType())
	if ferr != nil {
		ft = FUnit{}
	}

	switch ex := e.(type) {
	case *ast.TypedIdent:
		if local, ok := b.resolve(ex.Name); ok {
			return local, nil
		}
		dst := b.newTemp(ft)
		b.emit(Assign{Dst: dst, Value: Temp{Name: ex.Name}}) // global load
		return dst, nil

	case *ast.TypedIntLit:
		dst := b.newTemp(ft)
		b.emit(Assign{Dst: dst, Value: ConstInt{Value: ex.Value, Type: ft}})
		return dst, nil

	case *ast.TypedStringLit:
		dst := b.newTemp(ft)
		b.emit(Assign{Dst: dst, Value: ConstString{Value: ex.Value}})
		return dst, nil

	case *ast.TypedBoolLit:
		dst := b.newTemp(ft)
		b.emit(Assign{Dst: dst, Value: ConstBool{Value: ex.Value}})
		return dst, nil

	case *ast.TypedUnitLit:
		return b.newTemp(FUnit{}), nil

	case *ast.TypedNullLit:
		dst := b.newTemp(ft)
		b.emit(Assign{Dst: dst, Value: ConstBool{Value: false}}) // present=false
		return dst, nil

	case *ast.TypedBinaryExpr:
		l, err := b.lowerExpr(ex.Left)
		if err != nil {
			return "", err
		}
		r, err := b.lowerExpr(ex.Right)
		if err != nil {
			return "", err
		}
		dst := b.newTemp(ft)
		b.emit(BinaryOp{Dst: dst, Op: binOpOf(ex.Op), Left: Temp{Name: l}, Right: Temp{Name: r}})
		return dst, nil

	case *ast.TypedCompareExpr:
		l, err := b.lowerExpr(ex.Left)
		if err != nil {
			return "", err
		}
		r, err := b.lowerExpr(ex.Right)
		if err != nil {
			return "", err
		}
		dst := b.newTemp(FBool{})
		b.emit(CompareInstr{Dst: dst, Op: compareOpOf(ex.Op), Left: Temp{Name: l}, Right: Temp{Name: r}})
		return dst, nil

	case *ast.TypedNotExpr:
		src, err := b.lowerExpr(ex.Operand)
		if err != nil {
			return "", err
		}
		dst := b.newTemp(FBool{})
		b.emit(NotInstr{Dst: dst, Src: src})
		return dst, nil

	case *ast.TypedNegExpr:
		src, err := b.lowerExpr(ex.Operand)
		if err != nil {
			return "", err
		}
		dst := b.newTemp(ft)
		b.emit(NegInstr{Dst: dst, Src: Temp{Name: src}})
		return dst, nil

	case *ast.TypedDerefExpr:
		ptr, err := b.lowerExpr(ex.Inner)
		if err != nil {
			return "", err
		}
		dst := b.newTemp(ft)
		b.emit(Load{Dst: dst, Ptr: Temp{Name: ptr}, Type: ft})
		return dst, nil

	case *ast.TypedRefExpr:
		return b.lowerRef(ex, ft)

	case *ast.TypedIfExpr:
		return b.lowerIf(ex, ft)

	case *ast.TypedBlockExpr:
		return b.lowerBlock(ex, ft)

	case *ast.TypedCallExpr:
		return b.lowerCall(ex, ft)

	case *ast.TypedIndexExpr:
		return b.lowerIndex(ex, ft)

	case *ast.TypedFieldExpr:
		return b.lowerField(ex, ft)

	case *ast.TypedArrayExpr:
		return b.lowerArray(ex, ft)

	case *ast.TypedStructConstructorExpr:
		return b.lowerStructConstructor(ex, ft)

	case *ast.TypedConcatExpr:
		return b.lowerConcat(ex, ft)

	case *ast.TypedLambdaExpr:
		return b.lowerLambda(ex, ft)

	case *ast.TypedCastExpr:
		// Representation is unchanged where possible (spec.md §4.2);
		// only the temp's declared FlatType differs.
		src, err := b.lowerExpr(ex.Inner)
		if err != nil {
			return "", err
		}
		dst := b.newTemp(ft)
		b.emit(Assign{Dst: dst, Value: Temp{Name: src}})
		return dst, nil

	case *ast.TypedRaiseExpr:
		b.emit(Raise{Code: ex.Code, Message: ex.Message})
		return b.newTemp(ft), nil

	default:
		return "", diagnostics.New(diagnostics.ErrInternalInvariant, e.Span(), "unhandled typed expression %T", e)
	}
}

func binOpOf(op ast.BinOp) BinOp {
	switch op {
	case ast.Add:
		return Add
	case ast.Sub:
		return Sub
	case ast.Mul:
		return Mul
	default:
		return Div
	}
}

func compareOpOf(op ast.CompareOp) CompareOp {
	switch op {
	case ast.Eq:
		return Eq
	case ast.Neq:
		return Neq
	case ast.Lt:
		return Lt
	case ast.Lte:
		return Lte
	case ast.Gt:
		return Gt
	default:
		return Gte
	}
}

func (b *builder) lowerIf(ex *ast.TypedIfExpr, ft FlatType) (string, error) {
	condTemp, err := b.lowerExpr(ex.Cond)
	if err != nil {
		return "", err
	}
	lTrue := b.newLabel("if_true")
	lFalse := b.newLabel("if_false")
	lEnd := b.newLabel("if_end")
	b.emit(CondJump{Cond: Temp{Name: condTemp}, IfTrue: lTrue, IfFalse: lFalse})

	result := b.newTemp(ft)

	b.emit(LabelInstr{Name: lTrue})
	thenTemp, err := b.lowerExpr(ex.Then)
	if err != nil {
		return "", err
	}
	b.emit(Assign{Dst: result, Value: Temp{Name: thenTemp}})
	b.emit(Jump{Target: lEnd})

	b.emit(LabelInstr{Name: lFalse})
	elseTemp, err := b.lowerExpr(ex.Else)
	if err != nil {
		return "", err
	}
	b.emit(Assign{Dst: result, Value: Temp{Name: elseTemp}})
	b.emit(Jump{Target: lEnd})

	b.emit(LabelInstr{Name: lEnd})
	return result, nil
}

func (b *builder) lowerBlock(ex *ast.TypedBlockExpr, ft FlatType) (string, error) {
	b.pushScope()
	defer b.popScope()

	for _, s := range ex.Stmts {
		if err := b.lowerStmt(s); err != nil {
			return "", err
		}
	}
	if ex.Trailing == nil {
		return b.newTemp(FUnit{}), nil
	}
	return b.lowerExpr(ex.Trailing)
}

func (b *builder) lowerCall(ex *ast.TypedCallExpr, ft FlatType) (string, error) {
	args := make([]Value, len(ex.Args))
	for i, a := range ex.Args {
		t, err := b.lowerExpr(a)
		if err != nil {
			return "", err
		}
		args[i] = Temp{Name: t}
	}
	dst := b.newTemp(ft)
	b.emit(Call{Dst: dst, Callee: ex.Callee, Args: args})
	return dst, nil
}

func (b *builder) lowerIndex(ex *ast.TypedIndexExpr, ft FlatType) (string, error) {
	base, err := b.lowerExpr(ex.Base)
	if err != nil {
		return "", err
	}
	idx, err := b.lowerExpr(ex.Index)
	if err != nil {
		return "", err
	}
	addr := b.newTemp(FPtr{Elem: ft})
	elemSize := Sizeof(ft)
	scaled := idx
	if elemSize != 1 {
		scaled = b.newTemp(FInt{Kind: types.U16})
		b.emit(BinaryOp{Dst: scaled, Op: Mul, Left: Temp{Name: idx}, Right: ConstInt{Value: int64(elemSize)}})
	}
	b.emit(BinaryOp{Dst: addr, Op: Add, Left: Temp{Name: base}, Right: Temp{Name: scaled}})
	dst := b.newTemp(ft)
	b.emit(Load{Dst: dst, Ptr: Temp{Name: addr}, Type: ft})
	return dst, nil
}

func (b *builder) lowerField(ex *ast.TypedFieldExpr, ft FlatType) (string, error) {
	base, err := b.lowerExpr(ex.Base)
	if err != nil {
		return "", err
	}
	offset, err := fieldOffset(ex.Base.ExprType(), ex.Field)
	if err != nil {
		return "", err
	}
	dst := b.newTemp(ft)
	b.emit(Load{Dst: dst, Ptr: Temp{Name: base}, Offset: offset, Type: ft})
	return dst, nil
}

// fieldOffset sums the flattened sizes of every field before name in a
// struct type, giving the byte offset instruction selection loads from.
func fieldOffset(baseType types.Type, name string) (int, error) {
	st, ok := baseType.(types.Struct)
	if !ok {
		return 0, diagnostics.New(diagnostics.ErrInternalInvariant, token.Span{}, "field access on non-struct %s", baseType)
	}
	offset := 0
	for _, f := range st.Fields {
		if f.Name == name {
			return offset, nil
		}
		ft, err := FromType(f.Type)
		if err != nil {
			return 0, err
		}
		offset += Sizeof(ft)
	}
	return 0, diagnostics.New(diagnostics.ErrInternalInvariant, token.Span{}, "no field %q on %s", name, baseType)
}

// lowerArray allocates storage for an array literal and stores each
// element in turn, returning the address of that storage — arrays
// decay to their base address everywhere else in this builder
// (lowerIndex, lowerRef's IndexPlace case), so a literal must produce
// the same shape.
func (b *builder) lowerArray(ex *ast.TypedArrayExpr, ft FlatType) (string, error) {
	arrFt, ok := ft.(FArr)
	if !ok {
		return "", diagnostics.New(diagnostics.ErrInternalInvariant, ex.Sp, "array literal flattened to non-array type %s", ft)
	}
	storage := b.newTemp(ft)
	addr := b.newTemp(FPtr{Elem: arrFt.Elem})
	b.emit(AddrOf{Dst: addr, Src: storage})
	elemSize := Sizeof(arrFt.Elem)
	for i, el := range ex.Elems {
		v, err := b.lowerExpr(el)
		if err != nil {
			return "", err
		}
		b.emit(Store{Ptr: Temp{Name: addr}, Offset: i * elemSize, Value: Temp{Name: v}})
	}
	return addr, nil
}

// lowerStructConstructor allocates storage for a struct literal and
// stores each field at its offset, returning the address — the same
// by-reference representation lowerField and lowerRebind's FieldPlace
// case already assume for struct values.
func (b *builder) lowerStructConstructor(ex *ast.TypedStructConstructorExpr, ft FlatType) (string, error) {
	if _, ok := ft.(FStruct); !ok {
		return "", diagnostics.New(diagnostics.ErrInternalInvariant, ex.Sp, "struct literal flattened to non-struct type %s", ft)
	}
	storage := b.newTemp(ft)
	addr := b.newTemp(FPtr{Elem: ft})
	b.emit(AddrOf{Dst: addr, Src: storage})
	for _, f := range ex.Fields {
		v, err := b.lowerExpr(f.Value)
		if err != nil {
			return "", err
		}
		offset, err := fieldOffset(ex.Type, f.Name)
		if err != nil {
			return "", err
		}
		b.emit(Store{Ptr: Temp{Name: addr}, Offset: offset, Value: Temp{Name: v}})
	}
	return addr, nil
}

// concatRuntime names the runtime helper that joins two string/slice
// values (base+length pairs, see FromType) into a freshly allocated
// third one; instruction selection resolves it the same way it resolves
// the print builtin, as a plain external symbol.
const concatRuntime = "rt_concat"

func (b *builder) lowerConcat(ex *ast.TypedConcatExpr, ft FlatType) (string, error) {
	l, err := b.lowerExpr(ex.Left)
	if err != nil {
		return "", err
	}
	r, err := b.lowerExpr(ex.Right)
	if err != nil {
		return "", err
	}
	dst := b.newTemp(ft)
	b.emit(Call{Dst: dst, Callee: concatRuntime, Args: []Value{Temp{Name: l}, Temp{Name: r}}})
	return dst, nil
}

// lowerLambda hoists a lambda body into its own top-level Function
// (named uniquely within the program) and leaves behind a reference to
// it, the same "Assign of a bare symbol name" shape lowerExpr already
// uses to load a global. The surface grammar gives a lambda no way to
// name an enclosing binding it would need to capture, so free
// identifiers inside one resolve the same way they would at top level:
// as a load of a global of that name.
func (b *builder) lowerLambda(ex *ast.TypedLambdaExpr, ft FlatType) (string, error) {
	fnType, ok := ft.(FFnPtr)
	if !ok {
		return "", diagnostics.New(diagnostics.ErrInternalInvariant, ex.Sp, "lambda flattened to non-function type %s", ft)
	}
	name := fmt.Sprintf("lambda$%d", *b.lambdaCounter)
	*b.lambdaCounter++

	params := make([]Param, len(ex.Params))
	for i, p := range ex.Params {
		pft, err := FromType(p.Type)
		if err != nil {
			return "", err
		}
		params[i] = Param{Name: p.Name, Type: pft}
	}
	lamFn := &Function{Name: name, Params: params, Ret: fnType.Ret, Temps: make(map[string]FlatType)}
	lb := &builder{fn: lamFn, scopes: []map[string]string{{}}, globals: b.globals, out: b.out, lambdaCounter: b.lambdaCounter}
	for _, p := range params {
		lb.bind(p.Name, p.Name)
		lamFn.Temps[p.Name] = p.Type
	}
	result, err := lb.lowerExpr(ex.Body)
	if err != nil {
		return "", err
	}
	lb.emit(Return{Value: Temp{Name: result}})
	if err := checkInvariants(lamFn); err != nil {
		return "", err
	}
	b.out.Functions[name] = lamFn
	b.out.Order = append(b.out.Order, name)

	dst := b.newTemp(ft)
	b.emit(Assign{Dst: dst, Value: Temp{Name: name}})
	return dst, nil
}

func (b *builder) lowerRef(ex *ast.TypedRefExpr, ft FlatType) (string, error) {
	switch place := ex.Inner.(type) {
	case *ast.TypedIdentPlace:
		dst := b.newTemp(ft)
		b.emit(AddrOf{Dst: dst, Src: place.Name})
		return dst, nil
	case *ast.TypedTempPlace:
		valTemp, err := b.lowerExpr(place.Value)
		if err != nil {
			return "", err
		}
		dst := b.newTemp(ft)
		b.emit(AddrOf{Dst: dst, Src: valTemp})
		return dst, nil
	case *ast.TypedDerefPlace:
		// &*p == p
		return b.lowerExpr(place.Inner)
	case *ast.TypedIndexPlace:
		base, err := b.lowerExpr(place.Base)
		if err != nil {
			return "", err
		}
		idx, err := b.lowerExpr(place.Index)
		if err != nil {
			return "", err
		}
		dst := b.newTemp(ft)
		b.emit(BinaryOp{Dst: dst, Op: Add, Left: Temp{Name: base}, Right: Temp{Name: idx}})
		return dst, nil
	case *ast.TypedFieldPlace:
		base, err := b.lowerExpr(place.Base)
		if err != nil {
			return "", err
		}
		offset, err := fieldOffset(place.Base.ExprType(), place.Field)
		if err != nil {
			return "", err
		}
		if offset == 0 {
			return base, nil
		}
		dst := b.newTemp(ft)
		b.emit(BinaryOp{Dst: dst, Op: Add, Left: Temp{Name: base}, Right: ConstInt{Value: int64(offset)}})
		return dst, nil
	default:
		return "", diagnostics.New(diagnostics.ErrInternalInvariant, ex.Sp, "unhandled place %T in Ref", place)
	}
}

func (b *builder) lowerStmt(s ast.TypedStmt) error {
	switch st := s.(type) {
	case *ast.TypedExpressStmt:
		_, err := b.lowerExpr(st.Expr)
		return err

	case *ast.TypedLetStmt:
		t, err := b.lowerExpr(st.Value)
		if err != nil {
			return err
		}
		b.bind(st.Name, t)
		return nil

	case *ast.TypedVarStmt:
		t, err := b.lowerExpr(st.Value)
		if err != nil {
			return err
		}
		b.bind(st.Name, t)
		return nil

	case *ast.TypedRebindStmt:
		return b.lowerRebind(st)

	case *ast.TypedReturnStmt:
		var v Value = nil
		if st.Value != nil {
			t, err := b.lowerExpr(st.Value)
			if err != nil {
				return err
			}
			v = Temp{Name: t}
		}
		b.emit(Return{Value: v})
		return nil

	default:
		return diagnostics.New(diagnostics.ErrInternalInvariant, s.Span(), "unhandled typed statement %T", s)
	}
}

func (b *builder) lowerRebind(st *ast.TypedRebindStmt) error {
	val, err := b.lowerExpr(st.Value)
	if err != nil {
		return err
	}
	switch place := st.Place.(type) {
	case *ast.TypedIdentPlace:
		b.bind(place.Name, val)
		return nil
	case *ast.TypedDerefPlace:
		ptr, err := b.lowerExpr(place.Inner)
		if err != nil {
			return err
		}
		b.emit(Store{Ptr: Temp{Name: ptr}, Value: Temp{Name: val}})
		return nil
	case *ast.TypedIndexPlace:
		base, err := b.lowerExpr(place.Base)
		if err != nil {
			return err
		}
		idx, err := b.lowerExpr(place.Index)
		if err != nil {
			return err
		}
		addr := b.newTemp(FPtr{Elem: FUnit{}})
		b.emit(BinaryOp{Dst: addr, Op: Add, Left: Temp{Name: base}, Right: Temp{Name: idx}})
		b.emit(Store{Ptr: Temp{Name: addr}, Value: Temp{Name: val}})
		return nil
	case *ast.TypedFieldPlace:
		base, err := b.lowerExpr(place.Base)
		if err != nil {
			return err
		}
		offset, err := fieldOffset(place.Base.ExprType(), place.Field)
		if err != nil {
			return err
		}
		b.emit(Store{Ptr: Temp{Name: base}, Offset: offset, Value: Temp{Name: val}})
		return nil
	default:
		return diagnostics.New(diagnostics.ErrInternalInvariant, st.Sp, "unhandled rebind place %T", place)
	}
}

// checkInvariants enforces the parts of spec.md §3 invariant (ii) that
// hold without full control-flow analysis: every branch target is a
// label defined in the function, and the function ends in a Return (or an
// unconditional Raise trap). Strict single-assignment is maintained
// within each straight-line run of instructions the builder emits
// (lowerExpr never reuses a temp name); at an If's join point the
// result temp is deliberately written from each arm in turn — the two
// writes are on mutually exclusive control-flow paths, which is the
// normal non-phi three-address-code rendering of a merge and is not
// checked here, since doing so precisely needs a CFG/dominance pass
// this pipeline does not build.
func checkInvariants(fn *Function) error {
	if len(fn.Code) == 0 {
		return diagnostics.New(diagnostics.ErrInternalInvariant, nopSpan(), "function %s lowered to no instructions", fn.Name)
	}
	targeted := make(map[Label]bool)
	defined := make(map[Label]bool)
	for _, instr := range fn.Code {
		switch ins := instr.(type) {
		case LabelInstr:
			defined[ins.Name] = true
		case Jump:
			targeted[ins.Target] = true
		case CondJump:
			targeted[ins.IfTrue] = true
			targeted[ins.IfFalse] = true
		}
	}
	for l := range targeted {
		if !defined[l] {
			return diagnostics.New(diagnostics.ErrInternalInvariant, nopSpan(), "branch target %s never defined in %s", l, fn.Name)
		}
	}
	last := fn.Code[len(fn.Code)-1]
	switch last.(type) {
	case Return, Raise:
	default:
		return diagnostics.New(diagnostics.ErrInternalInvariant, nopSpan(), "function %s does not end in a Return", fn.Name)
	}
	return nil
}
