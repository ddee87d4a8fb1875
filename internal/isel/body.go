package isel

import (
	"fmt"

	"github.com/rillwright/rill/internal/diagnostics"
	"github.com/rillwright/rill/internal/flat"
	"github.com/rillwright/rill/internal/target"
	"github.com/rillwright/rill/internal/token"
)

// selectBody walks fn.Code once, fusing an adjacent CompareInstr+
// CondJump pair into a single flag-test-and-branch (the common case,
// since internal/flat always emits an If's condition immediately
// before its CondJump) and otherwise materializing a CompareInstr's
// result into an explicit boolean register.
func (s *selector) selectBody() error {
	code := s.fn.Code
	for i := 0; i < len(code); i++ {
		if cmp, ok := code[i].(flat.CompareInstr); ok && i+1 < len(code) {
			if cj, ok := code[i+1].(flat.CondJump); ok {
				if t, ok := cj.Cond.(flat.Temp); ok && t.Name == cmp.Dst {
					if err := s.selectFusedCompareBranch(cmp, cj); err != nil {
						return err
					}
					i++
					continue
				}
			}
		}
		if err := s.selectOne(code[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *selector) selectOne(instr flat.Instruction) error {
	switch ins := instr.(type) {
	case flat.Assign:
		return s.selectAssign(ins)
	case flat.BinaryOp:
		return s.selectBinaryOp(ins)
	case flat.CompareInstr:
		return s.selectCompare(ins)
	case flat.NotInstr:
		return s.selectNot(ins)
	case flat.NegInstr:
		return s.selectNeg(ins)
	case flat.AddrOf:
		return s.selectAddrOf(ins)
	case flat.Load:
		return s.selectLoad(ins)
	case flat.Store:
		return s.selectStore(ins)
	case flat.Call:
		return s.selectCall(ins)
	case flat.LabelInstr:
		s.emit(target.Label{Name: string(ins.Name)})
		return nil
	case flat.Jump:
		s.emit(target.Jump{Target: target.WiSymbol(ins.Target)})
		return nil
	case flat.CondJump:
		return s.selectCondJump(ins)
	case flat.Return:
		return s.selectReturn(ins)
	case flat.Raise:
		return s.selectRaise(ins)
	default:
		return diagnostics.New(diagnostics.ErrInternalInvariant, token.Span{}, "unhandled flat instruction %T", instr)
	}
}

func (s *selector) selectAssign(ins flat.Assign) error {
	if cs, ok := ins.Value.(flat.ConstString); ok {
		return s.selectAssignString(ins.Dst, cs.Value)
	}
	if s.isWide(ins.Value) {
		dst := s.destW(ins.Dst)
		src, err := s.materializeW(ins.Value)
		if err != nil {
			return err
		}
		s.emit(target.MoveW(dst, src))
		s.storeResultW(ins.Dst, dst)
		return nil
	}
	dst := s.destB(ins.Dst)
	src, err := s.materializeB(ins.Value)
	if err != nil {
		return err
	}
	s.emit(target.MoveB(dst, src))
	s.storeResultB(ins.Dst, dst)
	return nil
}

// selectAssignString materializes a string literal as a (pointer,
// length) pair at Dst's frame slot, the in-memory layout internal/flat's
// FromType gives CompString.
func (s *selector) selectAssignString(dst string, value string) error {
	if !s.fr.isFrameResident(dst) {
		return diagnostics.New(diagnostics.ErrInternalInvariant, token.Span{},
			"string-typed temp %s was not assigned a frame slot", dst)
	}
	label := s.strings.label(value)
	off := s.fr.offsets[dst]

	ptrReg := s.newScratchW()
	s.emit(target.LdiW{Dst: ptrReg, Val: target.WiSymbol(label)})
	s.emit(target.StoreWI{Base: target.Rf, Disp: target.WiConstant(off), Src: ptrReg})

	lenReg := s.newScratchW()
	s.emit(target.LdiW{Dst: lenReg, Val: target.WiConstant(uint16(len(value)))})
	s.emit(target.StoreWI{Base: target.Rf, Disp: target.WiConstant(off + 2), Src: lenReg})
	return nil
}

func (s *selector) selectBinaryOp(ins flat.BinaryOp) error {
	wide := s.isWide(ins.Left)
	if wide {
		a, err := s.materializeW(ins.Left)
		if err != nil {
			return err
		}
		b, err := s.materializeW(ins.Right)
		if err != nil {
			return err
		}
		dst := s.destW(ins.Dst)
		if err := s.emitAluW(ins.Op, dst, a, b); err != nil {
			return err
		}
		s.storeResultW(ins.Dst, dst)
		return nil
	}
	a, err := s.materializeB(ins.Left)
	if err != nil {
		return err
	}
	b, err := s.materializeB(ins.Right)
	if err != nil {
		return err
	}
	dst := s.destB(ins.Dst)
	if err := s.emitAluB(ins.Op, dst, a, b); err != nil {
		return err
	}
	s.storeResultB(ins.Dst, dst)
	return nil
}

func (s *selector) emitAluW(op flat.BinOp, dst, a, b target.Wr) error {
	switch op {
	case flat.Add:
		s.emit(target.AddW(dst, a, b))
	case flat.Sub:
		s.emit(target.SubW(dst, a, b))
	case flat.Mul:
		// Mul/Div produce a (low, high) or (quotient, remainder) pair
		// (spec.md §4.5); this language's BinOp never exposes the
		// second half, so it's captured in a scratch register and
		// discarded.
		s.emit(target.MulW{Low: dst, High: s.newScratchW(), A: a, B: b})
	case flat.Div:
		s.emit(target.DivW{Quot: dst, Rem: s.newScratchW(), A: a, B: b})
	default:
		return diagnostics.New(diagnostics.ErrInternalInvariant, token.Span{}, "unhandled wide binop %v", op)
	}
	return nil
}

func (s *selector) emitAluB(op flat.BinOp, dst, a, b target.Br) error {
	switch op {
	case flat.Add:
		s.emit(target.AddB(dst, a, b))
	case flat.Sub:
		s.emit(target.SubB(dst, a, b))
	case flat.Mul:
		s.emit(target.MulB{Low: dst, High: s.newScratchB(), A: a, B: b})
	case flat.Div:
		s.emit(target.DivB{Quot: dst, Rem: s.newScratchB(), A: a, B: b})
	default:
		return diagnostics.New(diagnostics.ErrInternalInvariant, token.Span{}, "unhandled byte binop %v", op)
	}
	return nil
}

// selectCompare materializes a standalone comparison (one not fused
// directly into a branch) into an explicit 0/1 boolean register via a
// flag-setting Sub followed by a conditional short branch.
func (s *selector) selectCompare(ins flat.CompareInstr) error {
	discard := s.scratchFor(ins.Left)
	if err := s.emitFlagSub(ins.Left, ins.Right, discard); err != nil {
		return err
	}
	dst := s.destB(ins.Dst)
	trueLbl := s.newLocalLabel("cmptrue")
	endLbl := s.newLocalLabel("cmpend")
	s.emitJcc(ins.Op, ins.Left, target.WiSymbol(trueLbl))
	s.emit(target.LdiB{Dst: dst, Val: 0})
	s.emit(target.Jump{Target: target.WiSymbol(endLbl)})
	s.emit(target.Label{Name: trueLbl})
	s.emit(target.LdiB{Dst: dst, Val: 1})
	s.emit(target.Label{Name: endLbl})
	s.storeResultB(ins.Dst, dst)
	return nil
}

// selectFusedCompareBranch selects a CompareInstr immediately consumed
// by a CondJump as a single flag-setting Sub plus the matching
// conditional jump, skipping boolean materialization entirely (the
// common case: every If lowered by internal/flat produces exactly this
// adjacency).
func (s *selector) selectFusedCompareBranch(cmp flat.CompareInstr, cj flat.CondJump) error {
	discard := s.scratchFor(cmp.Left)
	if err := s.emitFlagSub(cmp.Left, cmp.Right, discard); err != nil {
		return err
	}
	s.emitJcc(cmp.Op, cmp.Left, target.WiSymbol(cj.IfTrue))
	s.emit(target.Jump{Target: target.WiSymbol(cj.IfFalse)})
	return nil
}

// scratchFor returns a scratch register sized to v's width, used
// only to receive the discarded result of a flag-setting subtraction.
func (s *selector) scratchFor(v flat.Value) interface{} {
	if s.isWide(v) {
		return s.newScratchW()
	}
	return s.newScratchB()
}

func (s *selector) emitFlagSub(left, right flat.Value, discard interface{}) error {
	if s.isWide(left) {
		a, err := s.materializeW(left)
		if err != nil {
			return err
		}
		b, err := s.materializeW(right)
		if err != nil {
			return err
		}
		s.emit(target.SubW(discard.(target.Wr), a, b))
		return nil
	}
	a, err := s.materializeB(left)
	if err != nil {
		return err
	}
	b, err := s.materializeB(right)
	if err != nil {
		return err
	}
	s.emit(target.SubB(discard.(target.Br), a, b))
	return nil
}

// emitJcc picks the signed/unsigned/equality branch form spec.md §4.5
// mandates per comparison operator.
func (s *selector) emitJcc(op flat.CompareOp, left flat.Value, target_ target.Wi) {
	if it, ok := s.valueFlatType(left).(flat.FInt); ok && !it.Kind.Signed() {
		unsigned := map[flat.CompareOp]func(target.Wi) target.Ins{flat.Lt: target.Jb, flat.Lte: target.Jbe, flat.Gt: target.Ja, flat.Gte: target.Jae}
		if jcc, ok := unsigned[op]; ok {
			s.emit(jcc(target_))
			return
		}
	}
	switch op {
	case flat.Eq:
		s.emit(target.Jez(target_))
	case flat.Neq:
		s.emit(target.Jnz(target_))
	case flat.Lt:
		s.emit(target.Jlt(target_))
	case flat.Lte:
		s.emit(target.Jle(target_))
	case flat.Gt:
		s.emit(target.Jgt(target_))
	case flat.Gte:
		s.emit(target.Jge(target_))
	}
}

func (s *selector) selectNot(ins flat.NotInstr) error {
	src, err := s.materializeB(flat.Temp{Name: ins.Src})
	if err != nil {
		return err
	}
	mask := s.newScratchB()
	s.emit(target.LdiB{Dst: mask, Val: 1})
	dst := s.destB(ins.Dst)
	s.emit(target.XorB(dst, src, mask))
	s.storeResultB(ins.Dst, dst)
	return nil
}

func (s *selector) selectNeg(ins flat.NegInstr) error {
	if s.isWide(ins.Src) {
		src, err := s.materializeW(ins.Src)
		if err != nil {
			return err
		}
		zero := s.newScratchW()
		s.emit(target.LdiW{Dst: zero, Val: target.WiConstant(0)})
		dst := s.destW(ins.Dst)
		s.emit(target.SubW(dst, zero, src))
		s.storeResultW(ins.Dst, dst)
		return nil
	}
	src, err := s.materializeB(ins.Src)
	if err != nil {
		return err
	}
	zero := s.newScratchB()
	s.emit(target.LdiB{Dst: zero, Val: 0})
	dst := s.destB(ins.Dst)
	s.emit(target.SubB(dst, zero, src))
	s.storeResultB(ins.Dst, dst)
	return nil
}

// selectAddrOf computes the address of a frame-resident temp as
// Rf + constant offset; internal/isel's frame pass guarantees every
// AddrOf source is frame-resident (see frame.go), since a register
// machine has no address for a value sitting in a register.
func (s *selector) selectAddrOf(ins flat.AddrOf) error {
	if !s.fr.isFrameResident(ins.Src) {
		return diagnostics.New(diagnostics.ErrInternalInvariant, token.Span{},
			"address taken of non-frame-resident temp %s in %s", ins.Src, s.fn.Name)
	}
	off := s.fr.offsets[ins.Src]
	scratch := s.newScratchW()
	s.emit(target.LdiW{Dst: scratch, Val: target.WiConstant(off)})
	dst := s.destW(ins.Dst)
	s.emit(target.AddW(dst, target.Rf, scratch))
	s.storeResultW(ins.Dst, dst)
	return nil
}

// selectLoad and selectStore always use the displacement (*I) load/
// store forms: internal/flat's Load/Store carry their Offset as a
// compile-time int, so the register-offset (*R) forms the ISA defines
// for a runtime-computed offset are never produced by this pipeline
// (see DESIGN.md).
func (s *selector) selectLoad(ins flat.Load) error {
	ptr, err := s.materializeW(ins.Ptr)
	if err != nil {
		return err
	}
	if flat.Sizeof(ins.Type) <= 1 {
		dst := s.destB(ins.Dst)
		s.emit(target.LoadBI{Dst: dst, Base: ptr, Disp: target.WiConstant(ins.Offset)})
		s.storeResultB(ins.Dst, dst)
		return nil
	}
	dst := s.destW(ins.Dst)
	s.emit(target.LoadWI{Dst: dst, Base: ptr, Disp: target.WiConstant(ins.Offset)})
	s.storeResultW(ins.Dst, dst)
	return nil
}

func (s *selector) selectStore(ins flat.Store) error {
	ptr, err := s.materializeW(ins.Ptr)
	if err != nil {
		return err
	}
	if s.isWide(ins.Value) {
		v, err := s.materializeW(ins.Value)
		if err != nil {
			return err
		}
		s.emit(target.StoreWI{Base: ptr, Disp: target.WiConstant(ins.Offset), Src: v})
		return nil
	}
	v, err := s.materializeB(ins.Value)
	if err != nil {
		return err
	}
	s.emit(target.StoreBI{Base: ptr, Disp: target.WiConstant(ins.Offset), Src: v})
	return nil
}

// selectCall moves every argument into its calling-convention register
// in order, issues the call, and moves R1 into Dst if the result is
// used (spec.md §4.5's ConventionDescriptor: args R1..R5, return R1).
func (s *selector) selectCall(ins flat.Call) error {
	conv := target.Conv
	if len(ins.Args) > len(conv.ArgsW) {
		return diagnostics.New(diagnostics.ErrInternalInvariant, token.Span{},
			"call to %s passes %d args, more than %d argument registers", ins.Callee, len(ins.Args), len(conv.ArgsW))
	}
	for i, arg := range ins.Args {
		argReg := conv.ArgsW[i]
		if s.isWide(arg) {
			v, err := s.materializeW(arg)
			if err != nil {
				return err
			}
			s.emit(target.MoveW(argReg, v))
		} else {
			v, err := s.materializeB(arg)
			if err != nil {
				return err
			}
			alias, ok := target.ByteAliasOf(argReg)
			if !ok {
				alias, _ = target.LowHalfOf(argReg)
			}
			s.emit(target.MoveB(alias, v))
		}
	}
	s.emit(target.Call{Target: target.WiSymbol(ins.Callee)})
	if ins.Dst == "" {
		return nil
	}
	if flat.Sizeof(s.fn.Temps[ins.Dst]) <= 1 {
		alias, _ := target.ByteAliasOf(conv.ReturnW)
		dst := s.destB(ins.Dst)
		s.emit(target.MoveB(dst, alias))
		s.storeResultB(ins.Dst, dst)
		return nil
	}
	dst := s.destW(ins.Dst)
	s.emit(target.MoveW(dst, conv.ReturnW))
	s.storeResultW(ins.Dst, dst)
	return nil
}

// selectCondJump handles a CondJump that was NOT fused with a preceding
// CompareInstr: Cond is an ordinary boolean-valued byte register (a
// variable, a NotInstr result, a call's return value), tested against
// zero.
func (s *selector) selectCondJump(ins flat.CondJump) error {
	cond, err := s.materializeB(ins.Cond)
	if err != nil {
		return err
	}
	zero := s.newScratchB()
	s.emit(target.LdiB{Dst: zero, Val: 0})
	discard := s.newScratchB()
	s.emit(target.SubB(discard, cond, zero))
	s.emit(target.Jnz(target.WiSymbol(ins.IfTrue)))
	s.emit(target.Jump{Target: target.WiSymbol(ins.IfFalse)})
	return nil
}

// selectReturn moves Value (if any) into the convention's return
// register and jumps to the function's single epilogue, rather than
// emitting Ret directly: spec.md §4.4 allows a Return statement
// anywhere control flow reaches it, but a function has exactly one
// physical epilogue (see selectFunction).
func (s *selector) selectReturn(ins flat.Return) error {
	if ins.Value != nil {
		conv := target.Conv
		if s.isWide(ins.Value) {
			v, err := s.materializeW(ins.Value)
			if err != nil {
				return err
			}
			s.emit(target.MoveW(conv.ReturnW, v))
		} else {
			v, err := s.materializeB(ins.Value)
			if err != nil {
				return err
			}
			alias, _ := target.ByteAliasOf(conv.ReturnW)
			s.emit(target.MoveB(alias, v))
		}
	}
	s.emit(target.Jump{Target: s.epilogue})
	return nil
}

// selectRaise lowers a folder-proven runtime failure (spec.md §7) to an
// unconditional trap: a descriptive comment followed by Null, the one
// ISA instruction with no operand-bearing variant, used here as the
// pipeline's halt/invalid-instruction trap.
func (s *selector) selectRaise(ins flat.Raise) error {
	s.emit(target.Comment{Text: fmt.Sprintf("raise %s: %s", ins.Code, ins.Message)})
	s.emit(target.Null{})
	return nil
}
