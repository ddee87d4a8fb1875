// Package regalloc implements spec.md §4.6: a graph-coloring register
// allocator that rewrites pseudo-register operands to physical ones
// within a bounded window of a function's instruction stream, grounded
// on _examples/original_source/src/telda/mod.rs's windowing convention
// (`apply_register_allocation` scanning FunctionStartMarker/
// FunctionEndMarker pairs and calling `register_allocate` over a
// `VecView(code, start+2, end-1)`).
package regalloc

import "github.com/rillwright/rill/internal/target"

// defUse is one instruction's register effect, split by class (wide vs
// byte); a register machine's def/use sets are exactly what backward
// liveness dataflow needs per instruction.
type defUse struct {
	DefsW, UsesW []target.Wr
	DefsB, UsesB []target.Br
}

// describe extracts ins's def/use sets. Every pseudo register the
// allocator ever sees appears as an operand of one of these cases,
// since internal/isel only ever emits pseudo registers through them.
func describe(ins target.Ins) defUse {
	switch i := ins.(type) {
	case target.PushW:
		return defUse{UsesW: []target.Wr{i.R}}
	case target.PushB:
		return defUse{UsesB: []target.Br{i.R}}
	case target.PopW:
		return defUse{DefsW: []target.Wr{i.R}}
	case target.PopB:
		return defUse{DefsB: []target.Br{i.R}}
	case target.LdiW:
		return defUse{DefsW: []target.Wr{i.Dst}}
	case target.LdiB:
		return defUse{DefsB: []target.Br{i.Dst}}
	case target.JmpR:
		return defUse{UsesW: []target.Wr{i.Target}}
	case target.StoreBI:
		return defUse{UsesW: []target.Wr{i.Base}, UsesB: []target.Br{i.Src}}
	case target.StoreWI:
		return defUse{UsesW: []target.Wr{i.Base, i.Src}}
	case target.StoreBR:
		return defUse{UsesW: []target.Wr{i.Base, i.Offset}, UsesB: []target.Br{i.Src}}
	case target.StoreWR:
		return defUse{UsesW: []target.Wr{i.Base, i.Offset, i.Src}}
	case target.LoadBI:
		return defUse{DefsB: []target.Br{i.Dst}, UsesW: []target.Wr{i.Base}}
	case target.LoadWI:
		return defUse{DefsW: []target.Wr{i.Dst}, UsesW: []target.Wr{i.Base}}
	case target.LoadBR:
		return defUse{DefsB: []target.Br{i.Dst}, UsesW: []target.Wr{i.Base, i.Offset}}
	case target.LoadWR:
		return defUse{DefsW: []target.Wr{i.Dst}, UsesW: []target.Wr{i.Base, i.Offset}}
	default:
		return describeALU(ins)
	}
}

// describeALU covers every three/four-register ALU instruction, which
// all share one of two shapes (wide or byte, 3 or 4 registers with the
// first one or two as Dst).
func describeALU(ins target.Ins) defUse {
	switch i := ins.(type) {
	case target.DivW:
		return defUse{DefsW: []target.Wr{i.Quot, i.Rem}, UsesW: []target.Wr{i.A, i.B}}
	case target.DivB:
		return defUse{DefsB: []target.Br{i.Quot, i.Rem}, UsesB: []target.Br{i.A, i.B}}
	case target.MulW:
		return defUse{DefsW: []target.Wr{i.Low, i.High}, UsesW: []target.Wr{i.A, i.B}}
	case target.MulB:
		return defUse{DefsB: []target.Br{i.Low, i.High}, UsesB: []target.Br{i.A, i.B}}
	}
	if alu, ok := target.AsALUW(ins); ok {
		return defUse{DefsW: []target.Wr{alu.Dst}, UsesW: []target.Wr{alu.A, alu.B}}
	}
	if alu, ok := target.AsALUB(ins); ok {
		return defUse{DefsB: []target.Br{alu.Dst}, UsesB: []target.Br{alu.A, alu.B}}
	}
	return defUse{}
}

// rewrite produces a copy of ins with every pseudo register operand
// replaced per the supplied physical-register assignment, leaving
// already-physical registers and non-register operands untouched.
func rewrite(ins target.Ins, physW map[target.Wr]target.Wr, physB map[target.Br]target.Br) target.Ins {
	w := func(r target.Wr) target.Wr {
		if p, ok := physW[r]; ok {
			return p
		}
		return r
	}
	b := func(r target.Br) target.Br {
		if p, ok := physB[r]; ok {
			return p
		}
		return r
	}
	switch i := ins.(type) {
	case target.PushW:
		return target.PushW{R: w(i.R)}
	case target.PushB:
		return target.PushB{R: b(i.R)}
	case target.PopW:
		return target.PopW{R: w(i.R)}
	case target.PopB:
		return target.PopB{R: b(i.R)}
	case target.LdiW:
		return target.LdiW{Dst: w(i.Dst), Val: i.Val}
	case target.LdiB:
		return target.LdiB{Dst: b(i.Dst), Val: i.Val}
	case target.JmpR:
		return target.JmpR{Target: w(i.Target)}
	case target.StoreBI:
		return target.StoreBI{Base: w(i.Base), Disp: i.Disp, Src: b(i.Src)}
	case target.StoreWI:
		return target.StoreWI{Base: w(i.Base), Disp: i.Disp, Src: w(i.Src)}
	case target.StoreBR:
		return target.StoreBR{Base: w(i.Base), Offset: w(i.Offset), Src: b(i.Src)}
	case target.StoreWR:
		return target.StoreWR{Base: w(i.Base), Offset: w(i.Offset), Src: w(i.Src)}
	case target.LoadBI:
		return target.LoadBI{Dst: b(i.Dst), Base: w(i.Base), Disp: i.Disp}
	case target.LoadWI:
		return target.LoadWI{Dst: w(i.Dst), Base: w(i.Base), Disp: i.Disp}
	case target.LoadBR:
		return target.LoadBR{Dst: b(i.Dst), Base: w(i.Base), Offset: w(i.Offset)}
	case target.LoadWR:
		return target.LoadWR{Dst: w(i.Dst), Base: w(i.Base), Offset: w(i.Offset)}
	case target.DivW:
		return target.DivW{Quot: w(i.Quot), Rem: w(i.Rem), A: w(i.A), B: w(i.B)}
	case target.DivB:
		return target.DivB{Quot: b(i.Quot), Rem: b(i.Rem), A: b(i.A), B: b(i.B)}
	case target.MulW:
		return target.MulW{Low: w(i.Low), High: w(i.High), A: w(i.A), B: w(i.B)}
	case target.MulB:
		return target.MulB{Low: b(i.Low), High: b(i.High), A: b(i.A), B: b(i.B)}
	}
	if alu, ok := target.AsALUW(ins); ok {
		return target.NewALUW(target.ALUW{Mnemonic: alu.Mnemonic, Dst: w(alu.Dst), A: w(alu.A), B: w(alu.B)})
	}
	if alu, ok := target.AsALUB(ins); ok {
		return target.NewALUB(target.ALUB{Mnemonic: alu.Mnemonic, Dst: b(alu.Dst), A: b(alu.A), B: b(alu.B)})
	}
	return ins
}
