// Package peephole implements spec.md §4.7's post-register-allocation
// cleanup pass, grounded directly on
// _examples/original_source/src/telda/mod.rs's simple_optimisations:
// run once, after internal/regalloc has rewritten every pseudo register
// to a physical one, over the whole instruction stream (not windowed
// per function, since neither rewrite it performs needs CFG context).
package peephole

import "github.com/rillwright/rill/internal/target"

// Run applies both rewrites from simple_optimisations in a single pass
// and returns the resulting stream; it never mutates code in place.
func Run(code []target.Ins) []target.Ins {
	out := make([]target.Ins, len(code))
	for i, ins := range code {
		out[i] = rewriteOne(ins)
	}
	return out
}

func rewriteOne(ins target.Ins) target.Ins {
	if alu, ok := target.AsALUW(ins); ok {
		if alu.Mnemonic == "add" && alu.A == target.R0 && alu.Dst == alu.B {
			return target.Comment{Text: ins.String()[4:]}
		}
	}
	if alu, ok := target.AsALUB(ins); ok {
		if alu.Mnemonic == "add" && alu.A == target.R0b && alu.Dst == alu.B {
			return target.Comment{Text: ins.String()[4:]}
		}
	}
	if ldi, ok := ins.(target.LdiW); ok {
		if r, narrow, ok := narrowTarget(ldi.Dst, ldi.Val); ok {
			return target.LdiB{Dst: r, Val: narrow}
		}
	}
	return ins
}

// narrowTarget reports whether an LdiW into one of R6-R10 (the wide
// registers whose byte alias zero-extends, see target.ByteAliasOf) with
// a constant value that fits in a byte can be rewritten to the
// equivalent, shorter LdiB.
func narrowTarget(dst target.Wr, val target.Wi) (target.Br, target.Bi, bool) {
	c, ok := val.(target.WiConstant)
	if !ok || c > 255 {
		return 0, 0, false
	}
	alias, ok := target.ByteAliasOf(dst)
	if !ok || dst == target.R0 {
		return 0, 0, false
	}
	return alias, target.Bi(c), true
}
