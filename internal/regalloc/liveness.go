package regalloc

import "github.com/rillwright/rill/internal/target"

// cfg is the tiny control-flow graph internal to one allocator window:
// instruction i's successors, derived from labels, jumps and
// conditional branches (spec.md §4.6 step 1: "perform backward
// dataflow... using the ISA description").
type cfg struct {
	succ [][]int
}

func buildCFG(code []target.Ins) *cfg {
	labelIndex := make(map[string]int)
	for i, ins := range code {
		if l, ok := ins.(target.Label); ok {
			labelIndex[l.Name] = i
		}
	}
	symbolIndex := func(w target.Wi) (int, bool) {
		if sym, ok := w.(target.WiSymbol); ok {
			idx, ok := labelIndex[string(sym)]
			return idx, ok
		}
		return 0, false
	}

	g := &cfg{succ: make([][]int, len(code))}
	for i, ins := range code {
		switch in := ins.(type) {
		case target.Jump:
			if idx, ok := symbolIndex(in.Target); ok {
				g.succ[i] = []int{idx}
			}
		default:
			if br, ok := target.AsBranch(ins); ok {
				var s []int
				if idx, ok := symbolIndex(br.Target); ok {
					s = append(s, idx)
				}
				if i+1 < len(code) {
					s = append(s, i+1)
				}
				g.succ[i] = s
				continue
			}
			if i+1 < len(code) {
				g.succ[i] = []int{i + 1}
			}
		}
	}
	return g
}

// liveSets holds, per instruction index, the set of pseudo registers
// live immediately after it executes (liveOut), one map per register
// class.
type liveSets struct {
	outW []map[target.Wr]bool
	outB []map[target.Br]bool
}

// computeLiveness runs backward dataflow to a fixed point: liveOut(i) =
// union over successors s of (liveIn(s)), liveIn(s) = use(s) ∪
// (liveOut(s) − def(s)). A Call clobbers every caller-saved physical
// register (spec.md §4.6 step 1); pseudo registers are never
// pre-colored caller-saved, so that clobbering only matters once
// operands are physical and is enforced by internal/isel reserving
// Call's argument/return registers explicitly rather than by this pass.
func computeLiveness(code []target.Ins, g *cfg) *liveSets {
	ls := &liveSets{
		outW: make([]map[target.Wr]bool, len(code)),
		outB: make([]map[target.Br]bool, len(code)),
	}
	for i := range code {
		ls.outW[i] = map[target.Wr]bool{}
		ls.outB[i] = map[target.Br]bool{}
	}

	du := make([]defUse, len(code))
	for i, ins := range code {
		du[i] = describe(ins)
	}

	changed := true
	for changed {
		changed = false
		for i := len(code) - 1; i >= 0; i-- {
			newW := map[target.Wr]bool{}
			newB := map[target.Br]bool{}
			for _, s := range g.succ[i] {
				inW, inB := liveIn(du[s], ls.outW[s], ls.outB[s])
				for r := range inW {
					newW[r] = true
				}
				for r := range inB {
					newB[r] = true
				}
			}
			if !sameW(newW, ls.outW[i]) || !sameB(newB, ls.outB[i]) {
				ls.outW[i] = newW
				ls.outB[i] = newB
				changed = true
			}
		}
	}
	return ls
}

func liveIn(du defUse, outW map[target.Wr]bool, outB map[target.Br]bool) (map[target.Wr]bool, map[target.Br]bool) {
	inW := map[target.Wr]bool{}
	for r := range outW {
		inW[r] = true
	}
	for _, d := range du.DefsW {
		delete(inW, d)
	}
	for _, u := range du.UsesW {
		if u.IsPseudo() {
			inW[u] = true
		}
	}
	inB := map[target.Br]bool{}
	for r := range outB {
		inB[r] = true
	}
	for _, d := range du.DefsB {
		delete(inB, d)
	}
	for _, u := range du.UsesB {
		if u.IsPseudo() {
			inB[u] = true
		}
	}
	return inW, inB
}

func sameW(a, b map[target.Wr]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

func sameB(a, b map[target.Br]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
