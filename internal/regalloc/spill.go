package regalloc

import "github.com/rillwright/rill/internal/target"

// insertSpillCode rewrites window so that every spilled pseudo (named
// by its palette-free node number in spillsW/spillsB) is reloaded into
// a fresh pseudo immediately before each use and stored back from a
// fresh pseudo immediately after each def, then grows frameSize by one
// frame slot per spilled pseudo. The fresh pseudos have far smaller live
// ranges than the ones they replace, so the next simplify/color round
// (spec.md §4.6 step 4) colors them without further spilling in
// practice.
func insertSpillCode(window []target.Ins, spillsW, spillsB map[int]bool, frameSize int) ([]target.Ins, int, error) {
	if len(spillsW) == 0 && len(spillsB) == 0 {
		return window, frameSize, nil
	}

	nextPw := highestPw(window) + 1
	nextPb := highestPb(window) + 1

	slotW := map[int]int{}
	slotB := map[int]int{}
	for n := range spillsW {
		slotW[n] = frameSize
		frameSize += 2
	}
	for n := range spillsB {
		slotB[n] = frameSize
		frameSize++
	}

	var out []target.Ins
	for _, ins := range window {
		du := describe(ins)

		subW := map[target.Wr]target.Wr{}
		subB := map[target.Br]target.Br{}
		var pre, post []target.Ins

		for _, u := range du.UsesW {
			if !u.IsPseudo() {
				continue
			}
			if off, ok := slotW[u.PseudoNum()]; ok {
				fresh := target.Pw(nextPw)
				nextPw++
				subW[u] = fresh
				pre = append(pre, target.LoadWI{Dst: fresh, Base: target.Rf, Disp: target.WiConstant(off)})
			}
		}
		for _, u := range du.UsesB {
			if !u.IsPseudo() {
				continue
			}
			if off, ok := slotB[u.PseudoNum()]; ok {
				fresh := target.Pb(nextPb)
				nextPb++
				subB[u] = fresh
				pre = append(pre, target.LoadBI{Dst: fresh, Base: target.Rf, Disp: target.WiConstant(off)})
			}
		}
		for _, d := range du.DefsW {
			if !d.IsPseudo() {
				continue
			}
			if off, ok := slotW[d.PseudoNum()]; ok {
				fresh := target.Pw(nextPw)
				nextPw++
				subW[d] = fresh
				post = append(post, target.StoreWI{Base: target.Rf, Disp: target.WiConstant(off), Src: fresh})
			}
		}
		for _, d := range du.DefsB {
			if !d.IsPseudo() {
				continue
			}
			if off, ok := slotB[d.PseudoNum()]; ok {
				fresh := target.Pb(nextPb)
				nextPb++
				subB[d] = fresh
				post = append(post, target.StoreBI{Base: target.Rf, Disp: target.WiConstant(off), Src: fresh})
			}
		}

		out = append(out, pre...)
		out = append(out, rewrite(ins, subW, subB))
		out = append(out, post...)
	}
	return out, frameSize, nil
}

func highestPw(code []target.Ins) int {
	best := -1
	for _, ins := range code {
		for _, r := range describe(ins).DefsW {
			if r.IsPseudo() && r.PseudoNum() > best {
				best = r.PseudoNum()
			}
		}
		for _, r := range describe(ins).UsesW {
			if r.IsPseudo() && r.PseudoNum() > best {
				best = r.PseudoNum()
			}
		}
	}
	return best
}

func highestPb(code []target.Ins) int {
	best := -1
	for _, ins := range code {
		for _, r := range describe(ins).DefsB {
			if r.IsPseudo() && r.PseudoNum() > best {
				best = r.PseudoNum()
			}
		}
		for _, r := range describe(ins).UsesB {
			if r.IsPseudo() && r.PseudoNum() > best {
				best = r.PseudoNum()
			}
		}
	}
	return best
}
