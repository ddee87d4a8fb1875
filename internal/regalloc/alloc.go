package regalloc

import (
	"github.com/rillwright/rill/internal/diagnostics"
	"github.com/rillwright/rill/internal/target"
	"github.com/rillwright/rill/internal/token"
)

// maxSpillRounds bounds the simplify/spill/color retry loop (spec.md
// §4.6 step 4: "re-run liveness+coloring until success"); real
// functions from this pipeline never need more than one or two rounds,
// this is only a backstop against a coloring bug looping forever.
const maxSpillRounds = 8

// wPalette/bPalette are the physical registers the allocator may
// assign, in palette order (lowest index tried first). R0/R0b is
// reserved as the hardwired zero register the Move idiom depends on
// (AddW(a, R0, b)) and is never a coloring target. The byte class is
// restricted to the five single-view byte aliases (R6b..R10b)
// rather than also offering R1l/R1h..R5l/R5h: colouring those would
// require modeling their aliasing with the wide class in the same
// interference graph, which this allocator keeps deliberately simple
// by treating the two classes as fully independent (see DESIGN.md).
var wPalette = []target.Wr{target.R1, target.R2, target.R3, target.R4, target.R5, target.R6, target.R7, target.R8, target.R9, target.R10}
var bPalette = []target.Br{target.R6b, target.R7b, target.R8b, target.R9b, target.R10b}

// Allocate performs spec.md §4.6's register allocation over every
// function in code, delimited by FunctionStartMarker/FunctionEndMarker
// pairs, and returns the rewritten instruction stream. It mirrors
// original_source/src/telda/mod.rs's apply_register_allocation driver:
// scan for the next FunctionStartMarker, locate its matching
// FunctionEndMarker, allocate the window strictly between them, then
// continue scanning from the end marker.
func Allocate(code []target.Ins) ([]target.Ins, error) {
	out := append([]target.Ins(nil), code...)

	start := 0
	for start < len(out) {
		if _, ok := out[start].(target.FunctionStartMarker); !ok {
			start++
			continue
		}
		end := -1
		for i := start + 1; i < len(out); i++ {
			if _, ok := out[i].(target.FunctionEndMarker); ok {
				end = i
				break
			}
		}
		if end == -1 {
			return nil, diagnostics.New(diagnostics.ErrInternalInvariant, token.Span{}, "function start marker with no matching end marker")
		}

		newOut, newEnd, err := allocateFunction(out, start, end)
		if err != nil {
			return nil, err
		}
		out = newOut
		start = newEnd + 1
	}
	return out, nil
}

// allocateFunction allocates the window (start+2, end-1) of one
// function (skipping the fixed one-instruction prologue/epilogue that
// sit just inside the markers, see internal/isel's selectFunction), and
// returns the possibly-grown instruction stream plus the end marker's
// updated index.
func allocateFunction(code []target.Ins, start, end int) ([]target.Ins, int, error) {
	lo, hi := start+2, end-1
	if lo > hi || hi > len(code) {
		return nil, 0, diagnostics.New(diagnostics.ErrInternalInvariant, token.Span{}, "function window [%d,%d) is empty or out of range", lo, hi)
	}

	frameSizeIdx := end + 1
	if frameSizeIdx >= len(code) {
		return nil, 0, diagnostics.New(diagnostics.ErrInternalInvariant, token.Span{}, "function end marker at %d has no trailing Ret", end)
	}
	ret, ok := code[frameSizeIdx].(target.Ret)
	if !ok {
		return nil, 0, diagnostics.New(diagnostics.ErrInternalInvariant, token.Span{}, "instruction after function end marker at %d is not Ret", end)
	}
	frameSize := int(ret.FrameSize)

	window := append([]target.Ins(nil), code[lo:hi]...)

	for round := 0; round < maxSpillRounds; round++ {
		g := buildCFG(window)
		ls := computeLiveness(window, g)

		interW := buildInterferenceW(window, ls)
		interB := buildInterferenceB(window, ls)
		resW := colorGraph(interW, len(wPalette))
		resB := colorGraph(interB, len(bPalette))

		if len(resW.spills) == 0 && len(resB.spills) == 0 {
			physW := make(map[target.Wr]target.Wr, len(resW.color))
			for n, c := range resW.color {
				physW[target.Pw(n)] = wPalette[c]
			}
			physB := make(map[target.Br]target.Br, len(resB.color))
			for n, c := range resB.color {
				physB[target.Pb(n)] = bPalette[c]
			}
			for i, ins := range window {
				window[i] = rewrite(ins, physW, physB)
			}
			return spliceWindow(code, start, end, window, frameSize), end, nil
		}

		var err error
		window, frameSize, err = insertSpillCode(window, resW.spills, resB.spills, frameSize)
		if err != nil {
			return nil, 0, err
		}
	}
	return nil, 0, diagnostics.New(diagnostics.ErrInternalInvariant, token.Span{}, "register allocation did not converge after %d rounds", maxSpillRounds)
}

// spliceWindow reassembles the full instruction stream with the
// allocated window in place and the trailing Ret's frame size updated
// to account for any spill slots reserved during allocation.
func spliceWindow(code []target.Ins, start, end int, window []target.Ins, frameSize int) []target.Ins {
	out := make([]target.Ins, 0, len(code)+len(window))
	out = append(out, code[:start+2]...)
	out = append(out, window...)
	out = append(out, code[end-1:end+1]...) // fixed epilogue instr + FunctionEndMarker
	ret := code[end+1].(target.Ret)
	ret.FrameSize = target.Bi(clampFrame(frameSize))
	out = append(out, ret)
	out = append(out, code[end+2:]...)
	return out
}

func clampFrame(n int) int {
	if n > 255 {
		return 255
	}
	return n
}
