package isel

import (
	"fmt"
	"sort"

	"github.com/rillwright/rill/internal/diagnostics"
	"github.com/rillwright/rill/internal/flat"
	"github.com/rillwright/rill/internal/target"
	"github.com/rillwright/rill/internal/token"
)

// Select lowers every function in a flat program to target instructions,
// in declaration order, each bracketed by FunctionStartMarker/
// FunctionEndMarker so internal/regalloc can find its rewrite window
// (spec.md §4.5, §4.6).
func Select(prog *flat.Program) ([]target.Ins, error) {
	var code []target.Ins
	pool := &stringPool{}

	for _, name := range prog.Order {
		fn, ok := prog.Functions[name]
		if !ok {
			continue // a Static or Const name with no function body
		}
		fnCode, err := selectFunction(fn, pool)
		if err != nil {
			return nil, err
		}
		code = append(code, fnCode...)
	}

	if data := pool.emit(); len(data) > 0 {
		code = append(code, target.Seg{Name: "data"})
		code = append(code, data...)
	}
	return code, nil
}

// selector carries one function's pseudo-register assignment and
// in-progress instruction stream.
type selector struct {
	fn        *flat.Function
	fr        *frame
	regW      map[string]target.Wr
	regB      map[string]target.Br
	nextW     int
	nextB     int
	code      []target.Ins
	labelNum  int
	epilogue  target.WiSymbol
	strings   *stringPool
}

func selectFunction(fn *flat.Function, pool *stringPool) ([]target.Ins, error) {
	fr := buildFrame(fn)
	s := &selector{
		fn:       fn,
		fr:       fr,
		regW:     make(map[string]target.Wr),
		regB:     make(map[string]target.Br),
		epilogue: target.WiSymbol(fn.Name + ".epilogue"),
		strings:  pool,
	}
	s.assignRegisters()

	var out []target.Ins
	out = append(out, target.Label{Name: fn.Name})
	out = append(out, target.FunctionStartMarker{})
	// Fixed one-instruction prologue: establish the frame pointer. This
	// sits outside the allocator's rewrite window (spec.md §4.6's
	// start+2 convention), since it only ever touches the two physical
	// registers Rf/Rs.
	out = append(out, target.MoveW(target.Rf, target.Rs))

	if err := s.selectParams(); err != nil {
		return nil, err
	}
	if err := s.selectBody(); err != nil {
		return nil, err
	}
	out = append(out, s.code...)

	out = append(out, target.Label{Name: string(s.epilogue)})
	// Fixed one-instruction epilogue, symmetric with the prologue above
	// and likewise excluded from the allocator's window (the end-1 half
	// of the start+2/end-1 convention).
	out = append(out, target.MoveW(target.Rs, target.Rf))
	out = append(out, target.FunctionEndMarker{})
	out = append(out, target.Ret{FrameSize: target.Bi(clampByte(fr.size))})
	return out, nil
}

func clampByte(n int) int {
	if n > 255 {
		return 255
	}
	return n
}

// assignRegisters gives every register-resident temp a pseudo register,
// in a name-sorted deterministic order, separating byte-sized from
// wide-sized temps into the two pseudo classes (spec.md §4.5).
func (s *selector) assignRegisters() {
	names := make([]string, 0, len(s.fn.Temps))
	for name := range s.fn.Temps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if s.fr.isFrameResident(name) {
			continue
		}
		if flat.Sizeof(s.fn.Temps[name]) <= 1 {
			s.regB[name] = target.Pb(s.nextB)
			s.nextB++
		} else {
			s.regW[name] = target.Pw(s.nextW)
			s.nextW++
		}
	}
}

// selectParams moves the calling convention's physical wide argument
// registers into each parameter's home (pseudo register, or frame slot
// for an address-taken/aggregate parameter).
func (s *selector) selectParams() error {
	conv := target.Conv
	if len(s.fn.Params) > len(conv.ArgsW) {
		return diagnostics.New(diagnostics.ErrInternalInvariant, token.Span{},
			"function %s takes %d parameters, more than the %d argument registers this convention defines",
			s.fn.Name, len(s.fn.Params), len(conv.ArgsW))
	}
	for i, p := range s.fn.Params {
		argReg := conv.ArgsW[i]
		if s.fr.isFrameResident(p.Name) {
			off := s.fr.offsets[p.Name]
			s.emit(storeAt(target.Rf, off, p.Type, wideVal(argReg)))
			continue
		}
		if flat.Sizeof(p.Type) <= 1 {
			alias, ok := target.ByteAliasOf(argReg)
			if !ok {
				alias, _ = target.LowHalfOf(argReg)
			}
			s.emit(target.MoveB(s.regB[p.Name], alias))
		} else {
			s.emit(target.MoveW(s.regW[p.Name], argReg))
		}
	}
	return nil
}

func (s *selector) emit(i target.Ins) { s.code = append(s.code, i) }

func (s *selector) newScratchW() target.Wr {
	r := target.Pw(s.nextW)
	s.nextW++
	return r
}

func (s *selector) newScratchB() target.Br {
	r := target.Pb(s.nextB)
	s.nextB++
	return r
}

func (s *selector) newLocalLabel(prefix string) string {
	s.labelNum++
	return fmt.Sprintf(".%s.%s%d", s.fn.Name, prefix, s.labelNum)
}

// wideVal is a tiny adapter so selectParams can reuse storeAt, which is
// written against flat-like operand plumbing.
type wideVal target.Wr

func storeAt(base target.Wr, offset int, t flat.FlatType, v wideVal) target.Ins {
	if flat.Sizeof(t) <= 1 {
		alias, ok := target.ByteAliasOf(target.Wr(v))
		if !ok {
			alias, _ = target.LowHalfOf(target.Wr(v))
		}
		return target.StoreBI{Base: base, Disp: target.WiConstant(offset), Src: alias}
	}
	return target.StoreWI{Base: base, Disp: target.WiConstant(offset), Src: target.Wr(v)}
}
