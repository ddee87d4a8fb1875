// Package target models the 16-bit register machine ISA ("telda") that
// instruction selection and register allocation emit, grounded on
// _examples/original_source/src/telda/mod.rs: its byte/wide register
// files (with byte aliases of the wide registers), its immediate forms,
// and its instruction set with an exact assembly Display form matching
// spec.md §6.2.
package target

import "fmt"

// Wr is a wide (16-bit) register.
type Wr int

const (
	R0 Wr = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
	Rs // stack pointer
	Rl // link register
	Rf // frame pointer
	Rp // program counter
	Rh // reserved/heap register, carried from the teacher ISA
	firstPseudoWr
)

// Pw names a pseudo wide register, numbered above the physical file.
func Pw(n int) Wr { return firstPseudoWr + Wr(n) }

// IsPseudo reports whether r is a pseudo register awaiting allocation.
func (r Wr) IsPseudo() bool { return r >= firstPseudoWr }

// PseudoNum returns the pseudo register's index; only valid when IsPseudo.
func (r Wr) PseudoNum() int { return int(r - firstPseudoWr) }

func (r Wr) String() string {
	switch r {
	case R0:
		return "r0"
	case R1:
		return "r1"
	case R2:
		return "r2"
	case R3:
		return "r3"
	case R4:
		return "r4"
	case R5:
		return "r5"
	case R6:
		return "r6"
	case R7:
		return "r7"
	case R8:
		return "r8"
	case R9:
		return "r9"
	case R10:
		return "r10"
	case Rs:
		return "rs"
	case Rl:
		return "rl"
	case Rf:
		return "rf"
	case Rp:
		return "rp"
	case Rh:
		return "rh"
	default:
		return fmt.Sprintf("rw%d", r.PseudoNum())
	}
}

// Br is a byte (8-bit) register. The low five physical wide registers
// alias two byte halves each (R1l/R1h .. R5l/R5h); R0 and R6..R10 only
// ever have one natural byte view, since the ISA only zero-extends
// through those registers (spec.md §4.7's peephole rewrite depends on
// this).
type Br int

const (
	R0b Br = iota
	R1l
	R1h
	R2l
	R2h
	R3l
	R3h
	R4l
	R4h
	R5l
	R5h
	R6b
	R7b
	R8b
	R9b
	R10b
	firstPseudoBr
)

// Pb names a pseudo byte register.
func Pb(n int) Br { return firstPseudoBr + Br(n) }

func (r Br) IsPseudo() bool { return r >= firstPseudoBr }
func (r Br) PseudoNum() int { return int(r - firstPseudoBr) }

func (r Br) String() string {
	switch r {
	case R0b:
		return "r0b"
	case R1l:
		return "r1l"
	case R1h:
		return "r1h"
	case R2l:
		return "r2l"
	case R2h:
		return "r2h"
	case R3l:
		return "r3l"
	case R3h:
		return "r3h"
	case R4l:
		return "r4l"
	case R4h:
		return "r4h"
	case R5l:
		return "r5l"
	case R5h:
		return "r5h"
	case R6b:
		return "r6b"
	case R7b:
		return "r7b"
	case R8b:
		return "r8b"
	case R9b:
		return "r9b"
	case R10b:
		return "r10b"
	default:
		return fmt.Sprintf("rb%d", r.PseudoNum())
	}
}

// ByteAliasOf returns the single-register byte view of a wide register,
// where one exists (R0 and R6..R10, which zero-extend rather than split
// into independent halves).
func ByteAliasOf(r Wr) (Br, bool) {
	switch r {
	case R0:
		return R0b, true
	case R6:
		return R6b, true
	case R7:
		return R7b, true
	case R8:
		return R8b, true
	case R9:
		return R9b, true
	case R10:
		return R10b, true
	default:
		return 0, false
	}
}

// LowHalfOf returns the low byte half of a wide register that splits
// into independent l/h halves (R1..R5).
func LowHalfOf(r Wr) (Br, bool) {
	switch r {
	case R1:
		return R1l, true
	case R2:
		return R2l, true
	case R3:
		return R3l, true
	case R4:
		return R4l, true
	case R5:
		return R5l, true
	default:
		return 0, false
	}
}

// HighHalfOf returns the high byte half of a wide register that splits
// into independent l/h halves (R1..R5).
func HighHalfOf(r Wr) (Br, bool) {
	switch r {
	case R1:
		return R1h, true
	case R2:
		return R2h, true
	case R3:
		return R3h, true
	case R4:
		return R4h, true
	case R5:
		return R5h, true
	default:
		return 0, false
	}
}
