package target

// ALUW/ALUB expose the otherwise-unexported three-register ALU
// instruction shapes (Add/Sub/And/Or/Xor/Shl/Asr/Lsr, wide and byte) so
// other packages (internal/regalloc) can inspect and rebuild them
// generically instead of switching on every named constructor.
type ALUW struct {
	Mnemonic  string
	Dst, A, B Wr
}

// AsALUW reports whether ins is one of the wide 3-register ALU forms.
func AsALUW(ins Ins) (ALUW, bool) {
	if i, ok := ins.(aluW); ok {
		return ALUW{Mnemonic: i.Mnemonic, Dst: i.Dst, A: i.A, B: i.B}, true
	}
	return ALUW{}, false
}

// NewALUW reconstructs a wide ALU instruction from its parts.
func NewALUW(a ALUW) Ins { return aluW{Mnemonic: a.Mnemonic, Dst: a.Dst, A: a.A, B: a.B} }

type ALUB struct {
	Mnemonic  string
	Dst, A, B Br
}

// AsALUB reports whether ins is one of the byte 3-register ALU forms.
func AsALUB(ins Ins) (ALUB, bool) {
	if i, ok := ins.(aluB); ok {
		return ALUB{Mnemonic: i.Mnemonic, Dst: i.Dst, A: i.A, B: i.B}, true
	}
	return ALUB{}, false
}

// NewALUB reconstructs a byte ALU instruction from its parts.
func NewALUB(a ALUB) Ins { return aluB{Mnemonic: a.Mnemonic, Dst: a.Dst, A: a.A, B: a.B} }

// Branch exposes the conditional-jump family (Jez/Jnz/Jlt/Jle/Jgt/Jge/
// Jo/Jno/Jb/Jae/Ja/Jbe), constructed through named functions but backed
// by one unexported shape.
type Branch struct {
	Mnemonic string
	Target   Wi
}

// AsBranch reports whether ins is one of the conditional branch forms.
func AsBranch(ins Ins) (Branch, bool) {
	if i, ok := ins.(jumpKind); ok {
		return Branch{Mnemonic: i.Mnemonic, Target: i.Target}, true
	}
	return Branch{}, false
}

// NewBranch reconstructs a conditional branch instruction with a new
// target, keeping its mnemonic (used when a jump target is renamed,
// e.g. after inserting spill code between labels).
func NewBranch(mnemonic string, target Wi) Ins { return jumpKind{Mnemonic: mnemonic, Target: target} }
