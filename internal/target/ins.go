package target

import "fmt"

// Wi is a wide immediate: either a resolved constant or a symbolic
// reference resolved at link/assembly time (a function or label name).
type Wi interface{ isWi() }

type WiConstant uint16

func (WiConstant) isWi() {}

type WiSymbol string

func (WiSymbol) isWi() {}

func (w WiConstant) String() string { return fmt.Sprintf("0x%03x", uint16(w)) }
func (w WiSymbol) String() string   { return string(w) }

// Bi is a byte immediate.
type Bi uint8

func (b Bi) String() string { return fmt.Sprintf("0x%01x", uint8(b)) }

// Ins is one instruction or pseudo-instruction in the target stream.
// Pseudo-instructions (markers, labels, data directives, comments) carry
// no runtime semantics; they exist to delimit regions for the allocator
// and peephole pass and to drive assembly text rendering (spec.md §6.2).
type Ins interface {
	fmt.Stringer
	isIns()
}

type baseIns struct{}

func (baseIns) isIns() {}

// --- pseudo-instructions ---

type Label struct {
	baseIns
	Name string
}

func (i Label) String() string { return i.Name + ":" }

type Byte struct {
	baseIns
	Value Bi
}

func (i Byte) String() string { return fmt.Sprintf("    .byte %s", i.Value) }

type Wide struct {
	baseIns
	Value Wi
}

func (i Wide) String() string { return fmt.Sprintf("    .wide %s", i.Value) }

type StringData struct {
	baseIns
	Value string
}

func (i StringData) String() string { return fmt.Sprintf("    .string %q", i.Value) }

type Ref struct {
	baseIns
	Symbol string
}

func (i Ref) String() string { return fmt.Sprintf("    .ref %s", i.Symbol) }

type Global struct {
	baseIns
	Symbol string
}

func (i Global) String() string { return fmt.Sprintf("    .global %s", i.Symbol) }

// FunctionStartMarker/FunctionEndMarker bracket one function's body in
// the instruction stream so the register allocator can bound its
// rewrite window without scanning past function boundaries (spec.md
// §4.6, §5).
type FunctionStartMarker struct{ baseIns }

func (FunctionStartMarker) String() string { return "; function" }

type FunctionEndMarker struct{ baseIns }

func (FunctionEndMarker) String() string { return "    ; function end" }

type StaticMarker struct{ baseIns }

func (StaticMarker) String() string { return "; static" }

type Seg struct {
	baseIns
	Name string
}

func (i Seg) String() string { return ".seg " + i.Name }

type Comment struct {
	baseIns
	Text string
}

func (i Comment) String() string { return "# " + i.Text }

// --- real instructions ---

type Nop struct{ baseIns }

func (Nop) String() string { return "" }

type PushW struct {
	baseIns
	R Wr
}

func (i PushW) String() string { return fmt.Sprintf("    push %s", i.R) }

type PushB struct {
	baseIns
	R Br
}

func (i PushB) String() string { return fmt.Sprintf("    push %s", i.R) }

type PopW struct {
	baseIns
	R Wr
}

func (i PopW) String() string { return fmt.Sprintf("    pop %s", i.R) }

type PopB struct {
	baseIns
	R Br
}

func (i PopB) String() string { return fmt.Sprintf("    pop %s", i.R) }

type Call struct {
	baseIns
	Target Wi
}

func (i Call) String() string { return fmt.Sprintf("    call %s", i.Target) }

// Ret pops the given number of frame bytes before returning.
type Ret struct {
	baseIns
	FrameSize Bi
}

func (i Ret) String() string { return fmt.Sprintf("    ret %s", i.FrameSize) }

// StoreBI/StoreWI store through a base register plus a displacement
// immediate; StoreBR/StoreWR store through base+offset registers.
type StoreBI struct {
	baseIns
	Base Wr
	Disp Wi
	Src  Br
}

func (i StoreBI) String() string { return fmt.Sprintf("    store %s, %s, %s", i.Base, i.Disp, i.Src) }

type StoreWI struct {
	baseIns
	Base Wr
	Disp Wi
	Src  Wr
}

func (i StoreWI) String() string { return fmt.Sprintf("    store %s, %s, %s", i.Base, i.Disp, i.Src) }

type StoreBR struct {
	baseIns
	Base, Offset Wr
	Src          Br
}

func (i StoreBR) String() string {
	return fmt.Sprintf("    store %s, %s, %s", i.Base, i.Offset, i.Src)
}

type StoreWR struct {
	baseIns
	Base, Offset, Src Wr
}

func (i StoreWR) String() string {
	return fmt.Sprintf("    store %s, %s, %s", i.Base, i.Offset, i.Src)
}

type LoadBI struct {
	baseIns
	Dst  Br
	Base Wr
	Disp Wi
}

func (i LoadBI) String() string { return fmt.Sprintf("    load %s, %s, %s", i.Dst, i.Base, i.Disp) }

type LoadWI struct {
	baseIns
	Dst  Wr
	Base Wr
	Disp Wi
}

func (i LoadWI) String() string { return fmt.Sprintf("    load %s, %s, %s", i.Dst, i.Base, i.Disp) }

type LoadBR struct {
	baseIns
	Dst          Br
	Base, Offset Wr
}

func (i LoadBR) String() string {
	return fmt.Sprintf("    load %s, %s, %s", i.Dst, i.Base, i.Offset)
}

type LoadWR struct {
	baseIns
	Dst, Base, Offset Wr
}

func (i LoadWR) String() string {
	return fmt.Sprintf("    load %s, %s, %s", i.Dst, i.Base, i.Offset)
}

// --- branches ---

type jumpKind struct {
	baseIns
	Mnemonic string
	Target   Wi
}

func (i jumpKind) String() string { return fmt.Sprintf("    %s %s", i.Mnemonic, i.Target) }

func Jez(t Wi) Ins { return jumpKind{Mnemonic: "jez", Target: t} }
func Jnz(t Wi) Ins { return jumpKind{Mnemonic: "jnz", Target: t} }
func Jlt(t Wi) Ins { return jumpKind{Mnemonic: "jlt", Target: t} }
func Jle(t Wi) Ins { return jumpKind{Mnemonic: "jle", Target: t} }
func Jgt(t Wi) Ins { return jumpKind{Mnemonic: "jgt", Target: t} }
func Jge(t Wi) Ins { return jumpKind{Mnemonic: "jge", Target: t} }
func Jo(t Wi) Ins  { return jumpKind{Mnemonic: "jo", Target: t} }
func Jno(t Wi) Ins { return jumpKind{Mnemonic: "jno", Target: t} }
func Jb(t Wi) Ins  { return jumpKind{Mnemonic: "jb", Target: t} }  // alias Jc
func Jae(t Wi) Ins { return jumpKind{Mnemonic: "jae", Target: t} } // alias Jnc
func Ja(t Wi) Ins  { return jumpKind{Mnemonic: "ja", Target: t} }
func Jbe(t Wi) Ins { return jumpKind{Mnemonic: "jbe", Target: t} }

type Jump struct {
	baseIns
	Target Wi
}

func (i Jump) String() string { return fmt.Sprintf("    jmp %s", i.Target) }

type JmpR struct {
	baseIns
	Target Wr
}

func (i JmpR) String() string { return fmt.Sprintf("    jmp %s", i.Target) }

type LdiW struct {
	baseIns
	Dst Wr
	Val Wi
}

func (i LdiW) String() string { return fmt.Sprintf("    ldi %s, %s", i.Dst, i.Val) }

type LdiB struct {
	baseIns
	Dst Br
	Val Bi
}

func (i LdiB) String() string { return fmt.Sprintf("    ldi %s, %s", i.Dst, i.Val) }

// --- ALU, one-to-one with flat BinOp/bitwise ops ---

type aluW struct {
	baseIns
	Mnemonic string
	Dst, A, B Wr
}

func (i aluW) String() string {
	return fmt.Sprintf("    %s %s, %s, %s", i.Mnemonic, i.Dst, i.A, i.B)
}

type aluB struct {
	baseIns
	Mnemonic string
	Dst, A, B Br
}

func (i aluB) String() string {
	return fmt.Sprintf("    %s %s, %s, %s", i.Mnemonic, i.Dst, i.A, i.B)
}

func AddW(dst, a, b Wr) Ins { return aluW{Mnemonic: "add", Dst: dst, A: a, B: b} }
func AddB(dst, a, b Br) Ins { return aluB{Mnemonic: "add", Dst: dst, A: a, B: b} }
func SubW(dst, a, b Wr) Ins { return aluW{Mnemonic: "sub", Dst: dst, A: a, B: b} }
func SubB(dst, a, b Br) Ins { return aluB{Mnemonic: "sub", Dst: dst, A: a, B: b} }
func AndW(dst, a, b Wr) Ins { return aluW{Mnemonic: "and", Dst: dst, A: a, B: b} }
func AndB(dst, a, b Br) Ins { return aluB{Mnemonic: "and", Dst: dst, A: a, B: b} }
func OrW(dst, a, b Wr) Ins  { return aluW{Mnemonic: "or", Dst: dst, A: a, B: b} }
func OrB(dst, a, b Br) Ins  { return aluB{Mnemonic: "or", Dst: dst, A: a, B: b} }
func XorW(dst, a, b Wr) Ins { return aluW{Mnemonic: "xor", Dst: dst, A: a, B: b} }
func XorB(dst, a, b Br) Ins { return aluB{Mnemonic: "xor", Dst: dst, A: a, B: b} }
func ShlW(dst, a, b Wr) Ins { return aluW{Mnemonic: "shl", Dst: dst, A: a, B: b} }
func ShlB(dst, a, b Br) Ins { return aluB{Mnemonic: "shl", Dst: dst, A: a, B: b} }
func AsrW(dst, a, b Wr) Ins { return aluW{Mnemonic: "asr", Dst: dst, A: a, B: b} }
func AsrB(dst, a, b Br) Ins { return aluB{Mnemonic: "asr", Dst: dst, A: a, B: b} }
func LsrW(dst, a, b Wr) Ins { return aluW{Mnemonic: "lsr", Dst: dst, A: a, B: b} }
func LsrB(dst, a, b Br) Ins { return aluB{Mnemonic: "lsr", Dst: dst, A: a, B: b} }

// MoveW/MoveB are the canonical adds-with-r0 idiom the peephole pass
// recognizes and strips when Dst == Src (spec.md §4.7).
func MoveW(dst, src Wr) Ins { return AddW(dst, R0, src) }
func MoveB(dst, src Br) Ins { return AddB(dst, R0b, src) }

// Mul/Div produce a (low, high) or (quotient, remainder) pair.
type DivW struct {
	baseIns
	Quot, Rem, A, B Wr
}

func (i DivW) String() string {
	return fmt.Sprintf("    div %s, %s, %s, %s", i.Quot, i.Rem, i.A, i.B)
}

type DivB struct {
	baseIns
	Quot, Rem, A, B Br
}

func (i DivB) String() string {
	return fmt.Sprintf("    div %s, %s, %s, %s", i.Quot, i.Rem, i.A, i.B)
}

type MulW struct {
	baseIns
	Low, High, A, B Wr
}

func (i MulW) String() string {
	return fmt.Sprintf("    mul %s, %s, %s, %s", i.Low, i.High, i.A, i.B)
}

type MulB struct {
	baseIns
	Low, High, A, B Br
}

func (i MulB) String() string {
	return fmt.Sprintf("    mul %s, %s, %s, %s", i.Low, i.High, i.A, i.B)
}

type Null struct{ baseIns }

func (Null) String() string { return "    null" }
