package flat

import (
	"fmt"

	"github.com/rillwright/rill/internal/diagnostics"
)

// Program is the flat program: one Function per source-level function
// (spec.md §3).
type Program struct {
	Functions map[string]*Function
	Order     []string // declaration order, for deterministic codegen
}

// Param is a function parameter after flattening.
type Param struct {
	Name string
	Type FlatType
}

// Function is a linear sequence of instructions over named temporaries.
type Function struct {
	Name   string
	Params []Param
	Ret    FlatType
	Temps  map[string]FlatType // every temporary's assigned type
	Code   []Instruction
}

// BinOp mirrors ast.BinOp at the flat level.
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
)

// CompareOp mirrors ast.CompareOp at the flat level.
type CompareOp int

const (
	Eq CompareOp = iota
	Neq
	Lt
	Lte
	Gt
	Gte
)

// Value is an operand to a flat instruction: either a named temporary or
// an immediate constant.
type Value interface{ isValue() }

type Temp struct{ Name string }

func (Temp) isValue() {}
func (t Temp) String() string { return t.Name }

type ConstInt struct {
	Value int64
	Type  FlatType
}

func (ConstInt) isValue() {}

type ConstBool struct{ Value bool }

func (ConstBool) isValue() {}

// ConstString names a string literal; instruction selection emits it as
// a `.string` data directive (spec.md §6.2) and loads its address.
type ConstString struct{ Value string }

func (ConstString) isValue() {}

// Label names a branch target, unique within its function.
type Label string

// Instruction is one flat, three-address operation.
type Instruction interface{ isInstruction() }

type Assign struct {
	Dst   string
	Value Value
}

func (Assign) isInstruction() {}

type BinaryOp struct {
	Dst         string
	Op          BinOp
	Left, Right Value
}

func (BinaryOp) isInstruction() {}

type CompareInstr struct {
	Dst         string
	Op          CompareOp
	Left, Right Value
}

func (CompareInstr) isInstruction() {}

type NotInstr struct {
	Dst, Src string
}

func (NotInstr) isInstruction() {}

type NegInstr struct {
	Dst string
	Src Value
}

func (NegInstr) isInstruction() {}

// AddrOf computes the address of a named local or temporary.
type AddrOf struct {
	Dst, Src string
}

func (AddrOf) isInstruction() {}

// Load reads the value pointed to by Ptr (+ byte Offset) into Dst.
type Load struct {
	Dst    string
	Ptr    Value
	Offset int
	Type   FlatType
}

func (Load) isInstruction() {}

// Store writes Value into the address held by Ptr (+ byte Offset).
type Store struct {
	Ptr    Value
	Offset int
	Value  Value
}

func (Store) isInstruction() {}

type Call struct {
	Dst    string // "" if the call's result is discarded
	Callee string
	Args   []Value
}

func (Call) isInstruction() {}

type LabelInstr struct{ Name Label }

func (LabelInstr) isInstruction() {}

type Jump struct{ Target Label }

func (Jump) isInstruction() {}

type CondJump struct {
	Cond              Value
	IfTrue, IfFalse Label
}

func (CondJump) isInstruction() {}

type Return struct{ Value Value } // Value == nil means return unit

func (Return) isInstruction() {}

// Raise lowers a folded-proven runtime failure to an unconditional trap
// downstream (spec.md §7).
type Raise struct {
	Code    diagnostics.Code
	Message string
}

func (Raise) isInstruction() {}

func (f *Function) String() string {
	return fmt.Sprintf("fn %s(%d params) -> %s [%d instrs]", f.Name, len(f.Params), f.Ret, len(f.Code))
}
