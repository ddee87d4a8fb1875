package ast

import (
	"github.com/rillwright/rill/internal/diagnostics"
	"github.com/rillwright/rill/internal/token"
	"github.com/rillwright/rill/internal/types"
)

// The typed AST mirrors the surface AST node-for-node (spec.md §3): every
// node additionally carries its resolved types.Type, comparisons carry
// their operand type, and assignment targets are represented by a
// TypedPlace rather than reusing TypedExpr.

// TypedNode is the base of every typed AST node.
type TypedNode interface {
	Span() token.Span
}

// TypedProgram is a fully checked program: one TypedFn per declared
// function, plus the checked static and const globals.
type TypedProgram struct {
	Statics []*TypedStatic
	Consts  []*TypedConst
	Fns     map[string]*TypedFn
	// Order preserves declaration order for deterministic codegen.
	Order []string
}

// TypedStatic is a checked static global.
type TypedStatic struct {
	Sp    token.Span
	Name  string
	Type  types.Type
	Value TypedExpr
}

func (d *TypedStatic) Span() token.Span { return d.Sp }

// TypedConst is a checked const global; Value must be const-foldable.
type TypedConst struct {
	Sp    token.Span
	Name  string
	Type  types.Type
	Value TypedExpr
}

func (d *TypedConst) Span() token.Span { return d.Sp }

// TypedParam is a checked function parameter.
type TypedParam struct {
	Name string
	Type types.Type
}

// TypedFn is a checked function: every statement and expression in its
// body carries a resolved types.Type.
type TypedFn struct {
	Sp     token.Span
	Name   string
	Params []TypedParam
	Ret    types.Type
	Body   TypedExpr
}

func (d *TypedFn) Span() token.Span { return d.Sp }

// TypedStmt is a checked statement.
type TypedStmt interface {
	TypedNode
	typedStmtNode()
}

type TypedExpressStmt struct {
	Sp   token.Span
	Expr TypedExpr
}

func (s *TypedExpressStmt) Span() token.Span { return s.Sp }
func (*TypedExpressStmt) typedStmtNode()     {}

type TypedLetStmt struct {
	Sp    token.Span
	Name  string
	Type  types.Type
	Value TypedExpr
}

func (s *TypedLetStmt) Span() token.Span { return s.Sp }
func (*TypedLetStmt) typedStmtNode()     {}

type TypedVarStmt struct {
	Sp    token.Span
	Name  string
	Type  types.Type
	Value TypedExpr
}

func (s *TypedVarStmt) Span() token.Span { return s.Sp }
func (*TypedVarStmt) typedStmtNode()     {}

type TypedRebindStmt struct {
	Sp    token.Span
	Place TypedPlace
	Value TypedExpr
}

func (s *TypedRebindStmt) Span() token.Span { return s.Sp }
func (*TypedRebindStmt) typedStmtNode()     {}

type TypedReturnStmt struct {
	Sp    token.Span
	Value TypedExpr // nil means unit
}

func (s *TypedReturnStmt) Span() token.Span { return s.Sp }
func (*TypedReturnStmt) typedStmtNode()     {}

// TypedPlace is a checked assignment target.
type TypedPlace interface {
	TypedNode
	PlaceType() types.Type
	typedPlaceNode()
}

type TypedIdentPlace struct {
	Sp   token.Span
	Name string
	Type types.Type
}

func (p *TypedIdentPlace) Span() token.Span     { return p.Sp }
func (p *TypedIdentPlace) PlaceType() types.Type { return p.Type }
func (*TypedIdentPlace) typedPlaceNode()        {}

type TypedDerefPlace struct {
	Sp    token.Span
	Inner TypedExpr
	Type  types.Type
}

func (p *TypedDerefPlace) Span() token.Span     { return p.Sp }
func (p *TypedDerefPlace) PlaceType() types.Type { return p.Type }
func (*TypedDerefPlace) typedPlaceNode()        {}

type TypedIndexPlace struct {
	Sp    token.Span
	Base  TypedExpr
	Index TypedExpr
	Type  types.Type
}

func (p *TypedIndexPlace) Span() token.Span     { return p.Sp }
func (p *TypedIndexPlace) PlaceType() types.Type { return p.Type }
func (*TypedIndexPlace) typedPlaceNode()        {}

type TypedFieldPlace struct {
	Sp    token.Span
	Base  TypedExpr
	Field string
	Type  types.Type
}

func (p *TypedFieldPlace) Span() token.Span     { return p.Sp }
func (p *TypedFieldPlace) PlaceType() types.Type { return p.Type }
func (*TypedFieldPlace) typedPlaceNode()        {}

// TypedTempPlace is a compiler-introduced place: the address of a hidden
// temporary initialized to Value. Used when Ref is taken of an rvalue
// rather than a syntactic place (spec.md §4.2 "Ref e: ... if value,
// allocate a hidden temporary").
type TypedTempPlace struct {
	Sp    token.Span
	Value TypedExpr
	Type  types.Type
}

func (p *TypedTempPlace) Span() token.Span     { return p.Sp }
func (p *TypedTempPlace) PlaceType() types.Type { return p.Type }
func (*TypedTempPlace) typedPlaceNode()        {}

// TypedExpr is a checked expression; every variant carries its resolved
// types.Type so later passes never need to re-derive it.
type TypedExpr interface {
	TypedNode
	ExprType() types.Type
	typedExprNode()
}

type TypedIdent struct {
	Sp   token.Span
	Name string
	Type types.Type
}

func (e *TypedIdent) Span() token.Span     { return e.Sp }
func (e *TypedIdent) ExprType() types.Type { return e.Type }
func (*TypedIdent) typedExprNode()         {}

type TypedIntLit struct {
	Sp    token.Span
	Value int64
	Type  types.Type // pinned concrete Int after folding/unification
}

func (e *TypedIntLit) Span() token.Span     { return e.Sp }
func (e *TypedIntLit) ExprType() types.Type { return e.Type }
func (*TypedIntLit) typedExprNode()         {}

type TypedStringLit struct {
	Sp    token.Span
	Value string
	Type  types.Type
}

func (e *TypedStringLit) Span() token.Span     { return e.Sp }
func (e *TypedStringLit) ExprType() types.Type { return e.Type }
func (*TypedStringLit) typedExprNode()         {}

type TypedBoolLit struct {
	Sp    token.Span
	Value bool
}

func (e *TypedBoolLit) Span() token.Span     { return e.Sp }
func (e *TypedBoolLit) ExprType() types.Type { return types.Bool{} }
func (*TypedBoolLit) typedExprNode()         {}

type TypedUnitLit struct{ Sp token.Span }

func (e *TypedUnitLit) Span() token.Span     { return e.Sp }
func (e *TypedUnitLit) ExprType() types.Type { return types.Unit{} }
func (*TypedUnitLit) typedExprNode()         {}

type TypedNullLit struct {
	Sp   token.Span
	Type types.Type // Option(T)
}

func (e *TypedNullLit) Span() token.Span     { return e.Sp }
func (e *TypedNullLit) ExprType() types.Type { return e.Type }
func (*TypedNullLit) typedExprNode()         {}

type TypedBinaryExpr struct {
	Sp          token.Span
	Op          BinOp
	Left, Right TypedExpr
	Type        types.Type
}

func (e *TypedBinaryExpr) Span() token.Span     { return e.Sp }
func (e *TypedBinaryExpr) ExprType() types.Type { return e.Type }
func (*TypedBinaryExpr) typedExprNode()         {}

// TypedCompareExpr carries OperandType (the type the two sides were
// unified to) in addition to its own Bool result type, matching spec.md
// §3's "comparisons carry the operand type".
type TypedCompareExpr struct {
	Sp           token.Span
	Op           CompareOp
	Left, Right  TypedExpr
	OperandType  types.Type
}

func (e *TypedCompareExpr) Span() token.Span     { return e.Sp }
func (e *TypedCompareExpr) ExprType() types.Type { return types.Bool{} }
func (*TypedCompareExpr) typedExprNode()         {}

type TypedNotExpr struct {
	Sp      token.Span
	Operand TypedExpr
}

func (e *TypedNotExpr) Span() token.Span     { return e.Sp }
func (e *TypedNotExpr) ExprType() types.Type { return types.Bool{} }
func (*TypedNotExpr) typedExprNode()         {}

type TypedNegExpr struct {
	Sp      token.Span
	Operand TypedExpr
	Type    types.Type
}

func (e *TypedNegExpr) Span() token.Span     { return e.Sp }
func (e *TypedNegExpr) ExprType() types.Type { return e.Type }
func (*TypedNegExpr) typedExprNode()         {}

type TypedDerefExpr struct {
	Sp    token.Span
	Inner TypedExpr
	Type  types.Type // pointee type
}

func (e *TypedDerefExpr) Span() token.Span     { return e.Sp }
func (e *TypedDerefExpr) ExprType() types.Type { return e.Type }
func (*TypedDerefExpr) typedExprNode()         {}

type TypedRefExpr struct {
	Sp    token.Span
	Inner TypedPlace
	Type  types.Type // Pointer(inner type)
}

func (e *TypedRefExpr) Span() token.Span     { return e.Sp }
func (e *TypedRefExpr) ExprType() types.Type { return e.Type }
func (*TypedRefExpr) typedExprNode()         {}

type TypedIfExpr struct {
	Sp               token.Span
	Cond, Then, Else TypedExpr
	Type             types.Type
}

func (e *TypedIfExpr) Span() token.Span     { return e.Sp }
func (e *TypedIfExpr) ExprType() types.Type { return e.Type }
func (*TypedIfExpr) typedExprNode()         {}

type TypedBlockExpr struct {
	Sp       token.Span
	Stmts    []TypedStmt
	Trailing TypedExpr // optional
	Type     types.Type
}

func (e *TypedBlockExpr) Span() token.Span     { return e.Sp }
func (e *TypedBlockExpr) ExprType() types.Type { return e.Type }
func (*TypedBlockExpr) typedExprNode()         {}

type TypedLambdaExpr struct {
	Sp     token.Span
	Params []TypedParam
	Body   TypedExpr
	Type   types.Type // Function
}

func (e *TypedLambdaExpr) Span() token.Span     { return e.Sp }
func (e *TypedLambdaExpr) ExprType() types.Type { return e.Type }
func (*TypedLambdaExpr) typedExprNode()         {}

type TypedCallExpr struct {
	Sp     token.Span
	Callee string
	Args   []TypedExpr
	Type   types.Type // callee's return type
}

func (e *TypedCallExpr) Span() token.Span     { return e.Sp }
func (e *TypedCallExpr) ExprType() types.Type { return e.Type }
func (*TypedCallExpr) typedExprNode()         {}

type TypedArrayExpr struct {
	Sp    token.Span
	Elems []TypedExpr
	Type  types.Type // Array(Elem, len(Elems))
}

func (e *TypedArrayExpr) Span() token.Span     { return e.Sp }
func (e *TypedArrayExpr) ExprType() types.Type { return e.Type }
func (*TypedArrayExpr) typedExprNode()         {}

type TypedStructFieldInit struct {
	Name  string
	Value TypedExpr
}

type TypedStructConstructorExpr struct {
	Sp     token.Span
	Fields []TypedStructFieldInit
	Type   types.Type // Struct
}

func (e *TypedStructConstructorExpr) Span() token.Span     { return e.Sp }
func (e *TypedStructConstructorExpr) ExprType() types.Type { return e.Type }
func (*TypedStructConstructorExpr) typedExprNode()         {}

type TypedCastExpr struct {
	Sp    token.Span
	Inner TypedExpr
	Type  types.Type // cast target
}

func (e *TypedCastExpr) Span() token.Span     { return e.Sp }
func (e *TypedCastExpr) ExprType() types.Type { return e.Type }
func (*TypedCastExpr) typedExprNode()         {}

type TypedConcatExpr struct {
	Sp          token.Span
	Left, Right TypedExpr
	Type        types.Type
}

func (e *TypedConcatExpr) Span() token.Span     { return e.Sp }
func (e *TypedConcatExpr) ExprType() types.Type { return e.Type }
func (*TypedConcatExpr) typedExprNode()         {}

type TypedIndexExpr struct {
	Sp    token.Span
	Base  TypedExpr
	Index TypedExpr
	Type  types.Type // element type
}

func (e *TypedIndexExpr) Span() token.Span     { return e.Sp }
func (e *TypedIndexExpr) ExprType() types.Type { return e.Type }
func (*TypedIndexExpr) typedExprNode()         {}

type TypedFieldExpr struct {
	Sp    token.Span
	Base  TypedExpr
	Field string
	Type  types.Type
}

func (e *TypedFieldExpr) Span() token.Span     { return e.Sp }
func (e *TypedFieldExpr) ExprType() types.Type { return e.Type }
func (*TypedFieldExpr) typedExprNode()         {}

// TypedRaiseExpr is a computation the constant folder has proven must
// fail at runtime (spec.md §4.3/§7). It survives unchanged through
// flattening and instruction selection, where it lowers to an
// unconditional trap.
type TypedRaiseExpr struct {
	Sp      token.Span
	Code    diagnostics.Code
	Message string
	Type    types.Type // the type the failed computation would have had
}

func (e *TypedRaiseExpr) Span() token.Span     { return e.Sp }
func (e *TypedRaiseExpr) ExprType() types.Type { return e.Type }
func (*TypedRaiseExpr) typedExprNode()         {}
