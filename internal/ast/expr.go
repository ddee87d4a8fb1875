package ast

import "github.com/rillwright/rill/internal/token"

// Expr is an expression (spec.md §3/§6.1).
type Expr interface {
	Node
	exprNode()
}

// BinOp names an arithmetic binary operator.
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
)

func (op BinOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	default:
		return "?"
	}
}

// CompareOp names a comparison operator.
type CompareOp int

const (
	Eq CompareOp = iota
	Neq
	Lt
	Lte
	Gt
	Gte
)

func (op CompareOp) String() string {
	switch op {
	case Eq:
		return "=="
	case Neq:
		return "!="
	case Lt:
		return "<"
	case Lte:
		return "<="
	case Gt:
		return ">"
	case Gte:
		return ">="
	default:
		return "?"
	}
}

// Ident is a bare identifier reference: a local, parameter, global, or
// function name.
type Ident struct {
	Sp   token.Span
	Name string
}

func (e *Ident) Span() token.Span { return e.Sp }
func (*Ident) exprNode()          {}

// IntLit is an integer literal; its type is CompInteger until unified
// against a concrete width.
type IntLit struct {
	Sp    token.Span
	Value int64
}

func (e *IntLit) Span() token.Span { return e.Sp }
func (*IntLit) exprNode()          {}

// StringLit is a string literal, of type CompString until unified.
type StringLit struct {
	Sp    token.Span
	Value string
}

func (e *StringLit) Span() token.Span { return e.Sp }
func (*StringLit) exprNode()          {}

// BoolLit is a true/false literal.
type BoolLit struct {
	Sp    token.Span
	Value bool
}

func (e *BoolLit) Span() token.Span { return e.Sp }
func (*BoolLit) exprNode()          {}

// UnitLit is the single value of type Unit, written "()".
type UnitLit struct{ Sp token.Span }

func (e *UnitLit) Span() token.Span { return e.Sp }
func (*UnitLit) exprNode()          {}

// NullLit is the absent value of an Option type, written "null".
type NullLit struct{ Sp token.Span }

func (e *NullLit) Span() token.Span { return e.Sp }
func (*NullLit) exprNode()          {}

// BinaryExpr is an arithmetic binary operation.
type BinaryExpr struct {
	Sp          token.Span
	Op          BinOp
	Left, Right Expr
}

func (e *BinaryExpr) Span() token.Span { return e.Sp }
func (*BinaryExpr) exprNode()          {}

// CompareExpr is a comparison, always of type Bool.
type CompareExpr struct {
	Sp          token.Span
	Op          CompareOp
	Left, Right Expr
}

func (e *CompareExpr) Span() token.Span { return e.Sp }
func (*CompareExpr) exprNode()          {}

// NotExpr is boolean negation.
type NotExpr struct {
	Sp      token.Span
	Operand Expr
}

func (e *NotExpr) Span() token.Span { return e.Sp }
func (*NotExpr) exprNode()          {}

// NegExpr is arithmetic negation.
type NegExpr struct {
	Sp      token.Span
	Operand Expr
}

func (e *NegExpr) Span() token.Span { return e.Sp }
func (*NegExpr) exprNode()          {}

// DerefExpr dereferences a pointer. As a value it reads through the
// pointer; the checker treats the same syntax as a PlaceExpr when it
// appears on the left of a Rebind.
type DerefExpr struct {
	Sp    token.Span
	Inner Expr
}

func (e *DerefExpr) Span() token.Span { return e.Sp }
func (*DerefExpr) exprNode()          {}

// RefExpr takes the address of Inner, which must resolve to a place.
type RefExpr struct {
	Sp    token.Span
	Inner Expr
}

func (e *RefExpr) Span() token.Span { return e.Sp }
func (*RefExpr) exprNode()          {}

// IfExpr is a conditional expression; both arms must unify to the same
// type (spec.md §4.2 IfBranchMismatch).
type IfExpr struct {
	Sp               token.Span
	Cond, Then, Else Expr
}

func (e *IfExpr) Span() token.Span { return e.Sp }
func (*IfExpr) exprNode()          {}

// BlockExpr sequences statements and optionally yields the value of a
// trailing expression; with no trailing expression it has type Unit.
type BlockExpr struct {
	Sp       token.Span
	Stmts    []Stmt
	Trailing Expr // optional
}

func (e *BlockExpr) Span() token.Span { return e.Sp }
func (*BlockExpr) exprNode()          {}

// LambdaExpr is an anonymous function value.
type LambdaExpr struct {
	Sp     token.Span
	Params []Param
	Ret    *TypeExpr // optional
	Body   Expr
}

func (e *LambdaExpr) Span() token.Span { return e.Sp }
func (*LambdaExpr) exprNode()          {}

// CallExpr invokes the function named Callee with Args. The original
// grammar this is lowered from only ever calls a named function, never
// an arbitrary expression, so Callee is a name looked up in scope.
type CallExpr struct {
	Sp      token.Span
	Callee  string
	Args    []Expr
}

func (e *CallExpr) Span() token.Span { return e.Sp }
func (*CallExpr) exprNode()          {}

// ArrayExpr is an array literal; all elements must unify to one type.
type ArrayExpr struct {
	Sp    token.Span
	Elems []Expr
}

func (e *ArrayExpr) Span() token.Span { return e.Sp }
func (*ArrayExpr) exprNode()          {}

// StructFieldInit is one field initializer inside a StructConstructorExpr.
type StructFieldInit struct {
	Name  string
	Value Expr
}

// StructConstructorExpr builds a struct value field by field.
type StructConstructorExpr struct {
	Sp     token.Span
	Fields []StructFieldInit
}

func (e *StructConstructorExpr) Span() token.Span { return e.Sp }
func (*StructConstructorExpr) exprNode()          {}

// CastExpr reinterprets or narrows/widens Inner to Target.
type CastExpr struct {
	Sp     token.Span
	Inner  Expr
	Target *TypeExpr
}

func (e *CastExpr) Span() token.Span { return e.Sp }
func (*CastExpr) exprNode()          {}

// ConcatExpr joins two string-typed or array-typed operands.
type ConcatExpr struct {
	Sp          token.Span
	Left, Right Expr
}

func (e *ConcatExpr) Span() token.Span { return e.Sp }
func (*ConcatExpr) exprNode()          {}

// IndexExpr reads base[index] as a value (the same syntax is an
// IndexPlace when it is a Rebind target).
type IndexExpr struct {
	Sp    token.Span
	Base  Expr
	Index Expr
}

func (e *IndexExpr) Span() token.Span { return e.Sp }
func (*IndexExpr) exprNode()          {}

// FieldExpr reads base.field as a value.
type FieldExpr struct {
	Sp    token.Span
	Base  Expr
	Field string
}

func (e *FieldExpr) Span() token.Span { return e.Sp }
func (*FieldExpr) exprNode()          {}
