package ast

import "github.com/rillwright/rill/internal/token"

// Stmt is a statement inside a function body (spec.md §3/§6.1).
type Stmt interface {
	Node
	stmtNode()
}

// ExpressStmt evaluates an expression for its side effects and discards
// the result.
type ExpressStmt struct {
	Sp   token.Span
	Expr Expr
}

func (s *ExpressStmt) Span() token.Span { return s.Sp }
func (*ExpressStmt) stmtNode()          {}

// LetStmt introduces an immutable local binding.
type LetStmt struct {
	Sp    token.Span
	Name  string
	Type  *TypeExpr // optional
	Value Expr
}

func (s *LetStmt) Span() token.Span { return s.Sp }
func (*LetStmt) stmtNode()          {}

// VarStmt introduces a mutable local binding.
type VarStmt struct {
	Sp    token.Span
	Name  string
	Type  *TypeExpr // optional
	Value Expr
}

func (s *VarStmt) Span() token.Span { return s.Sp }
func (*VarStmt) stmtNode()          {}

// RebindStmt assigns a new value to an existing place.
type RebindStmt struct {
	Sp    token.Span
	Place PlaceExpr
	Value Expr
}

func (s *RebindStmt) Span() token.Span { return s.Sp }
func (*RebindStmt) stmtNode()          {}

// ReturnStmt exits the enclosing function with an optional value.
type ReturnStmt struct {
	Sp    token.Span
	Value Expr // nil means return unit
}

func (s *ReturnStmt) Span() token.Span { return s.Sp }
func (*ReturnStmt) stmtNode()          {}
