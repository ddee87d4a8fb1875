// Package ast defines the surface AST delivered by the parser to the
// checker (spec.md §6.1): a Program of top-level declarations built from
// statements and expressions, every node carrying a source Span.
//
// The node shapes (Span-carrying nodes, a Decl/Stmt/Expr/PlaceExpr split)
// follow the teacher's internal/ast package; the concrete node set comes
// from spec.md §3/§6.1 and from the original implementation's
// ttype/ast.rs, which is the typed mirror of this same grammar.
package ast

import "github.com/rillwright/rill/internal/token"

// Node is the base interface implemented by every AST node.
type Node interface {
	Span() token.Span
}

// Decl is a top-level declaration (spec.md §6.1).
type Decl interface {
	Node
	declNode()
}

// Program is a list of top-level declarations.
type Program struct {
	Decls []Decl
}

// Param is a single (name, type annotation) function parameter.
type Param struct {
	Name string
	Type *TypeExpr
}

// StaticDecl declares a mutable global.
type StaticDecl struct {
	Sp    token.Span
	Name  string
	Type  *TypeExpr // optional; nil means infer
	Value Expr
}

func (d *StaticDecl) Span() token.Span { return d.Sp }
func (*StaticDecl) declNode()          {}

// ConstDecl declares an immutable, compile-time evaluable global.
type ConstDecl struct {
	Sp    token.Span
	Name  string
	Type  *TypeExpr
	Value Expr
}

func (d *ConstDecl) Span() token.Span { return d.Sp }
func (*ConstDecl) declNode()          {}

// FnDecl declares a named function.
type FnDecl struct {
	Sp     token.Span
	Name   string
	Params []Param
	Ret    *TypeExpr
	Body   Expr
}

func (d *FnDecl) Span() token.Span { return d.Sp }
func (*FnDecl) declNode()          {}
