package ast

import "github.com/rillwright/rill/internal/token"

// PlaceExpr is an lvalue: something a Rebind statement or a Ref
// expression can take the address of. Grounded on the original
// implementation's PlaceExpr enum (ttype/ast.rs).
type PlaceExpr interface {
	Node
	placeNode()
}

// IdentPlace names a local, parameter, or global directly.
type IdentPlace struct {
	Sp   token.Span
	Name string
}

func (p *IdentPlace) Span() token.Span { return p.Sp }
func (*IdentPlace) placeNode()         {}

// DerefPlace is *e used as an assignment target.
type DerefPlace struct {
	Sp    token.Span
	Inner Expr
}

func (p *DerefPlace) Span() token.Span { return p.Sp }
func (*DerefPlace) placeNode()         {}

// IndexPlace is base[index] used as an assignment target.
type IndexPlace struct {
	Sp    token.Span
	Base  Expr
	Index Expr
}

func (p *IndexPlace) Span() token.Span { return p.Sp }
func (*IndexPlace) placeNode()         {}

// FieldPlace is base.field used as an assignment target.
type FieldPlace struct {
	Sp    token.Span
	Base  Expr
	Field string
}

func (p *FieldPlace) Span() token.Span { return p.Sp }
func (*FieldPlace) placeNode()         {}
