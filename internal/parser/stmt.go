package parser

import (
	"github.com/rillwright/rill/internal/ast"
	"github.com/rillwright/rill/internal/token"
)

// parseStmt parses one statement inside a function body or the
// synthesized top-level main (internal/ast's Stmt set: ExpressStmt,
// LetStmt, VarStmt, RebindStmt, ReturnStmt).
func (p *Parser) parseStmt() ast.Stmt {
	switch {
	case p.curIs(token.Keyword, "let"):
		return p.parseLetStmt()
	case p.curIs(token.Keyword, "var"):
		return p.parseVarStmt()
	case p.curIs(token.Keyword, "return"):
		return p.parseReturnStmt()
	default:
		return p.parseExpressOrRebindStmt()
	}
}

func (p *Parser) parseLetStmt() ast.Stmt {
	sp := p.cur().Span
	p.advance() // let
	name := p.expect(token.Ident, p.cur().Lexeme).Lexeme
	var ty *ast.TypeExpr
	if p.curIs(token.Punct, ":") {
		p.advance()
		ty = p.parseTypeExpr()
	}
	p.expect(token.Operator, "=")
	val := p.parseExpr(precLowest)
	return &ast.LetStmt{Sp: sp, Name: name, Type: ty, Value: val}
}

func (p *Parser) parseVarStmt() ast.Stmt {
	sp := p.cur().Span
	p.advance() // var
	name := p.expect(token.Ident, p.cur().Lexeme).Lexeme
	var ty *ast.TypeExpr
	if p.curIs(token.Punct, ":") {
		p.advance()
		ty = p.parseTypeExpr()
	}
	p.expect(token.Operator, "=")
	val := p.parseExpr(precLowest)
	return &ast.VarStmt{Sp: sp, Name: name, Type: ty, Value: val}
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	sp := p.cur().Span
	p.advance() // return
	if p.curIs(token.Punct, ";") || p.cur().Kind == token.EOF || p.curIs(token.Punct, "}") {
		return &ast.ReturnStmt{Sp: sp}
	}
	return &ast.ReturnStmt{Sp: sp, Value: p.parseExpr(precLowest)}
}

// parseExpressOrRebindStmt parses a bare expression statement, or — when
// that expression resolves to a place (an identifier, *e, a[i], a.f) and
// is immediately followed by `=` — a rebind statement. This mirrors how
// the teacher's own statement parser disambiguates an expression
// statement from an assignment only after seeing the left-hand side
// (_examples/funvibe-funxy/internal/parser/statements.go).
func (p *Parser) parseExpressOrRebindStmt() ast.Stmt {
	sp := p.cur().Span
	e := p.parseExpr(precLowest)
	if p.curIs(token.Operator, "=") {
		place, ok := exprToPlace(e)
		if !ok {
			p.errorf("left side of assignment is not a place")
			return &ast.ExpressStmt{Sp: sp, Expr: e}
		}
		p.advance() // =
		val := p.parseExpr(precLowest)
		return &ast.RebindStmt{Sp: sp, Place: place, Value: val}
	}
	return &ast.ExpressStmt{Sp: sp, Expr: e}
}

func exprToPlace(e ast.Expr) (ast.PlaceExpr, bool) {
	switch n := e.(type) {
	case *ast.Ident:
		return &ast.IdentPlace{Sp: n.Sp, Name: n.Name}, true
	case *ast.DerefExpr:
		return &ast.DerefPlace{Sp: n.Sp, Inner: n.Inner}, true
	case *ast.IndexExpr:
		return &ast.IndexPlace{Sp: n.Sp, Base: n.Base, Index: n.Index}, true
	case *ast.FieldExpr:
		return &ast.FieldPlace{Sp: n.Sp, Base: n.Base, Field: n.Field}, true
	default:
		return nil, false
	}
}
