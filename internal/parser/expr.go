package parser

import (
	"strconv"

	"github.com/rillwright/rill/internal/ast"
	"github.com/rillwright/rill/internal/token"
)

// parseExpr implements Pratt-style precedence climbing
// (_examples/funvibe-funxy/internal/parser/expressions_core.go's
// parseExpression(precedence)): parse one prefix expression, then keep
// consuming infix/postfix operators whose precedence exceeds minPrec.
func (p *Parser) parseExpr(minPrec int) ast.Expr {
	left := p.parsePrefix()
	for {
		prec, ok := p.infixPrecedence()
		if !ok || prec <= minPrec {
			return left
		}
		left = p.parseInfix(left, prec)
	}
}

func (p *Parser) infixPrecedence() (int, bool) {
	t := p.cur()
	switch t.Kind {
	case token.Keyword:
		if t.Lexeme == "cast_as" {
			return precCast, true
		}
	case token.Operator:
		if prec, ok := precedences[t.Lexeme]; ok {
			return prec, true
		}
	case token.Punct:
		switch t.Lexeme {
		case "(", "[", ".":
			return precCall, true
		}
	}
	return 0, false
}

func (p *Parser) parseInfix(left ast.Expr, prec int) ast.Expr {
	t := p.cur()
	switch {
	case t.Kind == token.Keyword && t.Lexeme == "cast_as":
		p.advance()
		target := p.parseTypeExpr()
		return &ast.CastExpr{Sp: spanOf(left, target.Sp.End), Inner: left, Target: target}
	case t.Kind == token.Punct && t.Lexeme == "(":
		return p.parseCall(left)
	case t.Kind == token.Punct && t.Lexeme == "[":
		return p.parseIndex(left)
	case t.Kind == token.Punct && t.Lexeme == ".":
		return p.parseField(left)
	case t.Lexeme == "++":
		p.advance()
		right := p.parseExpr(prec)
		return &ast.ConcatExpr{Sp: spanOf(left, right.Span().End), Left: left, Right: right}
	case isCompareOp(t.Lexeme):
		op := compareOpFor(t.Lexeme)
		p.advance()
		right := p.parseExpr(prec)
		return &ast.CompareExpr{Sp: spanOf(left, right.Span().End), Op: op, Left: left, Right: right}
	default:
		op := binOpFor(t.Lexeme)
		p.advance()
		right := p.parseExpr(prec)
		return &ast.BinaryExpr{Sp: spanOf(left, right.Span().End), Op: op, Left: left, Right: right}
	}
}

func spanOf(left ast.Expr, end token.Position) token.Span {
	return token.Span{Start: left.Span().Start, End: end}
}

func isCompareOp(lexeme string) bool {
	switch lexeme {
	case "==", "!=", "<", "<=", ">", ">=":
		return true
	}
	return false
}

func compareOpFor(lexeme string) ast.CompareOp {
	switch lexeme {
	case "==":
		return ast.Eq
	case "!=":
		return ast.Neq
	case "<":
		return ast.Lt
	case "<=":
		return ast.Lte
	case ">":
		return ast.Gt
	default:
		return ast.Gte
	}
}

func binOpFor(lexeme string) ast.BinOp {
	switch lexeme {
	case "+":
		return ast.Add
	case "-":
		return ast.Sub
	case "*":
		return ast.Mul
	default:
		return ast.Div
	}
}

func (p *Parser) parseCall(left ast.Expr) ast.Expr {
	ident, ok := left.(*ast.Ident)
	if !ok {
		p.errorf("can only call a named function, not an arbitrary expression")
	}
	start := left.Span()
	p.advance() // (
	var args []ast.Expr
	for !p.curIs(token.Punct, ")") {
		args = append(args, p.parseExpr(precLowest))
		if p.curIs(token.Punct, ",") {
			p.advance()
		}
	}
	end := p.cur().Span.End
	p.expect(token.Punct, ")")
	callee := ""
	if ident != nil {
		callee = ident.Name
	}
	return &ast.CallExpr{Sp: token.Span{Start: start.Start, End: end}, Callee: callee, Args: args}
}

func (p *Parser) parseIndex(left ast.Expr) ast.Expr {
	start := left.Span()
	p.advance() // [
	idx := p.parseExpr(precLowest)
	end := p.cur().Span.End
	p.expect(token.Punct, "]")
	return &ast.IndexExpr{Sp: token.Span{Start: start.Start, End: end}, Base: left, Index: idx}
}

func (p *Parser) parseField(left ast.Expr) ast.Expr {
	start := left.Span()
	p.advance() // .
	name := p.expect(token.Ident, p.cur().Lexeme).Lexeme
	return &ast.FieldExpr{Sp: token.Span{Start: start.Start, End: p.toks[p.pos-1].Span.End}, Base: left, Field: name}
}

// parsePrefix parses a primary or unary-prefixed expression: literals,
// identifiers, parenthesized/grouping expressions, unit, block, if,
// lambda, array, and struct-constructor forms.
func (p *Parser) parsePrefix() ast.Expr {
	t := p.cur()
	switch {
	case t.Kind == token.IntLiteral:
		p.advance()
		n, _ := strconv.ParseInt(t.Lexeme, 10, 64)
		return &ast.IntLit{Sp: t.Span, Value: n}
	case t.Kind == token.StringLiteral:
		p.advance()
		return &ast.StringLit{Sp: t.Span, Value: t.Lexeme}
	case t.Kind == token.Keyword && t.Lexeme == "true":
		p.advance()
		return &ast.BoolLit{Sp: t.Span, Value: true}
	case t.Kind == token.Keyword && t.Lexeme == "false":
		p.advance()
		return &ast.BoolLit{Sp: t.Span, Value: false}
	case t.Kind == token.Keyword && t.Lexeme == "null":
		p.advance()
		return &ast.NullLit{Sp: t.Span}
	case t.Kind == token.Keyword && t.Lexeme == "if":
		return p.parseIf()
	case t.Kind == token.Keyword && t.Lexeme == "fn":
		return p.parseLambda()
	case t.Kind == token.Ident:
		p.advance()
		return &ast.Ident{Sp: t.Span, Name: t.Lexeme}
	case t.Kind == token.Operator && t.Lexeme == "!":
		p.advance()
		inner := p.parseExpr(precPrefix)
		return &ast.NotExpr{Sp: token.Span{Start: t.Span.Start, End: inner.Span().End}, Operand: inner}
	case t.Kind == token.Operator && t.Lexeme == "-":
		p.advance()
		inner := p.parseExpr(precPrefix)
		return &ast.NegExpr{Sp: token.Span{Start: t.Span.Start, End: inner.Span().End}, Operand: inner}
	case t.Kind == token.Operator && t.Lexeme == "*":
		p.advance()
		inner := p.parseExpr(precPrefix)
		return &ast.DerefExpr{Sp: token.Span{Start: t.Span.Start, End: inner.Span().End}, Inner: inner}
	case t.Kind == token.Operator && t.Lexeme == "&":
		p.advance()
		inner := p.parseExpr(precPrefix)
		return &ast.RefExpr{Sp: token.Span{Start: t.Span.Start, End: inner.Span().End}, Inner: inner}
	case t.Kind == token.Punct && t.Lexeme == "(":
		return p.parseParenOrUnit()
	case t.Kind == token.Punct && t.Lexeme == "{":
		return p.parseBlock()
	case t.Kind == token.Punct && t.Lexeme == "[":
		return p.parseArray()
	case t.Kind == token.Punct && t.Lexeme == ".":
		return p.parseStructConstructor()
	default:
		p.unexpected("expression")
		p.advance()
		return &ast.UnitLit{Sp: t.Span}
	}
}

func (p *Parser) parseParenOrUnit() ast.Expr {
	start := p.cur().Span
	p.advance() // (
	if p.curIs(token.Punct, ")") {
		end := p.cur().Span.End
		p.advance()
		return &ast.UnitLit{Sp: token.Span{Start: start.Start, End: end}}
	}
	e := p.parseExpr(precLowest)
	p.expect(token.Punct, ")")
	return e
}

// parseBlock parses `{ stmt; stmt; trailingExpr }`. A block has no
// trailing expression (and so is Unit-typed) when its last statement
// ends in `;` or is itself a statement form (let/var/return/rebind);
// otherwise the last parsed piece is treated as the trailing value.
func (p *Parser) parseBlock() ast.Expr {
	start := p.cur().Span
	p.advance() // {
	b := &ast.BlockExpr{Sp: start}
	for !p.curIs(token.Punct, "}") && p.cur().Kind != token.EOF {
		if p.isStmtKeyword() {
			b.Stmts = append(b.Stmts, p.parseStmt())
			p.skipSemis()
			continue
		}
		e := p.parseExpr(precLowest)
		if p.curIs(token.Operator, "=") {
			place, ok := exprToPlace(e)
			if ok {
				p.advance()
				val := p.parseExpr(precLowest)
				b.Stmts = append(b.Stmts, &ast.RebindStmt{Sp: e.Span(), Place: place, Value: val})
				p.skipSemis()
				continue
			}
		}
		if p.curIs(token.Punct, ";") {
			b.Stmts = append(b.Stmts, &ast.ExpressStmt{Sp: e.Span(), Expr: e})
			p.skipSemis()
			continue
		}
		b.Trailing = e
		break
	}
	end := p.cur().Span.End
	p.expect(token.Punct, "}")
	b.Sp = token.Span{Start: start.Start, End: end}
	return b
}

func (p *Parser) isStmtKeyword() bool {
	return p.curIs(token.Keyword, "let") || p.curIs(token.Keyword, "var") || p.curIs(token.Keyword, "return")
}

func (p *Parser) parseIf() ast.Expr {
	start := p.cur().Span
	p.advance() // if
	cond := p.parseExpr(precLowest)
	p.expectKeyword("then")
	then := p.parseExpr(precLowest)
	p.expect(token.Keyword, "else")
	els := p.parseExpr(precLowest)
	return &ast.IfExpr{Sp: token.Span{Start: start.Start, End: els.Span().End}, Cond: cond, Then: then, Else: els}
}

// expectKeyword accepts "then" as a soft keyword (not in the lexer's
// fixed keyword table, since it only ever appears in this one position
// of spec.md §8's `if a > b then a else b` surface form).
func (p *Parser) expectKeyword(word string) {
	if p.cur().Kind == token.Ident && p.cur().Lexeme == word {
		p.advance()
		return
	}
	p.errorf("expected %q, got %q", word, p.cur().Lexeme)
}

func (p *Parser) parseLambda() ast.Expr {
	start := p.cur().Span
	p.advance() // fn
	params := p.parseParamList()
	var ret *ast.TypeExpr
	if !p.curIs(token.Operator, "=") {
		ret = p.parseTypeExpr()
	}
	p.expect(token.Operator, "=")
	body := p.parseExpr(precLowest)
	return &ast.LambdaExpr{Sp: token.Span{Start: start.Start, End: body.Span().End}, Params: params, Ret: ret, Body: body}
}

func (p *Parser) parseArray() ast.Expr {
	start := p.cur().Span
	p.advance() // [
	var elems []ast.Expr
	for !p.curIs(token.Punct, "]") {
		elems = append(elems, p.parseExpr(precLowest))
		if p.curIs(token.Punct, ",") {
			p.advance()
		}
	}
	end := p.cur().Span.End
	p.expect(token.Punct, "]")
	return &ast.ArrayExpr{Sp: token.Span{Start: start.Start, End: end}, Elems: elems}
}

// parseStructConstructor parses `.{ field: value, ... }`, the anonymous
// struct-literal form (structs unify structurally on field name and
// declaration order, per this project's DESIGN.md — there is no named
// struct-type declaration to disambiguate from a block, so the leading
// `.` marks this as a struct literal rather than a BlockExpr).
func (p *Parser) parseStructConstructor() ast.Expr {
	start := p.cur().Span
	p.advance() // .
	p.expect(token.Punct, "{")
	var fields []ast.StructFieldInit
	for !p.curIs(token.Punct, "}") {
		name := p.expect(token.Ident, p.cur().Lexeme).Lexeme
		p.expect(token.Punct, ":")
		val := p.parseExpr(precLowest)
		fields = append(fields, ast.StructFieldInit{Name: name, Value: val})
		if p.curIs(token.Punct, ",") {
			p.advance()
		}
	}
	end := p.cur().Span.End
	p.expect(token.Punct, "}")
	return &ast.StructConstructorExpr{Sp: token.Span{Start: start.Start, End: end}, Fields: fields}
}
