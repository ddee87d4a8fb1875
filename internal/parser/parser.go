// Package parser builds a surface internal/ast.Program from a token
// stream, grounded on the teacher's internal/parser: a Pratt parser with
// per-token-kind prefix/infix parse function tables and an explicit
// precedence ladder (_examples/funvibe-funxy/internal/parser/
// expressions_core.go's parseExpression(precedence)), adapted to this
// project's much smaller surface grammar (spec.md §6.1) instead of
// funxy's traits/pattern-matching/row-polymorphism grammar.
package parser

import (
	"github.com/rillwright/rill/internal/ast"
	"github.com/rillwright/rill/internal/diagnostics"
	"github.com/rillwright/rill/internal/token"
)

const (
	precLowest = iota
	precCast    // cast_as
	precCompare // == != < <= > >=
	precConcat  // ++
	precSum     // + -
	precProduct // * /
	precPrefix  // ! - * &
	precCall    // f(...), a[i], a.b
)

var precedences = map[string]int{
	"cast_as": precCast,
	"==": precCompare, "!=": precCompare, "<": precCompare, "<=": precCompare, ">": precCompare, ">=": precCompare,
	"++": precConcat,
	"+":  precSum, "-": precSum,
	"*": precProduct, "/": precProduct,
	"(": precCall, "[": precCall, ".": precCall,
}

// Parser builds an ast.Program from a flat token slice (the whole
// program text always fits in memory for this pipeline's inputs, so
// there is no benefit to the teacher's pull-one-token-at-a-time style).
type Parser struct {
	toks []token.Token
	pos  int
	bag  *diagnostics.Bag
}

// New creates a Parser over an already-tokenized source.
func New(toks []token.Token) *Parser {
	return &Parser{toks: toks, bag: &diagnostics.Bag{}}
}

// Errors returns every diagnostic collected while parsing.
func (p *Parser) Errors() []*diagnostics.Diagnostic { return p.bag.All() }

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) peek() token.Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}
func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos+1 < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) curIs(kind token.Kind, lexeme string) bool {
	t := p.cur()
	return t.Kind == kind && t.Lexeme == lexeme
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.bag.Addf(diagnostics.ErrSyntax, p.cur().Span, format, args...)
}

func (p *Parser) expect(kind token.Kind, lexeme string) token.Token {
	if !p.curIs(kind, lexeme) {
		p.errorf("expected %q, got %q", lexeme, p.cur().Lexeme)
		return p.cur()
	}
	return p.advance()
}

// ParseProgram parses an entire source file. Bare top-level statements
// (anything that is not a static/const/fn declaration) are collected
// into a synthesized "main" function, so spec.md §8 scenarios like
// `let x: i8 = 2 + 3; print(x)` — a program with no explicit fn — have
// somewhere to lower to: internal/flat never needs its own notion of an
// implicit entry point, since this is resolved once, here, at parse
// time.
func ParseProgram(toks []token.Token) (*ast.Program, []*diagnostics.Diagnostic) {
	p := New(toks)
	prog := &ast.Program{}
	var mainStmts []ast.Stmt
	start := p.cur().Span

	for p.cur().Kind != token.EOF {
		switch {
		case p.curIs(token.Keyword, "static"):
			prog.Decls = append(prog.Decls, p.parseStaticDecl())
		case p.curIs(token.Keyword, "const"):
			prog.Decls = append(prog.Decls, p.parseConstDecl())
		case p.curIs(token.Keyword, "fn"):
			prog.Decls = append(prog.Decls, p.parseFnDecl())
		default:
			mainStmts = append(mainStmts, p.parseStmt())
		}
		p.skipSemis()
	}

	if len(mainStmts) > 0 {
		prog.Decls = append(prog.Decls, &ast.FnDecl{
			Sp:   token.Span{Start: start.Start, End: p.cur().Span.End},
			Name: "main",
			Body: &ast.BlockExpr{Sp: start, Stmts: mainStmts},
		})
	}
	return prog, p.bag.All()
}

func (p *Parser) skipSemis() {
	for p.curIs(token.Punct, ";") {
		p.advance()
	}
}

func (p *Parser) parseStaticDecl() ast.Decl {
	sp := p.cur().Span
	p.advance() // static
	name := p.expect(token.Ident, p.cur().Lexeme).Lexeme
	var ty *ast.TypeExpr
	if p.curIs(token.Punct, ":") {
		p.advance()
		ty = p.parseTypeExpr()
	}
	p.expect(token.Operator, "=")
	val := p.parseExpr(precLowest)
	return &ast.StaticDecl{Sp: sp, Name: name, Type: ty, Value: val}
}

func (p *Parser) parseConstDecl() ast.Decl {
	sp := p.cur().Span
	p.advance() // const
	name := p.expect(token.Ident, p.cur().Lexeme).Lexeme
	var ty *ast.TypeExpr
	if p.curIs(token.Punct, ":") {
		p.advance()
		ty = p.parseTypeExpr()
	}
	p.expect(token.Operator, "=")
	val := p.parseExpr(precLowest)
	return &ast.ConstDecl{Sp: sp, Name: name, Type: ty, Value: val}
}

func (p *Parser) parseFnDecl() *ast.FnDecl {
	sp := p.cur().Span
	p.advance() // fn
	name := p.expect(token.Ident, p.cur().Lexeme).Lexeme
	params := p.parseParamList()
	var ret *ast.TypeExpr
	if !p.curIs(token.Operator, "=") {
		ret = p.parseTypeExpr()
	}
	p.expect(token.Operator, "=")
	body := p.parseExpr(precLowest)
	return &ast.FnDecl{Sp: sp, Name: name, Params: params, Ret: ret, Body: body}
}

func (p *Parser) parseParamList() []ast.Param {
	p.expect(token.Punct, "(")
	var params []ast.Param
	for !p.curIs(token.Punct, ")") {
		name := p.expect(token.Ident, p.cur().Lexeme).Lexeme
		p.expect(token.Punct, ":")
		ty := p.parseTypeExpr()
		params = append(params, ast.Param{Name: name, Type: ty})
		if p.curIs(token.Punct, ",") {
			p.advance()
		}
	}
	p.expect(token.Punct, ")")
	return params
}

// parseTypeExpr parses a type annotation (spec.md §6.1): a bare name, a
// `?T` option, a `*T` pointer, `[*]T` array pointer, `[]T` slice, `[N]T`
// array, or `fn(T, T) T` function type.
func (p *Parser) parseTypeExpr() *ast.TypeExpr {
	sp := p.cur().Span
	switch {
	case p.curIs(token.Operator, "?"):
		p.advance()
		return &ast.TypeExpr{Sp: sp, Kind: ast.TypeOption, Elem: p.parseTypeExpr()}
	case p.curIs(token.Operator, "*"):
		p.advance()
		return &ast.TypeExpr{Sp: sp, Kind: ast.TypePointer, Elem: p.parseTypeExpr()}
	case p.curIs(token.Punct, "["):
		p.advance()
		if p.curIs(token.Operator, "*") {
			p.advance()
			p.expect(token.Punct, "]")
			return &ast.TypeExpr{Sp: sp, Kind: ast.TypeArrayPointer, Elem: p.parseTypeExpr()}
		}
		if p.curIs(token.Punct, "]") {
			p.advance()
			return &ast.TypeExpr{Sp: sp, Kind: ast.TypeSlice, Elem: p.parseTypeExpr()}
		}
		n := p.expect(token.IntLiteral, p.cur().Lexeme).Lexeme
		p.expect(token.Punct, "]")
		return &ast.TypeExpr{Sp: sp, Kind: ast.TypeArray, N: parseUint16(n), Elem: p.parseTypeExpr()}
	case p.curIs(token.Keyword, "fn"):
		p.advance()
		p.expect(token.Punct, "(")
		var params []*ast.TypeExpr
		for !p.curIs(token.Punct, ")") {
			params = append(params, p.parseTypeExpr())
			if p.curIs(token.Punct, ",") {
				p.advance()
			}
		}
		p.expect(token.Punct, ")")
		ret := p.parseTypeExpr()
		return &ast.TypeExpr{Sp: sp, Kind: ast.TypeFunction, Params: params, Ret: ret}
	default:
		name := p.expect(token.Ident, p.cur().Lexeme).Lexeme
		return &ast.TypeExpr{Sp: sp, Kind: ast.TypeName, Name: name}
	}
}

func parseUint16(s string) uint16 {
	var n uint16
	for _, r := range s {
		n = n*10 + uint16(r-'0')
	}
	return n
}

func (p *Parser) unexpected(what string) {
	p.errorf("unexpected token %q while parsing %s", p.cur().Lexeme, what)
}
