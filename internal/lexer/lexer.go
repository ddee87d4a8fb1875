// Package lexer turns source text into a stream of token.Token values
// for internal/parser, grounded on the teacher's internal/lexer: a
// single rune-at-a-time scanner tracking line/column as it reads, with
// a one-rune lookahead (readChar/peekChar) driving a big switch over the
// current character (_examples/funvibe-funxy/internal/lexer/lexer.go).
// The concrete token set is this project's own much smaller surface
// grammar (spec.md §6.1), not the teacher's funxy grammar.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rillwright/rill/internal/token"
)

var keywords = map[string]bool{
	"let": true, "var": true, "static": true, "const": true,
	"fn": true, "if": true, "else": true, "return": true,
	"true": true, "false": true, "null": true, "cast_as": true,
}

// Lexer scans one source file into token.Tokens on demand.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           rune
	line, column int
}

// New creates a Lexer over src.
func New(src string) *Lexer {
	l := &Lexer{input: src, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.readPosition++
		l.column++
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
			l.readChar()
		}
		if l.ch == '/' && l.peekChar() == '/' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		break
	}
}

func (l *Lexer) pos() token.Position { return token.Position{Line: l.line, Column: l.column} }

func (l *Lexer) spanFrom(start token.Position) token.Span {
	return token.Span{Start: start, End: l.pos()}
}

// two builds a two-rune operator token starting at l.ch, advancing past
// both runes.
func (l *Lexer) two(kind token.Kind, lexeme string, start token.Position) token.Token {
	l.readChar()
	l.readChar()
	return token.Token{Kind: kind, Lexeme: lexeme, Span: l.spanFrom(start)}
}

func (l *Lexer) one(kind token.Kind, start token.Position) token.Token {
	lexeme := string(l.ch)
	l.readChar()
	return token.Token{Kind: kind, Lexeme: lexeme, Span: l.spanFrom(start)}
}

// NextToken scans and returns the next token, ending in an unbroken run
// of token.EOF once the input is exhausted.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()
	start := l.pos()

	switch {
	case l.ch == 0:
		return token.Token{Kind: token.EOF, Lexeme: "", Span: l.spanFrom(start)}
	case l.ch == '=' && l.peekChar() == '=':
		return l.two(token.Operator, "==", start)
	case l.ch == '!' && l.peekChar() == '=':
		return l.two(token.Operator, "!=", start)
	case l.ch == '<' && l.peekChar() == '=':
		return l.two(token.Operator, "<=", start)
	case l.ch == '>' && l.peekChar() == '=':
		return l.two(token.Operator, ">=", start)
	case l.ch == '+' && l.peekChar() == '+':
		return l.two(token.Operator, "++", start)
	case l.ch == '-' && l.peekChar() == '>':
		return l.two(token.Punct, "->", start)
	case strings.ContainsRune("+-*/<>!&.,:;()[]{}=?", l.ch):
		return l.one(punctOrOperator(l.ch), start)
	case unicode.IsDigit(l.ch):
		return l.readNumber(start)
	case l.ch == '"':
		return l.readString(start)
	case isIdentStart(l.ch):
		return l.readIdentOrKeyword(start)
	default:
		tok := token.Token{Kind: token.Operator, Lexeme: string(l.ch), Span: l.spanFrom(start)}
		l.readChar()
		return tok
	}
}

func punctOrOperator(ch rune) token.Kind {
	switch ch {
	case '(', ')', '[', ']', '{', '}', ',', ':', ';', '.':
		return token.Punct
	default:
		return token.Operator
	}
}

func isIdentStart(ch rune) bool { return unicode.IsLetter(ch) || ch == '_' }
func isIdentCont(ch rune) bool  { return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' }

func (l *Lexer) readIdentOrKeyword(start token.Position) token.Token {
	begin := l.position
	for isIdentCont(l.ch) {
		l.readChar()
	}
	text := l.input[begin:l.position]
	kind := token.Ident
	if keywords[text] {
		kind = token.Keyword
	}
	return token.Token{Kind: kind, Lexeme: text, Span: l.spanFrom(start)}
}

func (l *Lexer) readNumber(start token.Position) token.Token {
	begin := l.position
	for unicode.IsDigit(l.ch) {
		l.readChar()
	}
	return token.Token{Kind: token.IntLiteral, Lexeme: l.input[begin:l.position], Span: l.spanFrom(start)}
}

func (l *Lexer) readString(start token.Position) token.Token {
	l.readChar() // consume opening quote
	var sb strings.Builder
	for l.ch != '"' && l.ch != 0 {
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '"':
				sb.WriteRune('"')
			case '\\':
				sb.WriteRune('\\')
			default:
				sb.WriteRune(l.ch)
			}
			l.readChar()
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	l.readChar() // consume closing quote
	return token.Token{Kind: token.StringLiteral, Lexeme: sb.String(), Span: l.spanFrom(start)}
}

// Tokenize scans the whole input into a slice, ending with a single EOF
// token; internal/parser consumes it with simple index-based lookahead
// rather than the teacher's pull-one-at-a-time style, since the full
// program text fits comfortably in memory for this pipeline's inputs.
func Tokenize(src string) []token.Token {
	l := New(src)
	var out []token.Token
	for {
		tok := l.NextToken()
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out
		}
	}
}
