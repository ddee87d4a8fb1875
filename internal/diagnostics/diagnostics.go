// Package diagnostics collects the typed errors raised by every compiler
// pass into a single reportable form, following the shape of the teacher's
// internal/backend error handling (diagnostics.NewError(code, token, msg)).
// The parser keeps running after a syntax error and records every one it
// finds; the checker and the later passes stop at their first error.
package diagnostics

import (
	"fmt"

	"github.com/rillwright/rill/internal/token"
)

// Code identifies which of spec.md §7's three taxonomies (plus internal
// invariant violations) a Diagnostic belongs to.
type Code string

const (
	// Syntax errors, raised by the lexer/parser.
	ErrSyntax Code = "E1xx"

	// Type errors, enumerated in spec.md §4.2.
	ErrTypeMismatch        Code = "E201"
	ErrInvalidOp           Code = "E202"
	ErrCannotDeref         Code = "E203"
	ErrUndefined           Code = "E204"
	ErrNotMutable          Code = "E205"
	ErrCannotCall          Code = "E206"
	ErrUnequalArraySizes   Code = "E207"
	ErrUnequalArgLen       Code = "E208"
	ErrNotPtr              Code = "E209"
	ErrDisjointConstraints Code = "E210"
	ErrNonConcreteType     Code = "E211"

	// Runtime sentinels, produced by the constant folder (spec.md §7).
	ErrDivideByZero          Code = "E301"
	ErrIntOverflow           Code = "E302"
	ErrZeroToTheZeroeth      Code = "E303"
	ErrExpectedBooleanInCond Code = "E304"
	ErrInvalidOperation      Code = "E305"
	ErrUndefinedVariable     Code = "E306"

	// Internal invariant violations (spec.md §3 Invariants): these
	// indicate a bug in an earlier pass, not a user error.
	ErrInternalInvariant Code = "E4xx"
)

// Diagnostic is one reported problem, with enough context to print a
// source-anchored message.
type Diagnostic struct {
	Code    Code
	Span    token.Span
	Message string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s", d.Span, d.Code, d.Message)
}

// New builds a Diagnostic from a code, span and formatted message.
func New(code Code, span token.Span, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Code: code, Span: span, Message: fmt.Sprintf(format, args...)}
}

// Bag accumulates diagnostics within a pass that records problems as it
// goes instead of returning at once: the parser collects every syntax
// error in one, and the checker records type-annotation errors in one.
type Bag struct {
	items []*Diagnostic
}

func (b *Bag) Add(d *Diagnostic) {
	b.items = append(b.items, d)
}

func (b *Bag) Addf(code Code, span token.Span, format string, args ...interface{}) {
	b.Add(New(code, span, format, args...))
}

func (b *Bag) HasErrors() bool {
	return len(b.items) > 0
}

func (b *Bag) All() []*Diagnostic {
	return b.items
}

func (b *Bag) First() *Diagnostic {
	if len(b.items) == 0 {
		return nil
	}
	return b.items[0]
}
