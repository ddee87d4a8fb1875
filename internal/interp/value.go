// Package interp is a tree-walking interpreter over the surface
// internal/ast, grounded on the teacher's internal/backend.TreeWalkBackend
// (_examples/funvibe-funxy/internal/backend/treewalk.go): an
// Environment-chain evaluator that runs directly off the parsed AST,
// independent of internal/checker and internal/flat, so a REPL can
// execute a program without going through the full compile-to-telda
// pipeline.
package interp

import (
	"fmt"
	"strings"
)

// Value is a runtime value produced by evaluation.
type Value interface {
	isValue()
	String() string
}

type Int int64

func (Int) isValue()        {}
func (v Int) String() string { return fmt.Sprintf("%d", int64(v)) }

type Str string

func (Str) isValue()        {}
func (v Str) String() string { return string(v) }

type Bool bool

func (Bool) isValue()        {}
func (v Bool) String() string {
	if v {
		return "true"
	}
	return "false"
}

type Unit struct{}

func (Unit) isValue()        {}
func (Unit) String() string { return "()" }

// Option is the runtime form of ?T: either Some wrapping a value, or
// None.
type Option struct {
	Some  bool
	Value Value
}

func (Option) isValue() {}
func (v Option) String() string {
	if !v.Some {
		return "null"
	}
	return v.Value.String()
}

type Array struct{ Elems []Value }

func (Array) isValue() {}
func (v Array) String() string {
	parts := make([]string, len(v.Elems))
	for i, e := range v.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

type Struct struct {
	Order  []string
	Fields map[string]Value
}

func (Struct) isValue() {}
func (v Struct) String() string {
	parts := make([]string, len(v.Order))
	for i, name := range v.Order {
		parts[i] = fmt.Sprintf("%s: %s", name, v.Fields[name].String())
	}
	return ".{" + strings.Join(parts, ", ") + "}"
}

// Ptr boxes a mutable slot so RefExpr/DerefExpr and pointer-typed places
// share the same underlying storage.
type Ptr struct{ Slot *Value }

func (Ptr) isValue()        {}
func (v Ptr) String() string { return fmt.Sprintf("&%s", (*v.Slot).String()) }

// Closure is a callable value: the value a LambdaExpr evaluates to,
// carrying the environment it closed over.
type Closure struct {
	Params []string
	Body   func(args []Value) (Value, error)
}

func (Closure) isValue()        {}
func (Closure) String() string { return "<fn>" }
