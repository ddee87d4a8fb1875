// Package symtab implements the scoped symbol table used by the checker
// (spec.md §4.2): a stack of scopes over a Symbol{mutable, Type} entry,
// with a specify/mutate split for forward-declared vs. rebound bindings.
//
// The scope-stack shape (a ScopeKind enum with prelude/global/function/
// block scopes) follows the teacher's internal/symbols package; the
// specify-vs-mutate entry semantics follow original_source's
// ttype/stab.rs, whose SymbolTable this package is a direct port of,
// generalized with nested scoping.
package symtab

import (
	"fmt"

	"github.com/rillwright/rill/internal/types"
)

// ScopeKind names the kind of lexical scope a Scope represents.
type ScopeKind int

const (
	ScopePrelude ScopeKind = iota
	ScopeGlobal
	ScopeFunction
	ScopeBlock
)

// Symbol is one named binding: its type and whether it may be rebound.
type Symbol struct {
	Name    string
	Type    types.Type
	Mutable bool
	Pending bool // forward-declared, awaiting specify
}

// UndefinedError reports a lookup, specify, or mutate of an unknown name.
type UndefinedError struct{ Name string }

func (e *UndefinedError) Error() string { return fmt.Sprintf("undefined: %s", e.Name) }

// NotMutableError reports a mutate of a name declared with let/const.
type NotMutableError struct{ Name string }

func (e *NotMutableError) Error() string { return fmt.Sprintf("not mutable: %s", e.Name) }

// RedeclaredError reports an add of a name already bound in the same scope.
type RedeclaredError struct{ Name string }

func (e *RedeclaredError) Error() string { return fmt.Sprintf("already declared: %s", e.Name) }

// Scope is one frame of the lexical scope stack.
type Scope struct {
	kind    ScopeKind
	symbols map[string]*Symbol
}

func newScope(kind ScopeKind) *Scope {
	return &Scope{kind: kind, symbols: make(map[string]*Symbol)}
}

// Table is a stack of scopes, innermost last.
type Table struct {
	scopes []*Scope
}

// New creates a table with a single prelude scope.
func New() *Table {
	return &Table{scopes: []*Scope{newScope(ScopePrelude)}}
}

// Push opens a new scope of the given kind.
func (t *Table) Push(kind ScopeKind) {
	t.scopes = append(t.scopes, newScope(kind))
}

// Pop closes the innermost scope.
func (t *Table) Pop() {
	t.scopes = t.scopes[:len(t.scopes)-1]
}

func (t *Table) top() *Scope { return t.scopes[len(t.scopes)-1] }

// Add binds name in the innermost scope. It reports RedeclaredError if
// name is already bound in that same scope (shadowing an outer scope's
// binding is allowed).
func (t *Table) Add(name string, ty types.Type, mutable bool) error {
	s := t.top()
	if _, ok := s.symbols[name]; ok {
		return &RedeclaredError{Name: name}
	}
	s.symbols[name] = &Symbol{Name: name, Type: ty, Mutable: mutable}
	return nil
}

// AddPending binds name forward-declared, with no type yet resolved; a
// later Specify call pins its type.
func (t *Table) AddPending(name string, constraints ...types.Type) error {
	s := t.top()
	if _, ok := s.symbols[name]; ok {
		return &RedeclaredError{Name: name}
	}
	s.symbols[name] = &Symbol{Name: name, Pending: true}
	return nil
}

// lookup searches from the innermost scope outward.
func (t *Table) lookup(name string) (*Symbol, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i].symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// Lookup returns the type bound to name.
func (t *Table) Lookup(name string) (types.Type, error) {
	sym, ok := t.lookup(name)
	if !ok {
		return nil, &UndefinedError{Name: name}
	}
	return sym.Type, nil
}

// LookupSymbol returns the full symbol bound to name.
func (t *Table) LookupSymbol(name string) (*Symbol, error) {
	sym, ok := t.lookup(name)
	if !ok {
		return nil, &UndefinedError{Name: name}
	}
	return sym, nil
}

// Specify unifies a forward-declared (or already concrete) symbol's type
// with t, recording the unified result. Used for e.g. binding a
// function's declared signature before its body is checked.
func (t *Table) Specify(store *types.Store, name string, proposed types.Type) (types.Type, error) {
	sym, ok := t.lookup(name)
	if !ok {
		return nil, &UndefinedError{Name: name}
	}
	if sym.Pending {
		sym.Type = proposed
		sym.Pending = false
		return sym.Type, nil
	}
	unified, err := types.Unify(store, sym.Type, proposed)
	if err != nil {
		return nil, err
	}
	sym.Type = unified
	return unified, nil
}

// Mutate rebinds name's type through unification, requiring that name
// was declared mutable (spec.md: Rebind of a `var`, never a `let`).
func (t *Table) Mutate(store *types.Store, name string, proposed types.Type) (types.Type, error) {
	sym, ok := t.lookup(name)
	if !ok {
		return nil, &UndefinedError{Name: name}
	}
	if !sym.Mutable {
		return nil, &NotMutableError{Name: name}
	}
	unified, err := types.Unify(store, proposed, sym.Type)
	if err != nil {
		return nil, err
	}
	sym.Type = unified
	return unified, nil
}
