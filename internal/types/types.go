// Package types implements the type lattice of spec.md §3: a tagged
// value type together with a union-find store of type variables, each
// constrained to a set of concrete types it may still become.
//
// The shape (a Type interface with String/Apply, concrete variants as
// small structs) follows the teacher's internal/typesystem/types.go;
// the semantics — constraint-set intersection rather than Hindley-Milner
// generalization, no kinds, no row polymorphism — come from spec.md §3–4.1
// and from the original Rust implementation's ttype.rs.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the interface implemented by every member of the type lattice.
type Type interface {
	String() string
	// Apply substitutes resolved type variables for their bound type,
	// recursively. Unresolved variables are left as-is.
	Apply(*Store) Type
}

// Unknown is a type variable awaiting resolution.
type Unknown struct{ Var TypeVar }

func (t Unknown) String() string { return t.Var.String() }
func (t Unknown) Apply(s *Store) Type {
	if resolved, ok := s.Resolved(t.Var); ok {
		return resolved.Apply(s)
	}
	return t
}

// Opaque unifies with anything, yielding Opaque (spec.md §4.1, §6.4 print).
type Opaque struct{}

func (Opaque) String() string        { return "opaque" }
func (t Opaque) Apply(*Store) Type   { return t }

type Bool struct{}

func (Bool) String() string      { return "bool" }
func (t Bool) Apply(*Store) Type { return t }

type Byte struct{}

func (Byte) String() string      { return "byte" }
func (t Byte) Apply(*Store) Type { return t }

// IntKind names one of the six concrete integer widths.
type IntKind int

const (
	U8 IntKind = iota
	I8
	U16
	I16
	U32
	I32
)

func (k IntKind) String() string {
	switch k {
	case U8:
		return "u8"
	case I8:
		return "i8"
	case U16:
		return "u16"
	case I16:
		return "i16"
	case U32:
		return "u32"
	case I32:
		return "i32"
	default:
		return "?int"
	}
}

// Signed reports whether the width is a signed integer kind.
func (k IntKind) Signed() bool {
	return k == I8 || k == I16 || k == I32
}

// Int is a concrete, fixed-width integer type.
type Int struct{ Kind IntKind }

func (t Int) String() string      { return t.Kind.String() }
func (t Int) Apply(*Store) Type   { return t }

// CompInteger is the compile-time polymorphic type of integer literals,
// awaiting unification with a concrete width (spec.md §3).
type CompInteger struct{}

func (CompInteger) String() string      { return "comp_int" }
func (t CompInteger) Apply(*Store) Type { return t }

// CompString is the compile-time polymorphic type of string literals.
type CompString struct{}

func (CompString) String() string      { return "comp_string" }
func (t CompString) Apply(*Store) Type { return t }

// Float is reserved but not code-generated (spec.md §1 non-goals).
type Float struct{}

func (Float) String() string      { return "float" }
func (t Float) Apply(*Store) Type { return t }

type Unit struct{}

func (Unit) String() string      { return "()" }
func (t Unit) Apply(*Store) Type { return t }

// Option wraps a type that may be absent.
type Option struct{ Elem Type }

func (t Option) String() string { return "?" + t.Elem.String() }
func (t Option) Apply(s *Store) Type {
	return Option{Elem: t.Elem.Apply(s)}
}

// Pointer is a pointer to a single value of Elem.
type Pointer struct{ Elem Type }

func (t Pointer) String() string { return "*" + t.Elem.String() }
func (t Pointer) Apply(s *Store) Type {
	return Pointer{Elem: t.Elem.Apply(s)}
}

// ArrayPointer is a pointer into the start of an array of unknown length.
type ArrayPointer struct{ Elem Type }

func (t ArrayPointer) String() string { return "[*]" + t.Elem.String() }
func (t ArrayPointer) Apply(s *Store) Type {
	return ArrayPointer{Elem: t.Elem.Apply(s)}
}

// Slice is a fat pointer (base + length) over Elem.
type Slice struct{ Elem Type }

func (t Slice) String() string { return "[]" + t.Elem.String() }
func (t Slice) Apply(s *Store) Type {
	return Slice{Elem: t.Elem.Apply(s)}
}

// Array is a fixed-size, inline sequence of N elements of type Elem.
type Array struct {
	Elem Type
	N    uint16
}

func (t Array) String() string { return fmt.Sprintf("[%d][%s]", t.N, t.Elem.String()) }
func (t Array) Apply(s *Store) Type {
	return Array{Elem: t.Elem.Apply(s), N: t.N}
}

// Function is the type of a callable value.
type Function struct {
	Params []Type
	Ret    Type
}

func (t Function) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("fn(%s) %s", strings.Join(parts, ", "), t.Ret.String())
}

func (t Function) Apply(s *Store) Type {
	params := make([]Type, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.Apply(s)
	}
	return Function{Params: params, Ret: t.Ret.Apply(s)}
}

// StructField is one named member of a Struct type.
type StructField struct {
	Name string
	Type Type
}

// Struct is a nominal-free aggregate of named fields, in declaration order.
type Struct struct {
	Fields []StructField
}

func (t Struct) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.Name + ": " + f.Type.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (t Struct) Apply(s *Store) Type {
	fields := make([]StructField, len(t.Fields))
	for i, f := range t.Fields {
		fields[i] = StructField{Name: f.Name, Type: f.Type.Apply(s)}
	}
	return Struct{Fields: fields}
}

// FieldType returns the type of the named field, or nil if absent.
func (t Struct) FieldType(name string) Type {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Type
		}
	}
	return nil
}

// key returns a canonical string used for constraint-set membership and
// deduplication. String() already is one, by construction above.
func key(t Type) string { return t.String() }

// sortedKeys is a small helper used when presenting constraint sets in
// error messages deterministically.
func sortedKeys(m map[string]Type) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
