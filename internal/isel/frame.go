// Package isel implements spec.md §4.5: instruction selection from the
// flat three-address program to the target ISA (internal/target),
// grounded on original_source/src/telda/mod.rs's instruction set and
// this project's own ConventionDescriptor.
package isel

import (
	"sort"

	"github.com/rillwright/rill/internal/flat"
)

// frame is one function's stack-frame layout: which temps must live in
// memory (their address was taken, or they are wider than a single
// register can hold) rather than in a pseudo-register, and at what
// frame-pointer-relative offset.
type frame struct {
	offsets map[string]int
	size    int
}

// buildFrame scans fn for every temp that must be frame-resident:
// anything whose address is taken via AddrOf (a register machine has
// no address for a register), and anything wider than 2 bytes (structs
// and arrays, which the calling convention and ALU ops don't move as a
// unit).
func buildFrame(fn *flat.Function) *frame {
	addressTaken := make(map[string]bool)
	for _, instr := range fn.Code {
		if a, ok := instr.(flat.AddrOf); ok {
			addressTaken[a.Src] = true
		}
	}

	fr := &frame{offsets: make(map[string]int)}
	names := make([]string, 0, len(fn.Temps))
	for name := range fn.Temps {
		names = append(names, name)
	}
	// Deterministic order: frame layout must not depend on Go's map
	// iteration order, since two runs of the same program must select
	// byte-identical offsets.
	sort.Strings(names)

	offset := 0
	for _, name := range names {
		t := fn.Temps[name]
		size := flat.Sizeof(t)
		if !addressTaken[name] && size <= 2 {
			continue // register-resident; left to internal/regalloc
		}
		fr.offsets[name] = offset
		offset += size
	}
	fr.size = offset
	return fr
}

// isFrameResident reports whether name must be addressed through the
// frame rather than held in a pseudo-register.
func (fr *frame) isFrameResident(name string) bool {
	_, ok := fr.offsets[name]
	return ok
}
