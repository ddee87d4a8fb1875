package target

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ConventionDescriptor captures the calling convention and physical
// register classes the allocator colors against (spec.md §4.5). The
// teacher ISA wires an equivalent table through its
// `telda::impl_regalloc::CONV` constant, consumed positionally by
// `register_allocate`; this project names the fields instead of
// threading a tuple, since the allocator is this project's own code
// rather than a reused teacher module.
type ConventionDescriptor struct {
	// ArgsW are the wide argument registers, in order.
	ArgsW []Wr
	// ReturnW is the wide return-value register.
	ReturnW Wr
	// CallerSavedW/CalleeSavedW partition the physical wide registers
	// available to the allocator; CallerSavedW must be assumed
	// clobbered across a Call when computing liveness.
	CallerSavedW []Wr
	CalleeSavedW []Wr
	Sp, Fp, Lr, Pc Wr
}

// rawConvention mirrors convention.yaml field-for-field; yaml.v3 decodes
// into this before loadConvention resolves each name to a Wr.
type rawConvention struct {
	ArgsW        []string `yaml:"args_w"`
	ReturnW      string   `yaml:"return_w"`
	CallerSavedW []string `yaml:"caller_saved_w"`
	CalleeSavedW []string `yaml:"callee_saved_w"`
	Sp           string   `yaml:"sp"`
	Fp           string   `yaml:"fp"`
	Lr           string   `yaml:"lr"`
	Pc           string   `yaml:"pc"`
}

//go:embed convention.yaml
var conventionYAML []byte

var registerByName = func() map[string]Wr {
	m := make(map[string]Wr, int(firstPseudoWr))
	for r := Wr(0); r < firstPseudoWr; r++ {
		m[r.String()] = r
	}
	return m
}()

func lookupWr(name string) Wr {
	r, ok := registerByName[name]
	if !ok {
		panic(fmt.Sprintf("target: convention.yaml names unknown register %q", name))
	}
	return r
}

func lookupWrs(names []string) []Wr {
	out := make([]Wr, len(names))
	for i, n := range names {
		out[i] = lookupWr(n)
	}
	return out
}

// loadConvention parses the embedded convention.yaml into a
// ConventionDescriptor. It panics on a malformed document: the file is
// baked into the binary at build time, so a decode failure is a defect
// in this module, not a runtime condition callers should handle.
func loadConvention() ConventionDescriptor {
	var raw rawConvention
	if err := yaml.Unmarshal(conventionYAML, &raw); err != nil {
		panic(fmt.Sprintf("target: parsing convention.yaml: %v", err))
	}
	return ConventionDescriptor{
		ArgsW:        lookupWrs(raw.ArgsW),
		ReturnW:      lookupWr(raw.ReturnW),
		CallerSavedW: lookupWrs(raw.CallerSavedW),
		CalleeSavedW: lookupWrs(raw.CalleeSavedW),
		Sp:           lookupWr(raw.Sp),
		Fp:           lookupWr(raw.Fp),
		Lr:           lookupWr(raw.Lr),
		Pc:           lookupWr(raw.Pc),
	}
}

// Conv is the one calling convention this target defines, loaded once
// from the embedded convention.yaml document (see loadConvention).
var Conv = loadConvention()

// String renders a compact, stable identifier for this convention, used
// as the second half of a cache.Key so a changed convention.yaml
// invalidates every cache entry compiled against the old one.
func (c ConventionDescriptor) String() string {
	return fmt.Sprintf("args=%v ret=%s callersaved=%v calleesaved=%v sp=%s fp=%s lr=%s pc=%s",
		c.ArgsW, c.ReturnW, c.CallerSavedW, c.CalleeSavedW, c.Sp, c.Fp, c.Lr, c.Pc)
}

// AllocatableW is every physical wide register the allocator may assign
// a pseudo to, in a fixed, deterministic order (argument registers
// first, since most pseudos are live shortly after a call or before one).
func (c ConventionDescriptor) AllocatableW() []Wr {
	out := make([]Wr, 0, len(c.CallerSavedW)+len(c.CalleeSavedW))
	out = append(out, c.CallerSavedW...)
	out = append(out, c.CalleeSavedW...)
	return out
}

// IsCallerSaved reports whether r must be treated as clobbered by Call.
func (c ConventionDescriptor) IsCallerSaved(r Wr) bool {
	for _, x := range c.CallerSavedW {
		if x == r {
			return true
		}
	}
	return false
}
