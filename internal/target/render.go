package target

import "strings"

// Jc/Jnc are the carry-flag aliases of Jb/Jae that original_source
// exposes as named constructors (`Ins::Jc`, `Ins::Jnc`) purely for
// readability at call sites; they produce identical instructions.
func Jc(t Wi) Ins  { return Jb(t) }
func Jnc(t Wi) Ins { return Jae(t) }

// Render prints a full instruction stream as assembly text, one
// instruction per line, matching each Ins's String() form.
func Render(code []Ins) string {
	var b strings.Builder
	for _, ins := range code {
		b.WriteString(ins.String())
		b.WriteByte('\n')
	}
	return b.String()
}
