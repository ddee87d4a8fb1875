package target

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderJoinsOneInstructionPerLine(t *testing.T) {
	code := []Ins{
		Label{Name: "f"},
		LdiW{Dst: R1, Val: WiConstant(5)},
		Ret{FrameSize: Bi(0)},
	}
	out := Render(code)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[1], "ldi")
}

func TestJcAndJncAreAliasesOfJbAndJae(t *testing.T) {
	tgt := WiSymbol("done")
	assert.Equal(t, Jb(tgt), Jc(tgt))
	assert.Equal(t, Jae(tgt), Jnc(tgt))
}
