package repl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func runLines(t *testing.T, lines ...string) string {
	t.Helper()
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	var out bytes.Buffer
	r := New(in, &out, ^uintptr(0)) // an invalid fd is never a tty
	r.Run()
	return out.String()
}

func TestReplEchoesPrintOutput(t *testing.T) {
	out := runLines(t, `print(1 + 2)`)
	assert.Contains(t, out, "3")
}

func TestReplPersistsBindingsAcrossLines(t *testing.T) {
	out := runLines(t, `let x = 10`, `print(x + 1)`)
	assert.Contains(t, out, "11")
}

// A synthesized top-level main collects every bare statement into its
// Stmts, never its Trailing, so a bare expression's value is discarded
// unless it reaches print — this asserts that discard, not an echo.
func TestReplDiscardsBareExpressionValue(t *testing.T) {
	out := runLines(t, `1 + 1`)
	assert.Equal(t, "rill> rill> \n", out)
}

func TestReplReportsParseErrorsWithoutCrashing(t *testing.T) {
	out := runLines(t, `let = 1`, `print(99)`)
	assert.Contains(t, out, "error:")
	assert.Contains(t, out, "99")
}

func TestReplPromptIsUncoloredForNonTerminal(t *testing.T) {
	var out bytes.Buffer
	r := New(strings.NewReader(""), &out, ^uintptr(0))
	assert.Equal(t, "rill> ", r.prompt())
}
