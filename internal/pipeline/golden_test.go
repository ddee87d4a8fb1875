package pipeline

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/rillwright/rill/internal/lexer"
	"github.com/rillwright/rill/internal/parser"
	"github.com/rillwright/rill/internal/target"
)

// golden drives one spec.md §8 scenario (S1-S6) end to end through the
// real lexer/parser/pipeline chain, comparing against a txtar archive's
// "want" directives rather than a byte-exact dump: the pipeline's
// register coloring and temp naming are allocator-order-dependent, so a
// "result: ok/error" plus a handful of "contains"/"error_code" lines
// pin the scenario's observable behavior without pinning incidental
// codegen detail.
type golden struct {
	wantOK   bool
	contains []string
	errCode  string
}

func parseWant(data []byte) golden {
	var g golden
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, val, _ := strings.Cut(line, ":")
		val = strings.TrimSpace(val)
		switch strings.TrimSpace(key) {
		case "result":
			g.wantOK = val == "ok"
		case "contains":
			g.contains = append(g.contains, val)
		case "error_code":
			g.errCode = val
		}
	}
	return g
}

func runGolden(t *testing.T, path string) {
	t.Helper()
	ar, err := txtar.ParseFile(path)
	require.NoError(t, err)

	var source string
	var want golden
	haveWant := false
	for _, f := range ar.Files {
		switch f.Name {
		case "source":
			source = string(f.Data)
		case "want":
			want = parseWant(f.Data)
			haveWant = true
		}
	}
	require.True(t, haveWant, "%s: missing a \"want\" section", path)

	prog, perrs := parser.ParseProgram(lexer.Tokenize(source))
	require.Empty(t, perrs, "%s: unexpected parse errors", path)

	code, errs := Compile(prog, source)
	if want.wantOK {
		require.Empty(t, errs, "%s: unexpected diagnostics: %v", path, errs)
		require.NotEmpty(t, code)
		rendered := target.Render(code)
		for _, snippet := range want.contains {
			assert.Contains(t, rendered, snippet, "%s: rendered assembly missing %q", path, snippet)
		}
		return
	}

	require.NotEmpty(t, errs, "%s: expected diagnostics, compiled clean instead", path)
	assert.Empty(t, code)
	if want.errCode != "" {
		joined := make([]string, len(errs))
		for i, d := range errs {
			joined[i] = d.Error()
		}
		assert.Contains(t, strings.Join(joined, "\n"), want.errCode, "%s: diagnostics missing code %s", path, want.errCode)
	}
}

func TestGoldenScenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/*.txtar")
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no golden archives found")

	for _, path := range paths {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			runGolden(t, path)
		})
	}
}
