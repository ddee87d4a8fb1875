package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCompilesFileArgumentToStdout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.rill")
	require.NoError(t, os.WriteFile(path, []byte(`let x: i8 = 2 + 3; print(x)`), 0o644))

	var out, errw bytes.Buffer
	code := run([]string{path}, strings.NewReader(""), &out, &errw)
	assert.Equal(t, 0, code)
	assert.Empty(t, errw.String())
	assert.NotEmpty(t, out.String())
}

func TestRunCompilesStdinWhenNoFileArg(t *testing.T) {
	var out, errw bytes.Buffer
	code := run(nil, strings.NewReader(`fn f() i16 = 1`), &out, &errw)
	assert.Equal(t, 0, code)
	assert.NotEmpty(t, out.String())
}

func TestRunReportsDiagnosticsAndNonzeroExit(t *testing.T) {
	var out, errw bytes.Buffer
	code := run(nil, strings.NewReader(`fn f() i16 = nope`), &out, &errw)
	assert.Equal(t, 1, code)
	assert.Empty(t, out.String())
	assert.NotEmpty(t, errw.String())
}

func TestRunWritesToOutputFileFlag(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.asm")
	var out, errw bytes.Buffer
	code := run([]string{"-o", outPath, "-"}, strings.NewReader(`fn f() i16 = 1`), &out, &errw)
	require.Equal(t, 0, code)
	assert.Empty(t, out.String())
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRunCachesSecondCompileOfSameSource(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "rillc.sqlite")
	src := `fn f() i16 = 1 + 1`

	var out1, errw1 bytes.Buffer
	code := run([]string{"-cache", cachePath, "-"}, strings.NewReader(src), &out1, &errw1)
	require.Equal(t, 0, code)
	require.NotEmpty(t, out1.String())

	var out2, errw2 bytes.Buffer
	code = run([]string{"-cache", cachePath, "-"}, strings.NewReader(src), &out2, &errw2)
	require.Equal(t, 0, code)
	assert.Equal(t, out1.String(), out2.String())
}

func TestRunRejectsUnknownFlagWithUsageExitCode(t *testing.T) {
	var out, errw bytes.Buffer
	code := run([]string{"-nope"}, strings.NewReader(""), &out, &errw)
	assert.Equal(t, 2, code)
}
