// Package rillconfig holds compiler-wide constants, following the shape
// of the teacher's internal/config/constants.go.
package rillconfig

// Version is the current rillc version.
var Version = "0.1.0"

// SourceFileExt is the canonical source file extension.
const SourceFileExt = ".rl"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".rl", ".rill"}

// HasSourceExt reports whether path ends in a recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// PrintFuncName is the single built-in injected pre-typecheck (spec.md §6.4).
const PrintFuncName = "print"

// MaxFoldIterations bounds the constant folder's fixed-point loop
// (spec.md §4.3): 256 iterations, matching the original implementation's
// MAX_RECUR constant.
const MaxFoldIterations = 256
