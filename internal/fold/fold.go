// Package fold implements spec.md §4.3: fixed-point constant folding
// over the typed AST. It collapses arithmetic and comparisons between
// literals, applies the algebraic identities the original
// implementation encodes (0+x=x, x*0=0, x*1=x, x/1=x, x/0 raises), and
// turns If(true/false, ...) into the chosen branch. The language has no
// exponent operator, so no power identities (x^0, 0^0) are folded.
//
// Folding is grounded directly on original_source's ast.rs
// eval_const/eval_const_inner: the same fixed-point-by-hashing
// termination strategy (run to MAX_RECUR, stop early once two
// consecutive passes hash identically) and the same per-operator
// identity table, adapted to walk the Go typed AST instead of the
// interpreter's untyped Expr.
package fold

import (
	"crypto/sha256"
	"fmt"

	"github.com/rillwright/rill/internal/ast"
	"github.com/rillwright/rill/internal/diagnostics"
	"github.com/rillwright/rill/internal/rillconfig"
)

// Program folds every function body and global initializer in prog to
// a fixed point, in place, also returning prog for convenience.
func Program(prog *ast.TypedProgram) *ast.TypedProgram {
	for _, s := range prog.Statics {
		s.Value = toFixedPoint(s.Value)
	}
	for _, c := range prog.Consts {
		c.Value = toFixedPoint(c.Value)
	}
	for _, fn := range prog.Fns {
		fn.Body = toFixedPoint(fn.Body)
	}
	return prog
}

// toFixedPoint repeatedly applies one folding pass until the tree
// stops changing (detected by comparing a structural hash across
// consecutive passes, exactly as original_source's eval_const does),
// or until rillconfig.MaxFoldIterations passes have run.
func toFixedPoint(e ast.TypedExpr) ast.TypedExpr {
	seen := make(map[[32]byte]bool)
	cur := e
	for i := 0; i < rillconfig.MaxFoldIterations; i++ {
		cur = foldOnce(cur)
		h := hashExpr(cur)
		if seen[h] {
			break
		}
		seen[h] = true
	}
	return cur
}

func hashExpr(e ast.TypedExpr) [32]byte {
	return sha256.Sum256([]byte(fmt.Sprintf("%#v", e)))
}

// raise builds the Raise node the folder emits when it has proven a
// computation must fail (spec.md §4.3/§7).
func raise(e ast.TypedExpr, code diagnostics.Code, msg string) *ast.TypedRaiseExpr {
	return &ast.TypedRaiseExpr{Sp: e.Span(), Code: code, Message: msg, Type: e.ExprType()}
}
