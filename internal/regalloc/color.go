package regalloc

// colorResult maps each pseudo number to a palette index, or marks it
// spilled.
type colorResult struct {
	color  map[int]int
	spills map[int]bool
}

// colorGraph implements spec.md §4.6 steps 3-4's simplify/spill/select
// loop: repeatedly remove a node of degree < k onto a stack (simplify);
// when none remains, pick the highest-degree node as an optimistic
// spill candidate and remove it anyway; then pop the stack, assigning
// each node the lowest palette color not used by an already-colored
// neighbor. A node that runs out of available colors when popped is an
// actual spill.
func colorGraph(g *graph, k int) colorResult {
	type popped struct{ node int }
	var stack []popped
	spillCandidates := map[int]bool{}

	remaining := newGraph()
	for n := range g.nodes {
		remaining.addNode(n)
	}
	for a, nbrs := range g.edges {
		for b := range nbrs {
			remaining.addEdge(a, b)
		}
	}

	for len(remaining.nodes) > 0 {
		removedAny := false
		for n := range remaining.nodes {
			if remaining.degree(n) < k {
				stack = append(stack, popped{node: n})
				remaining.removeNode(n)
				removedAny = true
			}
		}
		if removedAny {
			continue
		}
		// No low-degree node: pick the highest-degree node as an
		// optimistic spill candidate (prefer high degree, spec.md
		// §4.6 step 3) and keep going; it may still get a color once
		// its neighbors are known.
		best, bestDeg := -1, -1
		for n := range remaining.nodes {
			if d := remaining.degree(n); d > bestDeg {
				best, bestDeg = n, d
			}
		}
		spillCandidates[best] = true
		stack = append(stack, popped{node: best})
		remaining.removeNode(best)
	}

	colors := map[int]int{}
	spills := map[int]bool{}
	for i := len(stack) - 1; i >= 0; i-- {
		n := stack[i].node
		used := map[int]bool{}
		for nbr := range g.edges[n] {
			if c, ok := colors[nbr]; ok {
				used[c] = true
			}
		}
		assigned := -1
		for c := 0; c < k; c++ {
			if !used[c] {
				assigned = c
				break
			}
		}
		if assigned == -1 {
			spills[n] = true
			continue
		}
		colors[n] = assigned
	}
	return colorResult{color: colors, spills: spills}
}
