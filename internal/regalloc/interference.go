package regalloc

import "github.com/rillwright/rill/internal/target"

// graph is an undirected interference graph over one register class's
// pseudo registers (spec.md §4.6 step 2): nodes are pseudos, edges mark
// "must not receive the same color".
type graph struct {
	nodes map[int]bool // pseudo number -> present
	edges map[int]map[int]bool
}

func newGraph() *graph {
	return &graph{nodes: map[int]bool{}, edges: map[int]map[int]bool{}}
}

func (g *graph) addNode(n int) {
	g.nodes[n] = true
	if g.edges[n] == nil {
		g.edges[n] = map[int]bool{}
	}
}

func (g *graph) addEdge(a, b int) {
	if a == b {
		return
	}
	g.addNode(a)
	g.addNode(b)
	g.edges[a][b] = true
	g.edges[b][a] = true
}

func (g *graph) degree(n int) int { return len(g.edges[n]) }

func (g *graph) removeNode(n int) {
	for other := range g.edges[n] {
		delete(g.edges[other], n)
	}
	delete(g.edges, n)
	delete(g.nodes, n)
}

// buildInterferenceW/B apply the standard def-vs-liveout rule: for
// every instruction, every register it defines interferes with every
// other register live immediately after it.
func buildInterferenceW(code []target.Ins, ls *liveSets) *graph {
	g := newGraph()
	for i, ins := range code {
		du := describe(ins)
		for _, d := range du.DefsW {
			if !d.IsPseudo() {
				continue
			}
			g.addNode(d.PseudoNum())
			for v := range ls.outW[i] {
				if v.IsPseudo() && v != d {
					g.addEdge(d.PseudoNum(), v.PseudoNum())
				}
			}
		}
		for _, u := range du.UsesW {
			if u.IsPseudo() {
				g.addNode(u.PseudoNum())
			}
		}
	}
	return g
}

func buildInterferenceB(code []target.Ins, ls *liveSets) *graph {
	g := newGraph()
	for i, ins := range code {
		du := describe(ins)
		for _, d := range du.DefsB {
			if !d.IsPseudo() {
				continue
			}
			g.addNode(d.PseudoNum())
			for v := range ls.outB[i] {
				if v.IsPseudo() && v != d {
					g.addEdge(d.PseudoNum(), v.PseudoNum())
				}
			}
		}
		for _, u := range du.UsesB {
			if u.IsPseudo() {
				g.addNode(u.PseudoNum())
			}
		}
	}
	return g
}
