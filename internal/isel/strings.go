package isel

import (
	"fmt"

	"github.com/rillwright/rill/internal/target"
)

// stringPool collects string-literal data across every function so
// each literal is emitted once into a `.seg data` block, referenced by
// symbol from wherever it's assigned (spec.md §6.2's `.string`
// directive).
type stringPool struct {
	order  []string
	labels map[string]string
}

// label returns the data-segment symbol for value, interning it on
// first use.
func (p *stringPool) label(value string) string {
	if p.labels == nil {
		p.labels = make(map[string]string)
	}
	if l, ok := p.labels[value]; ok {
		return l
	}
	l := fmt.Sprintf(".str%d", len(p.order))
	p.labels[value] = l
	p.order = append(p.order, value)
	return l
}

func (p *stringPool) emit() []target.Ins {
	var out []target.Ins
	for _, value := range p.order {
		out = append(out, target.Label{Name: p.labels[value]})
		out = append(out, target.StringData{Value: value})
	}
	return out
}
