package collision

import (
	"fmt"

	"github.com/san-kum/softsim/internal/dynamo"
)

const DefaultIterations = 2

// Pair is an undirected collision interaction. Both directions are always
// resolved: points of A against triangles of B and points of B against
// triangles of A.
type Pair struct {
	A, B       string
	Iterations int
}

func (p Pair) involves(name string) bool { return p.A == name || p.B == name }

func (p Pair) same(a, b string) bool {
	return (p.A == a && p.B == b) || (p.A == b && p.B == a)
}

// Graph is the set of collision interactions of one scene.
// It is not safe for concurrent use; the owning scene serializes access.
type Graph struct {
	reg   Registry
	pairs []Pair
	buf   map[string]*deltas
}

func NewGraph(reg Registry) *Graph {
	return &Graph{reg: reg, buf: make(map[string]*deltas)}
}

// AddCollisionInteraction registers a bidirectional interaction between
// objects a and b. iterations <= 0 selects DefaultIterations.
func (g *Graph) AddCollisionInteraction(a, b string, iterations int) error {
	const op = "add collision interaction"
	for _, n := range []string{a, b} {
		if _, ok := g.reg.Body(n); !ok {
			return dynamo.Errorf(op, n, dynamo.ErrUnknownObject)
		}
	}
	if a == b {
		return dynamo.Errorf(op, a, fmt.Errorf("object paired with itself: %w", dynamo.ErrInvalidInteraction))
	}
	for _, p := range g.pairs {
		if p.same(a, b) {
			return dynamo.Errorf(op, a+"<->"+b, dynamo.ErrDuplicateName)
		}
	}
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	g.pairs = append(g.pairs, Pair{A: a, B: b, Iterations: iterations})
	return nil
}

// Remove drops every interaction involving name and reports how many were removed.
func (g *Graph) Remove(name string) int {
	kept := g.pairs[:0]
	removed := 0
	for _, p := range g.pairs {
		if p.involves(name) {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	g.pairs = kept
	delete(g.buf, name)
	return removed
}

// Pairs returns a copy of the registered interactions.
func (g *Graph) Pairs() []Pair {
	out := make([]Pair, len(g.pairs))
	copy(out, g.pairs)
	return out
}

func (g *Graph) Len() int { return len(g.pairs) }

// MaxIterations is the largest iteration count of any pair.
func (g *Graph) MaxIterations() int {
	n := 0
	for _, p := range g.pairs {
		if p.Iterations > n {
			n = p.Iterations
		}
	}
	return n
}
