// Copyright ©2025 The gorich Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package obo

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Graph is the ontology term DAG. It is built once by NewGraph and is
// read-only thereafter, so it is safe for unsynchronized concurrent use.
type Graph struct {
	terms map[string]*Term
	alt   map[string]string

	// ids maps node IDs in dag back to term
	// identifiers, and idx is its inverse.
	ids []string
	idx map[string]int64
	dag *simple.DirectedGraph

	// order is a child-before-parent topological
	// order over all term identifiers.
	order []string

	anc   map[string]map[string]bool
	desc  map[string]map[string]bool
	roots []string
}

// NewGraph builds the term DAG for the given terms. Obsolete terms are
// dropped. NewGraph returns an error wrapping ErrMalformed if a term is
// defined twice, references an undefined parent, or takes part in a cycle.
func NewGraph(terms []Term) (*Graph, error) {
	g := &Graph{
		terms: make(map[string]*Term, len(terms)),
		alt:   make(map[string]string),
		idx:   make(map[string]int64),
		dag:   simple.NewDirectedGraph(),
	}
	for i, t := range terms {
		if t.Obsolete {
			continue
		}
		if _, ok := g.terms[t.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate term %s", ErrMalformed, t.ID)
		}
		g.terms[t.ID] = &terms[i]
		for _, alt := range t.AltIDs {
			g.alt[alt] = t.ID
		}
	}

	// Assign node IDs in sorted term order so that the
	// graph, and everything derived from it, is
	// independent of input order.
	g.ids = make([]string, 0, len(g.terms))
	for id := range g.terms {
		g.ids = append(g.ids, id)
	}
	sort.Strings(g.ids)
	for i, id := range g.ids {
		g.idx[id] = int64(i)
		g.dag.AddNode(simple.Node(i))
	}

	for _, id := range g.ids {
		for _, p := range g.terms[id].Parents {
			pid, ok := g.resolve(p)
			if !ok {
				return nil, fmt.Errorf("%w: term %s references undefined parent %s", ErrMalformed, id, p)
			}
			if pid == id {
				return nil, fmt.Errorf("%w: term %s is its own parent", ErrMalformed, id)
			}
			g.dag.SetEdge(simple.Edge{F: simple.Node(g.idx[id]), T: simple.Node(g.idx[pid])})
		}
	}

	// Edges run child to parent, so a topological sort
	// places every child before its parents and doubles
	// as cycle detection.
	sorted, err := topo.SortStabilized(g.dag, nil)
	if err != nil {
		uo, ok := err.(topo.Unorderable)
		if !ok {
			return nil, err
		}
		var cyc []string
		for _, n := range uo[0] {
			cyc = append(cyc, g.ids[n.ID()])
		}
		sort.Strings(cyc)
		return nil, fmt.Errorf("%w: cycle involving %s", ErrMalformed, strings.Join(cyc, ", "))
	}
	g.order = make([]string, len(sorted))
	for i, n := range sorted {
		g.order[i] = g.ids[n.ID()]
	}

	g.buildClosures()
	return g, nil
}

// buildClosures computes the ancestor and descendant sets for every term
// in a single pass over the topological order.
func (g *Graph) buildClosures() {
	g.anc = make(map[string]map[string]bool, len(g.order))
	g.desc = make(map[string]map[string]bool, len(g.order))
	for _, id := range g.order {
		g.desc[id] = make(map[string]bool)
	}

	// Parents precede children in the reversed order, so each
	// ancestor set is the union of the parents' completed sets.
	for i := len(g.order) - 1; i >= 0; i-- {
		id := g.order[i]
		anc := make(map[string]bool)
		for _, p := range g.Parents(id) {
			anc[p] = true
			for a := range g.anc[p] {
				anc[a] = true
			}
		}
		g.anc[id] = anc
		for a := range anc {
			g.desc[a][id] = true
		}
	}

	for _, id := range g.ids {
		if len(g.terms[id].Parents) == 0 {
			g.roots = append(g.roots, id)
		}
	}
	sort.Strings(g.roots)
}

func (g *Graph) resolve(id string) (string, bool) {
	if _, ok := g.terms[id]; ok {
		return id, true
	}
	primary, ok := g.alt[id]
	return primary, ok
}

// Resolve maps id, which may be an alternative identifier of a merged
// term, to its primary term identifier.
func (g *Graph) Resolve(id string) (string, bool) {
	return g.resolve(id)
}

// Term returns the term for id, resolving alternative identifiers.
func (g *Graph) Term(id string) (*Term, bool) {
	pid, ok := g.resolve(id)
	if !ok {
		return nil, false
	}
	return g.terms[pid], true
}

// Parents returns the resolved parent identifiers of id.
func (g *Graph) Parents(id string) []string {
	t, ok := g.terms[id]
	if !ok {
		return nil
	}
	parents := make([]string, 0, len(t.Parents))
	for _, p := range t.Parents {
		pid, ok := g.resolve(p)
		if ok {
			parents = append(parents, pid)
		}
	}
	return parents
}

// Ancestors returns the transitive parents of id, excluding id itself.
// The returned map is shared and must not be mutated.
func (g *Graph) Ancestors(id string) map[string]bool {
	pid, ok := g.resolve(id)
	if !ok {
		return nil
	}
	return g.anc[pid]
}

// Descendants returns the transitive children of id, excluding id itself.
// The returned map is shared and must not be mutated.
func (g *Graph) Descendants(id string) map[string]bool {
	pid, ok := g.resolve(id)
	if !ok {
		return nil
	}
	return g.desc[pid]
}

// Roots returns the namespace root terms, those with no parents, in
// lexical order.
func (g *Graph) Roots() []string {
	return g.roots
}

// TopoOrder returns all term identifiers in an order that places every
// child before its parents.
func (g *Graph) TopoOrder() []string {
	return g.order
}

// Len returns the number of non-obsolete terms in the graph.
func (g *Graph) Len() int {
	return len(g.terms)
}
