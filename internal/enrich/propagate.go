// Copyright ©2025 The gorich Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enrich

import (
	"math/big"
	"sort"

	"github.com/calycina/gorich/internal/annot"
	"github.com/calycina/gorich/internal/obo"
)

// Propagated holds, for every annotated ontology term, the transitive set
// of annotated genes as a bit vector over the gene universe. A gene
// directly annotated to a term is annotated to all the term's ancestors.
// It is built once by Propagate and is read-only thereafter.
type Propagated struct {
	u     *universe
	terms map[string]*big.Int
}

// Propagate computes the annotation closure of s over the term DAG g.
// The per-term gene sets are seeded from the direct annotations and then
// unioned child-into-parent in a single pass over the child-before-parent
// topological order, so each edge is visited exactly once and the result
// is independent of iteration order.
func Propagate(s *annot.Store, g *obo.Graph) *Propagated {
	p := &Propagated{
		u:     newUniverse(s.Genes()),
		terms: make(map[string]*big.Int),
	}
	for _, term := range s.Terms() {
		genes := s.GenesFor(term)
		v := new(big.Int)
		for gene := range genes {
			v.SetBit(v, p.u.idx[gene], 1)
		}
		p.terms[term] = v
	}

	for _, term := range g.TopoOrder() {
		v, ok := p.terms[term]
		if !ok {
			continue
		}
		for _, parent := range g.Parents(term) {
			pv, ok := p.terms[parent]
			if !ok {
				pv = new(big.Int)
				p.terms[parent] = pv
			}
			pv.Or(pv, v)
		}
	}
	return p
}

// Genes returns the gene universe in lexical order.
func (p *Propagated) Genes() []string {
	return p.u.ids
}

// Terms returns the identifiers of all terms with at least one propagated
// annotation, in lexical order.
func (p *Propagated) Terms() []string {
	terms := make([]string, 0, len(p.terms))
	for t := range p.terms {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

// GenesFor returns the propagated gene set for term in lexical order.
func (p *Propagated) GenesFor(term string) []string {
	v, ok := p.terms[term]
	if !ok {
		return nil
	}
	genes := make([]string, 0, popCount(v))
	for i, id := range p.u.ids {
		if v.Bit(i) == 1 {
			genes = append(genes, id)
		}
	}
	return genes
}
