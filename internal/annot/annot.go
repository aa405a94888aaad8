// Copyright ©2025 The gorich Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package annot implements loading of gene-association (GAF) tabular
// annotation data against an ontology term graph.
package annot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/calycina/gorich/internal/obo"
)

// ErrMalformed indicates a structurally invalid annotation record.
var ErrMalformed = errors.New("annot: malformed annotation")

// GAF column indices for the fields used here. The remaining columns
// are not inspected.
const (
	colObjectID  = 1
	colQualifier = 3
	colTermID    = 4
	colEvidence  = 6
	colAspect    = 8

	minColumns = colAspect + 1
)

// Options control annotation loading.
type Options struct {
	// ExcludeEvidence lists evidence codes whose
	// annotations are dropped, for example IEA.
	ExcludeEvidence map[string]bool
}

// Store holds direct annotations as a mapping from gene identifier to
// term identifiers and its inverse. It is built once by Load and is
// read-only thereafter.
type Store struct {
	byGene map[string]map[string]bool
	byTerm map[string]map[string]bool
	genes  []string

	warn Warnings
}

// Warnings aggregates recoverable data-quality issues found during a load.
type Warnings struct {
	// UnknownTerms counts skipped records per
	// unresolvable term identifier.
	UnknownTerms map[string]int

	// Skipped is the total number of records skipped
	// for referencing unknown terms.
	Skipped int
}

// Log writes an aggregated warning summary via logrus. It is a no-op when
// the load was clean.
func (w Warnings) Log() {
	if w.Skipped == 0 {
		return
	}
	ids := make([]string, 0, len(w.UnknownTerms))
	for id := range w.UnknownTerms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	const maxShown = 10
	shown := ids
	if len(shown) > maxShown {
		shown = shown[:maxShown]
	}
	logrus.Warnf("skipped %d annotations referencing %d unknown terms (%s%s)",
		w.Skipped, len(ids), strings.Join(shown, ", "), ellipsis(len(ids) > maxShown))
}

func ellipsis(more bool) string {
	if more {
		return ", …"
	}
	return ""
}

// Load parses GAF-style tab-delimited records from r. Comment lines start
// with '!'. Records with fewer than the required columns cause a failure
// wrapping ErrMalformed and identifying the offending line. Records whose
// term identifier cannot be resolved in g are skipped and recorded as
// warnings; records carrying a NOT qualifier or an excluded evidence code
// are silently dropped.
func Load(r io.Reader, g *obo.Graph, opts Options) (*Store, error) {
	c := csv.NewReader(r)
	c.Comma = '\t'
	c.Comment = '!'
	c.FieldsPerRecord = -1
	c.LazyQuotes = true
	c.ReuseRecord = true

	s := &Store{
		byGene: make(map[string]map[string]bool),
		byTerm: make(map[string]map[string]bool),
		warn:   Warnings{UnknownTerms: make(map[string]int)},
	}
	for {
		record, err := c.Read()
		if err != nil {
			if err != io.EOF {
				return nil, err
			}
			break
		}
		line, _ := c.FieldPos(0)
		if len(record) < minColumns {
			return nil, fmt.Errorf("%w: line %d: got %d columns, want at least %d",
				ErrMalformed, line, len(record), minColumns)
		}
		if isNegated(record[colQualifier]) {
			continue
		}
		if opts.ExcludeEvidence[record[colEvidence]] {
			continue
		}
		gene := record[colObjectID]
		if gene == "" {
			return nil, fmt.Errorf("%w: line %d: empty object identifier", ErrMalformed, line)
		}
		term, ok := g.Resolve(record[colTermID])
		if !ok {
			s.warn.UnknownTerms[record[colTermID]]++
			s.warn.Skipped++
			continue
		}
		if s.byGene[gene] == nil {
			s.byGene[gene] = make(map[string]bool)
		}
		s.byGene[gene][term] = true
		if s.byTerm[term] == nil {
			s.byTerm[term] = make(map[string]bool)
		}
		s.byTerm[term][gene] = true
	}

	s.genes = make([]string, 0, len(s.byGene))
	for gene := range s.byGene {
		s.genes = append(s.genes, gene)
	}
	sort.Strings(s.genes)
	return s, nil
}

// isNegated reports whether a pipe-separated GAF qualifier negates the
// annotation.
func isNegated(qualifier string) bool {
	for _, q := range strings.Split(qualifier, "|") {
		if q == "NOT" {
			return true
		}
	}
	return false
}

// GenesFor returns the set of genes directly annotated to term. The
// returned map is shared and must not be mutated.
func (s *Store) GenesFor(term string) map[string]bool {
	return s.byTerm[term]
}

// TermsFor returns the set of terms gene is directly annotated to. The
// returned map is shared and must not be mutated.
func (s *Store) TermsFor(gene string) map[string]bool {
	return s.byGene[gene]
}

// Genes returns the annotated gene universe in lexical order.
func (s *Store) Genes() []string {
	return s.genes
}

// Terms returns the directly annotated term identifiers in lexical order.
func (s *Store) Terms() []string {
	terms := make([]string, 0, len(s.byTerm))
	for t := range s.byTerm {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

// Warnings returns the data-quality warnings aggregated during the load.
func (s *Store) Warnings() Warnings {
	return s.warn
}
