// Copyright ©2025 The gorich Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enrich

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/calycina/gorich/internal/obo"
)

var (
	// ErrEmptyStudy is returned when the study set or ranking holds no
	// genes.
	ErrEmptyStudy = errors.New("enrich: empty study set")

	// ErrMissingGene is returned when a study gene is absent from the
	// population and the missing-gene policy is FailOnMissing.
	ErrMissingGene = errors.New("enrich: study gene absent from population")
)

// Direction marks whether a term is over- or under-represented in the
// study set relative to its expectation.
type Direction int8

const (
	Over Direction = iota
	Under
)

func (d Direction) String() string {
	if d == Under {
		return "under"
	}
	return "over"
}

// MissingPolicy controls handling of study genes absent from the
// population universe.
type MissingPolicy int8

const (
	// FailOnMissing aborts the analysis on the first study gene not
	// found in the population.
	FailOnMissing MissingPolicy = iota

	// DropMissing drops such genes with an aggregated warning.
	DropMissing
)

// Result is the outcome of testing a single term. P is set by the
// enrichment engine; PAdj is filled in by Correct and the record is
// immutable afterwards.
type Result struct {
	TermID    string
	Name      string
	Namespace string

	// Study is the number of study (or ranked) genes annotated to the
	// term and Pop the number of population genes annotated to it.
	Study int
	Pop   int

	// Expected is the study count expected under the null, n·K/N.
	// It is meaningful in set mode only.
	Expected float64

	// Stat is the rank-sum U statistic in ranked mode and NaN in set
	// mode.
	Stat float64

	Dir  Direction
	P    float64
	PAdj float64
}

// Config holds the set-mode analysis parameters.
type Config struct {
	// MinCount is the minimum study count for a term to be reported.
	// Values below 1 mean 1.
	MinCount int

	// Missing selects the policy for study genes absent from the
	// population.
	Missing MissingPolicy

	// Workers bounds the number of concurrent per-term tests. Values
	// below 1 mean GOMAXPROCS.
	Workers int
}

func (c *Config) sanitize() {
	if c.MinCount < 1 {
		c.MinCount = 1
	}
	if c.Workers < 1 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
}

// Analyze performs the set-mode enrichment analysis: for every term with
// an annotated gene in the population it computes the one-sided
// hypergeometric tail p-value of the observed study count, reporting the
// over- or under-representation tail according to the direction of the
// departure from expectation. The population defaults to the full
// annotation universe when nil. Raw p-values are returned uncorrected;
// apply Correct for multiple-testing adjustment.
func Analyze(p *Propagated, g *obo.Graph, study, population []string, cfg Config) ([]Result, error) {
	cfg.sanitize()
	if len(study) == 0 {
		return nil, ErrEmptyStudy
	}

	popBits, err := populationBits(p, population)
	if err != nil {
		return nil, err
	}
	studyBits, err := studyBits(p, study, popBits, cfg.Missing)
	if err != nil {
		return nil, err
	}

	N := popCount(popBits)
	n := popCount(studyBits)
	if n == 0 {
		return nil, ErrEmptyStudy
	}

	terms := p.Terms()
	results := make([]*Result, len(terms))
	var wg sync.WaitGroup
	tasks := make(chan int)
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				results[i] = testTerm(p, g, terms[i], popBits, studyBits, N, n, cfg.MinCount)
			}
		}()
	}
	for i := range terms {
		tasks <- i
	}
	close(tasks)
	wg.Wait()

	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

// testTerm computes the contingency counts and tail p-value for a single
// term, or nil if the term does not meet the reporting thresholds.
func testTerm(p *Propagated, g *obo.Graph, term string, popBits, studyBits *big.Int, N, n, minCount int) *Result {
	v := p.terms[term]
	K := andCount(v, popBits)
	if K == 0 {
		return nil
	}
	k := andCount(v, studyBits)
	if k < minCount {
		return nil
	}

	r := Result{
		TermID:   term,
		Study:    k,
		Pop:      K,
		Expected: float64(n) * float64(K) / float64(N),
		Stat:     math.NaN(),
	}
	if t, ok := g.Term(term); ok {
		r.Name = t.Name
		r.Namespace = t.Namespace
	}
	if float64(k) >= r.Expected {
		r.Dir = Over
		r.P = hyperUpper(N, K, n, k)
	} else {
		r.Dir = Under
		r.P = hyperLower(N, K, n, k)
	}
	return &r
}

// populationBits returns the background selection vector. A nil
// population selects the whole annotation universe; an explicit one is
// restricted to the universe, warning about genes outside it.
func populationBits(p *Propagated, population []string) (*big.Int, error) {
	if population == nil {
		return p.u.all(), nil
	}
	v := new(big.Int)
	var missing int
	for _, gene := range population {
		i, ok := p.u.idx[gene]
		if !ok {
			missing++
			continue
		}
		v.SetBit(v, i, 1)
	}
	if missing != 0 {
		logrus.Warnf("dropped %d population genes with no annotations", missing)
	}
	if popCount(v) == 0 {
		return nil, fmt.Errorf("%w: no population gene has annotations", ErrMissingGene)
	}
	return v, nil
}

// studyBits returns the study selection vector, applying the configured
// policy to study genes absent from the population.
func studyBits(p *Propagated, study []string, popBits *big.Int, policy MissingPolicy) (*big.Int, error) {
	v := new(big.Int)
	var missing int
	for _, gene := range study {
		i, ok := p.u.idx[gene]
		if !ok || popBits.Bit(i) == 0 {
			if policy == FailOnMissing {
				return nil, fmt.Errorf("%w: %q", ErrMissingGene, gene)
			}
			missing++
			continue
		}
		v.SetBit(v, i, 1)
	}
	if missing != 0 {
		logrus.Warnf("dropped %d study genes absent from the population", missing)
	}
	return v, nil
}
