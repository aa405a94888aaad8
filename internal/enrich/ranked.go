// Copyright ©2025 The gorich Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enrich

import (
	"fmt"
	"hash/fnv"
	"math"
	"runtime"
	"sync"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/calycina/gorich/internal/obo"
)

// RankedGene is one entry of a scored gene ranking, most-significant
// first.
type RankedGene struct {
	ID    string
	Score float64
}

// RankedConfig holds the ranked-mode analysis parameters.
type RankedConfig struct {
	// MinCount is the minimum number of annotated genes in the ranking
	// for a term to be tested. Values below 1 mean 1.
	MinCount int

	// Permutations selects the number of label permutations used to
	// derive empirical p-values. Zero selects the normal approximation.
	Permutations int

	// Seed seeds the permutation source. Each term derives its own
	// stream from Seed and the term identifier, so results do not
	// depend on the worker count.
	Seed uint64

	// Workers bounds the number of concurrent per-term tests. Values
	// below 1 mean GOMAXPROCS.
	Workers int
}

func (c *RankedConfig) sanitize() {
	if c.MinCount < 1 {
		c.MinCount = 1
	}
	if c.Workers < 1 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
}

// AnalyzeRanked performs the ranked-mode enrichment analysis: for every
// term it compares the rank distribution of annotated genes against the
// unannotated remainder with a tie-corrected Wilcoxon rank-sum statistic.
// The p-value comes from the continuity-corrected normal approximation,
// or from seeded label permutations when cfg.Permutations is positive.
// Raw p-values are returned uncorrected; apply Correct for
// multiple-testing adjustment.
func AnalyzeRanked(p *Propagated, g *obo.Graph, ranking []RankedGene, cfg RankedConfig) ([]Result, error) {
	cfg.sanitize()
	if len(ranking) == 0 {
		return nil, ErrEmptyStudy
	}
	seen := make(map[string]bool, len(ranking))
	for _, rg := range ranking {
		if seen[rg.ID] {
			return nil, fmt.Errorf("%w: duplicate gene %q in ranking", ErrMissingGene, rg.ID)
		}
		seen[rg.ID] = true
	}

	ranks, tieSum := tiedRanks(ranking)

	terms := p.Terms()
	results := make([]*Result, len(terms))
	var wg sync.WaitGroup
	tasks := make(chan int)
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				results[i] = testRanked(p, g, terms[i], ranking, ranks, tieSum, cfg)
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

// tiedRanks assigns tie-averaged ranks to the ranking positions and
// returns the tie correction sum Σ(t³−t) over the tie groups. Ties are
// runs of equal scores, which the most-significant-first ordering keeps
// adjacent.
func tiedRanks(ranking []RankedGene) (ranks []float64, tieSum float64) {
	n := len(ranking)
	ranks = make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && ranking[j].Score == ranking[i].Score {
			j++
		}
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[k] = avg
		}
		if t := float64(j - i); t > 1 {
			tieSum += t*t*t - t
		}
		i = j
	}
	return ranks, tieSum
}

// testRanked computes the rank-sum statistic and p-value for a single
// term, or nil if the term gives no contrast in the ranking.
func testRanked(p *Propagated, g *obo.Graph, term string, ranking []RankedGene, ranks []float64, tieSum float64, cfg RankedConfig) *Result {
	v := p.terms[term]
	var (
		annotated []int
		r1        float64
	)
	for i, rg := range ranking {
		gi, ok := p.u.idx[rg.ID]
		if ok && v.Bit(gi) == 1 {
			annotated = append(annotated, i)
			r1 += ranks[i]
		}
	}
	K := len(annotated)
	N := len(ranking)
	if K < cfg.MinCount || K == N {
		return nil
	}

	kf := float64(K)
	nf := float64(N)
	u1 := r1 - kf*(kf+1)/2
	u2 := kf*(nf-kf) - u1

	r := Result{
		TermID: term,
		Study:  K,
		Pop:    K,
		Stat:   u1,
	}
	if t, ok := g.Term(term); ok {
		r.Name = t.Name
		r.Namespace = t.Namespace
	}
	// Rank 1 is the most significant position, so an annotated rank sum
	// below expectation means annotated genes crowd the top.
	if u1 <= u2 {
		r.Dir = Over
	} else {
		r.Dir = Under
	}

	if cfg.Permutations > 0 {
		r.P = permutationP(r1, ranks, K, cfg.Permutations, seedFor(cfg.Seed, term))
		return &r
	}

	mu := kf * (nf - kf) / 2
	sigma := math.Sqrt(kf * (nf - kf) * ((nf + 1) - tieSum/(nf*(nf-1))) / 12)
	if sigma < 1e-10 {
		r.P = 1
		return &r
	}
	u := math.Min(u1, u2)
	z := (u - mu + 0.5) / sigma
	r.P = clampP(2 * distuv.UnitNormal.CDF(-math.Abs(z)))
	return &r
}

// permutationP derives a two-sided empirical p-value for the observed
// annotated rank sum r1 by repeatedly drawing k positions from the
// ranking without replacement.
func permutationP(r1 float64, ranks []float64, k, perms int, seed uint64) float64 {
	rng := rand.New(rand.NewSource(seed))
	n := len(ranks)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	var lower, upper int
	for b := 0; b < perms; b++ {
		var sum float64
		// Partial Fisher-Yates: only the first k draws are needed.
		for i := 0; i < k; i++ {
			j := i + rng.Intn(n-i)
			idx[i], idx[j] = idx[j], idx[i]
			sum += ranks[idx[i]]
		}
		if sum <= r1 {
			lower++
		}
		if sum >= r1 {
			upper++
		}
	}
	pl := float64(lower+1) / float64(perms+1)
	pu := float64(upper+1) / float64(perms+1)
	return clampP(2 * math.Min(pl, pu))
}

// seedFor derives a per-term seed from the base seed so permutation
// streams are independent of scheduling.
func seedFor(seed uint64, term string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(term))
	return seed ^ h.Sum64()
}
