// Copyright ©2025 The gorich Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enrich

import (
	"fmt"
	"sort"
)

// Method is a multiple-testing correction method.
type Method int8

const (
	None Method = iota
	Bonferroni
	Holm
	BenjaminiHochberg
)

// ParseMethod maps a method name to its Method. Recognised names are
// none, bonferroni, holm, holm-bonferroni, bh and benjamini-hochberg.
func ParseMethod(name string) (Method, error) {
	switch name {
	case "none":
		return None, nil
	case "bonferroni":
		return Bonferroni, nil
	case "holm", "holm-bonferroni":
		return Holm, nil
	case "bh", "benjamini-hochberg", "fdr":
		return BenjaminiHochberg, nil
	}
	return None, fmt.Errorf("enrich: unknown correction method %q", name)
}

func (m Method) String() string {
	switch m {
	case Bonferroni:
		return "bonferroni"
	case Holm:
		return "holm"
	case BenjaminiHochberg:
		return "benjamini-hochberg"
	}
	return "none"
}

// Correct fills in the adjusted p-values of results in place, treating
// the whole slice as one test family. For the correcting methods the
// adjusted values are bounded by the raw values below and by 1 above.
func Correct(results []Result, method Method) {
	m := len(results)
	if m == 0 {
		return
	}
	switch method {
	case None:
		for i := range results {
			results[i].PAdj = results[i].P
		}

	case Bonferroni:
		for i := range results {
			results[i].PAdj = capped(results[i].P * float64(m))
		}

	case Holm:
		idx := ascending(results)
		// Step-down: each adjusted value is forced to be no smaller
		// than its predecessor.
		prev := 0.0
		for i, j := range idx {
			adj := capped(results[j].P * float64(m-i))
			if adj < prev {
				adj = prev
			}
			prev = adj
			results[j].PAdj = adj
		}

	case BenjaminiHochberg:
		idx := ascending(results)
		// Step-up from the largest p-value: each adjusted value is
		// forced to be no larger than its successor.
		prev := 1.0
		for i := m - 1; i >= 0; i-- {
			j := idx[i]
			adj := capped(results[j].P * float64(m) / float64(i+1))
			if adj > prev {
				adj = prev
			}
			prev = adj
			results[j].PAdj = adj
		}
	}
}

// ascending returns result indices ordered by raw p-value, ties broken
// by term identifier for determinism.
func ascending(results []Result) []int {
	idx := make([]int, len(results))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool {
		a, b := &results[idx[i]], &results[idx[j]]
		if a.P != b.P {
			return a.P < b.P
		}
		return a.TermID < b.TermID
	})
	return idx
}

func capped(p float64) float64 {
	if p > 1 {
		return 1
	}
	return p
}
