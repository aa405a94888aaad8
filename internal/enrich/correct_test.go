// Copyright ©2025 The gorich Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enrich

import (
	"fmt"
	"math"
	"sort"
	"testing"
)

func resultsWithP(ps ...float64) []Result {
	results := make([]Result, len(ps))
	for i, p := range ps {
		results[i] = Result{TermID: fmt.Sprintf("GO:%07d", i+1), P: p}
	}
	return results
}

func TestParseMethod(t *testing.T) {
	for _, name := range []string{"none", "bonferroni", "holm", "bh", "benjamini-hochberg"} {
		_, err := ParseMethod(name)
		if err != nil {
			t.Errorf("unexpected error for %q: %v", name, err)
		}
	}
	_, err := ParseMethod("sidak")
	if err == nil {
		t.Error("expected error for unknown method")
	}
}

func TestCorrectNone(t *testing.T) {
	results := resultsWithP(0.5, 0.01, 0.2)
	Correct(results, None)
	for _, r := range results {
		if r.PAdj != r.P {
			t.Errorf("method none changed %s: %g != %g", r.TermID, r.PAdj, r.P)
		}
	}
}

func TestCorrectBonferroni(t *testing.T) {
	// 100 tested terms at raw p-value 0.001: corrected = min(1, 0.1).
	ps := make([]float64, 100)
	for i := range ps {
		ps[i] = 0.001
	}
	results := resultsWithP(ps...)
	Correct(results, Bonferroni)
	for _, r := range results {
		if math.Abs(r.PAdj-0.1) > 1e-12 {
			t.Errorf("unexpected bonferroni correction: got %g, want 0.1", r.PAdj)
		}
	}

	results = resultsWithP(0.5, 0.02)
	Correct(results, Bonferroni)
	if results[0].PAdj != 1 {
		t.Errorf("bonferroni not capped at 1: %g", results[0].PAdj)
	}
	if results[1].PAdj != 0.04 {
		t.Errorf("unexpected bonferroni correction: got %g, want 0.04", results[1].PAdj)
	}
}

func TestCorrectHolm(t *testing.T) {
	results := resultsWithP(0.04, 0.01, 0.03, 0.02)
	Correct(results, Holm)

	// Sorted raw: 0.01, 0.02, 0.03, 0.04 over m=4 gives step-down
	// 0.04, 0.06, 0.06, 0.06.
	want := map[float64]float64{0.01: 0.04, 0.02: 0.06, 0.03: 0.06, 0.04: 0.06}
	for _, r := range results {
		if math.Abs(r.PAdj-want[r.P]) > 1e-12 {
			t.Errorf("unexpected holm correction for p=%g: got %g, want %g", r.P, r.PAdj, want[r.P])
		}
	}
	assertMonotonic(t, results)
}

func TestCorrectBenjaminiHochberg(t *testing.T) {
	results := resultsWithP(0.03, 0.005, 0.04, 0.01)
	Correct(results, BenjaminiHochberg)

	// Sorted raw: 0.005, 0.01, 0.03, 0.04 over m=4 gives step-up
	// 0.02, 0.02, 0.04, 0.04.
	want := map[float64]float64{0.005: 0.02, 0.01: 0.02, 0.03: 0.04, 0.04: 0.04}
	for _, r := range results {
		if math.Abs(r.PAdj-want[r.P]) > 1e-12 {
			t.Errorf("unexpected BH correction for p=%g: got %g, want %g", r.P, r.PAdj, want[r.P])
		}
	}
	assertMonotonic(t, results)
}

// assertMonotonic checks the shared invariants of the correcting
// methods: corrected values never fall below raw values, never exceed 1,
// and are non-decreasing along the raw p-value order.
func assertMonotonic(t *testing.T, results []Result) {
	t.Helper()
	sorted := append([]Result(nil), results...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].P < sorted[j].P })
	prev := 0.0
	for _, r := range sorted {
		if r.PAdj < r.P {
			t.Errorf("corrected below raw for %s: %g < %g", r.TermID, r.PAdj, r.P)
		}
		if r.PAdj > 1 {
			t.Errorf("corrected above 1 for %s: %g", r.TermID, r.PAdj)
		}
		if r.PAdj < prev {
			t.Errorf("corrected sequence not monotonic at %s: %g < %g", r.TermID, r.PAdj, prev)
		}
		prev = r.PAdj
	}
}
