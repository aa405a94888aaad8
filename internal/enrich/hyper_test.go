// Copyright ©2025 The gorich Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enrich

import (
	"math"
	"testing"
)

func TestLogChoose(t *testing.T) {
	tests := []struct {
		n, k int
		want float64
	}{
		{n: 10, k: 2, want: 45},
		{n: 10, k: 3, want: 120},
		{n: 3, k: 0, want: 1},
		{n: 3, k: 3, want: 1},
	}
	for _, test := range tests {
		got := math.Exp(logChoose(test.n, test.k))
		if math.Abs(got-test.want) > 1e-9*test.want {
			t.Errorf("unexpected C(%d,%d): got %g, want %g", test.n, test.k, got, test.want)
		}
	}
	if !math.IsInf(logChoose(3, 4), -1) {
		t.Error("expected -Inf for k > n")
	}
}

func TestHyperUpper(t *testing.T) {
	// C(3,2)·C(7,0)/C(10,2) = 3/45.
	if got, want := hyperUpper(10, 3, 2, 2), 1.0/15; math.Abs(got-want) > 1e-12 {
		t.Errorf("unexpected tail: got %g, want %g", got, want)
	}
	// The whole support sums to 1.
	if got := hyperUpper(10, 3, 2, 0); math.Abs(got-1) > 1e-12 {
		t.Errorf("unexpected full tail: got %g, want 1", got)
	}
	// k beyond the support is an impossible over-representation.
	if got := hyperUpper(10, 3, 2, 3); got != math.SmallestNonzeroFloat64 {
		t.Errorf("unexpected clamped tail: got %g", got)
	}
}

func TestHyperTailsComplement(t *testing.T) {
	const (
		N = 50
		K = 12
		n = 9
	)
	for k := 0; k <= n; k++ {
		upper := hyperUpper(N, K, n, k)
		lower := hyperLower(N, K, n, k)
		pmf := math.Exp(hyperPMF(N, K, n, k))
		if math.Abs(upper+lower-pmf-1) > 1e-9 {
			t.Errorf("tails do not complement at k=%d: upper=%g lower=%g pmf=%g", k, upper, lower, pmf)
		}
	}
}

func TestHyperLargePopulation(t *testing.T) {
	// Population sizes in the tens of thousands must stay finite and
	// in-range in log space.
	p := hyperUpper(45000, 800, 400, 30)
	if math.IsNaN(p) || p <= 0 || p > 1 {
		t.Errorf("unstable p-value for large population: %g", p)
	}
	// A wildly extreme observation underflows to the clamp, not to 0.
	p = hyperUpper(45000, 400, 400, 400)
	if p <= 0 || math.IsNaN(p) {
		t.Errorf("underflow not clamped: %g", p)
	}
}

func TestClampP(t *testing.T) {
	if got := clampP(0); got != math.SmallestNonzeroFloat64 {
		t.Errorf("zero not clamped: %g", got)
	}
	if got := clampP(1 + 1e-12); got != 1 {
		t.Errorf("overshoot not clamped: %g", got)
	}
	if got := clampP(0.5); got != 0.5 {
		t.Errorf("in-range value changed: %g", got)
	}
}
