// Copyright ©2025 The gorich Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enrich

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/combin"
)

// logChoose returns log(C(n, k)), or -Inf for impossible draws.
func logChoose(n, k int) float64 {
	if k < 0 || k > n {
		return math.Inf(-1)
	}
	return combin.LogGeneralizedBinomial(float64(n), float64(k))
}

// hyperPMF returns log P[X = k] for a hypergeometric draw of n from a
// population of N containing K successes.
func hyperPMF(N, K, n, k int) float64 {
	if k < 0 || k > K || n-k < 0 || n-k > N-K {
		return math.Inf(-1)
	}
	return logChoose(K, k) + logChoose(N-K, n-k) - logChoose(N, n)
}

// hyperUpper returns P[X >= k], the one-sided over-representation
// p-value. All terms are accumulated in log space to stay stable for
// population sizes in the tens of thousands.
func hyperUpper(N, K, n, k int) float64 {
	hi := n
	if K < hi {
		hi = K
	}
	if k > hi {
		return clampP(0)
	}
	logs := make([]float64, 0, hi-k+1)
	for i := k; i <= hi; i++ {
		lp := hyperPMF(N, K, n, i)
		if !math.IsInf(lp, -1) {
			logs = append(logs, lp)
		}
	}
	return sumExp(logs)
}

// hyperLower returns P[X <= k], the one-sided under-representation
// p-value.
func hyperLower(N, K, n, k int) float64 {
	lo := n - (N - K)
	if lo < 0 {
		lo = 0
	}
	if k < lo {
		return clampP(0)
	}
	logs := make([]float64, 0, k-lo+1)
	for i := lo; i <= k; i++ {
		lp := hyperPMF(N, K, n, i)
		if !math.IsInf(lp, -1) {
			logs = append(logs, lp)
		}
	}
	return sumExp(logs)
}

func sumExp(logs []float64) float64 {
	if len(logs) == 0 {
		return clampP(0)
	}
	return clampP(math.Exp(floats.LogSumExp(logs)))
}

// clampP bounds a probability to the representable (0, 1] interval.
// Underflow is clamped to the smallest positive float64 rather than
// reported as zero or an error.
func clampP(p float64) float64 {
	switch {
	case p < math.SmallestNonzeroFloat64:
		return math.SmallestNonzeroFloat64
	case p > 1:
		return 1
	}
	return p
}
