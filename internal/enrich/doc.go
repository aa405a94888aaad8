// Copyright ©2025 The gorich Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package enrich implements Gene Ontology enrichment analysis: annotation
// propagation over the term DAG, hypergeometric over-representation tests
// on gene sets, rank-based tests on scored gene rankings, multiple-testing
// correction and deterministic report formatting.
package enrich
