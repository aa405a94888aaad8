// Copyright ©2025 The gorich Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package obo implements parsing of OBO-format ontology documents and the
// directed acyclic graph queries needed for annotation propagation.
// It is not a complete OBO parser implementation; only the tags required
// for enrichment analysis are retained.
package obo
