// Copyright ©2025 The gorich Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package obo

// Term is a single ontology term parsed from a [Term] stanza.
type Term struct {
	// ID is the primary term identifier, for
	// example GO:0008150.
	ID string

	// Name is the human-readable term name.
	Name string

	// Namespace is the ontology aspect the term
	// belongs to, for example biological_process.
	Namespace string

	// Parents holds the identifiers of terms this
	// term is a child of via is_a and part_of
	// relations, in document order.
	Parents []string

	// AltIDs holds merged identifiers that resolve
	// to this term.
	AltIDs []string

	// Obsolete marks terms flagged is_obsolete.
	// Obsolete terms take no part in the graph.
	Obsolete bool
}
