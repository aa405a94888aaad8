// Copyright ©2025 The gorich Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package obo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformed indicates an ontology document that cannot form a valid DAG:
// a syntactically broken stanza, a dangling parent reference or a cycle.
var ErrMalformed = errors.New("obo: malformed ontology")

const scannerBuffer = 1 << 20

// Parse reads an OBO-format ontology from r and returns the terms of all
// [Term] stanzas, including obsolete ones. Header lines, comment lines and
// stanza types other than [Term] are skipped. Only the tags needed for
// graph construction are retained; unknown tags are ignored.
func Parse(r io.Reader) ([]Term, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, scannerBuffer), scannerBuffer)

	var (
		terms  []Term
		curr   *Term
		start  int
		line   int
		inTerm bool
	)
	flush := func() error {
		if curr == nil {
			return nil
		}
		if curr.ID == "" {
			return fmt.Errorf("%w: line %d: [Term] stanza without id", ErrMalformed, start)
		}
		terms = append(terms, *curr)
		curr = nil
		return nil
	}
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), " \t\r")
		switch {
		case text == "" || strings.HasPrefix(text, "!"):
			continue
		case strings.HasPrefix(text, "["):
			err := flush()
			if err != nil {
				return nil, err
			}
			inTerm = text == "[Term]"
			if inTerm {
				curr = &Term{}
				start = line
			}
			continue
		case !inTerm:
			// Header line or body of a non-Term stanza.
			continue
		}

		tag, val, ok := strings.Cut(text, ": ")
		if !ok {
			continue
		}
		switch tag {
		case "id":
			curr.ID = stripComment(val)
		case "name":
			curr.Name = val
		case "namespace":
			curr.Namespace = val
		case "alt_id":
			curr.AltIDs = append(curr.AltIDs, stripComment(val))
		case "is_a":
			curr.Parents = append(curr.Parents, stripComment(val))
		case "relationship":
			rel, target, ok := strings.Cut(stripComment(val), " ")
			if ok && rel == "part_of" {
				curr.Parents = append(curr.Parents, strings.TrimSpace(target))
			}
		case "is_obsolete":
			curr.Obsolete = stripComment(val) == "true"
		}
	}
	err := sc.Err()
	if err != nil {
		return nil, err
	}
	err = flush()
	if err != nil {
		return nil, err
	}
	return terms, nil
}

// stripComment removes a trailing " ! comment" from an OBO tag value.
func stripComment(s string) string {
	v, _, _ := strings.Cut(s, " ! ")
	return strings.TrimSpace(v)
}

// Load parses the OBO document in r and builds its term graph.
func Load(r io.Reader) (*Graph, error) {
	terms, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return NewGraph(terms)
}
