// Copyright ©2025 The gorich Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enrich

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/calycina/gorich/internal/annot"
	"github.com/calycina/gorich/internal/obo"
)

// chainOntology is a linear chain GO:0000003 → GO:0000002 → GO:0000001 →
// root, with one sibling under the root.
const chainOntology = `[Term]
id: GO:0008150
name: biological_process
namespace: biological_process

[Term]
id: GO:0000001
name: alpha process
namespace: biological_process
is_a: GO:0008150

[Term]
id: GO:0000002
name: beta process
namespace: biological_process
is_a: GO:0000001

[Term]
id: GO:0000003
name: gamma process
namespace: biological_process
is_a: GO:0000002

[Term]
id: GO:0000009
name: omega process
namespace: biological_process
is_a: GO:0008150
`

// gafRow builds a minimal valid GAF record annotating gene to term.
func gafRow(gene, term string) string {
	return strings.Join([]string{"DB", gene, gene, "", term, "REF:1", "IDA", "", "P"}, "\t")
}

// fixture loads doc as an ontology and the (gene, term) pairs as direct
// annotations, returning the graph, store and propagated annotations.
func fixture(t *testing.T, doc string, annotations [][2]string) (*obo.Graph, *annot.Store, *Propagated) {
	t.Helper()
	g, err := obo.Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error loading ontology: %v", err)
	}
	var sb strings.Builder
	sb.WriteString("!gaf-version: 2.2\n")
	for _, a := range annotations {
		sb.WriteString(gafRow(a[0], a[1]))
		sb.WriteByte('\n')
	}
	s, err := annot.Load(strings.NewReader(sb.String()), g, annot.Options{})
	if err != nil {
		t.Fatalf("unexpected error loading annotations: %v", err)
	}
	return g, s, Propagate(s, g)
}

// tenGeneAnnotations annotates g01..g03 to GO:0000001 and g04..g10 to
// GO:0000009, a ten gene universe.
func tenGeneAnnotations() [][2]string {
	var rows [][2]string
	for i := 1; i <= 3; i++ {
		rows = append(rows, [2]string{fmt.Sprintf("g%02d", i), "GO:0000001"})
	}
	for i := 4; i <= 10; i++ {
		rows = append(rows, [2]string{fmt.Sprintf("g%02d", i), "GO:0000009"})
	}
	return rows
}

func resultFor(results []Result, term string) (Result, bool) {
	for _, r := range results {
		if r.TermID == term {
			return r, true
		}
	}
	return Result{}, false
}

func TestAnalyze(t *testing.T) {
	g, _, p := fixture(t, chainOntology, tenGeneAnnotations())

	results, err := Analyze(p, g, []string{"g01", "g02"}, nil, Config{Workers: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// N=10, K=3, n=2, k=2: p = C(3,2)·C(7,0)/C(10,2) = 3/45.
	r, ok := resultFor(results, "GO:0000001")
	if !ok {
		t.Fatal("no result for GO:0000001")
	}
	if r.Study != 2 || r.Pop != 3 {
		t.Errorf("unexpected counts: got k=%d K=%d, want k=2 K=3", r.Study, r.Pop)
	}
	if want := 1.0 / 15; math.Abs(r.P-want) > 1e-12 {
		t.Errorf("unexpected p-value: got %g, want %g", r.P, want)
	}
	if r.Dir != Over {
		t.Errorf("unexpected direction: got %v, want over", r.Dir)
	}
	if want := 2 * 3.0 / 10; math.Abs(r.Expected-want) > 1e-12 {
		t.Errorf("unexpected expectation: got %g, want %g", r.Expected, want)
	}
	if r.Name != "alpha process" || r.Namespace != "biological_process" {
		t.Errorf("term metadata not filled: %+v", r)
	}

	// Both study genes are annotated to the root, which can be no
	// better than expectation over the full universe.
	root, ok := resultFor(results, "GO:0008150")
	if !ok {
		t.Fatal("no result for the root term")
	}
	if root.P != 1 {
		t.Errorf("unexpected root p-value: got %g, want 1", root.P)
	}

	// Terms with no study gene fall below the default minimum count.
	if _, ok := resultFor(results, "GO:0000009"); ok {
		t.Error("unexpected result for term with no study genes")
	}
}

func TestAnalyzeExplicitPopulation(t *testing.T) {
	g, _, p := fixture(t, chainOntology, tenGeneAnnotations())

	pop := []string{"g01", "g02", "g03", "g04", "g05"}
	results, err := Analyze(p, g, []string{"g01", "g02"}, pop, Config{Workers: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// N=5, K=3, n=2, k=2: p = C(3,2)·C(2,0)/C(5,2) = 3/10.
	r, ok := resultFor(results, "GO:0000001")
	if !ok {
		t.Fatal("no result for GO:0000001")
	}
	if want := 0.3; math.Abs(r.P-want) > 1e-12 {
		t.Errorf("unexpected p-value: got %g, want %g", r.P, want)
	}
}

func TestAnalyzeRelabelInvariance(t *testing.T) {
	g1, _, p1 := fixture(t, chainOntology, tenGeneAnnotations())
	res1, err := Analyze(p1, g1, []string{"g01", "g02"}, nil, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	relabelled := strings.NewReplacer("GO:0000001", "GO:0001001", "GO:0000009", "GO:0001009")
	var rows [][2]string
	for _, a := range tenGeneAnnotations() {
		rows = append(rows, [2]string{"x" + a[0], relabelled.Replace(a[1])})
	}
	g2, _, p2 := fixture(t, relabelled.Replace(chainOntology), rows)
	res2, err := Analyze(p2, g2, []string{"xg01", "xg02"}, nil, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, ok := resultFor(res1, "GO:0000001")
	if !ok {
		t.Fatal("no result for GO:0000001")
	}
	b, ok := resultFor(res2, "GO:0001001")
	if !ok {
		t.Fatal("no result for GO:0001001")
	}
	if a.P != b.P || a.Study != b.Study || a.Pop != b.Pop {
		t.Errorf("relabelling changed the test: %+v != %+v", a, b)
	}
}

func TestAnalyzeEmptyStudy(t *testing.T) {
	g, _, p := fixture(t, chainOntology, tenGeneAnnotations())
	_, err := Analyze(p, g, nil, nil, Config{})
	if !errors.Is(err, ErrEmptyStudy) {
		t.Fatalf("unexpected error: got %v, want %v", err, ErrEmptyStudy)
	}
}

func TestAnalyzeMissingPolicy(t *testing.T) {
	g, _, p := fixture(t, chainOntology, tenGeneAnnotations())

	study := []string{"g01", "g02", "unheard-of"}
	_, err := Analyze(p, g, study, nil, Config{Missing: FailOnMissing})
	if !errors.Is(err, ErrMissingGene) {
		t.Fatalf("unexpected error: got %v, want wrapped %v", err, ErrMissingGene)
	}

	dropped, err := Analyze(p, g, study, nil, Config{Missing: DropMissing})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	kept, err := Analyze(p, g, []string{"g01", "g02"}, nil, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dropped) != len(kept) {
		t.Fatalf("drop policy changed the result set: %d != %d", len(dropped), len(kept))
	}
	for i := range kept {
		a, b := dropped[i], kept[i]
		if a.TermID != b.TermID || a.Study != b.Study || a.Pop != b.Pop || a.P != b.P {
			t.Errorf("drop policy changed result %d: %+v != %+v", i, a, b)
		}
	}
}

func TestAnalyzeMinCount(t *testing.T) {
	g, _, p := fixture(t, chainOntology, tenGeneAnnotations())

	results, err := Analyze(p, g, []string{"g01", "g04"}, nil, Config{MinCount: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range results {
		if r.Study < 2 {
			t.Errorf("term %s reported below the minimum count: k=%d", r.TermID, r.Study)
		}
	}
}
