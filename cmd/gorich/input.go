// Copyright ©2025 The gorich Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/calycina/gorich/internal/annot"
	"github.com/calycina/gorich/internal/enrich"
	"github.com/calycina/gorich/internal/obo"
)

// openInput opens path for reading, transparently decompressing gzip
// content detected by its magic number.
func openInput(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(f)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, err
		}
		return struct {
			io.Reader
			io.Closer
		}{zr, f}, nil
	}
	return struct {
		io.Reader
		io.Closer
	}{br, f}, nil
}

// loadOntology loads and validates the term DAG.
func loadOntology(path string) (*obo.Graph, error) {
	log.Info("loading ontology")
	r, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	g, err := obo.Load(r)
	if err != nil {
		return nil, fmt.Errorf("failed to load ontology: %w", err)
	}
	log.Infof("loaded %d terms, %d roots", g.Len(), len(g.Roots()))
	return g, nil
}

// loadAnnotations loads the GAF annotation corpus against g and logs the
// aggregated data-quality warnings.
func loadAnnotations(path string, g *obo.Graph, opts annot.Options) (*annot.Store, error) {
	log.Info("loading annotations")
	r, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	s, err := annot.Load(r, g, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load annotations: %w", err)
	}
	s.Warnings().Log()
	log.Infof("loaded annotations for %d genes", len(s.Genes()))
	return s, nil
}

// readList reads a flat gene list, one identifier per line, tolerating
// blank lines and '#' comments.
func readList(path string) ([]string, error) {
	r, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var genes []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		genes = append(genes, line)
	}
	return genes, sc.Err()
}

// readRanking reads a two-column (identifier, score) gene ranking, one
// entry per line, most-significant-first.
func readRanking(path string) ([]enrich.RankedGene, error) {
	r, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var ranking []enrich.RankedGene
	sc := bufio.NewScanner(r)
	var line int
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s: line %d: got %d columns, want 2", path, line, len(fields))
		}
		score, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: bad score for %q: %v", path, line, fields[0], err)
		}
		ranking = append(ranking, enrich.RankedGene{ID: fields[0], Score: score})
	}
	return ranking, sc.Err()
}

// writeReport corrects, orders and writes the report. The report is
// assembled in memory first so a failing run never leaves partial
// output.
func writeReport(path string, results []enrich.Result, method enrich.Method) error {
	enrich.Correct(results, method)

	var buf bytes.Buffer
	err := enrich.WriteReport(&buf, results)
	if err != nil {
		return err
	}
	if path == "" || path == "-" {
		_, err = os.Stdout.Write(buf.Bytes())
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// evidenceSet parses a comma-separated evidence code list into a set.
func evidenceSet(codes string) map[string]bool {
	if codes == "" {
		return nil
	}
	set := make(map[string]bool)
	for _, c := range strings.Split(codes, ",") {
		c = strings.TrimSpace(c)
		if c != "" {
			set[c] = true
		}
	}
	return set
}
