// Copyright ©2025 The gorich Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/calycina/gorich/internal/annot"
	"github.com/calycina/gorich/internal/enrich"
)

var (
	studyPath    string
	popPath      string
	methodName   string
	minCount     int
	onMissing    string
	excludeCodes string
	outPath      string
	workers      int
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "test a study gene set for term over-representation",
	Long: `enrich tests an unordered study gene set against a background
population (by default the whole annotation universe) using the
one-sided hypergeometric test per term.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		method, err := enrich.ParseMethod(methodName)
		if err != nil {
			return err
		}
		cfg := enrich.Config{MinCount: minCount, Workers: workers}
		switch onMissing {
		case "fail":
			cfg.Missing = enrich.FailOnMissing
		case "drop":
			cfg.Missing = enrich.DropMissing
		default:
			return fmt.Errorf("unknown --on-missing policy %q", onMissing)
		}

		g, err := loadOntology(ontologyPath)
		if err != nil {
			return err
		}
		store, err := loadAnnotations(annotPath, g, annot.Options{ExcludeEvidence: evidenceSet(excludeCodes)})
		if err != nil {
			return err
		}

		study, err := readList(studyPath)
		if err != nil {
			return err
		}
		var population []string
		if popPath != "" {
			population, err = readList(popPath)
			if err != nil {
				return err
			}
		}

		log.Info("propagating annotations")
		prop := enrich.Propagate(store, g)

		log.Info("testing terms")
		results, err := enrich.Analyze(prop, g, study, population, cfg)
		if err != nil {
			return err
		}
		log.Infof("tested %d terms", len(results))

		return writeReport(outPath, results, method)
	},
}

func init() {
	enrichCmd.Flags().StringVar(&studyPath, "study", "", "study gene list, one identifier per line (required)")
	enrichCmd.Flags().StringVar(&popPath, "population", "", "background gene list (default: all annotated genes)")
	enrichCmd.Flags().StringVar(&methodName, "method", "benjamini-hochberg", "correction method (none|bonferroni|holm|benjamini-hochberg)")
	enrichCmd.Flags().IntVar(&minCount, "min-count", 1, "minimum study count for a term to be reported")
	enrichCmd.Flags().StringVar(&onMissing, "on-missing", "fail", "policy for study genes absent from the population (fail|drop)")
	enrichCmd.Flags().StringVar(&excludeCodes, "exclude-evidence", "", "comma-separated evidence codes to drop (e.g. IEA,ND)")
	enrichCmd.Flags().StringVarP(&outPath, "out", "o", "", "report output file (default: stdout)")
	enrichCmd.Flags().IntVar(&workers, "workers", 0, "concurrent per-term tests (default: GOMAXPROCS)")
	err := enrichCmd.MarkFlagRequired("study")
	if err != nil {
		panic(err)
	}
}
