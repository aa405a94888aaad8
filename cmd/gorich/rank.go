// Copyright ©2025 The gorich Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/calycina/gorich/internal/annot"
	"github.com/calycina/gorich/internal/enrich"
)

var (
	rankingPath  string
	permutations int
	seed         uint64
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "test a scored gene ranking for term enrichment",
	Long: `rank tests a full gene ranking, most-significant-first, comparing
the rank distribution of each term's annotated genes against the
unannotated remainder with a tie-corrected rank-sum statistic.
P-values come from the normal approximation, or from seeded label
permutations when --permutations is positive.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		method, err := enrich.ParseMethod(methodName)
		if err != nil {
			return err
		}

		g, err := loadOntology(ontologyPath)
		if err != nil {
			return err
		}
		store, err := loadAnnotations(annotPath, g, annot.Options{ExcludeEvidence: evidenceSet(excludeCodes)})
		if err != nil {
			return err
		}
		ranking, err := readRanking(rankingPath)
		if err != nil {
			return err
		}

		log.Info("propagating annotations")
		prop := enrich.Propagate(store, g)

		log.Info("testing terms")
		results, err := enrich.AnalyzeRanked(prop, g, ranking, enrich.RankedConfig{
			MinCount:     minCount,
			Permutations: permutations,
			Seed:         seed,
			Workers:      workers,
		})
		if err != nil {
			return err
		}
		log.Infof("tested %d terms", len(results))

		return writeReport(outPath, results, method)
	},
}

func init() {
	rankCmd.Flags().StringVar(&rankingPath, "ranking", "", "gene ranking, identifier and score per line (required)")
	rankCmd.Flags().StringVar(&methodName, "method", "benjamini-hochberg", "correction method (none|bonferroni|holm|benjamini-hochberg)")
	rankCmd.Flags().IntVar(&minCount, "min-count", 1, "minimum annotated count for a term to be tested")
	rankCmd.Flags().IntVar(&permutations, "permutations", 0, "label permutations per term (0: normal approximation)")
	rankCmd.Flags().Uint64Var(&seed, "seed", 1, "permutation seed")
	rankCmd.Flags().StringVar(&excludeCodes, "exclude-evidence", "", "comma-separated evidence codes to drop (e.g. IEA,ND)")
	rankCmd.Flags().StringVarP(&outPath, "out", "o", "", "report output file (default: stdout)")
	rankCmd.Flags().IntVar(&workers, "workers", 0, "concurrent per-term tests (default: GOMAXPROCS)")
	err := rankCmd.MarkFlagRequired("ranking")
	if err != nil {
		panic(err)
	}
}
