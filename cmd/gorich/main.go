// Copyright ©2025 The gorich Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// gorich performs Gene Ontology enrichment analysis. Given an OBO-format
// ontology, a gene-association (GAF) annotation table and a study gene
// list or a scored gene ranking, it reports the GO terms whose annotated
// genes are statistically over- or under-represented, corrected for
// multiple testing, as a deterministic tsv table.
//
// Input files may be gzip compressed; compression is detected from the
// file content.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	ontologyPath string
	annotPath    string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "gorich",
	Short: "Gene Ontology enrichment analysis",
	Long: `gorich tests a study gene set or a scored gene ranking for Gene
Ontology terms whose annotated genes are statistically over- or
under-represented relative to a background population. Annotations are
propagated over the is_a/part_of DAG before testing, and p-values are
corrected for multiple comparisons.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&ontologyPath, "ontology", "", "OBO ontology file (required)")
	rootCmd.PersistentFlags().StringVar(&annotPath, "annotations", "", "GAF annotation file (required)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	for _, flag := range []string{"ontology", "annotations"} {
		err := rootCmd.MarkPersistentFlagRequired(flag)
		if err != nil {
			panic(err)
		}
	}
	rootCmd.AddCommand(enrichCmd, rankCmd)
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
