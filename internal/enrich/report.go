// Copyright ©2025 The gorich Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enrich

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
)

// SortResults orders results by corrected p-value ascending, ties broken
// by term identifier ascending, giving the report a fully deterministic
// order.
func SortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		a, b := &results[i], &results[j]
		if a.PAdj != b.PAdj {
			return a.PAdj < b.PAdj
		}
		return a.TermID < b.TermID
	})
}

// WriteReport writes the tab-delimited enrichment report for results to
// w in the deterministic SortResults order. The study column holds the
// study count in set mode and the rank-sum statistic in ranked mode.
func WriteReport(w io.Writer, results []Result) error {
	SortResults(results)

	bw := bufio.NewWriter(w)
	_, err := fmt.Fprintln(bw, "term_id\tname\tnamespace\tstudy\tpopulation\tp_raw\tp_adj")
	if err != nil {
		return err
	}
	for _, r := range results {
		study := strconv.Itoa(r.Study)
		if !math.IsNaN(r.Stat) {
			study = formatFloat(r.Stat)
		}
		_, err = fmt.Fprintf(bw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.TermID, r.Name, r.Namespace, study, r.Pop,
			formatFloat(r.P), formatFloat(r.PAdj))
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
