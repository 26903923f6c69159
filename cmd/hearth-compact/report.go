// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/hearth-foundation/hearth/lib/compaction"
)

// formatReport renders the compaction outcome as an aligned
// before/after table.
func formatReport(result *compaction.RunResult) string {
	report := result.Report

	var builder strings.Builder
	fmt.Fprintf(&builder, "compacted %s\n", result.Path)

	writer := tabwriter.NewWriter(&builder, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "\tbefore\tafter\n")
	fmt.Fprintf(writer, "frames\t%d\t%d\n", report.FramesBefore, report.FramesAfter)
	fmt.Fprintf(writer, "facets\t%d\t%d\n", report.FacetsBefore, report.FacetsAfter)
	fmt.Fprintf(writer, "facet bytes\t%d\t%d\n", report.BytesBefore, report.BytesAfter)
	writer.Flush()

	fmt.Fprintf(&builder, "dropped %d facets (%d kept via parent closure, %d via always-keep types)\n",
		report.FacetsDropped, report.ClosureAdded, report.AlwaysKeepHits)
	return builder.String()
}
