// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package compaction

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/hearth-foundation/hearth/lib/journal"
	"github.com/hearth-foundation/hearth/lib/snapshot"
)

// Policy configures what compaction keeps.
type Policy struct {
	// RetainFrames is the number of newest frames kept as the
	// retained tail. If the history is shorter, everything is kept.
	RetainFrames int

	// KeepTypes lists facet types retained regardless of
	// reachability.
	KeepTypes []string

	// KeepTypePrefixes lists facet type prefixes retained
	// regardless of reachability (e.g. "config/" keeps
	// "config/prompt" and "config/tools").
	KeepTypePrefixes []string
}

// alwaysKeep reports whether the policy retains facetType
// unconditionally.
func (policy *Policy) alwaysKeep(facetType string) bool {
	for _, keep := range policy.KeepTypes {
		if facetType == keep {
			return true
		}
	}
	for _, prefix := range policy.KeepTypePrefixes {
		if strings.HasPrefix(facetType, prefix) {
			return true
		}
	}
	return false
}

// Report carries the observability counters for one compaction.
type Report struct {
	FramesBefore int `json:"framesBefore"`
	FramesAfter  int `json:"framesAfter"`

	FacetsBefore  int `json:"facetsBefore"`
	FacetsAfter   int `json:"facetsAfter"`
	FacetsDropped int `json:"facetsDropped"`

	// BytesBefore and BytesAfter are serialized-size estimates of
	// the facet list (JSON-encoded entry sizes, not file sizes).
	BytesBefore int `json:"bytesBefore"`
	BytesAfter  int `json:"bytesAfter"`

	// ClosureAdded counts facets retained only because an ancestor
	// walk reached them; AlwaysKeepHits counts facets retained only
	// by the type policy.
	ClosureAdded   int `json:"closureAdded"`
	AlwaysKeepHits int `json:"alwaysKeepHits"`
}

// Result is a compacted snapshot plus its report. The source
// snapshot is never modified.
type Result struct {
	Snapshot *snapshot.Snapshot
	Report   Report
}

// Compact builds a compacted snapshot from source and the full frame
// history (inline tail plus any bucket-loaded frames, in any order).
// It retains the last Policy.RetainFrames frames and every facet
// reachable from them, expanded through the ownership forest, plus
// the policy's always-keep types. Pure over its inputs: no I/O, no
// mutation of source.
func Compact(source *snapshot.Snapshot, history []journal.Frame, policy Policy, logger *slog.Logger) *Result {
	if logger == nil {
		logger = slog.Default()
	}

	ordered := dedupeFrames(history)
	recent := ordered
	if policy.RetainFrames >= 0 && len(ordered) > policy.RetainFrames {
		recent = ordered[len(ordered)-policy.RetainFrames:]
	}

	referenced := referencedIDs(recent)

	facets := make([]*journal.Facet, 0, len(source.Facets))
	for _, entry := range source.Facets {
		if entry.Facet != nil {
			facets = append(facets, entry.Facet)
		}
	}
	closureAdded := buildParentIndex(facets).expand(referenced)

	var report Report
	report.FramesBefore = len(ordered)
	report.FramesAfter = len(recent)
	report.FacetsBefore = len(source.Facets)
	report.ClosureAdded = closureAdded

	kept := make([]snapshot.FacetEntry, 0, len(source.Facets))
	for _, entry := range source.Facets {
		size := entrySize(entry)
		report.BytesBefore += size

		reachable := referenced[entry.ID]
		typeKept := entry.Facet != nil && policy.alwaysKeep(entry.Facet.Type)
		if !reachable && !typeKept {
			report.FacetsDropped++
			continue
		}
		if typeKept && !reachable {
			report.AlwaysKeepHits++
		}
		kept = append(kept, entry)
		report.BytesAfter += size
	}
	report.FacetsAfter = len(kept)

	sequence := source.Sequence
	if len(recent) > 0 && recent[len(recent)-1].Sequence > sequence {
		sequence = recent[len(recent)-1].Sequence
	}

	metadata := make(map[string]any, len(source.Metadata)+1)
	for key, value := range source.Metadata {
		metadata[key] = value
	}
	metadata["compaction"] = map[string]any{
		"compactedAt":   time.Now().UTC().Format(time.RFC3339),
		"retainFrames":  policy.RetainFrames,
		"facetsDropped": report.FacetsDropped,
	}

	logger.Info("compaction computed",
		"frames_before", report.FramesBefore,
		"frames_after", report.FramesAfter,
		"facets_before", report.FacetsBefore,
		"facets_after", report.FacetsAfter,
		"facets_dropped", report.FacetsDropped,
		"closure_added", report.ClosureAdded,
		"always_keep_hits", report.AlwaysKeepHits,
	)

	return &Result{
		Snapshot: &snapshot.Snapshot{
			Sequence: sequence,
			Metadata: metadata,
			// Bucket frames were folded into the inline tail, so
			// the compacted generation carries no bucket refs.
			FrameHistory: append([]journal.Frame(nil), recent...),
			Facets:       kept,
		},
		Report: report,
	}
}

// dedupeFrames returns the frames sorted ascending by sequence with
// duplicates (same sequence, e.g. a frame present both inline and in
// a bucket) collapsed to their first occurrence.
func dedupeFrames(frames []journal.Frame) []journal.Frame {
	seen := make(map[uint64]bool, len(frames))
	deduped := make([]journal.Frame, 0, len(frames))
	for _, frame := range frames {
		if seen[frame.Sequence] {
			continue
		}
		seen[frame.Sequence] = true
		deduped = append(deduped, frame)
	}
	journal.SortFrames(deduped)
	return deduped
}

// entrySize estimates the serialized size of one facet entry. Used
// for the report's byte counters only; an entry that fails to encode
// counts as zero.
func entrySize(entry snapshot.FacetEntry) int {
	encoded, err := json.Marshal(entry)
	if err != nil {
		return 0
	}
	return len(encoded)
}
