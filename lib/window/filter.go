// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package window

import (
	"log/slog"

	"github.com/hearth-foundation/hearth/lib/journal"
)

// Verdict is one rule's decision about a frame.
type Verdict int

const (
	// VerdictNext defers to the following rule.
	VerdictNext Verdict = iota

	// VerdictInclude includes the frame and stops evaluation.
	VerdictInclude

	// VerdictExclude excludes the frame and stops evaluation.
	VerdictExclude
)

// rule is one step of the inclusion decision table.
type rule struct {
	name     string
	evaluate func(frame *journal.Frame, target journal.PartitionID, setupLimit uint64) Verdict
}

// filterRules is the ordered decision table for frame inclusion.
// Order is load-bearing: an explicit partition tag is authoritative
// and must be evaluated before the setup-frame rule, so that an early
// frame explicitly tagged with a different partition is excluded even
// though its sequence is within the setup limit.
var filterRules = []rule{
	{
		name: "no-target",
		evaluate: func(_ *journal.Frame, target journal.PartitionID, _ uint64) Verdict {
			if target == "" {
				return VerdictInclude
			}
			return VerdictNext
		},
	},
	{
		name: "explicit-partition",
		evaluate: func(frame *journal.Frame, target journal.PartitionID, _ uint64) Verdict {
			if frame.ActivePartition == "" {
				return VerdictNext
			}
			if frame.ActivePartition == target {
				return VerdictInclude
			}
			return VerdictExclude
		},
	},
	{
		name: "setup-frame",
		evaluate: func(frame *journal.Frame, _ journal.PartitionID, setupLimit uint64) Verdict {
			if frame.Sequence <= setupLimit {
				return VerdictInclude
			}
			return VerdictNext
		},
	},
	{
		name: "implicit-membership",
		evaluate: func(frame *journal.Frame, target journal.PartitionID, _ uint64) Verdict {
			for _, partition := range frame.AddedPartitions() {
				if partition == target {
					return VerdictInclude
				}
			}
			return VerdictNext
		},
	},
}

// Stats carries the diagnostic counters of one Select call.
type Stats struct {
	Included int
	Excluded int

	// Ambiguous counts included frames whose add deltas span more
	// than one partition. Ambiguity is not an error — the frame is
	// included per the implicit-membership rule — but it is worth
	// surfacing as a metric.
	Ambiguous int
}

// Filter selects the frames relevant to one partition.
type Filter struct {
	// SetupFrameLimit is the highest sequence number treated as
	// partition-agnostic bootstrap when the frame carries no
	// explicit partition tag.
	SetupFrameLimit uint64

	// Logger receives ambiguity diagnostics. Nil falls back to
	// slog.Default().
	Logger *slog.Logger
}

// Select returns the subsequence of frames relevant to target, in
// strictly ascending sequence order with duplicates (by sequence)
// collapsed to their first occurrence. An empty target means no
// filtering. The input slice is never mutated.
func (filter *Filter) Select(frames []journal.Frame, target journal.PartitionID) ([]journal.Frame, Stats) {
	logger := filter.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ordered := make([]journal.Frame, 0, len(frames))
	seen := make(map[uint64]bool, len(frames))
	for _, frame := range frames {
		if seen[frame.Sequence] {
			continue
		}
		seen[frame.Sequence] = true
		ordered = append(ordered, frame)
	}
	journal.SortFrames(ordered)

	var stats Stats
	selected := make([]journal.Frame, 0, len(ordered))
	for i := range ordered {
		frame := &ordered[i]
		if !filter.include(frame, target) {
			stats.Excluded++
			continue
		}
		stats.Included++
		if target != "" && len(frame.AddedPartitions()) > 1 {
			stats.Ambiguous++
			logger.Debug("frame has add deltas for multiple partitions",
				"sequence", frame.Sequence,
				"target", string(target),
				"partitions", len(frame.AddedPartitions()),
			)
		}
		selected = append(selected, *frame)
	}
	return selected, stats
}

// include runs the rule table for one frame. No rule matching means
// exclude.
func (filter *Filter) include(frame *journal.Frame, target journal.PartitionID) bool {
	for _, step := range filterRules {
		switch step.evaluate(frame, target, filter.SetupFrameLimit) {
		case VerdictInclude:
			return true
		case VerdictExclude:
			return false
		}
	}
	return false
}

// AppendInProgress appends the current in-progress frame to an
// already-selected window unless it is already present (compared by
// sequence) or its explicit partition conflicts with target. The
// setup-frame and implicit-membership rules do not apply here: an
// in-progress frame has not committed its deltas yet, so only the
// explicit tag can speak for it.
func (filter *Filter) AppendInProgress(selected []journal.Frame, current *journal.Frame, target journal.PartitionID) []journal.Frame {
	if current == nil {
		return selected
	}
	for i := range selected {
		if selected[i].Sequence == current.Sequence {
			return selected
		}
	}
	if target != "" && current.ActivePartition != "" && current.ActivePartition != target {
		return selected
	}
	return append(selected, *current)
}
