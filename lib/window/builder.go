// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package window

import (
	"log/slog"

	"github.com/hearth-foundation/hearth/lib/journal"
)

// Builder produces bounded context windows from the live frame
// history. The zero MaxFrames means unbounded (no pre-clip).
type Builder struct {
	Filter Filter

	// MaxFrames is the hard upper bound on frames considered per
	// request. The history is clipped to its newest MaxFrames
	// frames before filtering, bounding worst-case cost
	// independent of partition count or total log age.
	MaxFrames int
}

// NewBuilder creates a Builder with the given bounds.
func NewBuilder(maxFrames int, setupFrameLimit uint64, logger *slog.Logger) *Builder {
	return &Builder{
		Filter:    Filter{SetupFrameLimit: setupFrameLimit, Logger: logger},
		MaxFrames: maxFrames,
	}
}

// Pass is the per-build-pass window cache. Multiple activations
// targeting the same partition within one pass reuse one computed
// window instead of recomputing it. A pass owns its cache alone — no
// locking, no cross-pass persistence. Create a fresh Pass per build
// pass and discard it afterwards.
type Pass struct {
	builder *Builder
	windows map[journal.PartitionID][]journal.Frame
	stats   map[journal.PartitionID]Stats
}

// NewPass starts a build pass with an empty cache.
func (builder *Builder) NewPass() *Pass {
	return &Pass{
		builder: builder,
		windows: make(map[journal.PartitionID][]journal.Frame),
		stats:   make(map[journal.PartitionID]Stats),
	}
}

// Window returns the bounded, ordered, partition-filtered window for
// target. The first call per target computes it; subsequent calls in
// the same pass return the cached result. The returned slice is
// shared across callers within the pass and must be treated as
// read-only.
//
// The clip happens before the filter: frames older than the newest
// MaxFrames are never inspected, even when they would match the
// target partition. Filtering never fails — an empty window is a
// valid (if degraded) result.
func (pass *Pass) Window(fullHistory []journal.Frame, target journal.PartitionID) []journal.Frame {
	if cached, ok := pass.windows[target]; ok {
		return cached
	}

	clipped := fullHistory
	if pass.builder.MaxFrames > 0 && len(fullHistory) > pass.builder.MaxFrames {
		clipped = fullHistory[len(fullHistory)-pass.builder.MaxFrames:]
	}

	selected, stats := pass.builder.Filter.Select(clipped, target)
	pass.windows[target] = selected
	pass.stats[target] = stats
	return selected
}

// Stats returns the filter counters recorded for target in this
// pass. The zero value is returned for a partition the pass has not
// built a window for.
func (pass *Pass) Stats(target journal.PartitionID) Stats {
	return pass.stats[target]
}
