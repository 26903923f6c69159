// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"encoding/json"
	"sort"
)

// PartitionID identifies one conversation channel. The zero value
// means "no partition" — an unscoped frame or an unconstrained filter.
type PartitionID string

// Frame is one immutable unit of the append-only log. Frames are
// created exactly once when the event pipeline commits a step and are
// never mutated afterwards.
type Frame struct {
	// Sequence is the frame's position in the log: strictly
	// increasing, unique across the full history.
	Sequence uint64 `json:"sequence"`

	// Deltas are applied in list order within the frame.
	Deltas []Delta `json:"deltas,omitempty"`

	// ActivePartition is the conversation partition that was active
	// when the frame was produced. Empty for partition-agnostic
	// frames (bootstrap, or frames written by processes that do not
	// set the tag).
	ActivePartition PartitionID `json:"activePartition,omitempty"`

	// Events carries the raw source events behind this frame, kept
	// for diagnostics. The compactor decodes each event only far
	// enough to find a facet identifier; everything else is opaque.
	Events []json.RawMessage `json:"events,omitempty"`
}

// eventFacetRef is the one shape the compactor understands inside a
// raw event: an optional facet identifier.
type eventFacetRef struct {
	FacetID string `json:"facetId"`
}

// EventFacetIDs returns the facet identifiers named by the frame's
// raw events. Events that do not decode, or decode without a facet
// identifier, are skipped.
func (frame *Frame) EventFacetIDs() []string {
	var ids []string
	for _, raw := range frame.Events {
		var ref eventFacetRef
		if err := json.Unmarshal(raw, &ref); err != nil {
			continue
		}
		if ref.FacetID != "" {
			ids = append(ids, ref.FacetID)
		}
	}
	return ids
}

// AddedPartitions returns the distinct partition identifiers carried
// by the frame's add deltas, in first-seen order. A frame whose add
// deltas span more than one partition is ambiguous for implicit
// membership; the window filter counts these for diagnostics.
func (frame *Frame) AddedPartitions() []PartitionID {
	var partitions []PartitionID
	seen := make(map[PartitionID]bool)
	for _, delta := range frame.Deltas {
		if delta.Op != DeltaAdd || delta.Facet == nil {
			continue
		}
		partition := delta.Facet.PartitionID
		if partition == "" || seen[partition] {
			continue
		}
		seen[partition] = true
		partitions = append(partitions, partition)
	}
	return partitions
}

// SortFrames sorts frames by ascending sequence number in place.
func SortFrames(frames []Frame) {
	sort.Slice(frames, func(i, j int) bool {
		return frames[i].Sequence < frames[j].Sequence
	})
}
