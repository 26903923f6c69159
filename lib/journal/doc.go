// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

// Package journal defines Hearth's append-only conversation log model.
//
// The log is a sequence of numbered [Frame] values, each carrying zero
// or more [Delta] operations against a set of durable [Facet] records.
// Frames are immutable once committed; the facet set at any point in
// time is a fold over the ordered delta stream ([FacetSet.ApplyFrame],
// [Replay]). Nothing else is authoritative about facet state.
//
// Facets form an ownership forest through ParentID/Children links. The
// forest is advisory data written by the event pipeline: it may be
// declared from either end of an edge, may be inconsistent, and may
// even contain cycles. Code that walks it must treat a cycle as a
// natural stopping condition, never as an error.
//
// A [PartitionID] names one conversation channel (a direct chat or a
// group). A frame belongs to a partition either explicitly through its
// ActivePartition tag or implicitly because one of its add deltas
// carries a facet scoped to that partition. Partition membership is a
// property of frame content, not only of the frame-level tag; the
// window filter in lib/window depends on this asymmetry.
package journal
