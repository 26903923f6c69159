// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

// Package compaction rewrites a snapshot to a bounded size without
// losing anything still reachable from the retained frame tail.
//
// Reachability starts from the facet identifiers mentioned by the
// deltas and diagnostic events of the last N frames, then expands
// upward through the ownership forest: every ancestor of a referenced
// facet is retained too, because a child is meaningless without the
// chain that owns it. The forest is walked over an adjacency index
// built once per pass, with a per-walk visited set, so inconsistent
// or cyclic parent data terminates naturally instead of recursing
// forever.
//
// Facets whose type is in the policy's always-keep set (or matches an
// always-keep prefix) survive regardless of reachability. These are
// structural records — tree topology, configuration — that stay
// meaningful even when no recent frame names them.
//
// Compaction is a single-threaded batch operation, deterministic over
// its inputs, and idempotent: compacting an already-compacted
// snapshot with the same policy changes nothing but metadata.
package compaction
