// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

// Package window selects the bounded, ordered, partition-filtered
// frame subsequence used to build one request's model context.
//
// Partition isolation is strict: a direct conversation must never see
// another conversation's frames. The filter still admits shared
// bootstrap context (early untagged frames up to the setup limit) and
// tolerates frames whose partition tag was not set at construction
// time, by falling back to the partitions carried in their add deltas.
// The inclusion rules are an explicit ordered rule list ([Filter]),
// so the priority — explicit tag beats setup-frame beats implicit
// membership — is visible and testable in isolation.
//
// [Builder] bounds the work per request: the history is clipped to
// the newest MaxFrames frames before filtering. Clipping first can
// drop same-partition frames older than the clip even when the
// partition itself has few frames; that is a deliberate
// latency-over-precision tradeoff, documented by a test in
// builder_test.go rather than changed here.
//
// Both the filter and the builder are read-only over the live frame
// history and return results in strictly ascending sequence order
// with no duplicates.
package window
