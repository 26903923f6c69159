// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

// Package snapshot handles Hearth's durable state materialization:
// one JSON snapshot file per generation holding the facet list, the
// retained frame history (inline and/or as references to external
// CBOR frame buckets), and a free-form metadata blob.
//
// Snapshots are rewritten wholesale, never patched in place. Every
// write goes to a temporary name in the destination directory and is
// renamed over the target only after a fully successful write and
// fsync, so a crash mid-write always leaves the previous valid
// generation intact. A failed write leaves its temporary file behind
// for diagnosis; it is never renamed into place.
//
// The facet list is the one field that grows without bound, so
// [WriteFile] streams it element by element instead of materializing
// the whole document in memory. All other fields are bounded by
// construction and use a conventional one-shot encoder.
package snapshot
