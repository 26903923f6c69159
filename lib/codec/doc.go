// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides Hearth's standard CBOR encoding.
//
// Frame buckets and other content-addressed artifacts are encoded with
// Core Deterministic Encoding so that the same logical data always
// produces identical bytes, making BLAKE3 content hashes stable across
// processes and restarts. Consumers import only this package, never
// fxamacker/cbor directly.
package codec
