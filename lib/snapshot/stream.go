// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// SerializationError reports a streaming write that failed partway.
// The temporary file named by TempPath is left in place for diagnosis
// and is never renamed over the live snapshot.
type SerializationError struct {
	TempPath string
	Err      error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("streaming snapshot write failed (temp file %s left in place): %v", e.TempPath, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// Write streams the snapshot as a single well-formed JSON document to
// w. The bounded fields (sequence, metadata, bucket refs, the
// retained frame tail) are encoded one-shot; the facet list is
// encoded and written one entry at a time, so peak memory stays
// within a small constant of the largest single facet regardless of
// how many facets the snapshot holds.
//
// Backpressure is the sink's own: each element write blocks until the
// sink accepts it, and the producer holds no more than one encoded
// element at a time. Writing directly to an *os.File therefore pauses
// production whenever the kernel buffer is full.
func Write(snapshot *Snapshot, w io.Writer) error {
	head := struct {
		Sequence     uint64          `json:"sequence"`
		Metadata     map[string]any  `json:"metadata,omitempty"`
		BucketRefs   []BucketRef     `json:"bucketRefs,omitempty"`
		FrameHistory json.RawMessage `json:"frameHistory,omitempty"`
	}{
		Sequence:   snapshot.Sequence,
		Metadata:   snapshot.Metadata,
		BucketRefs: snapshot.BucketRefs,
	}
	if snapshot.FrameHistory != nil {
		encoded, err := json.Marshal(snapshot.FrameHistory)
		if err != nil {
			return fmt.Errorf("encoding frame history: %w", err)
		}
		head.FrameHistory = encoded
	}

	headBytes, err := json.Marshal(head)
	if err != nil {
		return fmt.Errorf("encoding snapshot head: %w", err)
	}
	// Reopen the head object so the facets field can follow.
	headBytes = headBytes[:len(headBytes)-1]
	if _, err := w.Write(headBytes); err != nil {
		return fmt.Errorf("writing snapshot head: %w", err)
	}
	if _, err := io.WriteString(w, `,"facets":[`); err != nil {
		return fmt.Errorf("writing facet list opening: %w", err)
	}

	for i, entry := range snapshot.Facets {
		element, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("encoding facet %q: %w", entry.ID, err)
		}
		if i > 0 {
			element = append([]byte{','}, element...)
		}
		// One element per sink write: the write blocks until the
		// sink has drained enough to accept it, and the element
		// buffer is released before the next one is encoded.
		if _, err := w.Write(element); err != nil {
			return fmt.Errorf("writing facet %q: %w", entry.ID, err)
		}
	}

	if _, err := io.WriteString(w, "]}"); err != nil {
		return fmt.Errorf("writing snapshot close: %w", err)
	}
	return nil
}

// WriteFile streams the snapshot to a temporary file in path's
// directory, fsyncs it, and atomically renames it over path. Never
// writes to path directly: a crash mid-write leaves the previous
// valid snapshot untouched.
//
// On failure the temporary file is deliberately left behind (wrapped
// in a [SerializationError] naming it) so an operator can inspect the
// partial output. Concurrent writers are safe against each other —
// each gets a distinct temporary name and the last successful rename
// wins — but callers wanting strict single-writer semantics must
// serialize invocations externally.
func WriteFile(snapshot *Snapshot, path string) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp snapshot file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if err := Write(snapshot, tmpFile); err != nil {
		tmpFile.Close()
		return &SerializationError{TempPath: tmpPath, Err: err}
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return &SerializationError{TempPath: tmpPath, Err: err}
	}
	if err := tmpFile.Close(); err != nil {
		return &SerializationError{TempPath: tmpPath, Err: err}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return &SerializationError{TempPath: tmpPath, Err: fmt.Errorf("renaming into place: %w", err)}
	}
	return nil
}
