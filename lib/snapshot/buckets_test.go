// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hearth-foundation/hearth/lib/journal"
)

func bucketTestFrames() []journal.Frame {
	return []journal.Frame{
		{Sequence: 2, ActivePartition: "p1", Deltas: []journal.Delta{
			journal.AddDelta(&journal.Facet{
				ID:          "m2",
				Type:        "message",
				Content:     map[string]any{"text": "hello"},
				PartitionID: "p1",
			}),
		}},
		{Sequence: 1},
		{Sequence: 3, Deltas: []journal.Delta{journal.RemoveDelta("m2")}},
	}
}

func TestBucketPutLoadRoundTrip(t *testing.T) {
	t.Parallel()
	store := NewBucketStore(t.TempDir(), nil)

	ref, err := store.Put(bucketTestFrames())
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if ref.FrameCount != 3 || ref.MinSequence != 1 || ref.MaxSequence != 3 {
		t.Fatalf("ref = %+v, want 3 frames spanning 1..3", ref)
	}

	frames := store.Load([]BucketRef{ref})
	if len(frames) != 3 {
		t.Fatalf("Load returned %d frames, want 3", len(frames))
	}
	// Stored in ascending sequence order regardless of Put order.
	if frames[0].Sequence != 1 || frames[2].Sequence != 3 {
		t.Fatalf("frames out of order: %d..%d", frames[0].Sequence, frames[2].Sequence)
	}
	if frames[1].ActivePartition != "p1" {
		t.Errorf("frame 2 partition = %q, want p1", frames[1].ActivePartition)
	}
	if len(frames[1].Deltas) != 1 || frames[1].Deltas[0].Facet.Content["text"] != "hello" {
		t.Error("frame 2 delta payload did not survive the roundtrip")
	}
}

func TestBucketPutIsIdempotent(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	store := NewBucketStore(dir, nil)

	first, err := store.Put(bucketTestFrames())
	if err != nil {
		t.Fatalf("first Put: %v", err)
	}
	second, err := store.Put(bucketTestFrames())
	if err != nil {
		t.Fatalf("second Put: %v", err)
	}
	if first.Hash != second.Hash {
		t.Fatalf("same frames produced different hashes: %s != %s", first.Hash, second.Hash)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	buckets := 0
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".cbor" {
			buckets++
		}
	}
	if buckets != 1 {
		t.Errorf("%d bucket files on disk, want 1", buckets)
	}
}

func TestBucketLoadSkipsCorruptAndMissing(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	store := NewBucketStore(dir, nil)

	good, err := store.Put(bucketTestFrames())
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Corrupt a second bucket on disk after writing it.
	corrupt, err := store.Put([]journal.Frame{{Sequence: 9}})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	corruptPath := filepath.Join(dir, "bucket-"+corrupt.Hash+".cbor")
	if err := os.WriteFile(corruptPath, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("corrupting bucket: %v", err)
	}

	missing := BucketRef{Hash: "feedface", FrameCount: 1}

	frames := store.Load([]BucketRef{corrupt, missing, good})
	if len(frames) != 3 {
		t.Fatalf("Load returned %d frames, want 3 (good bucket only)", len(frames))
	}
}

func TestBucketPutRejectsEmpty(t *testing.T) {
	t.Parallel()
	store := NewBucketStore(t.TempDir(), nil)
	if _, err := store.Put(nil); err == nil {
		t.Fatal("Put(nil) succeeded, want error")
	}
}
