// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"

	"github.com/hearth-foundation/hearth/lib/codec"
	"github.com/hearth-foundation/hearth/lib/journal"
)

// BucketRef points at one external frame bucket: a CBOR file in the
// snapshot directory named by the BLAKE3 hash of its contents.
// Content addressing makes bucket writes naturally idempotent — the
// same frames always land in the same file.
type BucketRef struct {
	// Hash is the lowercase hex BLAKE3 hash of the bucket file.
	Hash string `json:"hash"`

	// MinSequence and MaxSequence bound the frame sequences stored
	// in the bucket.
	MinSequence uint64 `json:"minSequence"`
	MaxSequence uint64 `json:"maxSequence"`

	// FrameCount is the number of frames in the bucket.
	FrameCount int `json:"frameCount"`
}

// bucketFileVersion is the current bucket format version.
const bucketFileVersion = 1

// bucketFile is the on-disk CBOR shape of one frame bucket.
type bucketFile struct {
	Version int             `json:"version"`
	Frames  []journal.Frame `json:"frames"`
}

// BucketStore reads and writes frame buckets in a snapshot
// directory.
type BucketStore struct {
	dir    string
	logger *slog.Logger
}

// NewBucketStore creates a store rooted at dir. A nil logger falls
// back to slog.Default().
func NewBucketStore(dir string, logger *slog.Logger) *BucketStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &BucketStore{dir: dir, logger: logger}
}

func (store *BucketStore) bucketPath(hash string) string {
	return filepath.Join(store.dir, "bucket-"+hash+".cbor")
}

// Put writes the frames as one bucket file and returns its reference.
// Frames are stored in ascending sequence order. Writing an already
// present bucket is a no-op (same content, same hash, same file).
func (store *BucketStore) Put(frames []journal.Frame) (BucketRef, error) {
	if len(frames) == 0 {
		return BucketRef{}, fmt.Errorf("refusing to write empty bucket")
	}
	ordered := append([]journal.Frame(nil), frames...)
	journal.SortFrames(ordered)

	data, err := codec.Marshal(bucketFile{Version: bucketFileVersion, Frames: ordered})
	if err != nil {
		return BucketRef{}, fmt.Errorf("encoding bucket: %w", err)
	}

	sum := blake3.Sum256(data)
	ref := BucketRef{
		Hash:        hex.EncodeToString(sum[:]),
		MinSequence: ordered[0].Sequence,
		MaxSequence: ordered[len(ordered)-1].Sequence,
		FrameCount:  len(ordered),
	}

	finalPath := store.bucketPath(ref.Hash)
	if _, err := os.Stat(finalPath); err == nil {
		return ref, nil
	}

	// Atomic write: temp file + rename.
	tmpFile, err := os.CreateTemp(store.dir, "bucket-*.tmp")
	if err != nil {
		return BucketRef{}, fmt.Errorf("creating temp bucket file: %w", err)
	}
	tmpPath := tmpFile.Name()
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return BucketRef{}, fmt.Errorf("writing bucket data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return BucketRef{}, fmt.Errorf("closing temp bucket file: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return BucketRef{}, fmt.Errorf("renaming bucket file: %w", err)
	}

	success = true
	return ref, nil
}

// Load reads the frames behind the given references, in ref order. A
// bucket that is missing, unreadable, hash-mismatched, or malformed
// is logged and skipped — a degraded (smaller) result is always
// preferred over aborting the whole operation.
func (store *BucketStore) Load(refs []BucketRef) []journal.Frame {
	var frames []journal.Frame
	for _, ref := range refs {
		bucketFrames, err := store.loadOne(ref)
		if err != nil {
			store.logger.Warn("skipping unloadable frame bucket",
				"hash", ref.Hash,
				"min_sequence", ref.MinSequence,
				"max_sequence", ref.MaxSequence,
				"error", err,
			)
			continue
		}
		frames = append(frames, bucketFrames...)
	}
	return frames
}

func (store *BucketStore) loadOne(ref BucketRef) ([]journal.Frame, error) {
	data, err := os.ReadFile(store.bucketPath(ref.Hash))
	if err != nil {
		return nil, err
	}

	sum := blake3.Sum256(data)
	if actual := hex.EncodeToString(sum[:]); actual != ref.Hash {
		return nil, fmt.Errorf("content hash %s does not match reference %s", actual, ref.Hash)
	}

	var decoded bucketFile
	if err := codec.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decoding bucket: %w", err)
	}
	if decoded.Version != bucketFileVersion {
		return nil, fmt.Errorf("unsupported bucket version %d", decoded.Version)
	}
	if len(decoded.Frames) != ref.FrameCount {
		return nil, fmt.Errorf("bucket holds %d frames, reference says %d", len(decoded.Frames), ref.FrameCount)
	}
	return decoded.Frames, nil
}
