// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// payloadCompressionMarker is written next to the snapshot files once
// the one-time payload compression migration has run, making the
// migration idempotent across restarts.
const payloadCompressionMarker = "payload-compression.done"

// compressedKey marks an attachment envelope inside facet content. A
// string value is replaced by a map holding this key, the tag, the
// original size, and the base64 payload.
const compressedKey = "$compressed"

// attachmentEnvelope is the JSON shape a compressed attachment takes
// inside facet content.
type attachmentEnvelope struct {
	Tag  CompressionTag `json:"$compressed"`
	Size int            `json:"size"`
	Data string         `json:"data"`
}

// MigrationResult summarizes one payload compression run.
type MigrationResult struct {
	// AlreadyDone is true when the marker file was present and the
	// migration was skipped.
	AlreadyDone bool

	// Attachments is the number of attachment strings rewritten.
	Attachments int

	// BytesBefore and BytesAfter measure the rewritten attachments
	// only, before base64 overhead.
	BytesBefore int
	BytesAfter  int
}

// CompressPayloads runs the one-time migration that rewrites large
// string attachments in the latest snapshot's facet content as
// zstd-compressed envelopes. Attachments shorter than threshold, and
// attachments that do not shrink, are left as-is.
//
// The rewritten snapshot replaces the original via the streaming
// writer's temp-file + rename protocol, and a marker file makes the
// whole migration a no-op on subsequent runs.
func CompressPayloads(dir string, threshold int, logger *slog.Logger) (MigrationResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	markerPath := filepath.Join(dir, payloadCompressionMarker)
	if _, err := os.Stat(markerPath); err == nil {
		logger.Info("payload compression already done, skipping", "marker", markerPath)
		return MigrationResult{AlreadyDone: true}, nil
	}

	path, _, err := Latest(dir)
	if err != nil {
		return MigrationResult{}, err
	}
	loaded, err := Load(path)
	if err != nil {
		return MigrationResult{}, err
	}

	var result MigrationResult
	for _, entry := range loaded.Facets {
		if entry.Facet == nil {
			continue
		}
		for key, value := range entry.Facet.Content {
			text, isString := value.(string)
			if !isString || len(text) < threshold {
				continue
			}
			envelope, compressedSize, err := compressAttachment(text)
			if err != nil {
				if errors.Is(err, ErrIncompressible) {
					continue
				}
				return MigrationResult{}, fmt.Errorf("compressing attachment %q of facet %q: %w", key, entry.ID, err)
			}
			entry.Facet.Content[key] = envelope
			result.Attachments++
			result.BytesBefore += len(text)
			result.BytesAfter += compressedSize
		}
	}

	if result.Attachments > 0 {
		if err := WriteFile(loaded, path); err != nil {
			return MigrationResult{}, err
		}
	}

	marker := fmt.Sprintf("completed %s\n", time.Now().UTC().Format(time.RFC3339))
	if err := os.WriteFile(markerPath, []byte(marker), 0o644); err != nil {
		return MigrationResult{}, fmt.Errorf("writing migration marker: %w", err)
	}

	logger.Info("payload compression migration complete",
		"attachments", result.Attachments,
		"bytes_before", result.BytesBefore,
		"bytes_after", result.BytesAfter,
	)
	return result, nil
}

// compressAttachment compresses one attachment string with zstd and
// wraps it in an envelope map. The envelope's "size" is the original
// (uncompressed) length, which Decompress needs; the returned
// compressedSize is for reporting only.
func compressAttachment(text string) (envelope map[string]any, compressedSize int, err error) {
	compressed, err := Compress([]byte(text), CompressionZstd)
	if err != nil {
		return nil, 0, err
	}
	return map[string]any{
		compressedKey: string(CompressionZstd),
		"size":        len(text),
		"data":        base64.StdEncoding.EncodeToString(compressed),
	}, len(compressed), nil
}

// DecodeAttachment reverses the envelope encoding produced by the
// payload compression migration. Returns (original, true, nil) for an
// envelope value, and ("", false, nil) for any value that is not an
// envelope.
func DecodeAttachment(value any) (string, bool, error) {
	envelope, isMap := value.(map[string]any)
	if !isMap {
		return "", false, nil
	}
	rawTag, present := envelope[compressedKey]
	if !present {
		return "", false, nil
	}

	// Round-trip through JSON to tolerate both freshly built
	// envelopes (typed fields) and envelopes re-read from disk
	// (any-typed numbers).
	encoded, err := json.Marshal(envelope)
	if err != nil {
		return "", false, fmt.Errorf("re-encoding attachment envelope: %w", err)
	}
	var typed attachmentEnvelope
	if err := json.Unmarshal(encoded, &typed); err != nil {
		return "", false, fmt.Errorf("decoding attachment envelope (tag %v): %w", rawTag, err)
	}

	compressed, err := base64.StdEncoding.DecodeString(typed.Data)
	if err != nil {
		return "", false, fmt.Errorf("decoding attachment payload: %w", err)
	}
	original, err := Decompress(compressed, typed.Tag, typed.Size)
	if err != nil {
		return "", false, err
	}
	return string(original), true, nil
}
