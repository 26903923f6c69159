// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionTag identifies the compression algorithm used for a
// facet attachment. Tags are stored in the attachment envelope —
// changing a value breaks snapshot compatibility.
type CompressionTag string

const (
	// CompressionNone indicates uncompressed data. Used for
	// attachments that are already compressed (images, archives)
	// where recompression adds CPU cost without reducing size.
	CompressionNone CompressionTag = "none"

	// CompressionLZ4 indicates LZ4 block compression. Fast default
	// for binary attachments when content type is unknown or mixed.
	CompressionLZ4 CompressionTag = "lz4"

	// CompressionZstd indicates zstd compression at the default
	// level. Better ratios for text-like payloads (transcripts,
	// JSON, logs), which is what most facet attachments are.
	CompressionZstd CompressionTag = "zstd"
)

// ParseCompressionTag parses a compression tag from its string form.
func ParseCompressionTag(name string) (CompressionTag, error) {
	switch CompressionTag(name) {
	case CompressionNone, CompressionLZ4, CompressionZstd:
		return CompressionTag(name), nil
	default:
		return "", fmt.Errorf("unknown compression tag: %q", name)
	}
}

// ErrIncompressible is returned by Compress when the data does not
// shrink under the requested algorithm. Callers store the original
// bytes with CompressionNone instead.
var ErrIncompressible = errors.New("data is incompressible")

// Compress compresses data with the given algorithm. For
// CompressionNone the input is returned unchanged (no copy).
func Compress(data []byte, tag CompressionTag) ([]byte, error) {
	switch tag {
	case CompressionNone:
		return data, nil
	case CompressionLZ4:
		return compressLZ4(data)
	case CompressionZstd:
		return compressZstd(data)
	default:
		return nil, fmt.Errorf("unsupported compression tag: %q", tag)
	}
}

// Decompress reverses Compress. The uncompressedSize must match the
// original data length exactly — a mismatch returns an error.
func Decompress(compressed []byte, tag CompressionTag, uncompressedSize int) ([]byte, error) {
	switch tag {
	case CompressionNone:
		if len(compressed) != uncompressedSize {
			return nil, fmt.Errorf("uncompressed attachment: size %d does not match expected %d",
				len(compressed), uncompressedSize)
		}
		return compressed, nil
	case CompressionLZ4:
		return decompressLZ4(compressed, uncompressedSize)
	case CompressionZstd:
		return decompressZstd(compressed, uncompressedSize)
	default:
		return nil, fmt.Errorf("unsupported compression tag: %q", tag)
	}
}

func compressLZ4(data []byte) ([]byte, error) {
	bound := lz4.CompressBlockBound(len(data))
	compressed := make([]byte, bound)
	var compressor lz4.Compressor
	n, err := compressor.CompressBlock(data, compressed)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression: %w", err)
	}
	if n == 0 || n >= len(data) {
		return nil, ErrIncompressible
	}
	return compressed[:n], nil
}

func decompressLZ4(compressed []byte, uncompressedSize int) ([]byte, error) {
	decompressed := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(compressed, decompressed)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression: %w", err)
	}
	if n != uncompressedSize {
		return nil, fmt.Errorf("lz4 decompression: got %d bytes, want %d", n, uncompressedSize)
	}
	return decompressed, nil
}

func compressZstd(data []byte) ([]byte, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	defer encoder.Close()
	compressed := encoder.EncodeAll(data, nil)
	if len(compressed) >= len(data) && len(data) > 0 {
		return nil, ErrIncompressible
	}
	return compressed, nil
}

func decompressZstd(compressed []byte, uncompressedSize int) ([]byte, error) {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	defer decoder.Close()
	decompressed, err := decoder.DecodeAll(compressed, make([]byte, 0, uncompressedSize))
	if err != nil {
		return nil, fmt.Errorf("zstd decompression: %w", err)
	}
	if len(decompressed) != uncompressedSize {
		return nil, fmt.Errorf("zstd decompression: got %d bytes, want %d", len(decompressed), uncompressedSize)
	}
	return decompressed, nil
}
