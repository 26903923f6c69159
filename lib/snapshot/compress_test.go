// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"bytes"
	"crypto/rand"
	"errors"
	"strings"
	"testing"
)

func TestCompressRoundTrip(t *testing.T) {
	t.Parallel()

	// Repetitive text compresses under both algorithms.
	original := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog\n", 200))

	for _, tag := range []CompressionTag{CompressionLZ4, CompressionZstd} {
		compressed, err := Compress(original, tag)
		if err != nil {
			t.Fatalf("Compress(%s): %v", tag, err)
		}
		if len(compressed) >= len(original) {
			t.Fatalf("Compress(%s) did not shrink: %d >= %d", tag, len(compressed), len(original))
		}

		decompressed, err := Decompress(compressed, tag, len(original))
		if err != nil {
			t.Fatalf("Decompress(%s): %v", tag, err)
		}
		if !bytes.Equal(decompressed, original) {
			t.Fatalf("roundtrip mismatch for %s", tag)
		}
	}
}

func TestCompressNonePassesThrough(t *testing.T) {
	t.Parallel()

	data := []byte("as-is")
	out, err := Compress(data, CompressionNone)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if &out[0] != &data[0] {
		t.Error("CompressionNone copied the input")
	}

	if _, err := Decompress(data, CompressionNone, 3); err == nil {
		t.Error("size mismatch accepted for CompressionNone")
	}
}

func TestCompressIncompressibleData(t *testing.T) {
	t.Parallel()

	random := make([]byte, 4096)
	if _, err := rand.Read(random); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}

	_, err := Compress(random, CompressionLZ4)
	if !errors.Is(err, ErrIncompressible) {
		t.Fatalf("Compress(lz4) on random data: err = %v, want ErrIncompressible", err)
	}
}

func TestDecompressSizeMismatch(t *testing.T) {
	t.Parallel()

	original := []byte(strings.Repeat("abcd", 512))
	compressed, err := Compress(original, CompressionZstd)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if _, err := Decompress(compressed, CompressionZstd, len(original)-1); err == nil {
		t.Fatal("size mismatch accepted")
	}
}

func TestParseCompressionTag(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"none", "lz4", "zstd"} {
		tag, err := ParseCompressionTag(name)
		if err != nil {
			t.Errorf("ParseCompressionTag(%q): %v", name, err)
		}
		if string(tag) != name {
			t.Errorf("ParseCompressionTag(%q) = %q", name, tag)
		}
	}
	if _, err := ParseCompressionTag("brotli"); err == nil {
		t.Error("unknown tag accepted")
	}
}
