// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hearth-foundation/hearth/lib/journal"
)

// meteredSink records the size of the largest single write it
// accepts. The streaming writer hands the sink at most one encoded
// element at a time, so the largest write bounds the producer's peak
// buffer.
type meteredSink struct {
	buffer   bytes.Buffer
	maxWrite int
	writes   int
}

func (sink *meteredSink) Write(p []byte) (int, error) {
	if len(p) > sink.maxWrite {
		sink.maxWrite = len(p)
	}
	sink.writes++
	return sink.buffer.Write(p)
}

func largeSnapshot(facetCount int) *Snapshot {
	entries := make([]FacetEntry, facetCount)
	for i := range entries {
		id := fmt.Sprintf("facet-%06d", i)
		entries[i] = FacetEntry{
			ID: id,
			Facet: &journal.Facet{
				ID:      id,
				Type:    "message",
				Content: map[string]any{"text": strings.Repeat("x", 64)},
			},
		}
	}
	return &Snapshot{
		Sequence: 42,
		Metadata: map[string]any{"host": "test"},
		FrameHistory: []journal.Frame{
			{Sequence: 41},
			{Sequence: 42},
		},
		Facets: entries,
	}
}

func TestWriteStreamsLargeFacetListRoundTrip(t *testing.T) {
	t.Parallel()

	source := largeSnapshot(10_000)
	sink := &meteredSink{}
	if err := Write(source, sink); err != nil {
		t.Fatalf("Write: %v", err)
	}

	// The concatenation of all flushed chunks is one valid JSON
	// document, deep-equal to the input.
	var decoded Snapshot
	if err := json.Unmarshal(sink.buffer.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Sequence != source.Sequence {
		t.Errorf("sequence = %d, want %d", decoded.Sequence, source.Sequence)
	}
	if len(decoded.Facets) != len(source.Facets) {
		t.Fatalf("decoded %d facets, want %d", len(decoded.Facets), len(source.Facets))
	}
	if len(decoded.FrameHistory) != 2 {
		t.Fatalf("decoded %d frames, want 2", len(decoded.FrameHistory))
	}
	for _, i := range []int{0, 1, 4_999, 9_998, 9_999} {
		if decoded.Facets[i].ID != source.Facets[i].ID {
			t.Errorf("facet %d id = %q, want %q", i, decoded.Facets[i].ID, source.Facets[i].ID)
		}
		if decoded.Facets[i].Facet.Content["text"] != source.Facets[i].Facet.Content["text"] {
			t.Errorf("facet %d content mismatch", i)
		}
	}

	// Peak memory bound: no single write may exceed the largest
	// encoded element by more than a small constant, regardless of
	// total structure size.
	largestElement := 0
	for _, entry := range source.Facets {
		encoded, err := json.Marshal(entry)
		if err != nil {
			t.Fatalf("encoding reference element: %v", err)
		}
		if len(encoded) > largestElement {
			largestElement = len(encoded)
		}
	}
	if sink.maxWrite > largestElement+256 {
		t.Errorf("largest single write is %d bytes, want ≤ largest element (%d) + 256: the facet list is not being streamed",
			sink.maxWrite, largestElement)
	}
	if sink.writes < len(source.Facets) {
		t.Errorf("only %d writes for %d facets, want at least one write per element", sink.writes, len(source.Facets))
	}
}

func TestWriteEmptyFacetList(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	if err := Write(&Snapshot{Sequence: 1}, &buffer); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var decoded Snapshot
	if err := json.Unmarshal(buffer.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Facets) != 0 {
		t.Errorf("decoded %d facets, want 0", len(decoded.Facets))
	}
}

func TestWriteFileAtomicReplace(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot-1-100.json")

	if err := WriteFile(&Snapshot{Sequence: 1}, path); err != nil {
		t.Fatalf("first WriteFile: %v", err)
	}
	if err := WriteFile(largeSnapshot(10), path); err != nil {
		t.Fatalf("second WriteFile: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Facets) != 10 {
		t.Errorf("loaded %d facets, want 10 (replacement content)", len(loaded.Facets))
	}

	// No temp files left after successful writes.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), ".tmp-") {
			t.Errorf("temp file %s left after successful write", entry.Name())
		}
	}
}

func TestWriteFileFailureLeavesOriginalAndTemp(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot-1-100.json")

	if err := WriteFile(&Snapshot{Sequence: 1}, path); err != nil {
		t.Fatalf("initial WriteFile: %v", err)
	}
	original, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading original: %v", err)
	}

	// A facet whose content cannot be JSON-encoded fails the write
	// partway through the stream.
	poisoned := &Snapshot{
		Sequence: 2,
		Facets: []FacetEntry{
			{ID: "ok", Facet: &journal.Facet{ID: "ok", Type: "message"}},
			{ID: "bad", Facet: &journal.Facet{
				ID:      "bad",
				Type:    "message",
				Content: map[string]any{"ch": make(chan int)},
			}},
		},
	}
	err = WriteFile(poisoned, path)
	var serialization *SerializationError
	if !errors.As(err, &serialization) {
		t.Fatalf("WriteFile error = %v, want SerializationError", err)
	}

	// The original is untouched: rename never happened.
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("re-reading original: %v", err)
	}
	if !bytes.Equal(original, after) {
		t.Error("original snapshot modified by failed write")
	}

	// The temp file is left in place for diagnosis.
	if _, err := os.Stat(serialization.TempPath); err != nil {
		t.Errorf("temp file %s not left in place: %v", serialization.TempPath, err)
	}
}
