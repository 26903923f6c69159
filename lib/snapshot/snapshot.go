// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/hearth-foundation/hearth/lib/journal"
)

// Snapshot is the durable whole-state materialization of the bot
// host: facets, retained frame history, and metadata, identified by
// the embedded sequence number of its newest frame.
type Snapshot struct {
	// Sequence is the highest frame sequence covered by this
	// generation. It is embedded in the file name.
	Sequence uint64 `json:"sequence"`

	// Metadata is a free-form blob (compaction provenance, host
	// version, timestamps). Nothing in this package interprets it.
	Metadata map[string]any `json:"metadata,omitempty"`

	// BucketRefs point at external CBOR frame buckets when the
	// frame history is stored out of line. May coexist with an
	// inline FrameHistory tail.
	BucketRefs []BucketRef `json:"bucketRefs,omitempty"`

	// FrameHistory is the retained inline frame tail, ascending by
	// sequence.
	FrameHistory []journal.Frame `json:"frameHistory,omitempty"`

	// Facets is the stored facet list as [id, facet] pairs, order
	// preserved. This is the unbounded field: WriteFile streams it.
	Facets []FacetEntry `json:"facets"`
}

// FacetEntry is one stored [id, facet] pair. The pair form (rather
// than a JSON object keyed by id) preserves storage order and matches
// the on-disk format the replay engine consumes.
type FacetEntry struct {
	ID    string
	Facet *journal.Facet
}

// MarshalJSON encodes the entry as a two-element array.
func (entry FacetEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{entry.ID, entry.Facet})
}

// UnmarshalJSON decodes a two-element [id, facet] array.
func (entry *FacetEntry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("facet entry has %d elements, want 2", len(pair))
	}
	if err := json.Unmarshal(pair[0], &entry.ID); err != nil {
		return fmt.Errorf("facet entry id: %w", err)
	}
	if err := json.Unmarshal(pair[1], &entry.Facet); err != nil {
		return fmt.Errorf("facet entry %q: %w", entry.ID, err)
	}
	return nil
}

// FacetSet materializes the stored facet list as a journal.FacetSet,
// preserving storage order.
func (snapshot *Snapshot) FacetSet() *journal.FacetSet {
	set := journal.NewFacetSet()
	for _, entry := range snapshot.Facets {
		if entry.Facet != nil {
			set.Put(entry.Facet)
		}
	}
	return set
}

// Validate checks the snapshot's self-consistency invariants that can
// be verified without the bucket store: the inline frame history must
// be strictly ascending by sequence.
func (snapshot *Snapshot) Validate() error {
	for i := 1; i < len(snapshot.FrameHistory); i++ {
		previous := snapshot.FrameHistory[i-1].Sequence
		current := snapshot.FrameHistory[i].Sequence
		if current <= previous {
			return fmt.Errorf("frame history not strictly ascending: sequence %d follows %d", current, previous)
		}
	}
	return nil
}

// CorruptSnapshotError reports a snapshot file that is unreadable or
// not well-formed. Compaction treats this as fatal for the run: the
// existing durable state is never touched.
type CorruptSnapshotError struct {
	Path string
	Err  error
}

func (e *CorruptSnapshotError) Error() string {
	return fmt.Sprintf("corrupt snapshot %s: %v", e.Path, e.Err)
}

func (e *CorruptSnapshotError) Unwrap() error {
	return e.Err
}

// fileNamePattern matches snapshot-<sequence>-<timestamp>.json.
var fileNamePattern = regexp.MustCompile(`^snapshot-(\d+)-(\d+)\.json$`)

// FileName returns the generation file name for the given sequence
// and wall-clock time.
func FileName(sequence uint64, now time.Time) string {
	return fmt.Sprintf("snapshot-%d-%d.json", sequence, now.UnixMilli())
}

// ParseFileName extracts the embedded sequence number from a snapshot
// file name. Returns false if the name does not follow the
// convention.
func ParseFileName(name string) (sequence uint64, ok bool) {
	match := fileNamePattern.FindStringSubmatch(name)
	if match == nil {
		return 0, false
	}
	sequence, err := strconv.ParseUint(match[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return sequence, true
}

// ErrNoSnapshot is returned by Latest when the directory contains no
// file following the snapshot naming convention.
var ErrNoSnapshot = fmt.Errorf("no snapshot file found")

// Latest returns the path of the most recent snapshot generation in
// dir: the file with the highest embedded sequence number. Ties on
// sequence (which should not happen) resolve to the lexically later
// name.
func Latest(dir string) (path string, sequence uint64, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", 0, fmt.Errorf("reading snapshot directory: %w", err)
	}

	var bestName string
	var bestSequence uint64
	found := false
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		entrySequence, ok := ParseFileName(entry.Name())
		if !ok {
			continue
		}
		if !found || entrySequence > bestSequence ||
			(entrySequence == bestSequence && entry.Name() > bestName) {
			bestName = entry.Name()
			bestSequence = entrySequence
			found = true
		}
	}
	if !found {
		return "", 0, fmt.Errorf("%w in %s", ErrNoSnapshot, dir)
	}
	return filepath.Join(dir, bestName), bestSequence, nil
}

// Load reads and parses a snapshot file. Any read, parse, or
// validation failure is reported as a [CorruptSnapshotError] —
// fail-closed, nothing on disk is modified.
func Load(path string) (*Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &CorruptSnapshotError{Path: path, Err: err}
	}
	defer file.Close()

	var loaded Snapshot
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&loaded); err != nil {
		return nil, &CorruptSnapshotError{Path: path, Err: err}
	}
	if err := loaded.Validate(); err != nil {
		return nil, &CorruptSnapshotError{Path: path, Err: err}
	}
	return &loaded, nil
}
