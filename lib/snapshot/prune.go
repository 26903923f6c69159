// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Prune removes stale snapshot generations from dir, keeping the
// keep newest by embedded sequence number. Files that do not follow
// the snapshot naming convention (buckets, markers, abandoned temp
// files) are never touched. Returns the removed file names.
func Prune(dir string, keep int) ([]string, error) {
	if keep < 1 {
		return nil, fmt.Errorf("prune must keep at least one generation, got %d", keep)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot directory: %w", err)
	}

	type generation struct {
		name     string
		sequence uint64
	}
	var generations []generation
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		sequence, ok := ParseFileName(entry.Name())
		if !ok {
			continue
		}
		generations = append(generations, generation{name: entry.Name(), sequence: sequence})
	}
	if len(generations) <= keep {
		return nil, nil
	}

	// Newest first; ties resolve to the lexically later name, same
	// as Latest.
	sort.Slice(generations, func(i, j int) bool {
		if generations[i].sequence != generations[j].sequence {
			return generations[i].sequence > generations[j].sequence
		}
		return generations[i].name > generations[j].name
	})

	var removed []string
	for _, stale := range generations[keep:] {
		if err := os.Remove(filepath.Join(dir, stale.name)); err != nil {
			return removed, fmt.Errorf("removing stale generation %s: %w", stale.name, err)
		}
		removed = append(removed, stale.name)
	}
	return removed, nil
}
