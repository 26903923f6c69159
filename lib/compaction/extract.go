// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package compaction

import (
	"github.com/hearth-foundation/hearth/lib/journal"
)

// referencedIDs returns the set of facet identifiers mentioned by the
// given frames: every delta's target plus any facet identifier named
// by a frame's embedded diagnostic events.
func referencedIDs(frames []journal.Frame) map[string]bool {
	referenced := make(map[string]bool)
	for i := range frames {
		for _, delta := range frames[i].Deltas {
			if delta.FacetID != "" {
				referenced[delta.FacetID] = true
			}
		}
		for _, id := range frames[i].EventFacetIDs() {
			referenced[id] = true
		}
	}
	return referenced
}

// parentIndex maps a facet identifier to its parents. Ownership can
// be declared from either end of an edge (a child's ParentID or a
// parent's Children list); both directions feed the same index, and a
// facet may end up with several recorded parents when the data is
// inconsistent.
type parentIndex map[string][]string

// buildParentIndex builds the adjacency index for one compaction
// pass. The index holds identifiers only, never facet pointers, so a
// cyclic forest is walked with a visited set instead of risking
// unbounded recursion through object graphs.
func buildParentIndex(facets []*journal.Facet) parentIndex {
	index := make(parentIndex)
	add := func(child, parent string) {
		for _, existing := range index[child] {
			if existing == parent {
				return
			}
		}
		index[child] = append(index[child], parent)
	}
	for _, facet := range facets {
		if facet.ParentID != "" {
			add(facet.ID, facet.ParentID)
		}
		for _, child := range facet.Children {
			add(child, facet.ID)
		}
	}
	return index
}

// expand grows referenced in place with every ancestor of every
// already-referenced facet. Each starting point gets its own visited
// set; a cycle simply stops the walk. Returns the number of
// identifiers added.
func (index parentIndex) expand(referenced map[string]bool) int {
	roots := make([]string, 0, len(referenced))
	for id := range referenced {
		roots = append(roots, id)
	}

	added := 0
	for _, root := range roots {
		visited := map[string]bool{root: true}
		pending := append([]string(nil), index[root]...)
		for len(pending) > 0 {
			id := pending[len(pending)-1]
			pending = pending[:len(pending)-1]
			if visited[id] {
				continue
			}
			visited[id] = true
			if !referenced[id] {
				referenced[id] = true
				added++
			}
			pending = append(pending, index[id]...)
		}
	}
	return added
}
