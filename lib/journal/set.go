// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package journal

// FacetSet is the materialized facet state at some point in the log:
// a fold over the ordered delta stream. Insertion order is preserved
// so that snapshots serialize facets in a stable order.
//
// FacetSet is not safe for concurrent mutation. The request path
// treats a set as read-only once built.
type FacetSet struct {
	order []string
	byID  map[string]*Facet
}

// NewFacetSet returns an empty facet set.
func NewFacetSet() *FacetSet {
	return &FacetSet{byID: make(map[string]*Facet)}
}

// Get returns the facet with the given identifier, or nil if it is
// not visible.
func (set *FacetSet) Get(id string) *Facet {
	return set.byID[id]
}

// Len returns the number of visible facets.
func (set *FacetSet) Len() int {
	return len(set.byID)
}

// IDs returns the visible facet identifiers in insertion order.
func (set *FacetSet) IDs() []string {
	ids := make([]string, 0, len(set.byID))
	for _, id := range set.order {
		if _, visible := set.byID[id]; visible {
			ids = append(ids, id)
		}
	}
	return ids
}

// Facets returns the visible facets in insertion order.
func (set *FacetSet) Facets() []*Facet {
	facets := make([]*Facet, 0, len(set.byID))
	for _, id := range set.order {
		if facet, visible := set.byID[id]; visible {
			facets = append(facets, facet)
		}
	}
	return facets
}

// Put inserts or replaces a facet directly, bypassing delta
// application. Used when loading a snapshot's stored facet list.
func (set *FacetSet) Put(facet *Facet) {
	if _, existed := set.byID[facet.ID]; !existed {
		set.order = append(set.order, facet.ID)
	}
	set.byID[facet.ID] = facet
}

// Apply folds one delta into the set. Updates and removes targeting
// an unknown facet are ignored: the log may legitimately reference
// facets that an earlier compaction dropped, and degrading to a no-op
// is the graceful behavior.
func (set *FacetSet) Apply(delta Delta) {
	switch delta.Op {
	case DeltaAdd:
		if delta.Facet == nil {
			return
		}
		set.Put(delta.Facet.Clone())
	case DeltaUpdate:
		facet := set.byID[delta.FacetID]
		if facet == nil || delta.Patch == nil {
			return
		}
		delta.Patch.apply(facet)
	case DeltaRemove:
		delete(set.byID, delta.FacetID)
	}
}

// ApplyFrame folds all of a frame's deltas into the set, in list
// order.
func (set *FacetSet) ApplyFrame(frame *Frame) {
	for _, delta := range frame.Deltas {
		set.Apply(delta)
	}
}

// Replay folds frames with sequence ≤ targetSequence into a fresh
// facet set. Frames are folded in ascending sequence order regardless
// of input ordering. This is the point-in-time reconstruction behind
// the window renderer's record-set view.
func Replay(frames []Frame, targetSequence uint64) *FacetSet {
	ordered := append([]Frame(nil), frames...)
	SortFrames(ordered)

	set := NewFacetSet()
	for i := range ordered {
		if ordered[i].Sequence > targetSequence {
			break
		}
		set.ApplyFrame(&ordered[i])
	}
	return set
}
