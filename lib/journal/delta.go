// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package journal

// DeltaOp discriminates the three delta variants.
type DeltaOp string

const (
	// DeltaAdd creates a facet (or overwrites one reusing the same
	// identifier — the event pipeline treats re-add as reset).
	DeltaAdd DeltaOp = "add"

	// DeltaUpdate patches an existing facet. Content and State are
	// shallow-merged unless the patch requests replacement.
	DeltaUpdate DeltaOp = "update"

	// DeltaRemove removes a facet from the visible set.
	DeltaRemove DeltaOp = "remove"
)

// Delta is one tagged operation against exactly one facet. Exactly
// one of Facet (for add) or Patch (for update) is populated; remove
// carries only the target identifier.
type Delta struct {
	Op      DeltaOp     `json:"op"`
	FacetID string      `json:"facetId"`
	Facet   *Facet      `json:"facet,omitempty"`
	Patch   *FacetPatch `json:"patch,omitempty"`
}

// FacetPatch is the payload of an update delta. Nil/absent fields are
// left untouched. Content and State merge key-by-key into the existing
// maps unless the corresponding Replace flag is set, in which case the
// whole map is replaced.
type FacetPatch struct {
	Type        *string        `json:"type,omitempty"`
	Content     map[string]any `json:"content,omitempty"`
	State       map[string]any `json:"state,omitempty"`
	ParentID    *string        `json:"parentId,omitempty"`
	Children    []string       `json:"children,omitempty"`
	PartitionID *PartitionID   `json:"partitionId,omitempty"`
	StreamID    *string        `json:"streamId,omitempty"`

	ReplaceContent bool `json:"replaceContent,omitempty"`
	ReplaceState   bool `json:"replaceState,omitempty"`
}

// AddDelta builds an add delta for the given facet. The delta's
// FacetID always mirrors the facet's own identifier.
func AddDelta(facet *Facet) Delta {
	return Delta{Op: DeltaAdd, FacetID: facet.ID, Facet: facet}
}

// UpdateDelta builds an update delta targeting facetID.
func UpdateDelta(facetID string, patch *FacetPatch) Delta {
	return Delta{Op: DeltaUpdate, FacetID: facetID, Patch: patch}
}

// RemoveDelta builds a remove delta targeting facetID.
func RemoveDelta(facetID string) Delta {
	return Delta{Op: DeltaRemove, FacetID: facetID}
}

// apply mutates facet according to the patch. The facet must already
// be an owned copy (FacetSet clones on add).
func (patch *FacetPatch) apply(facet *Facet) {
	if patch.Type != nil {
		facet.Type = *patch.Type
	}
	if patch.Content != nil || patch.ReplaceContent {
		if patch.ReplaceContent {
			facet.Content = copyMap(patch.Content)
		} else {
			if facet.Content == nil {
				facet.Content = make(map[string]any, len(patch.Content))
			}
			for key, value := range patch.Content {
				facet.Content[key] = value
			}
		}
	}
	if patch.State != nil || patch.ReplaceState {
		if patch.ReplaceState {
			facet.State = copyMap(patch.State)
		} else {
			if facet.State == nil {
				facet.State = make(map[string]any, len(patch.State))
			}
			for key, value := range patch.State {
				facet.State[key] = value
			}
		}
	}
	if patch.ParentID != nil {
		facet.ParentID = *patch.ParentID
	}
	if patch.Children != nil {
		facet.Children = append([]string(nil), patch.Children...)
	}
	if patch.PartitionID != nil {
		facet.PartitionID = *patch.PartitionID
	}
	if patch.StreamID != nil {
		facet.StreamID = *patch.StreamID
	}
}

func copyMap(source map[string]any) map[string]any {
	if source == nil {
		return nil
	}
	copied := make(map[string]any, len(source))
	for key, value := range source {
		copied[key] = value
	}
	return copied
}
