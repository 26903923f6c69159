// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package journal

// Facet is a durable record: the unit of storage and of garbage
// collection. Facets are created by add deltas, mutated by update
// deltas, and removed by remove deltas. In the live facet set a
// removed facet is no longer visible; in a compacted snapshot it is
// no longer stored.
type Facet struct {
	// ID is globally unique and stable across the facet's lifetime.
	ID string `json:"id"`

	// Type is a string discriminator ("message", "thread/topic",
	// "config/prompt", ...). Retention policy keys off this field.
	Type string `json:"type"`

	// Content is the facet's payload. Values may include large
	// binary-as-text attachments; the payload compression migration
	// in lib/snapshot rewrites those in place.
	Content map[string]any `json:"content,omitempty"`

	// State is structured payload distinct from Content. Update
	// deltas shallow-merge into it unless the patch says replace.
	State map[string]any `json:"state,omitempty"`

	// ParentID and Children declare ownership edges. Either end of
	// an edge may be declared, both must be honored, and the result
	// may be inconsistent or cyclic.
	ParentID string   `json:"parentId,omitempty"`
	Children []string `json:"children,omitempty"`

	// PartitionID scopes the facet to one conversation partition.
	// StreamID further narrows it to a message stream within the
	// partition. Both are optional.
	PartitionID PartitionID `json:"partitionId,omitempty"`
	StreamID    string      `json:"streamId,omitempty"`
}

// Clone returns a deep-enough copy of the facet for fold semantics:
// the Content and State maps and the Children slice are copied one
// level deep. Values inside Content/State are shared — deltas never
// mutate them in place, they replace whole keys.
func (facet *Facet) Clone() *Facet {
	copied := *facet
	if facet.Content != nil {
		copied.Content = make(map[string]any, len(facet.Content))
		for key, value := range facet.Content {
			copied.Content[key] = value
		}
	}
	if facet.State != nil {
		copied.State = make(map[string]any, len(facet.State))
		for key, value := range facet.State {
			copied.State[key] = value
		}
	}
	if facet.Children != nil {
		copied.Children = append([]string(nil), facet.Children...)
	}
	return &copied
}
