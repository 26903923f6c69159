// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"encoding/json"
	"testing"
)

func TestApplyAddUpdateRemove(t *testing.T) {
	t.Parallel()

	set := NewFacetSet()
	set.Apply(AddDelta(&Facet{
		ID:      "msg-1",
		Type:    "message",
		Content: map[string]any{"text": "hello"},
		State:   map[string]any{"read": false},
	}))

	if set.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", set.Len())
	}

	set.Apply(UpdateDelta("msg-1", &FacetPatch{
		State: map[string]any{"read": true},
	}))

	facet := set.Get("msg-1")
	if facet == nil {
		t.Fatal("Get(msg-1) returned nil after update")
	}
	if facet.State["read"] != true {
		t.Errorf("State[read] = %v, want true", facet.State["read"])
	}
	// Shallow merge: untouched content key survives.
	if facet.Content["text"] != "hello" {
		t.Errorf("Content[text] = %v, want hello", facet.Content["text"])
	}

	set.Apply(RemoveDelta("msg-1"))
	if set.Get("msg-1") != nil {
		t.Error("facet still visible after remove")
	}
	if set.Len() != 0 {
		t.Errorf("Len() = %d after remove, want 0", set.Len())
	}
}

func TestUpdateShallowMergesUnlessReplace(t *testing.T) {
	t.Parallel()

	set := NewFacetSet()
	set.Apply(AddDelta(&Facet{
		ID:      "thread-1",
		Type:    "thread",
		Content: map[string]any{"title": "planning", "pinned": true},
	}))

	// Merge: only the named key changes.
	set.Apply(UpdateDelta("thread-1", &FacetPatch{
		Content: map[string]any{"title": "planning v2"},
	}))
	facet := set.Get("thread-1")
	if facet.Content["title"] != "planning v2" {
		t.Errorf("Content[title] = %v, want planning v2", facet.Content["title"])
	}
	if facet.Content["pinned"] != true {
		t.Errorf("Content[pinned] = %v, want true (merge must not drop keys)", facet.Content["pinned"])
	}

	// Replace: the whole map is swapped out.
	set.Apply(UpdateDelta("thread-1", &FacetPatch{
		Content:        map[string]any{"title": "fresh"},
		ReplaceContent: true,
	}))
	facet = set.Get("thread-1")
	if facet.Content["title"] != "fresh" {
		t.Errorf("Content[title] = %v, want fresh", facet.Content["title"])
	}
	if _, survives := facet.Content["pinned"]; survives {
		t.Error("Content[pinned] survived a replace")
	}
}

func TestUpdateUnknownFacetIsNoOp(t *testing.T) {
	t.Parallel()

	set := NewFacetSet()
	set.Apply(UpdateDelta("ghost", &FacetPatch{State: map[string]any{"x": 1}}))
	set.Apply(RemoveDelta("ghost"))
	if set.Len() != 0 {
		t.Errorf("Len() = %d, want 0", set.Len())
	}
}

func TestAddDoesNotAliasCallerFacet(t *testing.T) {
	t.Parallel()

	original := &Facet{
		ID:      "f1",
		Type:    "message",
		Content: map[string]any{"text": "before"},
	}
	set := NewFacetSet()
	set.Apply(AddDelta(original))

	// Mutating the caller's facet must not reach the set.
	original.Content["text"] = "after"
	if set.Get("f1").Content["text"] != "before" {
		t.Error("facet set aliases the caller's content map")
	}
}

func TestReplayFoldsInSequenceOrder(t *testing.T) {
	t.Parallel()

	pinned := true
	frames := []Frame{
		{Sequence: 3, Deltas: []Delta{UpdateDelta("f1", &FacetPatch{Content: map[string]any{"v": 3}})}},
		{Sequence: 1, Deltas: []Delta{AddDelta(&Facet{ID: "f1", Type: "message", Content: map[string]any{"v": 1}})}},
		{Sequence: 2, Deltas: []Delta{UpdateDelta("f1", &FacetPatch{Content: map[string]any{"v": 2, "pinned": pinned}})}},
		{Sequence: 4, Deltas: []Delta{RemoveDelta("f1")}},
	}

	// Up to sequence 3: all updates applied, remove not yet.
	set := Replay(frames, 3)
	facet := set.Get("f1")
	if facet == nil {
		t.Fatal("f1 not visible at sequence 3")
	}
	if facet.Content["v"] != 3 {
		t.Errorf("Content[v] = %v, want 3 (out-of-order input must fold in sequence order)", facet.Content["v"])
	}
	if facet.Content["pinned"] != true {
		t.Errorf("Content[pinned] = %v, want true", facet.Content["pinned"])
	}

	// Full replay: the remove wins.
	if Replay(frames, 4).Get("f1") != nil {
		t.Error("f1 visible after replaying its remove")
	}

	// Replay must not mutate the caller's slice ordering.
	if frames[0].Sequence != 3 {
		t.Error("Replay reordered the caller's frame slice")
	}
}

func TestFacetsPreserveInsertionOrder(t *testing.T) {
	t.Parallel()

	set := NewFacetSet()
	for _, id := range []string{"c", "a", "b"} {
		set.Put(&Facet{ID: id, Type: "message"})
	}
	ids := set.IDs()
	want := []string{"c", "a", "b"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("IDs() = %v, want %v", ids, want)
		}
	}
}

func TestAddedPartitions(t *testing.T) {
	t.Parallel()

	frame := Frame{
		Sequence: 7,
		Deltas: []Delta{
			AddDelta(&Facet{ID: "a", Type: "message", PartitionID: "p1"}),
			AddDelta(&Facet{ID: "b", Type: "message", PartitionID: "p2"}),
			AddDelta(&Facet{ID: "c", Type: "message", PartitionID: "p1"}),
			AddDelta(&Facet{ID: "d", Type: "note"}),
			RemoveDelta("e"),
		},
	}
	partitions := frame.AddedPartitions()
	if len(partitions) != 2 || partitions[0] != "p1" || partitions[1] != "p2" {
		t.Fatalf("AddedPartitions() = %v, want [p1 p2]", partitions)
	}
}

func TestEventFacetIDs(t *testing.T) {
	t.Parallel()

	frame := Frame{
		Sequence: 9,
		Events: []json.RawMessage{
			[]byte(`{"kind":"platform.message","facetId":"msg-9"}`),
			[]byte(`{"kind":"platform.typing"}`),
			[]byte(`not json`),
		},
	}
	ids := frame.EventFacetIDs()
	if len(ids) != 1 || ids[0] != "msg-9" {
		t.Fatalf("EventFacetIDs() = %v, want [msg-9]", ids)
	}
}
