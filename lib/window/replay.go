// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package window

import (
	"context"

	"github.com/hearth-foundation/hearth/lib/journal"
)

// Replayer is the point-in-time reconstruction primitive the
// downstream renderer consumes alongside the window: the facet set as
// it stood at a target sequence. Implementations must behave as a
// pure function of (history, targetSequence).
type Replayer interface {
	ReplayToSequence(ctx context.Context, history []journal.Frame, targetSequence uint64) (*journal.FacetSet, error)
}

// FoldReplayer implements Replayer by folding the delta stream with
// [journal.Replay]. It is the in-process default; hosts with an
// external replay engine substitute their own implementation.
type FoldReplayer struct{}

// ReplayToSequence folds frames with sequence ≤ targetSequence into a
// fresh facet set.
func (FoldReplayer) ReplayToSequence(_ context.Context, history []journal.Frame, targetSequence uint64) (*journal.FacetSet, error) {
	return journal.Replay(history, targetSequence), nil
}
