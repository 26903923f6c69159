// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package compaction

import (
	"log/slog"

	"github.com/hearth-foundation/hearth/lib/journal"
	"github.com/hearth-foundation/hearth/lib/snapshot"
)

// RunResult is the outcome of a directory-level compaction run.
type RunResult struct {
	// Path is the snapshot file that was rewritten.
	Path string

	Report Report
}

// Run locates the most recent snapshot generation in dir, loads it
// (fail-closed: a corrupt snapshot aborts without touching durable
// state), folds in any externally bucketed frames, compacts, and
// atomically replaces the file via the streaming writer.
//
// Individual bucket-load failures degrade the result (fewer frames
// retained) and are logged by the bucket store; they never abort the
// run. A failed write leaves the previous generation intact and the
// temporary file in place for inspection.
func Run(dir string, policy Policy, logger *slog.Logger) (*RunResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	path, sequence, err := snapshot.Latest(dir)
	if err != nil {
		return nil, err
	}
	logger.Info("compacting snapshot", "path", path, "sequence", sequence)

	source, err := snapshot.Load(path)
	if err != nil {
		return nil, err
	}

	history := append([]journal.Frame(nil), source.FrameHistory...)
	if len(source.BucketRefs) > 0 {
		store := snapshot.NewBucketStore(dir, logger)
		history = append(history, store.Load(source.BucketRefs)...)
	}

	result := Compact(source, history, policy, logger)

	if err := snapshot.WriteFile(result.Snapshot, path); err != nil {
		return nil, err
	}

	return &RunResult{Path: path, Report: result.Report}, nil
}
