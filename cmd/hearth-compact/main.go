// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

// hearth-compact rewrites the most recent snapshot generation in a
// directory, dropping facets unreachable from the retained frame
// tail. It runs out-of-band from the request-serving host — at
// startup, from cron, or by hand — and communicates with the host
// only through the snapshot files.
//
// Exit status is non-zero when no snapshot is found or compaction
// fails; the previous generation is left intact in either case. On
// success the before/after counts and sizes are printed to stdout.
//
// The one-time payload compression migration (--compress-payloads)
// rewrites large facet attachments as zstd envelopes and records a
// marker file so re-running it is a no-op.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/hearth-foundation/hearth/lib/compaction"
	"github.com/hearth-foundation/hearth/lib/config"
	"github.com/hearth-foundation/hearth/lib/process"
	"github.com/hearth-foundation/hearth/lib/snapshot"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	flags := pflag.NewFlagSet("hearth-compact", pflag.ContinueOnError)
	configPath := flags.String("config", "", "path to the Hearth YAML config file")
	dir := flags.String("dir", "", "snapshot directory (overrides config)")
	retain := flags.Int("retain", -1, "number of newest frames to retain (overrides config)")
	policyPath := flags.String("policy", "", "JSONC retention policy file (overrides config)")
	compressPayloads := flags.Bool("compress-payloads", false, "run the one-time payload compression migration first")
	verbose := flags.Bool("verbose", false, "enable debug logging")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *dir != "" {
		cfg.Snapshot.Directory = *dir
	}
	if *retain >= 0 {
		cfg.Snapshot.RetainFrames = *retain
	}
	if *policyPath != "" {
		cfg.Snapshot.PolicyFile = *policyPath
	}
	if cfg.Snapshot.Directory == "" {
		return fmt.Errorf("no snapshot directory: pass --dir or set snapshot.directory in the config")
	}

	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		return err
	}
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	policy := compaction.Policy{
		RetainFrames:     cfg.Snapshot.RetainFrames,
		KeepTypes:        cfg.Snapshot.KeepTypes,
		KeepTypePrefixes: cfg.Snapshot.KeepTypePrefixes,
	}
	if cfg.Snapshot.PolicyFile != "" {
		retention, err := config.LoadPolicy(cfg.Snapshot.PolicyFile)
		if err != nil {
			return err
		}
		policy.KeepTypes = retention.KeepTypes
		policy.KeepTypePrefixes = retention.KeepTypePrefixes
	}

	if *compressPayloads {
		result, err := snapshot.CompressPayloads(cfg.Snapshot.Directory, cfg.Snapshot.CompressThreshold, logger)
		if err != nil {
			return err
		}
		if !result.AlreadyDone {
			fmt.Printf("compressed %d attachments: %d -> %d bytes\n",
				result.Attachments, result.BytesBefore, result.BytesAfter)
		}
	}

	result, err := compaction.Run(cfg.Snapshot.Directory, policy, logger)
	if err != nil {
		return err
	}

	fmt.Print(formatReport(result))

	removed, err := snapshot.Prune(cfg.Snapshot.Directory, cfg.Snapshot.KeepGenerations)
	if err != nil {
		return err
	}
	for _, name := range removed {
		logger.Info("pruned stale generation", "name", name)
	}

	return nil
}
