// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the master configuration for Hearth.
type Config struct {
	// Snapshot configures durable state and compaction.
	Snapshot SnapshotConfig `yaml:"snapshot"`

	// Window configures request-path context windowing.
	Window WindowConfig `yaml:"window"`

	// Logging configures the structured logger.
	Logging LoggingConfig `yaml:"logging"`
}

// SnapshotConfig configures the snapshot directory and compaction
// policy.
type SnapshotConfig struct {
	// Directory holds the snapshot generations, frame buckets, and
	// migration markers.
	Directory string `yaml:"directory"`

	// RetainFrames is the frame tail length compaction keeps.
	RetainFrames int `yaml:"retainFrames"`

	// KeepTypes and KeepTypePrefixes are the always-keep retention
	// overrides. PolicyFile, when set, points at a JSONC document
	// that replaces both lists.
	KeepTypes        []string `yaml:"keepTypes"`
	KeepTypePrefixes []string `yaml:"keepTypePrefixes"`
	PolicyFile       string   `yaml:"policyFile"`

	// KeepGenerations is how many snapshot generations to keep
	// when pruning after a successful compaction.
	KeepGenerations int `yaml:"keepGenerations"`

	// CompressThreshold is the minimum attachment size in bytes
	// for the payload compression migration.
	CompressThreshold int `yaml:"compressThreshold"`
}

// WindowConfig bounds context window building.
type WindowConfig struct {
	// MaxFrames is the hard per-request bound on frames considered.
	MaxFrames int `yaml:"maxFrames"`

	// SetupFrameLimit is the highest sequence treated as
	// partition-agnostic bootstrap.
	SetupFrameLimit uint64 `yaml:"setupFrameLimit"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string `yaml:"level"`
}

// SlogLevel maps the configured level name to a slog.Level.
func (logging *LoggingConfig) SlogLevel() (slog.Level, error) {
	switch logging.Level {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", logging.Level)
	}
}

// Default returns the configuration used when no config file is
// given.
func Default() *Config {
	return &Config{
		Snapshot: SnapshotConfig{
			RetainFrames:      500,
			KeepGenerations:   3,
			CompressThreshold: 4096,
		},
		Window: WindowConfig{
			MaxFrames:       200,
			SetupFrameLimit: 5,
		},
	}
}

// Load reads and validates a YAML config file. Unknown keys are an
// error. Values absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(loaded); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := loaded.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return loaded, nil
}

// Validate checks cross-field consistency.
func (config *Config) Validate() error {
	if config.Snapshot.RetainFrames < 0 {
		return fmt.Errorf("snapshot.retainFrames must not be negative")
	}
	if config.Snapshot.KeepGenerations < 1 {
		return fmt.Errorf("snapshot.keepGenerations must be at least 1")
	}
	if config.Window.MaxFrames < 0 {
		return fmt.Errorf("window.maxFrames must not be negative")
	}
	if _, err := config.Logging.SlogLevel(); err != nil {
		return err
	}
	return nil
}
