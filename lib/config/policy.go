// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// RetentionPolicy is the always-keep portion of the compaction
// policy, kept in its own document so operators can annotate it.
type RetentionPolicy struct {
	// KeepTypes lists facet types retained regardless of
	// reachability.
	KeepTypes []string `json:"keepTypes"`

	// KeepTypePrefixes lists facet type prefixes retained
	// regardless of reachability.
	KeepTypePrefixes []string `json:"keepTypePrefixes"`
}

// LoadPolicy reads a JSONC retention policy document. Comments and
// trailing commas are allowed; unknown keys are an error.
func LoadPolicy(path string) (*RetentionPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading retention policy: %w", err)
	}

	var policy RetentionPolicy
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&policy); err != nil {
		return nil, fmt.Errorf("parsing retention policy %s: %w", path, err)
	}
	return &policy, nil
}
