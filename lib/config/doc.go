// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for Hearth binaries.
//
// The master configuration is one YAML file, loaded from an explicit
// path. There are no fallbacks or automatic discovery: deterministic,
// auditable configuration with no hidden overrides. Unknown keys are
// rejected so typos fail loudly.
//
// The retention policy (always-keep facet types) may additionally be
// kept in a separate JSONC document so operators can annotate why a
// type is protected; see [LoadPolicy].
package config
