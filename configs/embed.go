// Package configs provides embedded configuration templates for readyctl.
//
// Templates are embedded at build time so `readyctl config init` works
// from any distribution (source builds, release binaries).
//
// Configuration hierarchy (see internal/config Load()):
//  1. Hardcoded defaults (internal/config NewConfig())
//  2. User config (~/.config/readyctl/config.yaml)
//  3. Project config (.readyctl.yaml) or the --config file
//  4. Environment variables (READYCTL_*)
package configs

import _ "embed"

// ConfigTemplate is the commented template written by `readyctl config init`.
// Every key shows its default value.
//
//go:embed readyctl.example.yaml
var ConfigTemplate string
