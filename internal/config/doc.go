// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and validation for opal.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - APIConfig: Completion endpoint, key variable and per-call timeout
//   - RetryConfig: Backoff for connectivity failures
//   - ChatConfig: Room transcript length, log directory and send queue size
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (OPAL_*)
//   - ~/.opal/config.toml, or the file passed with --config
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal().Err(err).Msg("config")
//	}
//	key, err := cfg.APIKey()
package config
