// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud provides the chat-completion client for OpenAI-compatible APIs.
//
// A Client sends one transcript per call and returns the trimmed answer text.
// Failures are reported as *CompletionError and classified into exactly two
// kinds: connectivity (transport problems worth retrying) and other
// (authentication, validation, quota, server errors, cancellation).
//
// # Key Types
//
//   - Client: go-openai backed client bound to a base URL, key and model list
//   - Completer: interface consumed by the retry pipeline
//   - CompletionError: classified failure with Kind and HTTP status
//
// # Usage
//
//	client, err := cloud.NewClient(cloud.Options{
//	    BaseURL: cfg.API.BaseURL,
//	    APIKey:  key,
//	    Models:  cfg.Models,
//	})
//	text, err := client.Complete(ctx, transcript, "gpt-4o")
//	if cloud.IsConnectivity(err) {
//	    // retry later
//	}
//
// # Security
//
// API keys are never logged. Requests are logged with a SHA-256 fingerprint
// of the key, the model, the message count and the duration.
package cloud
