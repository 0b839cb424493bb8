// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud provides the chat-completion client for OpenAI-compatible APIs.
package cloud

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/jeranaias/opal-tui/internal/model"
)

// Configuration constants for the completion API.
const (
	// DefaultBaseURL is the base URL of the OpenAI API.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultTimeout is the default timeout for one completion request.
	DefaultTimeout = 60 * time.Second
)

// Completer produces an assistant answer for a transcript.
type Completer interface {
	Complete(ctx context.Context, transcript model.Transcript, modelID string) (string, error)
}

// Options configures a Client.
type Options struct {
	BaseURL     string
	APIKey      string
	Temperature float32
	// Timeout bounds one HTTP request. Zero means DefaultTimeout.
	Timeout time.Duration
	// Models restricts the accepted model identifiers. Empty allows any.
	Models []string
	Logger zerolog.Logger
	// HTTPClient overrides the transport. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client is a completion client for an OpenAI-compatible endpoint.
// It is safe for concurrent use.
type Client struct {
	api         *openai.Client
	baseURL     string
	temperature float32
	models      map[string]bool
	fingerprint string
	logger      zerolog.Logger
}

var _ Completer = (*Client)(nil)

// NewClient creates a new Client. An empty API key yields ErrNotConfigured.
func NewClient(opts Options) (*Client, error) {
	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		return nil, ErrNotConfigured
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	cfg := openai.DefaultConfig(key)
	cfg.BaseURL = baseURL
	cfg.HTTPClient = httpClient

	// The request field is omitempty, so an exact 0 would never be sent.
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	models := make(map[string]bool, len(opts.Models))
	for _, m := range opts.Models {
		models[m] = true
	}

	return &Client{
		api:         openai.NewClientWithConfig(cfg),
		baseURL:     baseURL,
		temperature: temperature,
		models:      models,
		fingerprint: keyFingerprint(key),
		logger:      opts.Logger.With().Str("component", "cloud").Logger(),
	}, nil
}

// keyFingerprint returns the first 4 bytes of the key's SHA-256 in hex.
func keyFingerprint(key string) string {
	if key == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:4])
}

// KeyFingerprint returns a fingerprint of the API key that is safe to log.
func (c *Client) KeyFingerprint() string {
	return c.fingerprint
}

// BaseURL returns the endpoint base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ModelAllowed reports whether model may be requested from this client.
func (c *Client) ModelAllowed(model string) bool {
	if model == "" {
		return false
	}
	return len(c.models) == 0 || c.models[model]
}

// Complete sends the transcript to the chat-completions endpoint and returns
// the trimmed content of the first choice. Every error is a *CompletionError.
func (c *Client) Complete(ctx context.Context, transcript model.Transcript, modelID string) (string, error) {
	if err := transcript.Validate(); err != nil {
		return "", &CompletionError{Kind: KindOther, Model: modelID, Err: fmt.Errorf("%w: %v", ErrInvalidTranscript, err)}
	}
	if !c.ModelAllowed(modelID) {
		return "", &CompletionError{Kind: KindOther, Model: modelID, Err: fmt.Errorf("%w: %q", ErrUnknownModel, modelID)}
	}

	req := openai.ChatCompletionRequest{
		Model:       modelID,
		Messages:    toAPIMessages(transcript),
		Temperature: c.temperature,
	}

	c.logger.Debug().
		Str("model", modelID).
		Int("messages", len(req.Messages)).
		Str("key", c.fingerprint).
		Msg("completion request")

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	duration := time.Since(start)
	if err != nil {
		ce := newError(ctx, modelID, err)
		c.logger.Warn().
			Err(err).
			Str("model", modelID).
			Str("kind", ce.Kind.String()).
			Int("status", ce.Status).
			Dur("duration", duration).
			Msg("completion failed")
		return "", ce
	}

	if len(resp.Choices) == 0 {
		return "", &CompletionError{Kind: KindOther, Model: modelID, Err: ErrEmptyResponse}
	}

	c.logger.Debug().
		Str("model", resp.Model).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Dur("duration", duration).
		Msg("completion response")

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// toAPIMessages converts a transcript to the wire representation. URLs are
// local metadata and are not sent.
func toAPIMessages(t model.Transcript) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(t))
	for i, msg := range t {
		out[i] = openai.ChatCompletionMessage{
			Role:    msg.Role.String(),
			Content: msg.Content,
		}
	}
	return out
}
