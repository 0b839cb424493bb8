// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"syscall"

	openai "github.com/sashabaranov/go-openai"
)

// Error variables for common completion failures.
var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("API key not configured")

	// ErrInvalidTranscript indicates an empty transcript or one whose first
	// message is not a system prompt.
	ErrInvalidTranscript = errors.New("invalid transcript")

	// ErrUnknownModel indicates the model is not in the configured list.
	ErrUnknownModel = errors.New("unknown model")

	// ErrEmptyResponse indicates the API returned no choices.
	ErrEmptyResponse = errors.New("empty response")
)

// Kind classifies a completion failure.
type Kind int

const (
	// KindOther covers failures that are not worth retrying.
	KindOther Kind = iota
	// KindConnectivity covers transient transport failures.
	KindConnectivity
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindConnectivity:
		return "connectivity"
	default:
		return "other"
	}
}

// CompletionError is returned by Client.Complete for every failure.
type CompletionError struct {
	Kind   Kind
	Model  string
	Status int // HTTP status, zero when no response was received
	Err    error
}

// Error implements the error interface.
func (e *CompletionError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("completion failed (%s, HTTP %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("completion failed (%s): %v", e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *CompletionError) Unwrap() error {
	return e.Err
}

// IsConnectivity reports whether err is a connectivity-class completion error.
func IsConnectivity(err error) bool {
	var ce *CompletionError
	return errors.As(err, &ce) && ce.Kind == KindConnectivity
}

// newError builds a CompletionError with the kind derived from err.
func newError(ctx context.Context, model string, err error) *CompletionError {
	ce := &CompletionError{Kind: classify(ctx, err), Model: model, Err: err}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		ce.Status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		ce.Status = reqErr.HTTPStatusCode
	}
	return ce
}

// classify maps an error to a Kind. Anything that got an HTTP response back is
// Other; so is cancellation of the caller's context. Transport failures are
// Connectivity, including the HTTP client's own timeout.
func classify(ctx context.Context, err error) Kind {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return KindOther
	}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	if errors.As(err, &apiErr) || errors.As(err, &reqErr) {
		return KindOther
	}

	if errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return KindConnectivity
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return KindConnectivity
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindConnectivity
	}
	return KindOther
}
