// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures the process-wide zerolog logger.
//
// The terminal belongs to the TUI, so logs go to a file by default. The file
// is written with zerolog's console format without color so it stays readable
// with tail or less.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Stderr as Options.File logs to standard error instead of a file.
const Stderr = "-"

// Options configures Setup.
type Options struct {
	Level zerolog.Level

	// File is the log file path. Empty discards all output.
	File string

	// WithCaller adds file:line to every entry.
	WithCaller bool
}

// Setup builds the logger, installs it as log.Logger and sets the global
// level. The returned closer releases the log file.
func Setup(opts Options) (zerolog.Logger, io.Closer, error) {
	out, closer, err := open(opts.File)
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	writer := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    opts.File != Stderr,
		TimeFormat: time.RFC3339,
	}

	ctx := zerolog.New(writer).With().Timestamp()
	if opts.WithCaller {
		ctx = ctx.Caller()
	}
	logger := ctx.Logger().Level(opts.Level)

	zerolog.SetGlobalLevel(opts.Level)
	log.Logger = logger
	return logger, closer, nil
}

func open(path string) (io.Writer, io.Closer, error) {
	switch path {
	case "":
		return io.Discard, nopCloser{}, nil
	case Stderr:
		return os.Stderr, nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
