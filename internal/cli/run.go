// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jeranaias/opal-tui/internal/cloud"
	"github.com/jeranaias/opal-tui/internal/config"
	"github.com/jeranaias/opal-tui/internal/logging"
	"github.com/jeranaias/opal-tui/internal/pipeline"
	"github.com/jeranaias/opal-tui/internal/prompt"
	"github.com/jeranaias/opal-tui/internal/session"
	"github.com/jeranaias/opal-tui/internal/storage"
	"github.com/jeranaias/opal-tui/internal/ui/chat"
	"github.com/jeranaias/opal-tui/internal/ui/styles"
)

// shutdownTimeout bounds how long quitting waits for answers in flight.
const shutdownTimeout = 10 * time.Second

// ErrNotTerminal is returned when the TUI is started without a terminal.
var ErrNotTerminal = errors.New("opal needs an interactive terminal (use 'opal rooms' for scripting)")

// app is the wired object graph behind the TUI.
type app struct {
	cfg     *config.Config
	manager *session.Manager
	theme   *styles.Theme
	logger  zerolog.Logger
}

// newApp wires the completion client, retry wrapper, processor, store and
// session manager from cfg.
func newApp(cfg *config.Config, logger zerolog.Logger, now time.Time) (*app, error) {
	key, err := cfg.APIKey()
	if err != nil {
		return nil, err
	}

	client, err := cloud.NewClient(cloud.Options{
		BaseURL:     cfg.API.BaseURL,
		APIKey:      key,
		Temperature: float32(cfg.Temperature),
		Timeout:     cfg.API.Timeout,
		Models:      cfg.Models,
		Logger:      logger.With().Str("component", "cloud").Logger(),
	})
	if err != nil {
		return nil, err
	}

	asker := pipeline.NewAsker(client, pipeline.Backoff{
		Limit:     cfg.Retry.Limit,
		BaseDelay: cfg.Retry.BaseDelay,
		MaxDelay:  cfg.Retry.MaxDelay,
		Jitter:    cfg.Retry.Jitter,
	}, pipeline.WithLogger(logger.With().Str("component", "retry").Logger()))

	processor := pipeline.NewProcessor(prompt.Default(now), asker, pipeline.ProcessorOptions{
		MaxLength:    cfg.Chat.MaxLength,
		DefaultModel: cfg.DefaultModel,
		Logger:       logger.With().Str("component", "processor").Logger(),
	})

	store, err := storage.NewStore(cfg.Chat.Dir, logger.With().Str("component", "storage").Logger())
	if err != nil {
		return nil, err
	}

	manager, err := session.NewManager(store, processor, sessionOptions(cfg, logger))
	if err != nil {
		return nil, err
	}

	mode, err := styles.ParseMode(cfg.UI.Theme)
	if err != nil {
		mode = styles.ModeAuto
	}

	logger.Info().
		Str("base_url", client.BaseURL()).
		Str("key", client.KeyFingerprint()).
		Str("model", cfg.DefaultModel).
		Str("chat_dir", store.Dir()).
		Msg("opal started")

	return &app{
		cfg:     cfg,
		manager: manager,
		theme:   styles.NewTheme(mode),
		logger:  logger,
	}, nil
}

// sessionOptions maps the chat section of cfg onto the session manager.
func sessionOptions(cfg *config.Config, logger zerolog.Logger) session.Options {
	return session.Options{
		QueueSize:   cfg.Chat.QueueSize,
		TaskTimeout: cfg.Chat.TurnTimeout,
		Logger:      logger.With().Str("component", "session").Logger(),
	}
}

// model builds the Bubble Tea model for the app.
func (a *app) model() chat.Model {
	return chat.New(a.manager, chat.Options{
		Models:  a.cfg.Models,
		Model:   a.cfg.DefaultModel,
		Theme:   a.theme,
		Sidebar: a.cfg.UI.Sidebar,
		Logger:  a.logger.With().Str("component", "ui").Logger(),
	})
}

// close shuts the session down within shutdownTimeout.
func (a *app) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return a.manager.Close(ctx)
}

// runTUI is the root command: load config, wire the app and run Bubble Tea.
func runTUI(_ *cobra.Command, flags *globalFlags) error {
	cfg, err := flags.loadConfig()
	if err != nil {
		return err
	}
	if !IsTTY() || !IsStdoutTTY() {
		return ErrNotTerminal
	}

	logger, closer, err := logging.Setup(logging.Options{
		Level: cfg.LogLevel(),
		File:  cfg.Log.File,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	a, err := newApp(cfg, logger, time.Now())
	if err != nil {
		logger.Error().Err(err).Msg("startup failed")
		return err
	}

	program := tea.NewProgram(a.model(), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, runErr := program.Run()

	if err := a.close(); err != nil {
		logger.Warn().Err(err).Msg("shutdown incomplete")
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("running TUI: %w", runErr)
	}
	return nil
}
