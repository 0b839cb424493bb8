// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jeranaias/opal-tui/internal/export"
	"github.com/jeranaias/opal-tui/internal/storage"
)

type exportOptions struct {
	format        string
	output        string
	includeSystem bool
}

func newExportCmd(flags *globalFlags) *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export <room>",
		Short: "Export a room transcript",
		Long:  "Renders a persisted room as Markdown or JSON. Output goes to stdout unless --output names a directory.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, flags, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "markdown", "export format: markdown or json")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write into this directory instead of stdout")
	cmd.Flags().BoolVar(&opts.includeSystem, "include-system", false, "include the system prompt")
	return cmd
}

func runExport(cmd *cobra.Command, flags *globalFlags, opts *exportOptions, room string) error {
	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	cfg, err := flags.loadConfig()
	if err != nil {
		return err
	}
	store, err := storage.NewStore(cfg.Chat.Dir, zerolog.Nop())
	if err != nil {
		return err
	}
	name, err := storage.NormalizeRoomName(room)
	if err != nil {
		return err
	}
	transcript, err := store.Load(name)
	if err != nil {
		return err
	}

	exportOpts := export.DefaultOptions()
	exportOpts.IncludeSystem = opts.includeSystem
	exporter, err := export.New(format, exportOpts)
	if err != nil {
		return err
	}

	if opts.output != "" {
		path, err := export.ToFile(opts.output, name, transcript, exporter)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", name, path)
		return nil
	}

	data, err := exporter.Export(name, transcript)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
