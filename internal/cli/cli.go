// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/jeranaias/opal-tui/internal/config"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
	chatDir    string
	model      string
	theme      string
}

// loadConfig reads the config file and applies environment and flag overrides.
func (f *globalFlags) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	err = cfg.ApplyOverrides(config.Overrides{
		Model:    f.model,
		ChatDir:  f.chatDir,
		LogLevel: f.logLevel,
		Theme:    f.theme,
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewRootCmd builds the opal command tree.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "opal",
		Short: "Opal - multi-room chat in the terminal",
		Long: "Opal is a terminal chat client with named rooms backed by an " +
			"OpenAI-compatible completion API. Start a message with ? for an " +
			"expert answer or ! for the comedy persona.",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, flags)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "path to config file (default ~/.opal/config.toml)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	pf.StringVar(&flags.chatDir, "chat-dir", "", "directory holding room files")
	pf.StringVarP(&flags.model, "model", "m", "", "model used for new messages")
	pf.StringVar(&flags.theme, "theme", "", "theme: auto, light or dark")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newRoomsCmd(flags))
	cmd.AddCommand(newExportCmd(flags))
	return cmd
}

func newVersionCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOut {
				return NewJSONResponse("version", VersionData{
					Version:   Version,
					GitCommit: GitCommit,
					BuildDate: BuildDate,
					GoVersion: runtime.Version(),
				}).Write(cmd.OutOrStdout())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "opal %s (commit: %s, built: %s)\n", Version, GitCommit, BuildDate)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		return 1
	}
	return 0
}
