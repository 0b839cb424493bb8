// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jeranaias/opal-tui/internal/storage"
)

func newRoomsCmd(flags *globalFlags) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "List persisted rooms",
		Long:  "Lists every room file in the chat directory with its message count. Unreadable files are reported instead of skipped.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRooms(cmd, flags, jsonOut)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}

func runRooms(cmd *cobra.Command, flags *globalFlags, jsonOut bool) error {
	out := cmd.OutOrStdout()

	store, infos, err := listRooms(flags)
	if err != nil {
		if jsonOut {
			_ = NewJSONErrorResponse("rooms", err).Write(out)
		}
		return err
	}

	if jsonOut {
		rooms := make([]RoomData, 0, len(infos))
		for _, info := range infos {
			r := RoomData{Name: info.Name, Messages: info.Messages, Modified: info.Modified}
			if info.Err != nil {
				r.Error = info.Err.Error()
			}
			rooms = append(rooms, r)
		}
		return NewJSONResponse("rooms", rooms).Write(out)
	}

	if len(infos) == 0 {
		fmt.Fprintf(out, "No rooms in %s\n", store.Dir())
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROOM\tMESSAGES\tMODIFIED")
	for _, info := range infos {
		count := fmt.Sprintf("%d", info.Messages)
		if info.Err != nil {
			count = "unreadable"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", info.Name, count, info.Modified.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

// listRooms opens the configured store and reads its room metadata.
func listRooms(flags *globalFlags) (*storage.Store, []storage.RoomInfo, error) {
	cfg, err := flags.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := storage.NewStore(cfg.Chat.Dir, zerolog.Nop())
	if err != nil {
		return nil, nil, err
	}
	infos, err := store.List()
	if err != nil {
		return nil, nil, err
	}
	return store, infos, nil
}
