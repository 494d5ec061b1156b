package main

import (
	"fmt"
	"sort"

	"gridsync/internal/infrastructure/storage"
	"gridsync/internal/network"
	"gridsync/internal/version"
	"gridsync/pkg/api"

	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal <path>",
	Short: "Print a summary of a recorded command journal",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournal,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}

func runJournal(cmd *cobra.Command, args []string) error {
	j, err := (&storage.JournalService{}).Load(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "seed:      %d\n", j.Seed)
	fmt.Fprintf(out, "timestamp: %d\n", j.Timestamp)
	fmt.Fprintf(out, "records:   %d\n", j.Len())

	channels := network.ClientChannels()
	actions := make(map[string]int)
	clients := make(map[uint64]int)
	var lastTick uint64
	for _, rec := range j.Records {
		clients[rec.ClientID]++
		lastTick = max(lastTick, rec.Tick)
		if network.Channel(rec.Channel) != network.CommandChannel {
			actions[channels.Name(network.Channel(rec.Channel))]++
			continue
		}
		var command api.ClientCommand
		if err := api.Decode(rec.Payload, &command); err != nil {
			actions["malformed"]++
			continue
		}
		actions[command.Action.String()]++
	}
	fmt.Fprintf(out, "last tick: %d\n", lastTick)
	fmt.Fprintf(out, "clients:   %d\n", len(clients))

	names := make([]string, 0, len(actions))
	for name := range actions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-12s %d\n", name, actions[name])
	}
	return nil
}
