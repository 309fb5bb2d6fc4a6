package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/nfrund/parley/internal/pubsub"
	"github.com/spf13/cobra"

	// Registers the message action events in the catalog.
	_ "github.com/nfrund/parley/internal/modules/messageactions/topics"
)

var topicsFormat string

// topicsCmd represents the topics command
var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List the events published on the message bus",
	Long: `List every typed event the server publishes on the message bus, with its
description. Websocket clients and other subscribers listen on these topics.

Examples:
  parley-cli topics
  parley-cli topics --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		events := pubsub.Events()
		out := cmd.OutOrStdout()

		switch topicsFormat {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(events)
		case "table":
			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "TOPIC\tDESCRIPTION")
			fmt.Fprintln(w, "-----\t-----------")
			for _, e := range events {
				fmt.Fprintf(w, "%s\t%s\n", e.Name, e.Description)
			}
			return w.Flush()
		default:
			return fmt.Errorf("unsupported output format %q: use table or json", topicsFormat)
		}
	},
}

func init() {
	rootCmd.AddCommand(topicsCmd)
	topicsCmd.Flags().StringVarP(&topicsFormat, "format", "f", "table", "Output format (table, json)")
}
