package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/nfrund/parley/internal/actions"
	"github.com/nfrund/parley/internal/chat"
	"github.com/nfrund/parley/internal/modules/messageactions"
	"github.com/nfrund/parley/internal/script"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	actionsScriptDir string
	actionsGroup     string
	actionsContext   string
	actionsFormat    string
)

// actionsCmd represents the actions command
var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "Explore the message action catalogue",
	Long: `The actions command builds the same catalogue the server registers at boot:
the built-in message actions plus the scripted actions found in the scripts
directory.

Examples:
  # List every action
  parley-cli actions list

  # Toolbar actions valid on mobile, as JSON
  parley-cli actions list --group message --context message-mobile --format json

  # Which menu actions would this user see on this message?
  parley-cli actions check --context-file ctx.json`,
}

func init() {
	rootCmd.AddCommand(actionsCmd)
	actionsCmd.PersistentFlags().StringVar(&actionsScriptDir, "scripts", "scripts/actions", "Directory holding actions.yaml and its scripts")
	actionsCmd.PersistentFlags().StringVarP(&actionsGroup, "group", "g", "", "Filter by group (message, menu)")
	actionsCmd.PersistentFlags().StringVarP(&actionsContext, "context", "c", "", "Filter by UI context (message, message-mobile, threads)")
	actionsCmd.PersistentFlags().StringVarP(&actionsFormat, "format", "f", "table", "Output format (table, json)")
}

// buildRegistry registers the built-in actions against store and loads the
// scripted ones. A missing scripts directory only yields the built-ins.
func buildRegistry(fs afero.Fs, store chat.Store) (*actions.Registry, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := actions.NewRegistry(actions.WithMemoTTL(0), actions.WithLogger(logger))
	messageactions.RegisterDefaults(reg, messageactions.CatalogueDeps{Store: store, Logger: logger})

	loader := script.NewLoader(fs, actionsScriptDir, script.NewEngine(script.DefaultSecurityLimits()), reg, logger)
	if _, err := loader.Load(); err != nil {
		return nil, fmt.Errorf("failed to load scripted actions from %s: %w", actionsScriptDir, err)
	}
	return reg, nil
}

func validateFilters() error {
	switch actions.Group(actionsGroup) {
	case "", actions.GroupMessage, actions.GroupMenu:
	default:
		return fmt.Errorf("invalid group %q: valid groups are message, menu", actionsGroup)
	}
	switch actions.Context(actionsContext) {
	case "", actions.ContextMessage, actions.ContextMessageMobile, actions.ContextThreads:
	default:
		return fmt.Errorf("invalid context %q: valid contexts are message, message-mobile, threads", actionsContext)
	}
	switch actionsFormat {
	case "table", "json":
	default:
		return fmt.Errorf("unsupported output format %q: use table or json", actionsFormat)
	}
	return nil
}

func joinTags[T ~string](tags []T, empty string) string {
	if len(tags) == 0 {
		return empty
	}
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}

func printActionsTable(w io.Writer, ds []actions.Descriptor) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tID\tLABEL\tGROUPS\tCONTEXTS")
	fmt.Fprintln(tw, "-----\t--\t-----\t------\t--------")
	for _, d := range ds {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", d.Order, d.ID, actions.DisplayLabel(d.Label),
			joinTags(d.Groups, "-"), joinTags(d.Contexts, "all"))
	}
	tw.Flush()
}
