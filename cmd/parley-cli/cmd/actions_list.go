package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/nfrund/parley/internal/actions"
	"github.com/nfrund/parley/internal/chat"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// actionsListCmd represents the actions list command
var actionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered message actions",
	Long: `List every registered message action in display order, optionally
narrowed to one group and one UI context. Conditions are not evaluated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFilters(); err != nil {
			return err
		}
		reg, err := buildRegistry(afero.NewOsFs(), chat.NewMemoryStore())
		if err != nil {
			return err
		}

		var ds []actions.Descriptor
		if actionsGroup != "" {
			ds = reg.ByGroup(actions.Group(actionsGroup))
		} else {
			ds = reg.All()
		}
		if actionsContext != "" {
			ds = reg.ByContext(actions.Context(actionsContext), ds)
		}

		out := cmd.OutOrStdout()
		if actionsFormat == "json" {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(ds)
		}
		if len(ds) == 0 {
			fmt.Fprintln(out, "No actions found")
			return nil
		}
		printActionsTable(out, ds)
		return nil
	},
}

func init() {
	actionsCmd.AddCommand(actionsListCmd)
}
