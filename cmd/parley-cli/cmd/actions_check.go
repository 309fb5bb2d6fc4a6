package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nfrund/parley/internal/actions"
	"github.com/nfrund/parley/internal/chat"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var checkContextFile string

// actionsCheckCmd represents the actions check command
var actionsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Show the actions visible for an evaluation context",
	Long: `Evaluate every action condition against the evaluation context read from
--context-file and print the visible ones. The file is JSON with the keys
msg, u, room, subscription and settings. The message, user, room and
subscription are also seeded into an in-memory store so conditions that
look data up see the same world.

The group defaults to menu.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if checkContextFile == "" {
			return errors.New("--context-file is required")
		}
		if err := validateFilters(); err != nil {
			return err
		}

		fs := afero.NewOsFs()
		raw, err := afero.ReadFile(fs, checkContextFile)
		if err != nil {
			return fmt.Errorf("failed to read context file: %w", err)
		}
		var ec actions.EvalContext
		if err := json.Unmarshal(raw, &ec); err != nil {
			return fmt.Errorf("failed to parse context file: %w", err)
		}
		if ec.Settings == nil {
			ec.Settings = chat.DefaultSettings()
		}

		reg, err := buildRegistry(fs, seedStore(&ec))
		if err != nil {
			return err
		}

		group := actions.Group(actionsGroup)
		if group == "" {
			group = actions.GroupMenu
		}
		ds := reg.Visible(&ec, actions.Context(actionsContext), group)

		out := cmd.OutOrStdout()
		if actionsFormat == "json" {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(ds)
		}
		if len(ds) == 0 {
			fmt.Fprintln(out, "No visible actions")
			return nil
		}
		printActionsTable(out, ds)
		return nil
	},
}

func seedStore(ec *actions.EvalContext) *chat.MemoryStore {
	store := chat.NewMemoryStore()
	if ec.Message != nil {
		store.PutMessage(*ec.Message)
	}
	if ec.User != nil {
		store.PutUser(*ec.User)
	}
	if ec.Room != nil {
		store.PutRoom(*ec.Room)
	}
	if ec.Subscription != nil {
		store.Subscribe(*ec.Subscription)
	}
	return store
}

func init() {
	actionsCmd.AddCommand(actionsCheckCmd)
	actionsCheckCmd.Flags().StringVar(&checkContextFile, "context-file", "", "JSON file holding the evaluation context")
}
