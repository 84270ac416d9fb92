package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tasktree/internal/tasklist"
)

// newRmCmd creates the rm command.
func newRmCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove an item and everything it owns",
		Long: `Remove an epic, task or subtask. Removing an epic also removes its tasks
and their subtasks; removing a task removes its subtasks.

Dependencies on the removed items are not rewritten; run tt lint to find
them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			id := args[0]
			var (
				kind  tasklist.Kind
				owned int
			)
			err = app.modify(cmd.Context(), func(ed *tasklist.Editor, s *tasklist.State) (*tasklist.State, error) {
				owned = descendants(s, id)
				out, k, err := ed.RemoveItem(s, id)
				if err != nil {
					return nil, err
				}
				kind = k
				return out, nil
			})
			if err != nil {
				return fmt.Errorf("removing: %w", err)
			}
			app.logger().Debug("removed item", "id", id, "kind", kind, "descendants", owned)

			if app.JSON {
				return app.printJSON(map[string]any{
					"id":          id,
					"type":        kind,
					"descendants": owned,
				})
			}

			fmt.Fprintf(app.Out, "%s Removed %s %s", app.SuccessColor("✓"), kind, app.IDColor(id))
			if owned > 0 {
				fmt.Fprintf(app.Out, " and %d owned item(s)", owned)
			}
			fmt.Fprintln(app.Out)
			return nil
		},
	}

	return cmd
}
