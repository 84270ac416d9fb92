package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tasktree/internal/tasklist"
)

type cascaded struct {
	ID   string        `json:"id"`
	Kind tasklist.Kind `json:"type"`
}

// cascadedItems describes the ids a completion also closed, as found in s.
func cascadedItems(s *tasklist.State, ids []string) ([]cascaded, error) {
	out := make([]cascaded, 0, len(ids))
	for _, id := range ids {
		it, err := findItem(s, id)
		if err != nil {
			return nil, err
		}
		out = append(out, cascaded{ID: id, Kind: it.Kind})
	}
	return out, nil
}

type doneResult struct {
	ID               string        `json:"id"`
	Kind             tasklist.Kind `json:"type"`
	AlreadyCompleted bool          `json:"already_completed"`
	Cascaded         []cascaded    `json:"cascaded"`
}

// newDoneCmd creates the done command.
func newDoneCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done <id> [id...]",
		Short: "Mark items as completed",
		Long: `Mark one or more items as completed.

Completing the last open subtask of a task completes the task, and
completing the last open task of an epic completes the epic. Items that are
already completed are reported and left alone. If any id is unknown nothing
is saved.

Examples:
  tt done tt-a1b2c3
  tt done tt-a1b2c3 tt-d4e5f6`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			var results []doneResult
			err = app.modify(cmd.Context(), func(ed *tasklist.Editor, s *tasklist.State) (*tasklist.State, error) {
				results = results[:0]
				for _, id := range args {
					it, err := findItem(s, id)
					if err != nil {
						return nil, err
					}
					res := doneResult{ID: id, Kind: it.Kind, Cascaded: []cascaded{}}
					if it.Status == tasklist.StatusCompleted {
						res.AlreadyCompleted = true
						results = append(results, res)
						continue
					}
					out, changed, err := ed.MarkComplete(s, id)
					if err != nil {
						return nil, err
					}
					if res.Cascaded, err = cascadedItems(out, changed[1:]); err != nil {
						return nil, err
					}
					results = append(results, res)
					s = out
				}
				return s, nil
			})
			if err != nil {
				return fmt.Errorf("completing: %w", err)
			}

			if app.JSON {
				return app.printJSON(results)
			}

			for _, r := range results {
				if r.AlreadyCompleted {
					fmt.Fprintf(app.Out, "%s %s %s is already completed\n", app.WarnColor("-"), r.Kind, app.IDColor(r.ID))
					continue
				}
				fmt.Fprintf(app.Out, "%s Completed %s %s\n", app.SuccessColor("✓"), r.Kind, app.IDColor(r.ID))
				for _, c := range r.Cascaded {
					fmt.Fprintf(app.Out, "  %s also completed %s %s\n", app.SuccessColor("↳"), c.Kind, app.IDColor(c.ID))
				}
			}
			return nil
		},
	}

	return cmd
}
