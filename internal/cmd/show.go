package cmd

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"tasktree/internal/graph"
	"tasktree/internal/tasklist"
)

// noteWidth is the wrap column for notes and implementation text.
const noteWidth = 72

type showResult struct {
	Item      tasklist.FlatItem   `json:"item"`
	WaitingOn []string            `json:"waiting_on"`
	Children  []tasklist.FlatItem `json:"children"`
}

// newShowCmd creates the show command.
func newShowCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id-or-text>",
		Short: "Show details of one item",
		Long: `Show an item by exact id, or by a case-insensitive substring of its
content. If the text matches several items they are listed and the command
fails so scripts never act on the wrong one.

Examples:
  tt show tt-a1b2c3
  tt show invoice generator`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			s, err := app.Store.Load(cmd.Context())
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			matches := tasklist.FuzzyFind(s, query)
			switch len(matches) {
			case 0:
				return fmt.Errorf("no item matches %q: %w", query, tasklist.ErrItemNotFound)
			case 1:
			default:
				if app.JSON {
					if err := app.printJSON(map[string]any{"query": query, "matches": matches}); err != nil {
						return err
					}
				} else {
					fmt.Fprintf(app.Out, "%d items match %q:\n", len(matches), query)
					for _, m := range matches {
						fmt.Fprintf(app.Out, "  %s %s %-7s %s\n", statusIcon(m.Status), app.IDColor(m.ID), m.Kind, m.Content)
					}
				}
				return fmt.Errorf("%w: %d items match %q, use an id", errAmbiguous, len(matches), query)
			}

			res := showResult{
				Item:      matches[0],
				WaitingOn: graph.WaitingOn(matches[0].Deps, completedIDs(s)),
				Children:  children(s, matches[0].ID),
			}
			if res.WaitingOn == nil {
				res.WaitingOn = []string{}
			}
			if res.Children == nil {
				res.Children = []tasklist.FlatItem{}
			}

			if app.JSON {
				return app.printJSON(res)
			}
			printDetails(app, res)
			return nil
		},
	}

	return cmd
}

func completedIDs(s *tasklist.State) map[string]bool {
	done := make(map[string]bool)
	for _, it := range tasklist.Flatten(s) {
		if it.Status == tasklist.StatusCompleted {
			done[it.ID] = true
		}
	}
	return done
}

func printDetails(app *App, res showResult) {
	it := res.Item
	w := app.Out
	fmt.Fprintf(w, "%s %s %s\n", app.IDColor(it.ID), app.MutedColor("["+string(it.Kind)+"]"), app.Bold(it.Content))
	fmt.Fprintf(w, "  Status:    %s\n", app.StatusColor(it.Status, string(it.Status)))
	fmt.Fprintf(w, "  Priority:  %d\n", it.Priority)
	if it.EpicID != "" {
		fmt.Fprintf(w, "  Epic:      %s %s\n", it.EpicID, it.EpicContent)
	}
	if it.TaskID != "" {
		fmt.Fprintf(w, "  Task:      %s %s\n", it.TaskID, it.TaskContent)
	}
	if len(it.Deps) > 0 {
		line := strings.Join(it.Deps, ", ")
		if len(res.WaitingOn) > 0 {
			line += app.WarnColor(" (waiting on " + strings.Join(res.WaitingOn, ", ") + ")")
		}
		fmt.Fprintf(w, "  Deps:      %s\n", line)
	}
	fmt.Fprintf(w, "  Created:   %s\n", it.CreatedAt)
	if it.UpdatedAt != "" {
		fmt.Fprintf(w, "  Updated:   %s\n", it.UpdatedAt)
	}
	if it.CompletedAt != "" {
		fmt.Fprintf(w, "  Completed: %s\n", it.CompletedAt)
	}
	if it.Implementation != "" {
		fmt.Fprintf(w, "  Implementation: %s\n", wrapIndented(it.Implementation, noteWidth, "    "))
	}
	if len(it.Notes) > 0 {
		fmt.Fprintln(w, "  Notes:")
		for _, n := range it.Notes {
			fmt.Fprintf(w, "    - %s\n", wrapIndented(n, noteWidth, "      "))
		}
	}
	if len(res.Children) > 0 {
		label := "Tasks"
		if it.Kind == tasklist.KindTask {
			label = "Subtasks"
		}
		fmt.Fprintf(w, "  %s (%s):\n", label, progress(it))
		for _, c := range res.Children {
			fmt.Fprintf(w, "    %s %s %s\n", app.StatusColor(c.Status, statusIcon(c.Status)), app.IDColor(c.ID), c.Content)
		}
	}
}

// wrapIndented word-wraps text and indents every continuation line.
func wrapIndented(text string, width int, indent string) string {
	lines := strings.Split(wordwrap.String(text, width), "\n")
	return strings.Join(lines, "\n"+indent)
}
