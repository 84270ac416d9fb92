package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tasktree/internal/tasklist"
)

type validateResult struct {
	Path     string   `json:"path"`
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems"`
	Epics    int      `json:"epics"`
	Tasks    int      `json:"tasks"`
	Subtasks int      `json:"subtasks"`
}

// newValidateCmd creates the validate command.
// Note: with a file argument it runs outside any .tasktree directory.
func newValidateCmd(provider *AppProvider) *cobra.Command {
	var printSchema bool

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a state document against the schema",
		Long: `Validate the current state file, or the given file ("-" for stdin), and
report every structural problem with its path.

Examples:
  tt validate
  tt validate backup/tasks.json
  cat tasks.json | tt validate -
  tt validate --schema > state.schema.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := provider.out()
			jsonOut := provider.JSONOutput
			if printSchema {
				_, err := out.Write(tasklist.Schema())
				return err
			}

			var path string
			if len(args) == 1 {
				path = args[0]
			} else {
				app, err := provider.Get()
				if err != nil {
					return err
				}
				path = app.Store.Path()
			}

			raw, err := readInput(cmd, path)
			if err != nil {
				return err
			}

			res := validateResult{Path: path, Problems: []string{}}
			s, verr := tasklist.Validate(raw)
			var ve *tasklist.ValidationError
			switch {
			case verr == nil:
				res.Valid = true
				counts := tasklist.CountByKind(tasklist.Flatten(s))
				res.Epics = counts[tasklist.KindEpic].Total
				res.Tasks = counts[tasklist.KindTask].Total
				res.Subtasks = counts[tasklist.KindSubtask].Total
			case errors.As(verr, &ve):
				res.Problems = ve.Strings()
			default:
				res.Problems = []string{verr.Error()}
			}

			if jsonOut {
				if err := printJSONTo(out, res); err != nil {
					return err
				}
			} else if res.Valid {
				fmt.Fprintf(out, "✓ %s is valid: %d epic(s), %d task(s), %d subtask(s)\n", path, res.Epics, res.Tasks, res.Subtasks)
			} else {
				fmt.Fprintf(out, "✗ %s is invalid:\n", path)
				for _, p := range res.Problems {
					fmt.Fprintf(out, "  %s\n", p)
				}
			}

			if !res.Valid {
				return fmt.Errorf("validation failed: %d problem(s)", len(res.Problems))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&printSchema, "schema", false, "Print the JSON Schema used for validation and exit")

	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return raw, nil
}
