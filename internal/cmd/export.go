package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tasktree/internal/fsutil"
	"tasktree/internal/tasklist"
)

// newExportCmd creates the export command.
func newExportCmd(provider *AppProvider) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole document as JSON, YAML or TOML",
		Long: `Export the state document. JSON output is identical to the stored file;
YAML and TOML carry the same fields for tools that prefer them.

Examples:
  tt export --format yaml
  tt export --format toml -o plan.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			s, err := app.Store.Load(cmd.Context())
			if err != nil {
				return err
			}
			data, err := encodeState(s, format)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = app.Out.Write(data)
				return err
			}
			if err := fsutil.AtomicWrite(output, data); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			app.logger().Debug("exported state", "path", output, "format", format)
			fmt.Fprintf(app.Err, "Exported %s to %s\n", format, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json, yaml or toml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")

	return cmd
}

func encodeState(s *tasklist.State, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "json":
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return nil, err
		}
	case "yaml", "yml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	case "toml":
		if err := toml.NewEncoder(&buf).Encode(s); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("invalid format %q: must be one of json, yaml, toml", format)
	}
	return buf.Bytes(), nil
}
