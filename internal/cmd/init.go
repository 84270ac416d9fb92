package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tasktree/internal/config"
	"tasktree/internal/config/yamlstore"
	"tasktree/internal/configservice"
	"tasktree/internal/idgen"
	"tasktree/internal/storage"
	"tasktree/internal/storage/filesystem"
)

type initOptions struct {
	base     string
	force    bool
	prefix   string
	idFormat string
	json     bool
}

// newInitCmd creates the init command.
// Note: init doesn't use the provider since it creates the .tasktree directory.
func newInitCmd(provider *AppProvider) *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new tasktree repository",
		Long: `Create .tasktree/ in the current directory (or --path, or $TASKTREE_DIR)
with a config.yaml holding the defaults and an empty tasks.json.

With --force an existing directory is reinitialized: missing config keys are
filled in and an existing state file is kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.base = provider.Path
			opts.json = provider.JSONOutput
			return runInit(cmd.Context(), provider.out(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.force, "force", false, "Reinitialize even if .tasktree exists")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "", "ID prefix for new items (e.g. 'web-')")
	cmd.Flags().StringVar(&opts.idFormat, "id-format", "", "ID format: short or uuid")

	return cmd
}

func runInit(ctx context.Context, out io.Writer, opts initOptions) error {
	paths, err := configservice.DefaultPaths(opts.base)
	if err != nil {
		return err
	}

	if _, err := os.Stat(paths.ConfigDir); err == nil {
		if !opts.force {
			return errors.New("tasktree repository already exists (use --force to reinitialize)")
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking .tasktree directory: %w", err)
	}

	if err := os.MkdirAll(paths.ConfigDir, 0755); err != nil {
		return fmt.Errorf("creating .tasktree directory: %w", err)
	}

	store, err := yamlstore.New(paths.ConfigFile)
	if err != nil {
		return fmt.Errorf("creating config store: %w", err)
	}
	if opts.prefix != "" {
		if err := store.Set(config.KeyIDPrefix, idgen.NormalizePrefix(opts.prefix)); err != nil {
			return fmt.Errorf("setting id prefix: %w", err)
		}
	}
	if opts.idFormat != "" {
		if err := store.Set(config.KeyIDFormat, opts.idFormat); err != nil {
			return fmt.Errorf("setting id format: %w", err)
		}
	}
	if err := config.ApplyDefaults(store); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}

	statePath := paths.StateFile(store)
	kept := false
	if err := filesystem.New(statePath).Init(ctx); err != nil {
		if !errors.Is(err, storage.ErrAlreadyInitialized) {
			return fmt.Errorf("creating state file: %w", err)
		}
		kept = true
	}

	if opts.json {
		return printJSONTo(out, map[string]any{
			"path":       paths.ConfigDir,
			"state_file": statePath,
			"kept_state": kept,
		})
	}

	fmt.Fprintf(out, "✓ Initialized tasktree in %s\n", paths.ConfigDir)
	if kept {
		fmt.Fprintf(out, "  Kept existing state file %s\n", statePath)
	}
	return nil
}
