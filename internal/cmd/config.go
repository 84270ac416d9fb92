package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"tasktree/internal/config"
)

// newConfigCmd creates the config command with subcommands.
func newConfigCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage tasktree configuration settings.

Configuration is stored in .tasktree/config.yaml as flat key-value pairs.
Known keys are validated when set; other keys are stored as-is.

Keys:
  id.prefix          prefix for new ids (default: none)
  id.length          random characters in short ids, 3-8 (default: 6)
  id.format          short or uuid (default: short, env TT_ID_FORMAT)
  defaults.priority  priority for tt add without -p, 1-5 (default: 3)
  state.file         state document, relative to .tasktree (default: tasks.json)
  log.level          debug, info, warn, error or fatal (default: warn, env TT_LOG_LEVEL)
  log.format         text, json or logfmt (default: text)
  output.color       auto, always or never (default: auto)`,
	}

	cmd.AddCommand(newConfigGetCmd(provider))
	cmd.AddCommand(newConfigSetCmd(provider))
	cmd.AddCommand(newConfigListCmd(provider))
	cmd.AddCommand(newConfigUnsetCmd(provider))
	cmd.AddCommand(newConfigValidateCmd(provider))

	return cmd
}

// newConfigGetCmd creates the "config get" subcommand.
func newConfigGetCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get the value of a configuration key.

Prints the bare value if the key is set, or "key (not set)" if missing.
Defaults and environment overrides are included.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			key := args[0]
			value, ok := app.Config.Get(key)

			if app.JSON {
				return app.printJSON(map[string]any{
					"key":   key,
					"value": value,
					"set":   ok,
				})
			}

			if ok {
				fmt.Fprintln(app.Out, value)
			} else {
				fmt.Fprintf(app.Out, "%s (not set)\n", key)
			}
			return nil
		},
	}

	return cmd
}

// newConfigSetCmd creates the "config set" subcommand.
func newConfigSetCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration key to a value.

Examples:
  tt config set id.prefix web-
  tt config set defaults.priority 2
  tt config set output.color never`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			key, value := args[0], args[1]
			if err := app.Config.Set(key, value); err != nil {
				return fmt.Errorf("setting config: %w", err)
			}
			app.logger().Debug("config set", "key", key, "value", value)

			if app.JSON {
				return app.printJSON(map[string]string{
					"key":   key,
					"value": value,
				})
			}

			fmt.Fprintf(app.Out, "Set %s = %s\n", key, value)
			return nil
		},
	}

	return cmd
}

// newConfigListCmd creates the "config list" subcommand.
func newConfigListCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `List all configuration key-value pairs, including defaults for core
keys that are not in config.yaml.

Entries are sorted alphabetically by key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			all := app.Config.All()
			if app.JSON {
				return app.printJSON(all)
			}

			if len(all) == 0 {
				fmt.Fprintln(app.Out, "No configuration set")
				return nil
			}

			keys := make([]string, 0, len(all))
			for k := range all {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(app.Out, "%s = %s\n", k, all[k])
			}
			return nil
		},
	}

	return cmd
}

// newConfigUnsetCmd creates the "config unset" subcommand.
func newConfigUnsetCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a configuration value",
		Long: `Remove a key from config.yaml. Core keys fall back to their defaults.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			key := args[0]
			if err := app.Config.Unset(key); err != nil {
				return fmt.Errorf("unsetting config: %w", err)
			}

			if app.JSON {
				return app.printJSON(map[string]string{"key": key})
			}

			fmt.Fprintf(app.Out, "Unset %s\n", key)
			return nil
		},
	}

	return cmd
}

// newConfigValidateCmd creates the "config validate" subcommand.
func newConfigValidateCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		Long: `Check every known key for an allowed value.

Exits non-zero and lists each problem if any value is invalid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			verr := config.Validate(app.Config)
			if app.JSON {
				res := map[string]any{"valid": verr == nil}
				if verr != nil {
					res["error"] = verr.Error()
				}
				if err := app.printJSON(res); err != nil {
					return err
				}
				return verr
			}
			if verr != nil {
				return verr
			}

			fmt.Fprintln(app.Out, "Configuration is valid")
			return nil
		},
	}

	return cmd
}
